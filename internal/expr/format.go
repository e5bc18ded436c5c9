package expr

import "strings"

// String renders e in the plain solver format understood by the syntax package.
func (e *Expression) String() string {
	s := e.body()
	for _, d := range e.meta.decorators {
		s = d.wrap(s)
	}
	return s
}

func (e *Expression) body() string {
	ops := e.operands
	switch e.op.kind {
	case KindInteger, KindDecimal, KindVariable:
		return e.op.String()
	case KindUndefined:
		return "/undefined/"
	case KindReals:
		return "/reals/"
	case KindEmptySet:
		return "/emptyset/"
	case KindMinus:
		return "-" + ops[0].String()
	case KindPlus:
		return "+" + ops[0].String()
	case KindPlusMinus:
		return "+/-" + ops[0].String()
	case KindDivideBy:
		return ": " + ops[0].String()
	case KindSquareRoot:
		return "sqrt[" + ops[0].String() + "]"
	case KindAbsoluteValue:
		return "abs[" + ops[0].String() + "]"
	case KindPercentage:
		return ops[0].String() + " %"
	case KindFraction:
		return "[" + ops[0].String() + " / " + ops[1].String() + "]"
	case KindPower:
		return "[" + ops[0].String() + " ^ " + ops[1].String() + "]"
	case KindRoot:
		return "root[" + ops[0].String() + ", " + ops[1].String() + "]"
	case KindSum:
		var b strings.Builder
		b.WriteString(ops[0].String())
		for _, t := range ops[1:] {
			b.WriteString(t.secondTermInSum())
		}
		return b.String()
	case KindProduct:
		var b strings.Builder
		b.WriteString(ops[0].String())
		for _, f := range ops[1:] {
			if f.Is(KindDivideBy) && !f.HasBracket() {
				b.WriteString(" ")
			} else {
				b.WriteString(" * ")
			}
			b.WriteString(f.String())
		}
		return b.String()
	case KindEquation:
		return infix(ops, " = ")
	case KindInequation:
		return infix(ops, " != ")
	case KindLessThan:
		return infix(ops, " < ")
	case KindLessThanOrEqual:
		return infix(ops, " <= ")
	case KindGreaterThan:
		return infix(ops, " > ")
	case KindGreaterThanOrEqual:
		return infix(ops, " >= ")
	case KindVariableList:
		return infix(ops, ", ")
	case KindFiniteSet:
		return "{" + infix(ops, ", ") + "}"
	case KindSetSolution:
		return "SetSolution[" + ops[0].String() + " : " + ops[1].String() + "]"
	case KindIdentity:
		return "Identity[" + ops[0].String() + " : " + ops[1].String() + "]"
	case KindContradiction:
		return "Contradiction[" + ops[0].String() + " : " + ops[1].String() + "]"
	case KindStatementUnion:
		return infix(ops, " OR ")
	case KindStatementSystem:
		return infix(ops, " AND ")
	}
	return e.op.String()
}

func (e *Expression) secondTermInSum() string {
	if !e.HasBracket() {
		switch e.op.kind {
		case KindMinus:
			return " - " + e.operands[0].String()
		case KindPlusMinus:
			return " +/- " + e.operands[0].String()
		}
	}
	return " + " + e.String()
}

func infix(ops []*Expression, sep string) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, sep)
}
