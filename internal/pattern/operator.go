package pattern

import (
	"fmt"
	"iter"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// OperatorPattern matches an expression with a given operator whose
// operands match the operand patterns in order.
type OperatorPattern struct {
	common
	op       expr.Operator
	operands []Pattern
	minDepth int
}

// Operator builds an OperatorPattern. It panics when the operator does
// not accept len(operands) operands.
func Operator(kind expr.Kind, operands ...Pattern) *OperatorPattern {
	op := expr.Op(kind)
	if !op.AcceptsChildCount(len(operands)) {
		panic(fmt.Sprintf("pattern: %s does not accept %d operands", kind, len(operands)))
	}
	depth := 0
	if len(operands) > 0 {
		for _, o := range operands {
			depth = max(depth, o.MinDepth())
		}
		depth++
	}
	return &OperatorPattern{common: baseCommon(), op: op, operands: operands, minDepth: depth}
}

func (p *OperatorPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		if !admits(p, m, sub) || !sub.Operator().Equal(p.op) || sub.ChildCount() != len(p.operands) {
			return
		}
		matchInOrder(ctx, p.operands, sub.Children(), m.Bind(p, sub), yield)
	}
}

// matchInOrder matches patterns[i] against subs[i] for every i, yielding
// each combined match. It returns false once yield asks to stop.
func matchInOrder(ctx *engine.Context, patterns []Pattern, subs []*expr.Expression, m *Match, yield func(*Match) bool) bool {
	if len(patterns) == 0 {
		return yield(m)
	}
	for next := range patterns[0].FindMatches(ctx, m, subs[0]) {
		if !matchInOrder(ctx, patterns[1:], subs[1:], next, yield) {
			return false
		}
	}
	return true
}

func (p *OperatorPattern) Key() Pattern { return p }

func (p *OperatorPattern) MinDepth() int { return p.minDepth }

func FractionOf(numerator, denominator Pattern) *OperatorPattern {
	return Operator(expr.KindFraction, numerator, denominator)
}

func DivideBy(divisor Pattern) *OperatorPattern { return Operator(expr.KindDivideBy, divisor) }

func PowerOf(base, exponent Pattern) *OperatorPattern {
	return Operator(expr.KindPower, base, exponent)
}

func SquareRootOf(radicand Pattern) *OperatorPattern {
	return Operator(expr.KindSquareRoot, radicand)
}

func AbsoluteValueOf(p Pattern) *OperatorPattern { return Operator(expr.KindAbsoluteValue, p) }

func NegOf(p Pattern) *OperatorPattern { return Operator(expr.KindMinus, p) }

func PlusOf(p Pattern) *OperatorPattern { return Operator(expr.KindPlus, p) }

func PlusMinusOf(p Pattern) *OperatorPattern { return Operator(expr.KindPlusMinus, p) }

func EquationOf(lhs, rhs Pattern) *OperatorPattern { return Operator(expr.KindEquation, lhs, rhs) }

func InequationOf(lhs, rhs Pattern) *OperatorPattern {
	return Operator(expr.KindInequation, lhs, rhs)
}

func SetSolutionOf(vars, set Pattern) *OperatorPattern {
	return Operator(expr.KindSetSolution, vars, set)
}

func IdentityOf(vars, e Pattern) *OperatorPattern { return Operator(expr.KindIdentity, vars, e) }

func ContradictionOf(vars, e Pattern) *OperatorPattern {
	return Operator(expr.KindContradiction, vars, e)
}

// VariableListOf matches a list of exactly len(items) variables.
func VariableListOf(items ...Pattern) *OperatorPattern {
	return Operator(expr.KindVariableList, items...)
}

// SolutionSetOf matches a finite set with exactly len(elements) elements.
func SolutionSetOf(elements ...Pattern) *OperatorPattern {
	return Operator(expr.KindFiniteSet, elements...)
}

// BracketOf matches expressions matching p that carry a bracket.
func BracketOf(p Pattern) *ConditionPattern {
	return Condition(p, MatchConditionFunc(func(_ *engine.Context, _ *Match, sub *expr.Expression) bool {
		return sub.HasBracket()
	}))
}
