package expr

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Kind is the closed set of expression shapes.
//
// Switches over Kind list every case explicitly; adding a kind means
// revisiting each of them (arity, precedence, child rules, formatting, IR).
type Kind int

const (
	KindInteger Kind = iota
	KindDecimal
	KindVariable
	KindUndefined
	KindReals
	KindEmptySet

	KindMinus
	KindPlus
	KindPlusMinus
	KindDivideBy
	KindSquareRoot
	KindAbsoluteValue
	KindPercentage

	KindFraction
	KindPower
	KindRoot

	KindSum
	KindProduct

	KindEquation
	KindInequation
	KindLessThan
	KindLessThanOrEqual
	KindGreaterThan
	KindGreaterThanOrEqual

	KindVariableList
	KindSetSolution
	KindIdentity
	KindContradiction
	KindFiniteSet
	KindStatementUnion
	KindStatementSystem
)

// Precedence levels. Higher binds tighter.
const (
	PredicatePrecedence       = 0
	StatementSystemPrecedence = -10
	StatementUnionPrecedence  = -20
	SumPrecedence             = 10
	PlusMinusPrecedence       = 15
	ProductPrecedence         = 20
	FractionPrecedence        = 50
	PercentagePrecedence      = 55
	PowerPrecedence           = 60
	DivideByPrecedence        = 90
	FunctionLikePrecedence    = 95
	MaxPrecedence             = 100
)

// unbounded marks a kind that accepts any number of operands.
const unbounded = -1

type kindInfo struct {
	name       string
	precedence int
	minArity   int
	maxArity   int
}

var kinds = map[Kind]kindInfo{
	KindInteger:   {"Integer", MaxPrecedence, 0, 0},
	KindDecimal:   {"Decimal", MaxPrecedence, 0, 0},
	KindVariable:  {"Variable", MaxPrecedence, 0, 0},
	KindUndefined: {"Undefined", MaxPrecedence, 0, 0},
	KindReals:     {"Reals", MaxPrecedence, 0, 0},
	KindEmptySet:  {"EmptySet", MaxPrecedence, 0, 0},

	KindMinus:         {"Minus", PlusMinusPrecedence, 1, 1},
	KindPlus:          {"Plus", PlusMinusPrecedence, 1, 1},
	KindPlusMinus:     {"PlusMinus", PlusMinusPrecedence, 1, 1},
	KindDivideBy:      {"DivideBy", DivideByPrecedence, 1, 1},
	KindSquareRoot:    {"SquareRoot", FunctionLikePrecedence, 1, 1},
	KindAbsoluteValue: {"AbsoluteValue", FunctionLikePrecedence, 1, 1},
	KindPercentage:    {"Percentage", PercentagePrecedence, 1, 1},

	KindFraction: {"Fraction", FractionPrecedence, 2, 2},
	KindPower:    {"Power", PowerPrecedence, 2, 2},
	KindRoot:     {"Root", FunctionLikePrecedence, 2, 2},

	KindSum:     {"Sum", SumPrecedence, 2, unbounded},
	KindProduct: {"Product", ProductPrecedence, 2, unbounded},

	KindEquation:           {"Equation", PredicatePrecedence, 2, 2},
	KindInequation:         {"Inequation", PredicatePrecedence, 2, 2},
	KindLessThan:           {"LessThan", PredicatePrecedence, 2, 2},
	KindLessThanOrEqual:    {"LessThanEqual", PredicatePrecedence, 2, 2},
	KindGreaterThan:        {"GreaterThan", PredicatePrecedence, 2, 2},
	KindGreaterThanOrEqual: {"GreaterThanEqual", PredicatePrecedence, 2, 2},

	KindVariableList:    {"VariableList", MaxPrecedence, 0, unbounded},
	KindSetSolution:     {"SetSolution", PredicatePrecedence, 2, 2},
	KindIdentity:        {"Identity", PredicatePrecedence, 2, 2},
	KindContradiction:   {"Contradiction", PredicatePrecedence, 2, 2},
	KindFiniteSet:       {"FiniteSet", MaxPrecedence, 0, unbounded},
	KindStatementUnion:  {"StatementUnion", StatementUnionPrecedence, 2, unbounded},
	KindStatementSystem: {"StatementSystem", StatementSystemPrecedence, 2, unbounded},
}

func (k Kind) info() kindInfo {
	info, ok := kinds[k]
	if !ok {
		panic(fmt.Sprintf("expr: unknown operator kind %d", int(k)))
	}
	return info
}

// String returns the name used in the interchange format ("Sum", "Power", ...).
func (k Kind) String() string { return k.info().name }

// KindByName resolves a name produced by Kind.String.
func KindByName(name string) (Kind, bool) {
	for k, info := range kinds {
		if info.name == name {
			return k, true
		}
	}
	return 0, false
}

// Operator is the tag of an Expression: a Kind plus, for leaves, its payload.
type Operator struct {
	kind    Kind
	integer *big.Int
	decimal *apd.Decimal
	name    string
}

// Op returns the payload-free operator of the given kind.
func Op(kind Kind) Operator {
	switch kind {
	case KindInteger, KindDecimal, KindVariable:
		panic(fmt.Sprintf("expr: operator %s needs a payload", kind))
	}
	return Operator{kind: kind}
}

// IntegerOp is the operator of a non-negative integer leaf.
func IntegerOp(v *big.Int) Operator {
	if v.Sign() < 0 {
		panic(fmt.Sprintf("expr: integer leaf must be non-negative, got %s", v))
	}
	return Operator{kind: KindInteger, integer: new(big.Int).Set(v)}
}

// DecimalOp is the operator of a non-negative decimal leaf.
func DecimalOp(v *apd.Decimal) Operator {
	if v.Negative && !v.IsZero() {
		panic(fmt.Sprintf("expr: decimal leaf must be non-negative, got %s", v))
	}
	d := new(apd.Decimal).Set(v)
	d.Negative = false
	return Operator{kind: KindDecimal, decimal: d}
}

// VariableOp is the operator of a variable leaf.
func VariableOp(name string) Operator {
	return Operator{kind: KindVariable, name: name}
}

func (o Operator) Kind() Kind { return o.kind }

// IntegerValue returns a copy of the integer payload, or nil.
func (o Operator) IntegerValue() *big.Int {
	if o.integer == nil {
		return nil
	}
	return new(big.Int).Set(o.integer)
}

// DecimalValue returns a copy of the decimal payload, or nil.
func (o Operator) DecimalValue() *apd.Decimal {
	if o.decimal == nil {
		return nil
	}
	return new(apd.Decimal).Set(o.decimal)
}

// VariableName returns the variable name, or "".
func (o Operator) VariableName() string { return o.name }

func (o Operator) Precedence() int { return o.kind.info().precedence }

func (o Operator) MinChildCount() int { return o.kind.info().minArity }

// MaxChildCount returns -1 for kinds accepting any number of operands.
func (o Operator) MaxChildCount() int { return o.kind.info().maxArity }

// AcceptsChildCount reports whether n operands are valid for the operator.
func (o Operator) AcceptsChildCount(n int) bool {
	info := o.kind.info()
	return n >= info.minArity && (info.maxArity == unbounded || n <= info.maxArity)
}

// Equal compares kinds and payloads. Decimals compare by value and scale.
func (o Operator) Equal(other Operator) bool {
	if o.kind != other.kind {
		return false
	}
	switch o.kind {
	case KindInteger:
		return o.integer.Cmp(other.integer) == 0
	case KindDecimal:
		return o.decimal.Cmp(other.decimal) == 0 && o.decimal.Exponent == other.decimal.Exponent
	case KindVariable:
		return o.name == other.name
	}
	return true
}

// IsNary reports whether the operator is a sum or a product.
func (o Operator) IsNary() bool {
	return o.kind == KindSum || o.kind == KindProduct
}

// NthChildAllowed reports whether an operand with operator child may appear
// at position n without brackets.
func (o Operator) NthChildAllowed(n int, child Operator) bool {
	cp := child.Precedence()
	switch o.kind {
	case KindInteger, KindDecimal, KindVariable, KindUndefined, KindReals, KindEmptySet:
		return true
	case KindMinus, KindPlus, KindPlusMinus, KindPercentage:
		return cp > o.Precedence()
	case KindDivideBy:
		return cp > ProductPrecedence
	case KindSquareRoot, KindAbsoluteValue, KindFraction, KindRoot:
		return true
	case KindPower:
		if n == 0 {
			return cp == MaxPrecedence
		}
		return true
	case KindSum:
		return (n == 0 || child.kind != KindPlus) && cp > SumPrecedence
	case KindProduct:
		return cp > ProductPrecedence
	case KindEquation, KindInequation, KindLessThan, KindLessThanOrEqual,
		KindGreaterThan, KindGreaterThanOrEqual:
		return cp > PredicatePrecedence
	case KindVariableList, KindSetSolution, KindIdentity, KindContradiction, KindFiniteSet:
		return true
	case KindStatementUnion, KindStatementSystem:
		return cp > o.Precedence()
	}
	panic(fmt.Sprintf("expr: unhandled operator kind %s", o.kind))
}

// IsRelation reports whether the operator compares two expressions.
func (o Operator) IsRelation() bool {
	switch o.kind {
	case KindEquation, KindInequation, KindLessThan, KindLessThanOrEqual,
		KindGreaterThan, KindGreaterThanOrEqual:
		return true
	}
	return false
}

func (o Operator) String() string {
	switch o.kind {
	case KindInteger:
		return o.integer.String()
	case KindDecimal:
		return o.decimal.Text('f')
	case KindVariable:
		return o.name
	}
	return o.kind.String()
}
