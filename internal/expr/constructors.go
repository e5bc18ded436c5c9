package expr

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Int builds an integer expression; negative values become Minus nodes.
func Int(n int64) *Expression { return IntegerOf(big.NewInt(n)) }

// IntegerOf builds an integer expression; negative values become Minus nodes.
func IntegerOf(v *big.Int) *Expression {
	if v.Sign() < 0 {
		return Neg(New(IntegerOp(new(big.Int).Neg(v))))
	}
	return New(IntegerOp(v))
}

// DecimalOf builds a decimal expression; negative values become Minus nodes.
func DecimalOf(v *apd.Decimal) *Expression {
	if v.Negative && !v.IsZero() {
		abs := new(apd.Decimal).Set(v)
		abs.Negative = false
		return Neg(New(DecimalOp(abs)))
	}
	return New(DecimalOp(v))
}

// NumberOf builds the simplest leaf for v: an integer when v has no
// fractional digits, a decimal otherwise.
func NumberOf(v *apd.Decimal) *Expression {
	if v.Exponent < 0 {
		return DecimalOf(v)
	}
	n := v.Coeff.MathBigInt()
	n.Mul(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(v.Exponent)), nil))
	if v.Negative {
		n.Neg(n)
	}
	return IntegerOf(n)
}

func Var(name string) *Expression { return New(VariableOp(name)) }

func Zero() *Expression { return Int(0) }

func One() *Expression { return Int(1) }

func Undefined() *Expression { return New(Op(KindUndefined)) }

func Reals() *Expression { return New(Op(KindReals)) }

func EmptySet() *Expression { return New(Op(KindEmptySet)) }

func Neg(e *Expression) *Expression { return New(Op(KindMinus), e) }

func Plus(e *Expression) *Expression { return New(Op(KindPlus), e) }

func PlusMinus(e *Expression) *Expression { return New(Op(KindPlusMinus), e) }

func DivideBy(e *Expression) *Expression { return New(Op(KindDivideBy), e) }

func SquareRoot(e *Expression) *Expression { return New(Op(KindSquareRoot), e) }

func AbsoluteValue(e *Expression) *Expression { return New(Op(KindAbsoluteValue), e) }

func Percentage(e *Expression) *Expression { return New(Op(KindPercentage), e) }

func Fraction(num, den *Expression) *Expression { return New(Op(KindFraction), num, den) }

func Power(base, exponent *Expression) *Expression { return New(Op(KindPower), base, exponent) }

func Root(radicand, index *Expression) *Expression { return New(Op(KindRoot), radicand, index) }

// Sum adds brackets to terms that need them. Unlabelled sums without
// brackets are flattened into the result.
func Sum(terms ...*Expression) *Expression { return nary(KindSum, terms) }

// Product adds brackets to factors that need them. Unlabelled products
// that are not partial products are flattened into the result.
func Product(factors ...*Expression) *Expression { return nary(KindProduct, factors) }

func nary(kind Kind, operands []*Expression) *Expression {
	op := Op(kind)
	var flat []*Expression
	for _, o := range operands {
		if o.Is(kind) && o.meta.label == nil && inlinable(o) {
			flat = append(flat, o.Children()...)
			continue
		}
		flat = append(flat, o)
	}
	for i, o := range flat {
		flat[i] = o.AdjustBracketFor(op, i)
	}
	return newExpression(op, flat, meta{})
}

func inlinable(e *Expression) bool {
	if e.Is(KindProduct) {
		return !e.IsPartialProduct()
	}
	return !e.HasBracket()
}

// SumOrSingle returns 0 for no terms, the term itself for one, a Sum otherwise.
func SumOrSingle(terms ...*Expression) *Expression {
	switch len(terms) {
	case 0:
		return Zero()
	case 1:
		return terms[0]
	}
	return Sum(terms...)
}

// ProductOrSingle returns 1 for no factors, the factor itself for one, a Product otherwise.
func ProductOrSingle(factors ...*Expression) *Expression {
	switch len(factors) {
	case 0:
		return One()
	case 1:
		return factors[0]
	}
	return Product(factors...)
}

func Equation(lhs, rhs *Expression) *Expression { return New(Op(KindEquation), lhs, rhs) }

func Inequation(lhs, rhs *Expression) *Expression { return New(Op(KindInequation), lhs, rhs) }

func LessThan(lhs, rhs *Expression) *Expression { return New(Op(KindLessThan), lhs, rhs) }

func LessThanOrEqual(lhs, rhs *Expression) *Expression {
	return New(Op(KindLessThanOrEqual), lhs, rhs)
}

func GreaterThan(lhs, rhs *Expression) *Expression { return New(Op(KindGreaterThan), lhs, rhs) }

func GreaterThanOrEqual(lhs, rhs *Expression) *Expression {
	return New(Op(KindGreaterThanOrEqual), lhs, rhs)
}

func VariableList(names ...string) *Expression {
	vars := make([]*Expression, len(names))
	for i, n := range names {
		vars[i] = Var(n)
	}
	return New(Op(KindVariableList), vars...)
}

func FiniteSet(elements ...*Expression) *Expression { return New(Op(KindFiniteSet), elements...) }

func SetSolution(vars, set *Expression) *Expression { return New(Op(KindSetSolution), vars, set) }

func Identity(vars, e *Expression) *Expression { return New(Op(KindIdentity), vars, e) }

func Contradiction(vars, e *Expression) *Expression { return New(Op(KindContradiction), vars, e) }

func StatementUnion(statements ...*Expression) *Expression {
	return New(Op(KindStatementUnion), statements...)
}

func StatementSystem(statements ...*Expression) *Expression {
	return New(Op(KindStatementSystem), statements...)
}
