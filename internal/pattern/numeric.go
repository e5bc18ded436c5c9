package pattern

import (
	"fmt"
	"iter"
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// InvalidMatchError is the panic value of a numeric accessor called on a
// match where the pattern is unbound or bound to a non-number.
type InvalidMatchError struct {
	Message string
}

func (e *InvalidMatchError) Error() string { return "invalid match: " + e.Message }

func invalidMatch(format string, args ...any) *InvalidMatchError {
	return &InvalidMatchError{Message: fmt.Sprintf(format, args...)}
}

func intToDecimal(v *big.Int) *apd.Decimal {
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(v), 0)
}

// UnsignedIntegerPattern matches a non-negative integer literal.
type UnsignedIntegerPattern struct {
	common
}

func UnsignedInteger() *UnsignedIntegerPattern {
	return &UnsignedIntegerPattern{common: baseCommon()}
}

func (p *UnsignedIntegerPattern) FindMatches(_ *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	if !admits(p, m, sub) || !sub.Is(expr.KindInteger) {
		return none
	}
	return only(m.Bind(p, sub))
}

func (p *UnsignedIntegerPattern) Key() Pattern { return p }

func (p *UnsignedIntegerPattern) MinDepth() int { return 0 }

func (p *UnsignedIntegerPattern) BoundInt(m *Match) *big.Int {
	e := p.BoundExpr(m)
	if e == nil {
		panic(invalidMatch("unsigned integer is not bound"))
	}
	if !e.Is(expr.KindInteger) {
		panic(invalidMatch("unsigned integer matched to %s", e))
	}
	return e.Operator().IntegerValue()
}

// BoundIntOr is BoundInt, with def when p is unbound.
func (p *UnsignedIntegerPattern) BoundIntOr(m *Match, def *big.Int) *big.Int {
	if p.BoundExpr(m) == nil {
		return def
	}
	return p.BoundInt(m)
}

func (p *UnsignedIntegerPattern) BoundNumber(m *Match) *apd.Decimal { return intToDecimal(p.BoundInt(m)) }

// UnsignedNumberPattern matches a non-negative integer or decimal literal.
type UnsignedNumberPattern struct {
	common
}

func UnsignedNumber() *UnsignedNumberPattern {
	return &UnsignedNumberPattern{common: baseCommon()}
}

func (p *UnsignedNumberPattern) FindMatches(_ *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	if !admits(p, m, sub) || !(sub.Is(expr.KindInteger) || sub.Is(expr.KindDecimal)) {
		return none
	}
	return only(m.Bind(p, sub))
}

func (p *UnsignedNumberPattern) Key() Pattern { return p }

func (p *UnsignedNumberPattern) MinDepth() int { return 0 }

func (p *UnsignedNumberPattern) BoundNumber(m *Match) *apd.Decimal {
	e := p.BoundExpr(m)
	switch {
	case e == nil:
		panic(invalidMatch("unsigned number is not bound"))
	case e.Is(expr.KindDecimal):
		return e.Operator().DecimalValue()
	case e.Is(expr.KindInteger):
		return intToDecimal(e.Operator().IntegerValue())
	}
	panic(invalidMatch("unsigned number matched to %s", e))
}

// SignedIntegerPattern matches n or -n for an integer literal n.
type SignedIntegerPattern struct {
	*OptionalNegPattern
	unsigned *UnsignedIntegerPattern
}

func SignedInteger() *SignedIntegerPattern {
	u := UnsignedInteger()
	return &SignedIntegerPattern{OptionalNegPattern: OptionalNeg(u), unsigned: u}
}

// Unsigned is the pattern matching the literal without its sign.
func (p *SignedIntegerPattern) Unsigned() *UnsignedIntegerPattern { return p.unsigned }

func (p *SignedIntegerPattern) BoundInt(m *Match) *big.Int {
	v := p.unsigned.BoundInt(m)
	if p.IsNeg(m) {
		return new(big.Int).Neg(v)
	}
	return v
}

func (p *SignedIntegerPattern) BoundNumber(m *Match) *apd.Decimal { return intToDecimal(p.BoundInt(m)) }

// SignedNumberPattern matches n or -n for a number literal n.
type SignedNumberPattern struct {
	*OptionalNegPattern
	unsigned *UnsignedNumberPattern
}

func SignedNumber() *SignedNumberPattern {
	u := UnsignedNumber()
	return &SignedNumberPattern{OptionalNegPattern: OptionalNeg(u), unsigned: u}
}

func (p *SignedNumberPattern) Unsigned() *UnsignedNumberPattern { return p.unsigned }

func (p *SignedNumberPattern) BoundNumber(m *Match) *apd.Decimal {
	v := p.unsigned.BoundNumber(m)
	if p.IsNeg(m) {
		return new(apd.Decimal).Neg(v)
	}
	return v
}

// IntegerConditionPattern keeps the matches of an integer pattern whose
// value satisfies a predicate.
type IntegerConditionPattern struct {
	IntegerPattern
	cond func(*big.Int) bool
}

func IntegerCondition(p IntegerPattern, cond func(*big.Int) bool) *IntegerConditionPattern {
	return &IntegerConditionPattern{IntegerPattern: p, cond: cond}
}

func (p *IntegerConditionPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		for next := range p.IntegerPattern.FindMatches(ctx, m, sub) {
			if p.cond(p.BoundInt(next)) && !yield(next) {
				return
			}
		}
	}
}

// NumericConditionPattern keeps the matches of a number pattern whose
// value satisfies a predicate.
type NumericConditionPattern struct {
	NumberPattern
	cond func(*apd.Decimal) bool
}

func NumericCondition(p NumberPattern, cond func(*apd.Decimal) bool) *NumericConditionPattern {
	return &NumericConditionPattern{NumberPattern: p, cond: cond}
}

func (p *NumericConditionPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		for next := range p.NumberPattern.FindMatches(ctx, m, sub) {
			if p.cond(p.BoundNumber(next)) && !yield(next) {
				return
			}
		}
	}
}

// BinaryIntegerCondition relates the values of two integer providers.
func BinaryIntegerCondition(a, b IntegerProvider, cond func(ctx *engine.Context, a, b *big.Int) bool) MatchCondition {
	return MatchConditionFunc(func(ctx *engine.Context, m *Match, _ *expr.Expression) bool {
		return cond(ctx, a.BoundInt(m), b.BoundInt(m))
	})
}

// TernaryIntegerCondition relates the values of three integer providers.
func TernaryIntegerCondition(a, b, c IntegerProvider, cond func(ctx *engine.Context, a, b, c *big.Int) bool) MatchCondition {
	return MatchConditionFunc(func(ctx *engine.Context, m *Match, _ *expr.Expression) bool {
		return cond(ctx, a.BoundInt(m), b.BoundInt(m), c.BoundInt(m))
	})
}

// BinaryNumericCondition relates the values of two number providers.
func BinaryNumericCondition(a, b NumberProvider, cond func(ctx *engine.Context, a, b *apd.Decimal) bool) MatchCondition {
	return MatchConditionFunc(func(ctx *engine.Context, m *Match, _ *expr.Expression) bool {
		return cond(ctx, a.BoundNumber(m), b.BoundNumber(m))
	})
}

// ProviderWithDefault reads from a provider, falling back to a fresh copy
// of a default expression when nothing is bound.
type ProviderWithDefault struct {
	provider Provider
	def      *expr.Expression
}

func WithDefault(p Provider, def *expr.Expression) *ProviderWithDefault {
	return &ProviderWithDefault{provider: p, def: def}
}

func (p *ProviderWithDefault) BoundExpr(m *Match) *expr.Expression {
	if e := p.provider.BoundExpr(m); e != nil {
		return e
	}
	return p.def.WithOrigin(expr.Fresh)
}

func (p *ProviderWithDefault) BoundExprs(m *Match) []*expr.Expression {
	if es := p.provider.BoundExprs(m); len(es) > 0 {
		return es
	}
	return []*expr.Expression{p.def.WithOrigin(expr.Fresh)}
}

// IntegerProviderWithDefault is a ProviderWithDefault for integers. When
// sign is not nil and matched a negation, the value is negated.
type IntegerProviderWithDefault struct {
	*ProviderWithDefault
	provider IntegerProvider
	def      *big.Int
	sign     SignedPattern
}

func IntegerWithDefault(p IntegerProvider, def *big.Int, sign SignedPattern) *IntegerProviderWithDefault {
	return &IntegerProviderWithDefault{
		ProviderWithDefault: WithDefault(p, expr.IntegerOf(def)),
		provider:            p,
		def:                 def,
		sign:                sign,
	}
}

func (p *IntegerProviderWithDefault) BoundInt(m *Match) *big.Int {
	v := p.def
	if p.provider.BoundExpr(m) != nil {
		v = p.provider.BoundInt(m)
	}
	if p.sign != nil && p.sign.IsNeg(m) {
		return new(big.Int).Neg(v)
	}
	return v
}

func (p *IntegerProviderWithDefault) BoundNumber(m *Match) *apd.Decimal {
	return intToDecimal(p.BoundInt(m))
}

// Within restricts p to bindings located inside the binding of parent.
func Within(p Provider, parent Provider) Provider {
	return &withinProvider{inner: p, parent: parent}
}

type withinProvider struct {
	inner  Provider
	parent Provider
}

func (w *withinProvider) BoundExprs(m *Match) []*expr.Expression {
	parent := w.parent.BoundExpr(m)
	if parent == nil {
		return nil
	}
	root, ok := parent.Path()
	if !ok {
		return nil
	}
	var out []*expr.Expression
	for _, e := range w.inner.BoundExprs(m) {
		if path, ok := e.Path(); ok && path.HasAncestor(root) {
			out = append(out, e)
		}
	}
	return out
}

func (w *withinProvider) BoundExpr(m *Match) *expr.Expression {
	es := w.BoundExprs(m)
	if len(es) == 0 {
		return nil
	}
	return es[len(es)-1]
}
