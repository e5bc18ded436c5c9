package pattern

import (
	"iter"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// OptionalWrappingPattern matches p, or p wrapped by some operator.
// Its bindings are the whole matched expression, wrapped or not.
type OptionalWrappingPattern struct {
	common
	inner    Pattern
	wrapping Pattern
	either   *OneOfPattern
}

func OptionalWrapping(p Pattern, wrapper func(Pattern) Pattern) *OptionalWrappingPattern {
	w := wrapper(p)
	either := OneOf(w, p)
	return &OptionalWrappingPattern{common: keyedOn(either), inner: p, wrapping: w, either: either}
}

func (p *OptionalWrappingPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return p.either.FindMatches(ctx, m, sub)
}

func (p *OptionalWrappingPattern) Key() Pattern { return p.either }

func (p *OptionalWrappingPattern) MinDepth() int { return p.either.MinDepth() }

// IsWrapping reports whether m matched the wrapped form.
func (p *OptionalWrappingPattern) IsWrapping(m *Match) bool { return m.IsBound(p.wrapping) }

// Unwrapped is the pattern inside the optional wrapper.
func (p *OptionalWrappingPattern) Unwrapped() Pattern { return p.inner }

// OptionalDivideBy matches p or ": p".
func OptionalDivideBy(p Pattern) *OptionalWrappingPattern {
	return OptionalWrapping(p, func(q Pattern) Pattern { return DivideBy(q) })
}

// OptionalNegPattern matches p or -p.
type OptionalNegPattern struct {
	*OptionalWrappingPattern
	sticky      bool
	initialOnly bool
}

func OptionalNeg(p Pattern) *OptionalNegPattern {
	return &OptionalNegPattern{OptionalWrappingPattern: OptionalWrapping(p, func(q Pattern) Pattern { return NegOf(q) })}
}

// StickyOptionalNeg is OptionalNeg, except that it refuses the operand
// of a minus sign: in -x it matches -x but not x. With initialPositionOnly,
// the refusal applies only when the minus is the first operand of its
// parent or has no parent.
func StickyOptionalNeg(p Pattern, initialPositionOnly bool) *OptionalNegPattern {
	n := OptionalNeg(p)
	n.sticky = true
	n.initialOnly = initialPositionOnly
	return n
}

func (p *OptionalNegPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	if p.sticky && !sub.Is(expr.KindMinus) {
		if parent := sub.Parent(); parent != nil && parent.Is(expr.KindMinus) {
			if !p.initialOnly || parent.ChildIndex() <= 0 {
				return none
			}
		}
	}
	return p.OptionalWrappingPattern.FindMatches(ctx, m, sub)
}

// IsNeg reports whether m matched the negated form.
func (p *OptionalNegPattern) IsNeg(m *Match) bool { return p.IsWrapping(m) }

// SignedPattern has a sign that can be read from a match.
type SignedPattern interface {
	Pattern
	IsNeg(m *Match) bool
}

// SignPattern matches to, or -to, depending on the sign from matched.
type SignPattern struct {
	common
	from     SignedPattern
	to       Pattern
	negTo    Pattern
	opposite bool
}

// SameSign matches to with the sign from matched: -to if from matched a
// negation, to otherwise.
func SameSign(from SignedPattern, to Pattern) *SignPattern {
	return &SignPattern{common: baseCommon(), from: from, to: to, negTo: NegOf(to)}
}

// OppositeSign matches to with the sign opposite to from's.
func OppositeSign(from SignedPattern, to Pattern) *SignPattern {
	p := SameSign(from, to)
	p.opposite = true
	return p
}

func (p *SignPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		if !admits(p, m, sub) {
			return
		}
		ptn := p.to
		if p.from.IsNeg(m) != p.opposite {
			ptn = p.negTo
		}
		for next := range ptn.FindMatches(ctx, m, sub) {
			if !yield(next.Bind(p, sub)) {
				return
			}
		}
	}
}

func (p *SignPattern) Key() Pattern { return p }

func (p *SignPattern) MinDepth() int { return p.to.MinDepth() }
