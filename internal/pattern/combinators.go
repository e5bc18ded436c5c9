package pattern

import (
	"iter"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// OneOfPattern matches when any option matches, trying options in order.
// It binds itself, so BoundExpr works whichever option matched.
type OneOfPattern struct {
	common
	options  []Pattern
	minDepth int
}

func OneOf(options ...Pattern) *OneOfPattern {
	depth := 0
	for i, o := range options {
		if i == 0 || o.MinDepth() < depth {
			depth = o.MinDepth()
		}
	}
	return &OneOfPattern{common: baseCommon(), options: options, minDepth: depth}
}

func (p *OneOfPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		if !admits(p, m, sub) {
			return
		}
		bound := m.Bind(p, sub)
		for _, o := range p.options {
			for next := range o.FindMatches(ctx, bound, sub) {
				if !yield(next) {
					return
				}
			}
		}
	}
}

func (p *OneOfPattern) Key() Pattern { return p }

func (p *OneOfPattern) MinDepth() int { return p.minDepth }

// AllOfPattern matches when every pattern matches the same expression.
type AllOfPattern struct {
	common
	patterns []Pattern
	minDepth int
}

// AllOf combines patterns conjunctively. Its bindings are read through
// the first pattern. It panics without patterns and returns the pattern
// itself when given one.
func AllOf(patterns ...Pattern) Pattern {
	switch len(patterns) {
	case 0:
		panic("pattern: AllOf needs at least one pattern")
	case 1:
		return patterns[0]
	}
	depth := 0
	for _, p := range patterns {
		depth = max(depth, p.MinDepth())
	}
	return &AllOfPattern{common: keyedOn(patterns[0]), patterns: patterns, minDepth: depth}
}

func (p *AllOfPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		p.chain(ctx, m, sub, p.patterns, yield)
	}
}

func (p *AllOfPattern) chain(ctx *engine.Context, m *Match, sub *expr.Expression, rest []Pattern, yield func(*Match) bool) bool {
	if len(rest) == 0 {
		return yield(m)
	}
	for next := range rest[0].FindMatches(ctx, m, sub) {
		if !p.chain(ctx, next, sub, rest[1:], yield) {
			return false
		}
	}
	return true
}

func (p *AllOfPattern) Key() Pattern { return p.patterns[0].Key() }

func (p *AllOfPattern) MinDepth() int { return p.minDepth }

// MatchCondition accepts or rejects a match of a pattern.
type MatchCondition interface {
	CheckMatch(ctx *engine.Context, m *Match, sub *expr.Expression) bool
}

// MatchConditionFunc adapts a function to MatchCondition.
type MatchConditionFunc func(ctx *engine.Context, m *Match, sub *expr.Expression) bool

func (f MatchConditionFunc) CheckMatch(ctx *engine.Context, m *Match, sub *expr.Expression) bool {
	return f(ctx, m, sub)
}

// ConditionPattern keeps the matches of a pattern that satisfy a condition.
// It binds nothing of its own.
type ConditionPattern struct {
	common
	inner Pattern
	cond  MatchCondition
}

func Condition(inner Pattern, cond MatchCondition) *ConditionPattern {
	return &ConditionPattern{common: keyedOn(inner), inner: inner, cond: cond}
}

func (p *ConditionPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		for next := range p.inner.FindMatches(ctx, m, sub) {
			if p.cond.CheckMatch(ctx, next, sub) && !yield(next) {
				return
			}
		}
	}
}

func (p *ConditionPattern) Key() Pattern { return p.inner.Key() }

func (p *ConditionPattern) MinDepth() int { return p.inner.MinDepth() }

// Inner is the filtered pattern.
func (p *ConditionPattern) Inner() Pattern { return p.inner }

// FindPattern matches inner anywhere inside an expression.
type FindPattern struct {
	common
	inner         Pattern
	deepFirst     bool
	stopWhenFound bool
}

// Find searches e and its descendants for matches of inner. By default
// matches at e come before matches in its children. With deepFirst the
// children come first. With stopWhenFound a match at e hides any match
// below it.
func Find(inner Pattern, deepFirst, stopWhenFound bool) *FindPattern {
	return &FindPattern{common: keyedOn(inner), inner: inner, deepFirst: deepFirst, stopWhenFound: stopWhenFound}
}

func (p *FindPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		p.search(ctx, m, sub, yield)
	}
}

func (p *FindPattern) search(ctx *engine.Context, m *Match, sub *expr.Expression, yield func(*Match) bool) bool {
	if sub.Depth() < p.inner.MinDepth() {
		return true
	}
	own := func() (bool, bool) {
		found := false
		for next := range p.inner.FindMatches(ctx, m, sub) {
			found = true
			if !yield(next) {
				return found, false
			}
		}
		return found, true
	}
	children := func() bool {
		for _, c := range sub.Children() {
			if !p.search(ctx, m, c, yield) {
				return false
			}
		}
		return true
	}
	switch {
	case p.deepFirst:
		if !children() {
			return false
		}
		_, ok := own()
		return ok
	case p.stopWhenFound:
		found, ok := own()
		if found || !ok {
			return ok
		}
		return children()
	default:
		if _, ok := own(); !ok {
			return false
		}
		return children()
	}
}

func (p *FindPattern) Key() Pattern { return p.inner.Key() }

func (p *FindPattern) MinDepth() int { return p.inner.MinDepth() }
