package rule

import (
	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/steps"
)

// BuildFunc turns a match into a result, or returns nil to try the next
// match.
type BuildFunc func(b *Builder) *steps.Transformation

type Rule struct {
	pattern pattern.Pattern
	build   BuildFunc
}

func New(p pattern.Pattern, build BuildFunc) *Rule {
	return &Rule{pattern: p, build: build}
}

// OnEquation is New on an equation with the given sides.
func OnEquation(lhs, rhs pattern.Pattern, build BuildFunc) *Rule {
	return New(pattern.EquationOf(lhs, rhs), build)
}

func (r *Rule) Pattern() pattern.Pattern { return r.pattern }

func (r *Rule) MinDepth() int { return r.pattern.MinDepth() }

// Run returns the first transformation built from a match of the rule's
// pattern on sub.
func (r *Rule) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	for m := range r.pattern.FindMatches(ctx, pattern.Root, sub) {
		if t := r.build(NewBuilder(ctx, sub, m)); t != nil {
			return t
		}
	}
	return nil
}

// Where narrows p to matches for which cond holds. cond reads the match
// through a Builder.
func Where(p pattern.Pattern, cond func(b *Builder) bool) *pattern.ConditionPattern {
	return pattern.Condition(p, pattern.MatchConditionFunc(
		func(ctx *engine.Context, m *pattern.Match, sub *expr.Expression) bool {
			return cond(NewBuilder(ctx, sub, m))
		}))
}
