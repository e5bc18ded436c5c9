package pattern

import (
	"iter"
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// LeafPattern matches a whole expression that satisfies a predicate,
// without looking at its operands.
type LeafPattern struct {
	common
	accept   func(ctx *engine.Context, sub *expr.Expression) bool
	minDepth int
}

func leaf(minDepth int, accept func(*engine.Context, *expr.Expression) bool) *LeafPattern {
	return &LeafPattern{common: baseCommon(), accept: accept, minDepth: minDepth}
}

func (p *LeafPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	if !admits(p, m, sub) || !p.accept(ctx, sub) {
		return none
	}
	return only(m.Bind(p, sub))
}

func (p *LeafPattern) Key() Pattern { return p }

func (p *LeafPattern) MinDepth() int { return p.minDepth }

// Any matches every expression.
func Any() *LeafPattern {
	return leaf(0, func(*engine.Context, *expr.Expression) bool { return true })
}

// Fixed matches expressions Equiv to e.
func Fixed(e *expr.Expression) *LeafPattern {
	return leaf(e.Depth(), func(_ *engine.Context, sub *expr.Expression) bool { return sub.Equiv(e) })
}

// Constant matches expressions without variables.
func Constant() *LeafPattern {
	return leaf(0, func(_ *engine.Context, sub *expr.Expression) bool { return sub.IsConstant() })
}

// VariableExpression matches expressions with at least one variable.
func VariableExpression() *LeafPattern {
	return leaf(0, func(_ *engine.Context, sub *expr.Expression) bool { return !sub.IsConstant() })
}

// ConstantInSolutionVariable matches expressions that do not depend on
// the context's solution variables.
func ConstantInSolutionVariable() *LeafPattern {
	return leaf(0, func(ctx *engine.Context, sub *expr.Expression) bool {
		return sub.IsConstantIn(ctx.SolutionVariables())
	})
}

// PureCondition matches expressions accepted by cond.
func PureCondition(cond func(ctx *engine.Context, sub *expr.Expression) bool) *LeafPattern {
	return leaf(0, cond)
}

// InSolutionVariables narrows p to expressions whose variables are
// exactly the context's solution variables.
func InSolutionVariables(p Pattern) *ConditionPattern {
	return Condition(p, MatchConditionFunc(func(ctx *engine.Context, _ *Match, sub *expr.Expression) bool {
		want := ctx.SolutionVariables()
		got := sub.Variables()
		if len(got) != len(want) {
			return false
		}
		for _, v := range want {
			if !slices.Contains(got, v) {
				return false
			}
		}
		return true
	}))
}
