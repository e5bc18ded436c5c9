package method

import (
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

// Explanation keys of the steps the executor inserts by itself.
var (
	ExplainExtractPartialExpression  = steps.Key("SolverEngineExplanation", "ExtractPartialExpression")
	ExplainRearrangeSum              = steps.Key("SolverEngineExplanation", "RearrangeSum")
	ExplainRearrangeProduct          = steps.Key("SolverEngineExplanation", "RearrangeProduct")
	ExplainInlinePartialSum          = steps.Key("SolverEngineExplanation", "InlinePartialSum")
	ExplainInlinePartialProduct      = steps.Key("SolverEngineExplanation", "InlinePartialProduct")
	ExplainSubstituteResultOfTaskSet = steps.Key("SolverEngineExplanation", "SubstituteResultOfTaskSet")
)

// MetadataMaker builds an explanation or a skill from the match of a plan
// or task set.
type MetadataMaker func(b *rule.Builder) *steps.Metadata

// Explain makes metadata with key, whose parameters are the expressions
// bound to params, moved.
func Explain(key steps.MetadataKey, params ...pattern.Provider) MetadataMaker {
	return func(b *rule.Builder) *steps.Metadata {
		exprs := make([]*expr.Expression, len(params))
		for i, p := range params {
			exprs[i] = b.Move(p)
		}
		return steps.NewMetadata(key, exprs...)
	}
}

func makeAll(makers []MetadataMaker, b *rule.Builder) []*steps.Metadata {
	if len(makers) == 0 {
		return nil
	}
	out := make([]*steps.Metadata, len(makers))
	for i, mk := range makers {
		out[i] = mk(b)
	}
	return out
}

// PlanSpec declares a plan. Pattern and ResultPattern default to
// pattern.Any.
type PlanSpec struct {
	Pattern       pattern.Pattern
	ResultPattern pattern.Pattern
	Explanation   MetadataMaker
	Skills        []MetadataMaker
	Steps         StepsProducer
}

func (s PlanSpec) withDefaults() PlanSpec {
	if s.Pattern == nil {
		s.Pattern = pattern.Any()
	}
	if s.ResultPattern == nil {
		s.ResultPattern = pattern.Any()
	}
	return s
}

// Plan runs its steps on the expressions that match its pattern, and
// gathers them into one transformation.
type Plan struct {
	spec PlanSpec
}

func NewPlan(spec PlanSpec) *Plan {
	return &Plan{spec: spec.withDefaults()}
}

// Run is memoised: a plan that failed on an expression in some position
// fails again without running.
func (p *Plan) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return engine.UnlessPreviouslyFailed(ctx, p, sub, func() *steps.Transformation { return p.run(ctx, sub) })
}

func (p *Plan) run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	m := pattern.First(ctx, p.spec.Pattern, sub)
	if m == nil {
		return nil
	}
	ss := p.spec.Steps.ProduceSteps(ctx, sub)
	if len(ss) == 0 {
		return nil
	}
	toExpr := lastOf(ss).ToExpr.WithOrigin(expr.Combined(sub))
	if !toExpr.IsUndefined() && pattern.First(ctx, p.spec.ResultPattern, toExpr) == nil {
		return nil
	}
	return planResult(ctx, sub, toExpr, ss, p.spec, m)
}

func planResult(ctx *engine.Context, sub, toExpr *expr.Expression, ss []*steps.Transformation, spec PlanSpec, m *pattern.Match) *steps.Transformation {
	b := rule.NewBuilder(ctx, sub, m)
	t := &steps.Transformation{
		Type:     steps.TypePlan,
		FromExpr: sub,
		ToExpr:   toExpr,
		Steps:    ss,
		Skills:   makeAll(spec.Skills, b),
	}
	if spec.Explanation != nil {
		t.Explanation = spec.Explanation(b)
	}
	return t
}

func (p *Plan) MinDepth() int { return max(p.spec.Pattern.MinDepth(), p.spec.Steps.MinDepth()) }

func (p *Plan) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return p.Run(ctx, sub)
}

func (p *Plan) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(p.TryExecute(ctx, sub))
}

// PartialExpressionPlan is a plan on some operands of a sum or product.
// The matched operands are first grouped into a partial sum or product,
// then the steps run on that group.
type PartialExpressionPlan struct {
	pattern *pattern.NaryPattern
	spec    PlanSpec
	regular *Plan
}

// NewPartialExpressionPlan builds a partial expression plan matching n.
// spec.Pattern and spec.ResultPattern are ignored.
func NewPartialExpressionPlan(n *pattern.NaryPattern, spec PlanSpec) *PartialExpressionPlan {
	spec.Pattern = n
	spec.ResultPattern = nil
	return &PartialExpressionPlan{pattern: n, spec: spec, regular: NewPlan(spec)}
}

func (p *PartialExpressionPlan) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	if sub.ChildCount() == p.pattern.OperandCount() {
		return p.regular.Run(ctx, sub)
	}
	for m := range p.pattern.FindMatches(ctx, pattern.Root, sub) {
		partial := p.pattern.Extract(m)
		grouped := p.pattern.Substitute(m, partial.Decorate(expr.PartialBracket))

		b := NewStepsBuilder(ctx, sub, false)
		b.AddStep(p.groupingStep(m, sub, grouped, partial))

		part := partialChild(b.Expression())
		if part == nil {
			continue
		}
		ss := p.spec.Steps.ProduceSteps(ctx, part)
		if ss == nil {
			continue
		}
		b.AddSteps(ss)
		return planResult(ctx, sub, b.Expression(), b.FinalSteps(), p.spec, m)
	}
	return nil
}

func (p *PartialExpressionPlan) groupingStep(m *pattern.Match, sub, grouped, partial *expr.Expression) *steps.Transformation {
	if indices := p.pattern.MatchedIndices(m); adjacent(indices) {
		return &steps.Transformation{
			Type:        steps.TypeRule,
			Tags:        []steps.Tag{steps.InvisibleChange},
			FromExpr:    sub,
			ToExpr:      grouped,
			Explanation: steps.NewMetadata(ExplainExtractPartialExpression),
		}
	}
	key := ExplainRearrangeSum
	if p.pattern.Kind() == expr.KindProduct {
		key = ExplainRearrangeProduct
	}
	return &steps.Transformation{
		Type:        steps.TypeRule,
		Tags:        []steps.Tag{steps.Rearrangement},
		FromExpr:    sub,
		ToExpr:      grouped,
		Explanation: steps.NewMetadata(key, partial),
	}
}

func adjacent(indices []int) bool {
	sorted := slices.Sorted(slices.Values(indices))
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

// partialChild finds the grouped operands. Their position may differ from
// the original indices.
func partialChild(e *expr.Expression) *expr.Expression {
	for _, c := range e.Children() {
		if d, ok := c.OuterBracket(); ok && d == expr.PartialBracket {
			return c
		}
	}
	return nil
}

func (p *PartialExpressionPlan) MinDepth() int { return p.regular.MinDepth() }

func (p *PartialExpressionPlan) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return p.Run(ctx, sub)
}

func (p *PartialExpressionPlan) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(p.TryExecute(ctx, sub))
}

type inlinePartialExpressions struct{}

// InlinePartialExpressions finds the first sum (or product) containing an
// unlabelled partial sum (or product) and flattens it. Pipelines run it
// after each stage.
func InlinePartialExpressions() Method { return &inlinePartialExpressions{} }

func (m *inlinePartialExpressions) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	switch {
	case sub.Is(expr.KindSum) && slices.ContainsFunc(sub.Children(), inlinableSum):
		return inlined(sub, inlinableSum, expr.Sum, ExplainInlinePartialSum)
	case sub.Is(expr.KindProduct) && slices.ContainsFunc(sub.Children(), inlinableProduct):
		return inlined(sub, inlinableProduct, expr.Product, ExplainInlinePartialProduct)
	}
	for _, c := range sub.Children() {
		if t := m.TryExecute(ctx, c); t != nil {
			return t
		}
	}
	return nil
}

func unlabelled(e *expr.Expression) bool {
	_, ok := e.Label()
	return !ok
}

func inlinableSum(e *expr.Expression) bool { return e.IsPartialSum() && unlabelled(e) }

func inlinableProduct(e *expr.Expression) bool { return e.IsPartialProduct() && unlabelled(e) }

func inlined(
	e *expr.Expression,
	inlinable func(*expr.Expression) bool,
	build func(...*expr.Expression) *expr.Expression,
	key steps.MetadataKey,
) *steps.Transformation {
	var flat []*expr.Expression
	for _, c := range e.Children() {
		if inlinable(c) {
			flat = append(flat, c.Children()...)
		} else {
			flat = append(flat, c)
		}
	}
	result := build(flat...)
	for _, d := range e.Decorators() {
		result = result.Decorate(d)
	}
	return &steps.Transformation{
		Type:        steps.TypeRule,
		Tags:        []steps.Tag{steps.InvisibleChange},
		FromExpr:    e,
		ToExpr:      result,
		Explanation: steps.NewMetadata(key),
	}
}

func (m *inlinePartialExpressions) MinDepth() int { return 1 }

func (m *inlinePartialExpressions) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(m.TryExecute(ctx, sub))
}
