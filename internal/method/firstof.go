package method

import (
	"iter"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

// FirstOfOption is an option of FirstOf.
type FirstOfOption interface {
	try(ctx *engine.Context, sub *expr.Expression, found []*steps.Transformation) []*steps.Transformation
	minDepth() int
}

// FirstOfProducer returns the steps of the first option that applies.
// It can be used as a pipeline stage, where it is compulsory.
type FirstOfProducer struct {
	options []FirstOfOption
}

func FirstOf(options ...FirstOfOption) *FirstOfProducer {
	return &FirstOfProducer{options: options}
}

// FirstOfStage is FirstOf in a pipeline.
func FirstOfStage(options ...FirstOfOption) Stage { return FirstOf(options...) }

func (f *FirstOfProducer) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	var found []*steps.Transformation
	for _, o := range f.options {
		found = o.try(ctx, sub, found)
	}
	return found
}

func (f *FirstOfProducer) MinDepth() int {
	if len(f.options) == 0 {
		return 0
	}
	d := f.options[0].minDepth()
	for _, o := range f.options[1:] {
		d = min(d, o.minDepth())
	}
	return d
}

func (f *FirstOfProducer) run(r *pipelineRun) { (&applyStage{f}).run(r) }

func (f *FirstOfProducer) register(c *depthCompiler) { c.add(f, false, 0) }

type option struct{ p StepsProducer }

// Option is tried only when no earlier option applied.
func Option(p StepsProducer) FirstOfOption { return &option{p} }

func (o *option) try(ctx *engine.Context, sub *expr.Expression, found []*steps.Transformation) []*steps.Transformation {
	if found != nil {
		return found
	}
	return o.p.ProduceSteps(ctx, sub)
}

func (o *option) minDepth() int { return o.p.MinDepth() }

type shortOption struct{ p StepsProducer }

// ShortOption is always tried. It replaces the steps found so far when
// it reaches the same result.
func ShortOption(p StepsProducer) FirstOfOption { return &shortOption{p} }

func (o *shortOption) try(ctx *engine.Context, sub *expr.Expression, found []*steps.Transformation) []*steps.Transformation {
	current := o.p.ProduceSteps(ctx, sub)
	if found == nil {
		return current
	}
	if len(current) > 0 && len(found) > 0 && lastOf(found).ToExpr.Equal(lastOf(current).ToExpr) {
		return current
	}
	return found
}

func (o *shortOption) minDepth() int { return o.p.MinDepth() }

func lastOf(ss []*steps.Transformation) *steps.Transformation { return ss[len(ss)-1] }

type optionsFor[T any] struct {
	generate func(*expr.Expression) iter.Seq[T]
	option   func(T) StepsProducer
}

// OptionsFor generates one option per value generate yields for the
// expression, and tries them in order.
func OptionsFor[T any](generate func(*expr.Expression) iter.Seq[T], option func(T) StepsProducer) FirstOfOption {
	return &optionsFor[T]{generate: generate, option: option}
}

func (o *optionsFor[T]) try(ctx *engine.Context, sub *expr.Expression, found []*steps.Transformation) []*steps.Transformation {
	if found != nil {
		return found
	}
	for v := range o.generate(sub) {
		if ss := o.option(v).ProduceSteps(ctx, sub); ss != nil {
			return ss
		}
	}
	return nil
}

// The options depend on the expression, so nothing is known in advance.
func (o *optionsFor[T]) minDepth() int { return 0 }

// BranchCase pairs a setting value with the steps to run for it.
type BranchCase struct {
	Value    engine.SettingValue
	Producer StepsProducer
}

// Case is shorthand for a BranchCase.
func Case(value engine.SettingValue, p StepsProducer) BranchCase {
	return BranchCase{Value: value, Producer: p}
}

// BranchOnProducer runs the first case that matches the context's value
// of a setting and applies. Like FirstOf it is also a pipeline stage.
type BranchOnProducer struct {
	setting engine.Setting
	cases   []BranchCase
}

func BranchOn(setting engine.Setting, cases ...BranchCase) *BranchOnProducer {
	return &BranchOnProducer{setting: setting, cases: cases}
}

func (b *BranchOnProducer) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	value := ctx.Get(b.setting)
	for _, c := range b.cases {
		if c.Value != value {
			continue
		}
		if ss := c.Producer.ProduceSteps(ctx, sub); ss != nil {
			return ss
		}
	}
	return nil
}

func (b *BranchOnProducer) MinDepth() int {
	if len(b.cases) == 0 {
		return 0
	}
	d := b.cases[0].Producer.MinDepth()
	for _, c := range b.cases[1:] {
		d = min(d, c.Producer.MinDepth())
	}
	return d
}

func (b *BranchOnProducer) run(r *pipelineRun) { (&applyStage{b}).run(r) }

func (b *BranchOnProducer) register(c *depthCompiler) { c.add(b, false, 0) }
