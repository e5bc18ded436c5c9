package method

import (
	"sync/atomic"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/steps"
)

// Stage is one element of a pipeline.
type Stage interface {
	run(r *pipelineRun)
	register(c *depthCompiler)
}

// Pipeline runs its stages in order on a StepsBuilder. It fails as soon
// as a compulsory stage fails.
type Pipeline struct {
	stages   []Stage
	optional bool

	// minDepth is 1 + the computed minimum depth, or 0 before computation.
	minDepth atomic.Int64
}

// Steps builds a pipeline that fails when a stage fails or when no stage
// produced a step.
func Steps(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// OptionalSteps builds a pipeline that always succeeds, with no steps if
// need be.
func OptionalSteps(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, optional: true}
}

// StepsWithMinDepth is Steps with a fixed minimum depth. Pipelines that
// reach themselves through their stages need it, since their depth cannot
// be computed.
func StepsWithMinDepth(minDepth int, stages ...Stage) *Pipeline {
	p := Steps(stages...)
	p.minDepth.Store(int64(minDepth) + 1)
	return p
}

func (p *Pipeline) MinDepth() int {
	if d := p.minDepth.Load(); d > 0 {
		return int(d - 1)
	}
	c := &depthCompiler{}
	for _, s := range p.stages {
		s.register(c)
	}
	d := c.result()
	p.minDepth.Store(int64(d) + 1)
	return d
}

func (p *Pipeline) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	r := &pipelineRun{ctx: ctx, b: NewStepsBuilder(ctx, sub, p.optional)}
	for _, s := range p.stages {
		if !r.b.InProgress() {
			break
		}
		s.run(r)
	}
	return r.b.FinalSteps()
}

type optionalDepth struct {
	producer StepsProducer
	offset   int
}

// depthCompiler computes the minimum depth of a pipeline. It is the
// depth required by the first compulsory stage or, when there is none,
// the smallest depth among the optional stages before it.
type depthCompiler struct {
	minDepth   int
	compulsory bool
	optional   []optionalDepth
}

func (c *depthCompiler) add(p StepsProducer, optional bool, offset int) {
	switch {
	case c.compulsory:
	case optional:
		c.optional = append(c.optional, optionalDepth{p, offset})
	default:
		c.compulsory = true
		c.minDepth = max(c.minDepth, p.MinDepth()+offset)
	}
}

func (c *depthCompiler) result() int {
	if c.compulsory || len(c.optional) == 0 {
		return c.minDepth
	}
	d := c.optional[0].producer.MinDepth() + c.optional[0].offset
	for _, o := range c.optional[1:] {
		d = min(d, o.producer.MinDepth()+o.offset)
	}
	return d
}

type pipelineRun struct {
	ctx *engine.Context
	b   *StepsBuilder
}

// inlinePartial tidies up after the steps of each stage.
var inlinePartial = InlinePartialExpressions()

func (r *pipelineRun) tidyUp() {
	for range r.ctx.MaxIterations() {
		step := inlinePartial.TryExecute(r.ctx, r.b.Expression())
		if step == nil {
			return
		}
		r.b.AddStep(step)
	}
}

func (r *pipelineRun) addOrAbort(ss []*steps.Transformation) {
	if ss == nil {
		r.b.Abort()
		return
	}
	r.b.AddSteps(ss)
	r.tidyUp()
}

type applyStage struct{ p StepsProducer }

// Apply runs p. The pipeline fails if p does not apply.
func Apply(p StepsProducer) Stage { return &applyStage{p} }

func (s *applyStage) run(r *pipelineRun) { r.addOrAbort(s.p.ProduceSteps(r.ctx, r.b.Expression())) }

func (s *applyStage) register(c *depthCompiler) { c.add(s.p, false, 0) }

type optionallyStage struct{ p StepsProducer }

// Optionally runs p, carrying on whether it applies or not.
func Optionally(p StepsProducer) Stage { return &optionallyStage{p} }

func (s *optionallyStage) run(r *pipelineRun) {
	if ss := s.p.ProduceSteps(r.ctx, r.b.Expression()); ss != nil {
		r.b.AddSteps(ss)
		r.tidyUp()
	}
}

func (s *optionallyStage) register(c *depthCompiler) { c.add(s.p, true, 0) }

type shortcutStage struct{ p StepsProducer }

// Shortcut runs p and, when it applies, ends the pipeline successfully.
func Shortcut(p StepsProducer) Stage { return &shortcutStage{p} }

func (s *shortcutStage) run(r *pipelineRun) {
	if ss := s.p.ProduceSteps(r.ctx, r.b.Expression()); ss != nil {
		r.b.AddSteps(ss)
		r.b.Succeed()
	}
}

func (s *shortcutStage) register(c *depthCompiler) { c.add(s.p, true, 0) }

type checkStage struct {
	cond func(ctx *engine.Context, e *expr.Expression) bool
}

// Check fails the pipeline unless cond holds for the current expression.
func Check(cond func(ctx *engine.Context, e *expr.Expression) bool) Stage {
	return &checkStage{cond}
}

func (s *checkStage) run(r *pipelineRun) {
	if !s.cond(r.ctx, r.b.Expression()) {
		r.b.Abort()
	}
}

func (s *checkStage) register(*depthCompiler) {}

type checkFormStage struct{ p pattern.Pattern }

// CheckForm fails the pipeline unless the current expression matches p.
func CheckForm(p pattern.Pattern) Stage { return &checkFormStage{p} }

func (s *checkFormStage) run(r *pipelineRun) {
	if pattern.First(r.ctx, s.p, r.b.Expression()) == nil {
		r.b.Abort()
	}
}

func (s *checkFormStage) register(c *depthCompiler) {
	if !c.compulsory {
		c.minDepth = max(c.minDepth, s.p.MinDepth())
	}
}

type applyToStage struct {
	p         StepsProducer
	extractor expr.Extractor
}

// ApplyTo runs p on the part of the current expression that extractor
// selects. The pipeline fails if there is no such part or p does not
// apply.
func ApplyTo(p StepsProducer, extractor expr.Extractor) Stage {
	return &applyToStage{p: p, extractor: extractor}
}

func (s *applyToStage) run(r *pipelineRun) {
	part := s.extractor.Extract(r.b.Expression())
	if part == nil {
		r.b.Abort()
		return
	}
	r.addOrAbort(s.p.ProduceSteps(r.ctx, part))
}

func (s *applyToStage) register(c *depthCompiler) { c.add(s.p, false, 0) }

type applyToLabelStage struct {
	p     StepsProducer
	label expr.Label
}

// ApplyToLabel runs p on the part of the current expression labelled
// with label in the context's label space.
func ApplyToLabel(p StepsProducer, label expr.Label) Stage {
	return &applyToLabelStage{p: p, label: label}
}

func (s *applyToLabelStage) run(r *pipelineRun) {
	space := r.ctx.LabelSpace()
	if space == nil {
		r.b.Abort()
		return
	}
	(&applyToStage{p: s.p, extractor: space.Instance(s.label)}).run(r)
}

func (s *applyToLabelStage) register(c *depthCompiler) { c.add(s.p, false, 0) }

type applyToChildrenStage struct {
	p          StepsProducer
	all        bool
	atLeastOne bool
}

// ApplyToChildren runs p on each child of the current expression. With
// all, every child must succeed; with atLeastOne, one must.
func ApplyToChildren(p StepsProducer, all, atLeastOne bool) Stage {
	return &applyToChildrenStage{p: p, all: all, atLeastOne: atLeastOne}
}

func (s *applyToChildrenStage) run(r *pipelineRun) {
	n := r.b.Expression().ChildCount()
	applied := false
	for i := 0; i < n && i < r.b.Expression().ChildCount(); i++ {
		ss := s.p.ProduceSteps(r.ctx, r.b.Expression().NthChild(i))
		switch {
		case ss != nil:
			applied = true
			r.b.AddSteps(ss)
		case s.all:
			r.b.Abort()
			return
		}
	}
	r.tidyUp()
	if s.atLeastOne && !applied {
		r.b.Abort()
	}
}

func (s *applyToChildrenStage) register(c *depthCompiler) { c.add(s.p, !s.atLeastOne, 1) }

type whilePossibleStage struct{ p StepsProducer }

// WhilePossible runs p again and again on the current expression until it
// no longer applies or the expression is undefined. It panics with
// *engine.TooManyIterationsError after Context.MaxIterations successes.
func WhilePossible(p StepsProducer) Stage { return &whilePossibleStage{p} }

func (s *whilePossibleStage) run(r *pipelineRun) {
	quota := engine.NewIterationQuota(r.ctx, "whilePossible")
	for {
		ss := s.p.ProduceSteps(r.ctx, r.b.Expression())
		if ss == nil {
			return
		}
		quota.Check()
		r.b.AddSteps(ss)
		r.tidyUp()
		if r.b.Undefined() {
			return
		}
	}
}

func (s *whilePossibleStage) register(c *depthCompiler) { c.add(s.p, true, 0) }

type deeplyStage struct {
	p         StepsProducer
	deepFirst bool
}

// Deeply runs p on the first subexpression it applies to. Subexpressions
// are visited in pre-order, or in post-order with deepFirst. Subtrees
// shallower than p's minimum depth are skipped.
func Deeply(p StepsProducer, deepFirst bool) Stage {
	return &deeplyStage{p: p, deepFirst: deepFirst}
}

type deeplyKey struct{ p StepsProducer }

func (s *deeplyStage) run(r *pipelineRun) {
	r.addOrAbort(s.visit(r.ctx, r.b.Expression()))
}

func (s *deeplyStage) visit(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return unlessPreviouslyFailed(ctx, deeplyKey{s.p}, sub, func() []*steps.Transformation {
		if sub.Depth() < s.p.MinDepth() {
			return nil
		}
		if !s.deepFirst {
			if ss := s.p.ProduceSteps(ctx, sub); ss != nil {
				return ss
			}
		}
		for _, c := range sub.Children() {
			if ss := s.visit(ctx, c); ss != nil {
				return ss
			}
		}
		if s.deepFirst {
			return s.p.ProduceSteps(ctx, sub)
		}
		return nil
	})
}

func (s *deeplyStage) register(c *depthCompiler) { c.add(s.p, false, 0) }

// unlessPreviouslyFailed is engine.UnlessPreviouslyFailed for step lists.
func unlessPreviouslyFailed(ctx *engine.Context, key any, sub *expr.Expression, f func() []*steps.Transformation) []*steps.Transformation {
	ss := engine.UnlessPreviouslyFailed(ctx, key, sub, func() *[]*steps.Transformation {
		if ss := f(); ss != nil {
			return &ss
		}
		return nil
	})
	if ss == nil {
		return nil
	}
	return *ss
}

type inContextStage struct {
	factory func(ctx *engine.Context, e *expr.Expression) *engine.Context
	p       StepsProducer
}

// InContext runs p with the context factory derives from the current one.
func InContext(factory func(ctx *engine.Context, e *expr.Expression) *engine.Context, p StepsProducer) Stage {
	return &inContextStage{factory: factory, p: p}
}

func (s *inContextStage) run(r *pipelineRun) {
	e := r.b.Expression()
	r.addOrAbort(s.p.ProduceSteps(s.factory(r.ctx, e), e))
}

func (s *inContextStage) register(c *depthCompiler) { c.add(s.p, false, 0) }

type withNewLabelsStage struct{ p StepsProducer }

// WithNewLabels runs p in a fresh label space, then removes the labels it
// left in the steps.
func WithNewLabels(p StepsProducer) Stage { return &withNewLabelsStage{p} }

func (s *withNewLabelsStage) run(r *pipelineRun) {
	space := expr.NewLabelSpace()
	(&inContextStage{
		factory: func(ctx *engine.Context, _ *expr.Expression) *engine.Context {
			return ctx.With(engine.WithLabelSpace(space))
		},
		p: s.p,
	}).run(r)
	r.b.clearLabels(space)
}

func (s *withNewLabelsStage) register(c *depthCompiler) { c.add(s.p, false, 0) }
