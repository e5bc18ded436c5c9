package method

import (
	"log/slog"
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

type status int

const (
	inProgress status = iota
	succeeded
	aborted
)

// StepsBuilder chains transformations starting from an expression. Each
// added step is substituted into the current expression, which then
// becomes the starting point of the next step.
type StepsBuilder struct {
	ctx      *engine.Context
	sub      *expr.Expression
	optional bool

	steps        []*steps.Transformation
	status       status
	alternatives []*alternative
}

type alternative struct {
	strategy *Strategy
	steps    []*steps.Transformation
}

// NewStepsBuilder starts a chain at sub. An optional builder's final
// steps are never nil.
func NewStepsBuilder(ctx *engine.Context, sub *expr.Expression, optional bool) *StepsBuilder {
	return &StepsBuilder{ctx: ctx, sub: sub, optional: optional}
}

func (b *StepsBuilder) Context() *engine.Context { return b.ctx }

// Expression is the starting expression with every step applied.
func (b *StepsBuilder) Expression() *expr.Expression { return b.sub }

func (b *StepsBuilder) InProgress() bool { return b.status == inProgress }

// Undefined reports whether the chain has reached an undefined value.
func (b *StepsBuilder) Undefined() bool { return b.sub.IsUndefined() }

func (b *StepsBuilder) copy() *StepsBuilder {
	return &StepsBuilder{
		ctx:    b.ctx,
		sub:    b.sub,
		steps:  slices.Clone(b.steps),
		status: b.status,
	}
}

func (b *StepsBuilder) clearLabels(space *expr.LabelSpace) {
	b.sub = b.sub.ClearLabels(space)
	for i, s := range b.steps {
		b.steps[i] = s.ClearLabels(space)
	}
}

// AddStep applies step to the current expression. A step whose result is
// undefined makes the whole expression undefined. When the result equals
// the starting point of an earlier step, the steps since that one are
// dropped.
func (b *StepsBuilder) AddStep(step *steps.Transformation) {
	var substitution *expr.Expression
	if step.ToExpr.IsUndefined() {
		substitution = step.ToExpr
	} else {
		substitution = b.sub.Substitute(step.FromExpr, step.ToExpr)
	}

	if substitution == step.ToExpr && !step.ToExpr.IsUndefined() {
		b.steps = append(b.steps, step)
	} else {
		b.steps = append(b.steps, step.WithExprs(b.sub, substitution))
	}

	loop := slices.IndexFunc(b.steps, func(s *steps.Transformation) bool { return s.FromExpr.Equal(substitution) })
	if loop >= 0 {
		b.ctx.Log(slog.LevelWarn, "circular steps detected", "expr", substitution.String())
		for _, s := range b.steps[loop:] {
			b.ctx.Log(slog.LevelInfo, "circular step",
				"explanation", string(s.ExplanationKey()),
				"from", s.FromExpr.String(),
				"to", s.ToExpr.String(),
			)
		}
		b.steps = b.steps[:loop]
	}

	b.sub = substitution.WithOrigin(b.sub.Origin())
}

// AddSteps adds each step in turn, unless the chain is finished.
func (b *StepsBuilder) AddSteps(ss []*steps.Transformation) {
	if !b.InProgress() {
		return
	}
	for _, s := range ss {
		b.AddStep(s)
	}
}

// AddAlternative records the current steps followed by ss as the result
// of strategy, leaving the chain itself unchanged. It reports whether an
// alternative was recorded: a chain that is finished, or that would have
// no steps at all, records nothing.
func (b *StepsBuilder) AddAlternative(strategy *Strategy, ss []*steps.Transformation) bool {
	if !b.InProgress() || (len(ss) == 0 && len(b.steps) == 0) {
		return false
	}
	alt := b.copy()
	alt.AddSteps(ss)
	b.alternatives = append(b.alternatives, &alternative{strategy: strategy, steps: alt.steps})
	return true
}

// Abort fails the chain. Later steps are ignored.
func (b *StepsBuilder) Abort() { b.status = aborted }

// Succeed finishes the chain successfully. Later steps are ignored.
func (b *StepsBuilder) Succeed() { b.status = succeeded }

// FinalSteps returns the chain, or nil when it failed or is empty. An
// optional builder returns an empty slice instead of nil.
func (b *StepsBuilder) FinalSteps() []*steps.Transformation {
	if b.status == aborted {
		if b.optional {
			return []*steps.Transformation{}
		}
		return nil
	}
	if len(b.steps) == 0 && !b.optional {
		return nil
	}
	if b.steps == nil {
		return []*steps.Transformation{}
	}
	return b.steps
}
