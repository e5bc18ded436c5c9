package method

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

// StepsProducer turns an expression into a chain of steps. A nil result
// means it does not apply; an empty, non-nil one that it applies without
// changing anything.
type StepsProducer interface {
	ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation

	// MinDepth is a lower bound on the depth of the expressions the
	// producer can apply to.
	MinDepth() int
}

// Method produces a single transformation. Its steps are that
// transformation alone.
type Method interface {
	StepsProducer
	TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation
}

// Runner is the part of a method that does the work. rule.Rule, Plan,
// TaskSet and the strategy family methods are Runners.
type Runner interface {
	Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation
	MinDepth() int
}

func single(t *steps.Transformation) []*steps.Transformation {
	if t == nil {
		return nil
	}
	return []*steps.Transformation{t}
}

// RunnerMethod is a named Runner. It logs its attempts at trace level and
// its successes at debug level, nested under the caller's records.
type RunnerMethod struct {
	name   string
	runner Runner
}

// Named makes a Method of r.
func Named(name string, r Runner) *RunnerMethod {
	return &RunnerMethod{name: name, runner: r}
}

func (m *RunnerMethod) Name() string { return m.name }

func (m *RunnerMethod) MinDepth() int { return m.runner.MinDepth() }

func (m *RunnerMethod) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	if sub.Depth() < m.runner.MinDepth() {
		return nil
	}
	ctx.Log(engine.LevelTrace, "trying method", "method", m.name, "expr", sub.String())
	start := time.Now()
	t := m.run(ctx, sub)
	if t != nil {
		ctx.Log(slog.LevelDebug, "method applied",
			"method", m.name,
			"expr", sub.String(),
			"result", t.ToExpr.String(),
			"duration", time.Since(start),
		)
	}
	return t
}

func (m *RunnerMethod) run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	defer ctx.Nest()()
	return m.runner.Run(ctx, sub)
}

func (m *RunnerMethod) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(m.TryExecute(ctx, sub))
}

func (m *RunnerMethod) String() string { return m.name }

// Lazy defers building a producer until it is first used, so producers
// can refer to each other.
func Lazy(build func() StepsProducer) *LazyProducer {
	return &LazyProducer{build: build}
}

// LazyProducer is the result of Lazy.
type LazyProducer struct {
	build    func() StepsProducer
	once     sync.Once
	producer StepsProducer
}

func (l *LazyProducer) get() StepsProducer {
	l.once.Do(func() { l.producer = l.build() })
	return l.producer
}

func (l *LazyProducer) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return l.get().ProduceSteps(ctx, sub)
}

func (l *LazyProducer) MinDepth() int { return l.get().MinDepth() }
