package method

import (
	"fmt"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

// TasksFunc creates the tasks of a task set for one match. A nil result
// means the task set does not apply to that match.
type TasksFunc func(tb *TasksBuilder) []*steps.Task

// TasksBuilder creates the tasks of a task set. It embeds the Builder of
// the match, to build start expressions from the bound expressions.
type TasksBuilder struct {
	*rule.Builder
	tasks []*steps.Task
}

type taskOptions struct {
	dependsOn  []*steps.Task
	ctx        *engine.Context
	resultName string
}

// TaskOption configures a task.
type TaskOption func(*taskOptions)

// DependsOn records that the task uses the results of tasks.
func DependsOn(tasks ...*steps.Task) TaskOption {
	return func(o *taskOptions) { o.dependsOn = append(o.dependsOn, tasks...) }
}

// TaskContext runs the task's steps in ctx instead of the task set's.
func TaskContext(ctx *engine.Context) TaskOption {
	return func(o *taskOptions) { o.ctx = ctx }
}

// ResultName names the result of the task.
func ResultName(name string) TaskOption {
	return func(o *taskOptions) { o.resultName = name }
}

// Task adds a task that runs p on startExpr. It returns nil, adding
// nothing, when p does not apply. A nil p adds a task without steps.
func (tb *TasksBuilder) Task(startExpr *expr.Expression, explanation *steps.Metadata, p StepsProducer, opts ...TaskOption) *steps.Task {
	return tb.task(startExpr, explanation, p, false, opts)
}

// TaskWithOptionalSteps is Task, with no steps when p does not apply.
func (tb *TasksBuilder) TaskWithOptionalSteps(startExpr *expr.Expression, explanation *steps.Metadata, p StepsProducer, opts ...TaskOption) *steps.Task {
	return tb.task(startExpr, explanation, p, true, opts)
}

func (tb *TasksBuilder) task(startExpr *expr.Expression, explanation *steps.Metadata, p StepsProducer, optional bool, opts []TaskOption) *steps.Task {
	o := &taskOptions{ctx: tb.Context()}
	for _, opt := range opts {
		opt(o)
	}
	id := fmt.Sprintf("#%d", len(tb.tasks)+1)

	var ss []*steps.Transformation
	if p != nil {
		ss = p.ProduceSteps(o.ctx, startExpr.WithOrigin(expr.TaskRootOrigin(id)))
		if ss == nil && !optional {
			return nil
		}
	}
	if o.resultName != "" && len(ss) > 0 {
		last := lastOf(ss)
		ss = append(ss[:len(ss)-1:len(ss)-1], last.WithExprs(last.FromExpr, last.ToExpr.WithName(o.resultName)))
	}

	t := &steps.Task{
		ID:          id,
		StartExpr:   startExpr,
		Explanation: explanation,
		Steps:       ss,
	}
	for _, d := range o.dependsOn {
		t.DependsOn = append(t.DependsOn, d.ID)
	}
	tb.tasks = append(tb.tasks, t)
	return t
}

// AllTasks returns the tasks added so far, or nil if there are none.
func (tb *TasksBuilder) AllTasks() []*steps.Task {
	if len(tb.tasks) == 0 {
		return nil
	}
	return tb.tasks
}

// TaskSetSpec declares a task set. Pattern defaults to pattern.Any.
type TaskSetSpec struct {
	Pattern     pattern.Pattern
	Explanation MetadataMaker
	Skills      []MetadataMaker
	Tasks       TasksFunc
}

// TaskSet splits a problem into tasks. The result of the last task is the
// result of the set.
type TaskSet struct {
	spec TaskSetSpec
}

func NewTaskSet(spec TaskSetSpec) *TaskSet {
	if spec.Pattern == nil {
		spec.Pattern = pattern.Any()
	}
	return &TaskSet{spec: spec}
}

func (ts *TaskSet) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	for m := range ts.spec.Pattern.FindMatches(ctx, pattern.Root, sub) {
		tasks := ts.spec.Tasks(&TasksBuilder{Builder: rule.NewBuilder(ctx, sub, m)})
		if len(tasks) == 0 {
			continue
		}
		toExpr := tasks[len(tasks)-1].Result().WithOrigin(expr.Combined(sub))
		return taskSetResult(ctx, sub, toExpr, tasks, ts.spec, m)
	}
	return nil
}

func taskSetResult(ctx *engine.Context, sub, toExpr *expr.Expression, tasks []*steps.Task, spec TaskSetSpec, m *pattern.Match) *steps.Transformation {
	b := rule.NewBuilder(ctx, sub, m)
	t := &steps.Transformation{
		Type:     steps.TypeTaskSet,
		FromExpr: sub,
		ToExpr:   toExpr,
		Tasks:    tasks,
		Skills:   makeAll(spec.Skills, b),
	}
	if spec.Explanation != nil {
		t.Explanation = spec.Explanation(b)
	}
	return t
}

func (ts *TaskSet) MinDepth() int { return ts.spec.Pattern.MinDepth() }

func (ts *TaskSet) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return ts.Run(ctx, sub)
}

func (ts *TaskSet) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(ts.TryExecute(ctx, sub))
}

// PartialExpressionTaskSet is a task set on some operands of a sum or
// product. Its result replaces those operands, and a last task records
// the substitution.
type PartialExpressionTaskSet struct {
	pattern *pattern.NaryPattern
	spec    TaskSetSpec
	regular *TaskSet
}

// NewPartialExpressionTaskSet builds a partial expression task set
// matching n. spec.Pattern is ignored.
func NewPartialExpressionTaskSet(n *pattern.NaryPattern, spec TaskSetSpec) *PartialExpressionTaskSet {
	spec.Pattern = n
	return &PartialExpressionTaskSet{pattern: n, spec: spec, regular: NewTaskSet(spec)}
}

func (ts *PartialExpressionTaskSet) Run(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	if sub.ChildCount() == ts.pattern.OperandCount() {
		return ts.regular.Run(ctx, sub)
	}
	for m := range ts.pattern.FindMatches(ctx, pattern.Root, sub) {
		tasks := ts.spec.Tasks(&TasksBuilder{Builder: rule.NewBuilder(ctx, sub, m)})
		if len(tasks) == 0 {
			continue
		}
		result := tasks[len(tasks)-1].Result().WithOrigin(expr.Combined(ts.pattern.MatchedChildren(m)...))
		toExpr := ts.pattern.Substitute(m, result)
		tasks = append(tasks, &steps.Task{
			ID:          fmt.Sprintf("#%d", len(tasks)+1),
			StartExpr:   toExpr,
			Explanation: steps.NewMetadata(ExplainSubstituteResultOfTaskSet),
		})
		return taskSetResult(ctx, sub, toExpr, tasks, ts.spec, m)
	}
	return nil
}

func (ts *PartialExpressionTaskSet) MinDepth() int { return ts.pattern.MinDepth() }

func (ts *PartialExpressionTaskSet) TryExecute(ctx *engine.Context, sub *expr.Expression) *steps.Transformation {
	return ts.Run(ctx, sub)
}

func (ts *PartialExpressionTaskSet) ProduceSteps(ctx *engine.Context, sub *expr.Expression) []*steps.Transformation {
	return single(ts.TryExecute(ctx, sub))
}
