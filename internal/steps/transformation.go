package steps

import (
	"fmt"
	"slices"

	"github.com/roach88/stepsolver/internal/expr"
)

// Type classifies a Transformation.
type Type int

const (
	// TypePlan is a chain of steps, each working on the result of the previous one.
	TypePlan Type = iota
	// TypeRule is an atomic rewrite.
	TypeRule
	// TypeTaskSet is a list of tasks, each working on its own expression.
	// The last task gives the result.
	TypeTaskSet
)

var typeNames = []string{"Plan", "Rule", "TaskSet"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Tag gives a consumer extra information about a Transformation.
type Tag string

const (
	// Rearrangement only reorders the operands of a commutative operator.
	Rearrangement Tag = "Rearrangement"
	// Cosmetic only changes the appearance, such as clarifying brackets.
	Cosmetic Tag = "Cosmetic"
	// Pedantic only makes the output more consistent, such as turning
	// x = 3 into a solution.
	Pedantic Tag = "Pedantic"
	// InvisibleChange makes no visible change and is squashed into the
	// next step.
	InvisibleChange Tag = "InvisibleChange"
)

type Transformation struct {
	Type Type
	Tags []Tag

	FromExpr *expr.Expression
	ToExpr   *expr.Expression

	Steps        []*Transformation
	Tasks        []*Task
	Alternatives []*Alternative

	Explanation *Metadata
	Formula     *expr.Expression
	Skills      []*Metadata
}

// HasTag reports whether t carries tag.
func (t *Transformation) HasTag(tag Tag) bool { return slices.Contains(t.Tags, tag) }

// WithExprs returns a copy of t rewritten from from to to.
func (t *Transformation) WithExprs(from, to *expr.Expression) *Transformation {
	cp := *t
	cp.FromExpr = from
	cp.ToExpr = to
	return &cp
}

// ClearLabels removes the labels of space from fromExpr and toExpr.
func (t *Transformation) ClearLabels(space *expr.LabelSpace) *Transformation {
	return t.WithExprs(t.FromExpr.ClearLabels(space), t.ToExpr.ClearLabels(space))
}

// PathMappings describes where each part of toExpr comes from, relative
// to the path of fromExpr.
func (t *Transformation) PathMappings() []expr.PathMapping {
	root, ok := t.FromExpr.Path()
	if !ok {
		root = expr.RootPath()
	}
	return t.ToExpr.MergedPathMappings(root)
}

// ExplanationKey returns the explanation key, or "" without an explanation.
func (t *Transformation) ExplanationKey() MetadataKey {
	if t.Explanation == nil {
		return ""
	}
	return t.Explanation.Key
}

// Task is a sub-unit of a task set. A later task may start from the
// result of an earlier one.
type Task struct {
	// ID is "#1", "#2", ... in creation order.
	ID          string
	StartExpr   *expr.Expression
	Explanation *Metadata
	Steps       []*Transformation
	DependsOn   []string
}

// Result is the last step's toExpr, or StartExpr for a task without steps.
func (t *Task) Result() *expr.Expression {
	if len(t.Steps) == 0 {
		return t.StartExpr
	}
	return t.Steps[len(t.Steps)-1].ToExpr
}

// Alternative is another way to get to a result, found by a strategy
// other than the one whose steps the transformation shows.
type Alternative struct {
	// Strategy is the "family.id" of the strategy.
	Strategy    string
	Explanation *Metadata
	Steps       []*Transformation
}
