package ir

import (
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

// EncodeExpression encodes e with its decorators and name. Origins and
// labels are not part of the encoding.
func EncodeExpression(e *expr.Expression) Object {
	obj := Object{"type": String(e.Kind().String())}
	switch e.Kind() {
	case expr.KindInteger, expr.KindDecimal:
		obj["value"] = String(e.Operator().String())
	case expr.KindVariable:
		obj["value"] = String(e.Operator().VariableName())
	}
	if e.ChildCount() > 0 {
		obj["operands"] = encodeExpressions(e.Children())
	}
	if ds := e.Decorators(); len(ds) > 0 {
		names := make([]string, len(ds))
		for i, d := range ds {
			names[i] = d.String()
		}
		obj["decorators"] = Strings(names...)
	}
	if name := e.Name(); name != "" {
		obj["name"] = String(name)
	}
	return obj
}

func encodeExpressions(es []*expr.Expression) Array {
	arr := make(Array, len(es))
	for i, e := range es {
		arr[i] = EncodeExpression(e)
	}
	return arr
}

// EncodeTransformation encodes t and its whole tree of steps, tasks and
// alternatives. Empty lists and absent metadata are left out.
func EncodeTransformation(t *steps.Transformation) Object {
	obj := Object{
		"type":     String(t.Type.String()),
		"fromExpr": EncodeExpression(t.FromExpr),
		"toExpr":   EncodeExpression(t.ToExpr),
	}
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = string(tag)
		}
		obj["tags"] = Strings(tags...)
	}
	if mappings := t.PathMappings(); len(mappings) > 0 {
		obj["pathMappings"] = encodePathMappings(mappings)
	}
	if t.Explanation != nil {
		obj["explanation"] = EncodeMetadata(t.Explanation)
	}
	if t.Formula != nil {
		obj["formula"] = EncodeExpression(t.Formula)
	}
	if len(t.Skills) > 0 {
		skills := make(Array, len(t.Skills))
		for i, s := range t.Skills {
			skills[i] = EncodeMetadata(s)
		}
		obj["skills"] = skills
	}
	if len(t.Steps) > 0 {
		obj["steps"] = encodeSteps(t.Steps)
	}
	if len(t.Tasks) > 0 {
		tasks := make(Array, len(t.Tasks))
		for i, task := range t.Tasks {
			tasks[i] = encodeTask(task)
		}
		obj["tasks"] = tasks
	}
	if len(t.Alternatives) > 0 {
		alts := make(Array, len(t.Alternatives))
		for i, alt := range t.Alternatives {
			a := Object{"strategy": String(alt.Strategy), "steps": encodeSteps(alt.Steps)}
			if alt.Explanation != nil {
				a["explanation"] = EncodeMetadata(alt.Explanation)
			}
			alts[i] = a
		}
		obj["alternatives"] = alts
	}
	return obj
}

func encodeSteps(ts []*steps.Transformation) Array {
	arr := make(Array, len(ts))
	for i, t := range ts {
		arr[i] = EncodeTransformation(t)
	}
	return arr
}

func encodeTask(task *steps.Task) Object {
	obj := Object{
		"taskId":    String(task.ID),
		"startExpr": EncodeExpression(task.StartExpr),
	}
	if task.Explanation != nil {
		obj["explanation"] = EncodeMetadata(task.Explanation)
	}
	if len(task.Steps) > 0 {
		obj["steps"] = encodeSteps(task.Steps)
	}
	if len(task.DependsOn) > 0 {
		obj["dependsOn"] = Strings(task.DependsOn...)
	}
	return obj
}

// EncodeMetadata encodes an explanation or skill key with its parameters.
func EncodeMetadata(m *steps.Metadata) Object {
	obj := Object{"key": String(m.Key)}
	if len(m.Params) > 0 {
		obj["params"] = encodeExpressions(m.Params)
	}
	return obj
}

func encodePathMappings(mappings []expr.PathMapping) Array {
	arr := make(Array, len(mappings))
	for i, m := range mappings {
		arr[i] = Object{
			"type":      String(m.Type),
			"fromPaths": encodeScopedPaths(m.FromPaths),
			"toPaths":   encodeScopedPaths(m.ToPaths),
		}
	}
	return arr
}

func encodeScopedPaths(paths []expr.ScopedPath) Array {
	ss := make([]string, len(paths))
	for i, p := range paths {
		ss[i] = p.String()
	}
	return Strings(ss...)
}
