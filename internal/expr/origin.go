package expr

// Origin records where an expression came from. It derives the origins of
// the expression's children and computes the path mappings that describe
// the expression relative to its input.
type Origin interface {
	// Path is the location of the expression in the tree being solved, when known.
	Path() (Path, bool)

	childOrigin(e *Expression, index int) *Expression
	childrenOrigin(e *Expression) []*Expression
	pathMappings(root Path, children []*Expression) []PathMapping
	fromPaths(children []*Expression) []Path
}

// noPath is embedded by origins that carry no location of their own.
type noPath struct{}

func (noPath) Path() (Path, bool) { return Path{}, false }

func (noPath) fromPaths([]*Expression) []Path { return nil }

func allChildren(o Origin, e *Expression) []*Expression {
	out := make([]*Expression, len(e.operands))
	for i := range e.operands {
		out[i] = o.childOrigin(e, i)
	}
	return out
}

func scoped(paths []Path, scope PathScope) []ScopedPath {
	out := make([]ScopedPath, len(paths))
	for i, p := range paths {
		out[i] = ScopedPath{Path: p, Scope: scope}
	}
	return out
}

func sourcesOf(from []*Expression, scope PathScope) []ScopedPath {
	var out []ScopedPath
	for _, f := range from {
		out = append(out, scoped(f.meta.origin.fromPaths(f.Children()), scope)...)
	}
	return out
}

func introduceAt(root Path) []PathMapping {
	return []PathMapping{{Type: MappingIntroduce, ToPaths: []ScopedPath{{Path: root}}}}
}

func childrenMappings(root Path, children []*Expression) []PathMapping {
	var out []PathMapping
	for i, c := range children {
		out = append(out, c.PathMappings(root.Child(i))...)
	}
	return out
}

// RootOrigin marks the root of a solve or of a task.
type RootOrigin struct{ path Path }

func NewRootOrigin() *RootOrigin { return &RootOrigin{path: RootPath()} }

// TaskRootOrigin is the origin of the start expression of task id ("#1").
func TaskRootOrigin(id string) *RootOrigin { return &RootOrigin{path: TaskPath(id)} }

func (o *RootOrigin) Path() (Path, bool) { return o.path, true }

func (o *RootOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(&ChildOrigin{Parent: e, Index: index})
}

func (o *RootOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *RootOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	return []PathMapping{{
		FromPaths: []ScopedPath{{Path: o.path}},
		Type:      MappingShift,
		ToPaths:   []ScopedPath{{Path: root}},
	}}
}

func (o *RootOrigin) fromPaths([]*Expression) []Path { return []Path{o.path} }

// ChildOrigin is the origin of the index-th child of Parent.
type ChildOrigin struct {
	Parent *Expression
	Index  int
}

func (o *ChildOrigin) Path() (Path, bool) {
	p, ok := o.Parent.meta.origin.Path()
	if !ok {
		return Path{}, false
	}
	return p.Child(o.Index), true
}

func (o *ChildOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(&ChildOrigin{Parent: e, Index: index})
}

func (o *ChildOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *ChildOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	parent := o.Parent.PathMappings(root)
	out := make([]PathMapping, len(parent))
	for i, m := range parent {
		from := make([]ScopedPath, len(m.FromPaths))
		for j, sp := range m.FromPaths {
			from[j] = ScopedPath{Path: sp.Path.Child(o.Index), Scope: sp.Scope}
		}
		out[i] = PathMapping{FromPaths: from, Type: m.Type, ToPaths: m.ToPaths}
	}
	return out
}

func (o *ChildOrigin) fromPaths([]*Expression) []Path {
	if p, ok := o.Path(); ok {
		return []Path{p}
	}
	return nil
}

// SameOrigin reports whether a and b designate the same location. Roots
// compare by path, children by index and parent origin, anything else by
// identity.
func SameOrigin(a, b Origin) bool {
	switch a := a.(type) {
	case *RootOrigin:
		b, ok := b.(*RootOrigin)
		return ok && (a == b || a.path.Equal(b.path))
	case *ChildOrigin:
		b, ok := b.(*ChildOrigin)
		if !ok {
			return false
		}
		return a == b || (a.Index == b.Index &&
			(a.Parent == b.Parent || SameOrigin(a.Parent.meta.origin, b.Parent.meta.origin)))
	}
	return a == b
}

type freshOrigin struct{ noPath }

func (o freshOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(Fresh)
}

func (o freshOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (freshOrigin) pathMappings(root Path, _ []*Expression) []PathMapping { return introduceAt(root) }

type builtOrigin struct{ noPath }

func (builtOrigin) childOrigin(e *Expression, index int) *Expression { return e.operands[index] }

func (builtOrigin) childrenOrigin(e *Expression) []*Expression { return e.operands }

func (builtOrigin) pathMappings(root Path, children []*Expression) []PathMapping {
	if len(children) == 0 {
		return introduceAt(root)
	}
	return childrenMappings(root, children)
}

func (builtOrigin) fromPaths(children []*Expression) []Path {
	var out []Path
	for _, c := range children {
		out = append(out, c.meta.origin.fromPaths(c.Children())...)
	}
	return out
}

type unknownOrigin struct{ noPath }

func (o unknownOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(Unknown)
}

func (o unknownOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (unknownOrigin) pathMappings(Path, []*Expression) []PathMapping { return nil }

var (
	// Fresh marks an expression introduced from nothing.
	Fresh Origin = freshOrigin{}
	// Built is the origin of expressions assembled from operands; mappings
	// come from the operands themselves.
	Built Origin = builtOrigin{}
	// Unknown produces no mappings.
	Unknown Origin = unknownOrigin{}
)

// MoveOrigin is an expression moved unchanged from From.
type MoveOrigin struct {
	noPath
	From *Expression
}

func Moved(from *Expression) *MoveOrigin { return &MoveOrigin{From: from} }

func (o *MoveOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(Moved(o.From.NthChild(index)))
}

func (o *MoveOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *MoveOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	from, ok := o.From.Path()
	if !ok {
		return introduceAt(root)
	}
	return []PathMapping{{
		FromPaths: []ScopedPath{{Path: from}},
		Type:      MappingMove,
		ToPaths:   []ScopedPath{{Path: root}},
	}}
}

// MoveUnaryOperatorOrigin moves the operator of a unary expression while
// the operands keep their own origins.
type MoveUnaryOperatorOrigin struct {
	noPath
	Operator Origin
}

func MovedUnaryOperator(operator Origin) *MoveUnaryOperatorOrigin {
	return &MoveUnaryOperatorOrigin{Operator: operator}
}

func (o *MoveUnaryOperatorOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index]
}

func (o *MoveUnaryOperatorOrigin) childrenOrigin(e *Expression) []*Expression { return e.operands }

func (o *MoveUnaryOperatorOrigin) pathMappings(root Path, children []*Expression) []PathMapping {
	rest := childrenMappings(root, children)
	from, ok := o.Operator.Path()
	if !ok {
		return rest
	}
	return append([]PathMapping{{
		FromPaths: []ScopedPath{{Path: from, Scope: ScopeOperator}},
		Type:      MappingMove,
		ToPaths:   []ScopedPath{{Path: root, Scope: ScopeOperator}},
	}}, rest...)
}

// IntroduceOrigin is an expression introduced because of From.
type IntroduceOrigin struct {
	noPath
	From []*Expression
}

func Introduced(from ...*Expression) *IntroduceOrigin { return &IntroduceOrigin{From: from} }

func (o *IntroduceOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(o)
}

func (o *IntroduceOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *IntroduceOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	return []PathMapping{{
		FromPaths: sourcesOf(o.From, ScopeExpression),
		Type:      MappingIntroduce,
		ToPaths:   []ScopedPath{{Path: root}},
	}}
}

// CombineOrigin is an expression computed from From.
type CombineOrigin struct {
	noPath
	From []*Expression
}

func Combined(from ...*Expression) *CombineOrigin { return &CombineOrigin{From: from} }

func (o *CombineOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(Unknown)
}

func (o *CombineOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *CombineOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	var from []ScopedPath
	for i, f := range o.From {
		from = append(from, scoped(f.meta.origin.fromPaths(f.Children()), ScopeExpression)...)
		if p, ok := f.Path(); ok && i > 0 {
			from = append(from, ScopedPath{Path: p, Scope: ScopeOuterOperator})
		}
	}
	typ := MappingCombine
	switch len(o.From) {
	case 0:
		typ = MappingIntroduce
	case 1:
		typ = MappingTransform
	}
	return []PathMapping{{FromPaths: from, Type: typ, ToPaths: []ScopedPath{{Path: root}}}}
}

// FactorOrigin is an expression factored out of From.
type FactorOrigin struct {
	noPath
	From  []*Expression
	Scope PathScope
}

func Factored(scope PathScope, from ...*Expression) *FactorOrigin {
	return &FactorOrigin{From: from, Scope: scope}
}

func (o *FactorOrigin) childOrigin(e *Expression, index int) *Expression {
	from := make([]*Expression, len(o.From))
	for i, f := range o.From {
		from[i] = f.NthChild(index)
	}
	return e.operands[index].WithOrigin(Factored(ScopeExpression, from...))
}

func (o *FactorOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *FactorOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	return []PathMapping{{
		FromPaths: sourcesOf(o.From, o.Scope),
		Type:      MappingFactor,
		ToPaths:   []ScopedPath{{Path: root, Scope: o.Scope}},
	}}
}

// DistributeOrigin is an expression distributed from From.
type DistributeOrigin struct {
	noPath
	From []*Expression
}

func Distributed(from ...*Expression) *DistributeOrigin { return &DistributeOrigin{From: from} }

func (o *DistributeOrigin) childOrigin(e *Expression, index int) *Expression {
	from := make([]*Expression, len(o.From))
	for i, f := range o.From {
		from[i] = f.NthChild(index)
	}
	return e.operands[index].WithOrigin(Distributed(from...))
}

func (o *DistributeOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *DistributeOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	return []PathMapping{{
		FromPaths: sourcesOf(o.From, ScopeExpression),
		Type:      MappingDistribute,
		ToPaths:   []ScopedPath{{Path: root}},
	}}
}

// CancelPart is a sub-expression that disappears in a cancellation.
type CancelPart struct {
	Expr  *Expression
	Scope PathScope
}

// CancelOrigin wraps Origin and records Parts as cancelled.
type CancelOrigin struct {
	Origin Origin
	Parts  []CancelPart
}

func Cancelled(origin Origin, parts ...CancelPart) *CancelOrigin {
	return &CancelOrigin{Origin: origin, Parts: parts}
}

func (o *CancelOrigin) Path() (Path, bool) { return o.Origin.Path() }

func (o *CancelOrigin) childOrigin(e *Expression, index int) *Expression {
	return o.Origin.childOrigin(e, index)
}

func (o *CancelOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *CancelOrigin) pathMappings(root Path, children []*Expression) []PathMapping {
	var cancelled []ScopedPath
	for _, part := range o.Parts {
		if p, ok := part.Expr.Path(); ok {
			cancelled = append(cancelled, ScopedPath{Path: p, Scope: part.Scope})
		}
	}
	return append(o.Origin.pathMappings(root, children),
		PathMapping{FromPaths: cancelled, Type: MappingCancel})
}

func (o *CancelOrigin) fromPaths(children []*Expression) []Path {
	if p, ok := o.Path(); ok {
		return []Path{p}
	}
	return nil
}

// SubstitutionOrigin is an expression substituted for From.
type SubstitutionOrigin struct {
	noPath
	From []*Expression
}

func Substituted(from ...*Expression) *SubstitutionOrigin { return &SubstitutionOrigin{From: from} }

func (o *SubstitutionOrigin) childOrigin(e *Expression, index int) *Expression {
	return e.operands[index].WithOrigin(o)
}

func (o *SubstitutionOrigin) childrenOrigin(e *Expression) []*Expression { return allChildren(o, e) }

func (o *SubstitutionOrigin) pathMappings(root Path, _ []*Expression) []PathMapping {
	return []PathMapping{{
		FromPaths: sourcesOf(o.From, ScopeExpression),
		Type:      MappingSubstitute,
		ToPaths:   []ScopedPath{{Path: root}},
	}}
}
