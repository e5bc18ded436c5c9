package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// RootID is the id of the top-level expression being solved. Task roots use
// "#1", "#2", ...
const RootID = "."

// Path locates a sub-expression: a root id followed by child indices.
// The zero Path is invalid; use RootPath or TaskPath.
type Path struct {
	root    string
	indices []int
}

// RootPath is the path of the solved expression itself.
func RootPath() Path { return Path{root: RootID} }

// TaskPath is the root path of the task with the given id ("#1").
func TaskPath(id string) Path { return Path{root: id} }

func (p Path) IsValid() bool { return p.root != "" }

func (p Path) Root() string { return p.root }

func (p Path) Indices() []int { return append([]int(nil), p.indices...) }

// Length is the number of child steps from the root.
func (p Path) Length() int { return len(p.indices) }

// Child extends the path by one index.
func (p Path) Child(index int) Path {
	indices := make([]int, len(p.indices)+1)
	copy(indices, p.indices)
	indices[len(p.indices)] = index
	return Path{root: p.root, indices: indices}
}

// Parent removes the last index. The parent of a root path is invalid.
func (p Path) Parent() Path {
	if len(p.indices) == 0 {
		return Path{}
	}
	return Path{root: p.root, indices: p.indices[:len(p.indices)-1]}
}

// Truncate keeps the first n indices.
func (p Path) Truncate(n int) Path {
	if n >= len(p.indices) {
		return p
	}
	return Path{root: p.root, indices: p.indices[:n]}
}

// HasAncestor reports whether other is a prefix of p (a path is its own ancestor).
func (p Path) HasAncestor(other Path) bool {
	if p.root != other.root || len(other.indices) > len(p.indices) {
		return false
	}
	for i, idx := range other.indices {
		if p.indices[i] != idx {
			return false
		}
	}
	return true
}

// RelativeTo re-roots p at base. ok is false when base is not an ancestor.
func (p Path) RelativeTo(base Path) (Path, bool) {
	if !p.HasAncestor(base) {
		return Path{}, false
	}
	return Path{root: RootID, indices: append([]int(nil), p.indices[len(base.indices):]...)}, true
}

// Shift replaces the prefix from by to. Paths not under from are returned unchanged.
func (p Path) Shift(from, to Path) Path {
	if !p.HasAncestor(from) {
		return p
	}
	indices := append(append([]int(nil), to.indices...), p.indices[len(from.indices):]...)
	return Path{root: to.root, indices: indices}
}

func (p Path) Equal(other Path) bool {
	if p.root != other.root || len(p.indices) != len(other.indices) {
		return false
	}
	for i := range p.indices {
		if p.indices[i] != other.indices[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	if !p.IsValid() {
		return "<invalid>"
	}
	var b strings.Builder
	b.WriteString(p.root)
	for _, idx := range p.indices {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// ParsePath parses "./0/1" or "#2/1".
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, "/")
	root := parts[0]
	if root != RootID && !isTaskID(root) {
		return Path{}, fmt.Errorf("parse path %q: invalid root %q", s, root)
	}
	p := Path{root: root}
	for _, part := range parts[1:] {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return Path{}, fmt.Errorf("parse path %q: invalid index %q", s, part)
		}
		p.indices = append(p.indices, idx)
	}
	return p, nil
}

func isTaskID(s string) bool {
	if len(s) < 2 || s[0] != '#' {
		return false
	}
	n, err := strconv.Atoi(s[1:])
	return err == nil && n > 0
}

// PathScope narrows a path to a facet of the node it designates.
type PathScope string

const (
	ScopeExpression    PathScope = ""
	ScopeOperator      PathScope = "op"
	ScopeDecorator     PathScope = "decorator"
	ScopeOuterOperator PathScope = "outerOp"
)

// ScopedPath is a path paired with a scope.
type ScopedPath struct {
	Path  Path
	Scope PathScope
}

func (sp ScopedPath) Equal(other ScopedPath) bool {
	return sp.Scope == other.Scope && sp.Path.Equal(other.Path)
}

func (sp ScopedPath) String() string {
	if sp.Scope == ScopeExpression {
		return sp.Path.String()
	}
	return sp.Path.String() + ":" + string(sp.Scope)
}

// ParsePathAndScope parses "./0/1:op". A missing suffix means ScopeExpression.
func ParsePathAndScope(s string) (ScopedPath, error) {
	pathPart, scopePart, found := strings.Cut(s, ":")
	p, err := ParsePath(pathPart)
	if err != nil {
		return ScopedPath{}, err
	}
	if !found {
		return ScopedPath{Path: p}, nil
	}
	switch scope := PathScope(scopePart); scope {
	case ScopeOperator, ScopeDecorator, ScopeOuterOperator:
		return ScopedPath{Path: p, Scope: scope}, nil
	default:
		return ScopedPath{}, fmt.Errorf("parse path %q: unknown scope %q", s, scopePart)
	}
}
