package pattern

import (
	"slices"

	"github.com/roach88/stepsolver/internal/expr"
)

// Match is an immutable chain of bindings from patterns to expressions.
// Bind returns a new Match that shares its ancestors, so alternative
// matches branching from one prefix never see each other's bindings.
type Match struct {
	parent *Match
	key    ID
	value  *expr.Expression
}

// Root is the empty match every search starts from.
var Root = &Match{}

// Bind returns a match extending m with p bound to value.
func (m *Match) Bind(p Pattern, value *expr.Expression) *Match {
	return &Match{parent: m, key: p.ID(), value: value}
}

func (m *Match) lookup(key ID) *expr.Expression {
	for c := m; c.parent != nil; c = c.parent {
		if c.key == key {
			return c.value
		}
	}
	return nil
}

func (m *Match) lookupAll(key ID) []*expr.Expression {
	var out []*expr.Expression
	for c := m; c.parent != nil; c = c.parent {
		if c.key == key {
			out = append(out, c.value)
		}
	}
	slices.Reverse(out)
	return out
}

// LastBinding returns the latest expression bound under p's key, or nil.
func (m *Match) LastBinding(p Pattern) *expr.Expression { return m.lookup(p.Key().ID()) }

// BoundExpr is LastBinding.
func (m *Match) BoundExpr(p Pattern) *expr.Expression { return m.LastBinding(p) }

// BoundExprs returns every expression bound under p's key, oldest first.
func (m *Match) BoundExprs(p Pattern) []*expr.Expression { return m.lookupAll(p.Key().ID()) }

// IsBound reports whether p's key has a binding.
func (m *Match) IsBound(p Pattern) bool { return m.LastBinding(p) != nil }

// Len is the number of bindings in the chain.
func (m *Match) Len() int {
	n := 0
	for c := m; c.parent != nil; c = c.parent {
		n++
	}
	return n
}
