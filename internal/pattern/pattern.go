package pattern

import (
	"iter"
	"math/big"
	"sync/atomic"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// ID identifies a pattern for the lifetime of the process.
type ID uint64

var lastID atomic.Uint64

func newID() ID { return ID(lastID.Add(1)) }

// Provider gives access to the expressions a match bound for something.
type Provider interface {
	// BoundExpr returns the most recent binding, or nil.
	BoundExpr(m *Match) *expr.Expression
	// BoundExprs returns every binding, oldest first.
	BoundExprs(m *Match) []*expr.Expression
}

// Pattern searches an expression for structural matches.
//
// FindMatches extends m with the bindings of each way the pattern matches
// sub. The sequence is lazy: ranging over it and breaking early does no
// further matching work. An empty sequence means no match.
type Pattern interface {
	Provider

	FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match]

	// Key is the pattern whose bindings BoundExpr reads. A pattern that
	// binds (a base pattern) is its own key; wrappers delegate.
	Key() Pattern

	// MinDepth is a lower bound on the depth of matched expressions.
	MinDepth() int

	ID() ID
}

// NumberProvider is a Provider whose binding has a decimal value.
type NumberProvider interface {
	Provider
	BoundNumber(m *Match) *apd.Decimal
}

// IntegerProvider is a NumberProvider whose binding is an integer.
type IntegerProvider interface {
	NumberProvider
	BoundInt(m *Match) *big.Int
}

// NumberPattern is a pattern matching integers or decimals.
type NumberPattern interface {
	Pattern
	NumberProvider
}

// IntegerPattern is a pattern matching integers.
type IntegerPattern interface {
	Pattern
	IntegerProvider
}

// common holds the identity shared by every pattern. key is the ID of
// Key(), under which bindings are looked up.
type common struct {
	id  ID
	key ID
}

func baseCommon() common {
	id := newID()
	return common{id: id, key: id}
}

func keyedOn(p Pattern) common {
	return common{id: newID(), key: p.Key().ID()}
}

func (c *common) ID() ID { return c.id }

func (c *common) BoundExpr(m *Match) *expr.Expression { return m.lookup(c.key) }

func (c *common) BoundExprs(m *Match) []*expr.Expression { return m.lookupAll(c.key) }

// admits applies the checks every base pattern makes before matching:
// sub must be deep enough and agree with an earlier binding of p.
func admits(p Pattern, m *Match, sub *expr.Expression) bool {
	if sub.Depth() < p.MinDepth() {
		return false
	}
	prev := m.lookup(p.ID())
	return prev == nil || prev.Equiv(sub)
}

func none(func(*Match) bool) {}

func only(m *Match) iter.Seq[*Match] {
	return func(yield func(*Match) bool) { yield(m) }
}

// Matches collects every match of p on e, starting from Root.
func Matches(ctx *engine.Context, p Pattern, e *expr.Expression) []*Match {
	var out []*Match
	for m := range p.FindMatches(ctx, Root, e) {
		out = append(out, m)
	}
	return out
}

// First returns the first match of p on e, or nil.
func First(ctx *engine.Context, p Pattern, e *expr.Expression) *Match {
	for m := range p.FindMatches(ctx, Root, e) {
		return m
	}
	return nil
}
