package method

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/steps"
)

// Entry is a public method of a Registry.
type Entry struct {
	ID          string
	Description string
	// Hidden entries can be run by id but are left out of List.
	Hidden bool
	Method Method
}

// Registry holds the public methods by id. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Register adds an entry. Ids are unique.
func (r *Registry) Register(e Entry) error {
	if e.ID == "" {
		return errors.New("method id is empty")
	}
	if e.Method == nil {
		return fmt.Errorf("method %q has no implementation", e.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; ok {
		return fmt.Errorf("method %q already registered", e.ID)
	}
	r.entries[e.ID] = &e
	return nil
}

func (r *Registry) Lookup(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// List returns the entries that are not hidden, sorted by id.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// All returns every entry, hidden ones included, sorted by id.
func (r *Registry) All() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Run solves e with the method registered as id.
func (r *Registry) Run(ctx *engine.Context, id string, e *expr.Expression) (*steps.Transformation, error) {
	entry, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown method %q", id)
	}
	return Solve(ctx, entry.Method, e)
}

// Selection is the result of one method in SelectSuccessful.
type Selection struct {
	MethodID       string
	Transformation *steps.Transformation
}

// SelectSuccessful runs every listed method on e and returns those that
// apply, in List order. Failing methods are logged and skipped.
func (r *Registry) SelectSuccessful(ctx *engine.Context, e *expr.Expression) []Selection {
	var out []Selection
	for _, entry := range r.List() {
		t, err := Solve(ctx, entry.Method, e)
		switch {
		case err == nil:
			out = append(out, Selection{MethodID: entry.ID, Transformation: t})
		case !engine.IsNoTransformation(err):
			ctx.Log(slog.LevelWarn, "method failed", "method", entry.ID, "error", err)
		}
	}
	return out
}

// Solve runs m on e at the root of a solve. It turns the panics the
// engine uses for invariant violations into *engine.RuntimeError, and a
// method that does not apply into an ErrCodeNoTransformation error.
func Solve(ctx *engine.Context, m Method, e *expr.Expression) (t *steps.Transformation, err error) {
	name := methodName(m)
	input := e.String()
	if _, ok := e.Origin().(*expr.RootOrigin); !ok {
		e = e.WithOrigin(expr.NewRootOrigin())
	}

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		t = nil
		var tooMany *engine.TooManyIterationsError
		if cause, ok := rec.(error); ok && errors.As(cause, &tooMany) {
			err = engine.NewIterationError(name, input, tooMany)
		} else {
			err = engine.NewInvariantError(name, input, rec)
		}
		ctx.Log(slog.LevelError, "solve failed", "method", name, "expr", input, "error", err)
	}()

	start := time.Now()
	t = m.TryExecute(ctx, e)
	if t == nil {
		ctx.Log(slog.LevelDebug, "method does not apply", "method", name, "expr", input)
		return nil, engine.NewNoTransformationError(name, input)
	}
	ctx.Log(slog.LevelDebug, "solved",
		"method", name,
		"expr", input,
		"result", t.ToExpr.String(),
		"duration", time.Since(start),
	)
	return t, nil
}

func methodName(m Method) string {
	if n, ok := m.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}
