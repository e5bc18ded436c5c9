package engine

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/stepsolver/internal/expr"
)

// Precision bounds, in decimal places.
const (
	MinPrecision     = 2
	DefaultPrecision = 3
	MaxPrecision     = 10
)

// DefaultMaxIterations bounds while-possible loops and strategy rounds.
// Rule sets that terminate never come near it.
const DefaultMaxIterations = 100

// LevelTrace is below slog.LevelDebug, for per-attempt matcher events.
const LevelTrace = slog.LevelDebug - 4

// Context carries the settings of a solve. It is immutable: every With
// method returns a modified copy. Copies derived from one NewContext call
// share its log nesting depth. Each copy starts its own outcome cache,
// since an outcome only holds for the configuration it was computed in.
type Context struct {
	settings            Settings
	precision           int
	solutionVariables   []string
	preferredStrategies map[string]string
	selectionMode       StrategySelectionMode
	labelSpace          *expr.LabelSpace
	maxIterations       int
	logger              *slog.Logger

	session *session
	cache   *outcomeCache
}

type session struct {
	mu    sync.Mutex
	depth int
}

type outcomeCache struct {
	mu       sync.Mutex
	outcomes map[cacheKey]bool
}

func newOutcomeCache() *outcomeCache {
	return &outcomeCache{outcomes: make(map[cacheKey]bool)}
}

// cacheKey identifies an attempt of a plan on an expression in a position.
// The parent fields let position-sensitive patterns cache correctly:
// parentIndex is the parent's own index in the grandparent, which is what
// StickyOptionalNeg inspects.
type cacheKey struct {
	expr        string
	plan        any
	hasParent   bool
	parentKind  expr.Kind
	parentIndex int
}

// Option configures a Context.
type Option func(*Context)

// NewContext creates a Context with a fresh session.
func NewContext(opts ...Option) *Context {
	c := &Context{
		settings:      Settings{},
		precision:     DefaultPrecision,
		maxIterations: DefaultMaxIterations,
		session:       &session{},
		cache:         newOutcomeCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied. The copy shares the log
// nesting depth and has an empty outcome cache.
func (c *Context) With(opts ...Option) *Context {
	cp := *c
	cp.cache = newOutcomeCache()
	cp.settings = maps.Clone(c.settings)
	cp.preferredStrategies = maps.Clone(c.preferredStrategies)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// WithSettings adds settings, overriding earlier values.
func WithSettings(s Settings) Option {
	return func(c *Context) {
		if c.settings == nil {
			c.settings = Settings{}
		}
		maps.Copy(c.settings, s)
	}
}

// WithPreset adds the preset's settings.
func WithPreset(p Preset) Option { return WithSettings(p.Settings) }

// WithPrecision sets the number of decimal places for rounding.
// Values outside MinPrecision..MaxPrecision are clamped.
func WithPrecision(places int) Option {
	return func(c *Context) { c.precision = places }
}

func WithSolutionVariables(names ...string) Option {
	return func(c *Context) { c.solutionVariables = slices.Clone(names) }
}

// WithPreferredStrategy gives the strategy id of a family maximal priority.
func WithPreferredStrategy(family, id string) Option {
	return func(c *Context) {
		if c.preferredStrategies == nil {
			c.preferredStrategies = map[string]string{}
		}
		c.preferredStrategies[family] = id
	}
}

func WithStrategySelectionMode(m StrategySelectionMode) Option {
	return func(c *Context) { c.selectionMode = m }
}

func WithLabelSpace(s *expr.LabelSpace) Option {
	return func(c *Context) { c.labelSpace = s }
}

// WithMaxIterations bounds loops. Non-positive values restore the default.
func WithMaxIterations(n int) Option {
	return func(c *Context) {
		if n <= 0 {
			n = DefaultMaxIterations
		}
		c.maxIterations = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// Get returns the value of s, or its kind's default.
func (c *Context) Get(s Setting) SettingValue {
	if v, ok := c.settings[s]; ok {
		return v
	}
	return s.Kind().Default
}

// IsSet reports whether the boolean setting s is true.
func (c *Context) IsSet(s Setting) bool {
	if s.Kind() != BooleanKind {
		panic("engine: IsSet called on non-boolean setting " + string(s))
	}
	return c.Get(s) == True
}

// Settings returns a copy of the explicitly set values.
func (c *Context) Settings() Settings { return maps.Clone(c.settings) }

// Precision is the effective number of decimal places.
func (c *Context) Precision() int { return min(max(c.precision, MinPrecision), MaxPrecision) }

func (c *Context) SolutionVariables() []string { return slices.Clone(c.solutionVariables) }

// PreferredStrategy returns the preferred strategy id of a family.
func (c *Context) PreferredStrategy(family string) (string, bool) {
	id, ok := c.preferredStrategies[family]
	return id, ok
}

func (c *Context) StrategySelectionMode() StrategySelectionMode { return c.selectionMode }

// LabelSpace may be nil when the solve uses no labels.
func (c *Context) LabelSpace() *expr.LabelSpace { return c.labelSpace }

func (c *Context) MaxIterations() int { return c.maxIterations }

func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Nest increases the log nesting depth until the returned func is called.
func (c *Context) Nest() (unnest func()) {
	c.session.mu.Lock()
	c.session.depth++
	c.session.mu.Unlock()
	return func() {
		c.session.mu.Lock()
		c.session.depth--
		c.session.mu.Unlock()
	}
}

// Depth is the current log nesting depth.
func (c *Context) Depth() int {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	return c.session.depth
}

// Log emits a record with the nesting depth attached.
func (c *Context) Log(level slog.Level, msg string, args ...any) {
	l := c.Logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, msg, append([]any{"depth", c.Depth()}, args...)...)
}

// UnlessPreviouslyFailed runs build unless the same plan already failed on
// an Equal expression in the same position under this context. The first
// outcome for a key is remembered.
func UnlessPreviouslyFailed[T any](c *Context, plan any, sub *expr.Expression, build func() *T) *T {
	key := cacheKey{expr: sub.Key(), plan: plan}
	if parent := sub.Parent(); parent != nil {
		key.hasParent = true
		key.parentKind = parent.Kind()
		key.parentIndex = parent.ChildIndex()
	}

	c.cache.mu.Lock()
	outcome, seen := c.cache.outcomes[key]
	c.cache.mu.Unlock()

	if seen && !outcome {
		c.Log(LevelTrace, "cached failure", "expr", sub.String())
		return nil
	}
	result := build()
	if !seen {
		c.cache.mu.Lock()
		c.cache.outcomes[key] = result != nil
		c.cache.mu.Unlock()
	}
	return result
}
