package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/stepsolver/internal/catalogue"
	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/preset"
	"github.com/roach88/stepsolver/internal/steps"
	"github.com/roach88/stepsolver/internal/syntax"
)

// Harness runs scenarios against a registry.
type Harness struct {
	registry *method.Registry
	presets  *preset.Set
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithRegistry sets the registry cases are solved with. The default is
// the catalogue.
func WithRegistry(r *method.Registry) Option {
	return func(h *Harness) { h.registry = r }
}

// WithPresets sets the presets cases can name. The default is the
// built-in set.
func WithPresets(s *preset.Set) Option {
	return func(h *Harness) { h.presets = s }
}

// WithLogger sets the logger of the solve contexts. Solves are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

func New(opts ...Option) *Harness {
	h := &Harness{}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		h.registry = catalogue.Default()
	}
	if h.presets == nil {
		h.presets = preset.Builtin()
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Run runs every case of s.
func (h *Harness) Run(s *Scenario) *Result {
	result := &Result{Scenario: s.Name, Pass: true}
	for _, c := range s.Cases {
		cr := h.RunCase(c)
		if !cr.Pass {
			result.Pass = false
		}
		result.Cases = append(result.Cases, cr)
	}
	return result
}

// RunCase solves one case and checks its expectations. Problems with the
// case itself, such as an unknown preset, are reported as errors of the
// case.
func (h *Harness) RunCase(c Case) CaseResult {
	cr := CaseResult{Name: c.Name, Pass: true}

	input, err := syntax.Parse(c.Input)
	if err != nil {
		cr.addError("input: %v", err)
		return cr
	}
	ctx, err := h.context(c.Context)
	if err != nil {
		cr.addError("context: %v", err)
		return cr
	}

	t, err := h.registry.Run(ctx, c.Method, input)
	switch {
	case err != nil && engine.IsNoTransformation(err):
		if !c.Expect.NoTransformation {
			cr.addError("%s does not apply to %s", c.Method, c.Input)
		}
		return cr
	case err != nil:
		cr.addError("solve: %v", err)
		return cr
	}
	cr.Transformation = t

	if c.Expect.NoTransformation {
		cr.addError("expected no transformation, got %s", t.ToExpr)
		return cr
	}
	checkExpect(&cr, c.Expect, t)
	return cr
}

func checkExpect(cr *CaseResult, want Expect, t *steps.Transformation) {
	if want.ToExpr != "" {
		expected, err := syntax.Parse(want.ToExpr)
		if err != nil {
			cr.addError("expect.to_expr: %v", err)
		} else if got, exp := syntax.Format(t.ToExpr), syntax.Format(expected); got != exp {
			cr.addError("toExpr: expected %s, got %s", exp, got)
		}
	}
	if want.Steps != nil && len(t.Steps) != *want.Steps {
		cr.addError("steps: expected %d, got %d", *want.Steps, len(t.Steps))
	}
	if want.Explanation != "" && string(t.ExplanationKey()) != want.Explanation {
		cr.addError("explanation: expected %s, got %s", want.Explanation, t.ExplanationKey())
	}
}

func (h *Harness) context(cc CaseContext) (*engine.Context, error) {
	opts := []engine.Option{engine.WithLogger(h.logger)}
	if cc.Preset != "" {
		p, ok := h.presets.Lookup(cc.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", cc.Preset)
		}
		opts = append(opts, engine.WithPreset(p))
	}
	if len(cc.Settings) > 0 {
		settings, err := engine.ParseSettings(cc.Settings)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithSettings(settings))
	}
	if len(cc.SolutionVariables) > 0 {
		opts = append(opts, engine.WithSolutionVariables(cc.SolutionVariables...))
	}
	return engine.NewContext(opts...), nil
}
