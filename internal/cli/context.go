package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/stepsolver/internal/catalogue"
	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/preset"
	"github.com/roach88/stepsolver/internal/store"
)

// SolveFlags are the per-solve context flags of solve and batch.
type SolveFlags struct {
	Variables []string
	Settings  map[string]string
}

func (o *RootOptions) registry() *method.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return catalogue.Default()
}

// newLogger logs to w: debug events with --verbose, warnings otherwise.
// JSON output gets a JSON handler.
func (o *RootOptions) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if o.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func (o *RootOptions) presets() (*preset.Set, error) {
	if o.PresetsFile == "" {
		return preset.Builtin(), nil
	}
	return preset.Load(o.PresetsFile)
}

// contextOptions turns the global preset and the solve flags into
// context options. The settings flags override the preset.
func (o *RootOptions) contextOptions(flags SolveFlags) ([]engine.Option, error) {
	var opts []engine.Option
	if o.Preset != "" {
		set, err := o.presets()
		if err != nil {
			return nil, err
		}
		p, ok := set.Lookup(o.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", o.Preset, set.Names())
		}
		opts = append(opts, engine.WithPreset(p))
	}
	if len(flags.Settings) > 0 {
		settings, err := engine.ParseSettings(flags.Settings)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithSettings(settings))
	}
	if len(flags.Variables) > 0 {
		opts = append(opts, engine.WithSolutionVariables(flags.Variables...))
	}
	return opts, nil
}

// solveContext builds the context of one solve. Without --vars the
// variables of the input are solved for.
func solveContext(base []engine.Option, flags SolveFlags, logger *slog.Logger, input *expr.Expression) *engine.Context {
	opts := append([]engine.Option{engine.WithLogger(logger)}, base...)
	if len(flags.Variables) == 0 {
		if vars := input.Variables(); len(vars) > 0 {
			opts = append(opts, engine.WithSolutionVariables(vars...))
		}
	}
	return engine.NewContext(opts...)
}

func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
