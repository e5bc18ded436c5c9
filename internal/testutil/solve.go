package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/steps"
	"github.com/roach88/stepsolver/internal/syntax"
)

// QuietContext is a solve context that discards its logs.
func QuietContext(opts ...engine.Option) *engine.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.NewContext(append([]engine.Option{engine.WithLogger(logger)}, opts...)...)
}

// Solve parses src and solves it with m in a quiet context. The test
// fails if the method does not apply.
func Solve(t testing.TB, m method.Method, src string, opts ...engine.Option) *steps.Transformation {
	t.Helper()
	input, err := syntax.Parse(src)
	require.NoError(t, err)
	result, err := method.Solve(QuietContext(opts...), m, input)
	require.NoError(t, err, "solving %s", src)
	return result
}
