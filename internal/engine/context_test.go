package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/expr"
)

func TestContext_Settings(t *testing.T) {
	c := NewContext()
	assert.False(t, c.IsSet(PreferDecimals))
	assert.Equal(t, BalancingBasic, c.Get(BalancingMode))

	c2 := c.With(WithSettings(Settings{PreferDecimals: True, BalancingMode: BalancingNextTo}))
	assert.True(t, c2.IsSet(PreferDecimals))
	assert.Equal(t, BalancingNextTo, c2.Get(BalancingMode))
	assert.False(t, c.IsSet(PreferDecimals), "With must not modify the original")

	assert.Panics(t, func() { c.IsSet(BalancingMode) })
}

func TestContext_Preset(t *testing.T) {
	p := Preset{Name: "GMFriendly", Settings: Settings{MoveTermsOneByOne: True}}
	c := NewContext(WithPreset(p), WithSettings(Settings{PreferDecimals: True}))

	assert.True(t, c.IsSet(MoveTermsOneByOne))
	assert.True(t, c.IsSet(PreferDecimals))
	assert.Len(t, c.Settings(), 2)
}

func TestContext_Precision(t *testing.T) {
	tests := []struct {
		set  int
		want int
	}{
		{1, MinPrecision},
		{5, 5},
		{42, MaxPrecision},
	}
	assert.Equal(t, DefaultPrecision, NewContext().Precision())
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewContext(WithPrecision(tt.set)).Precision())
	}
}

func TestContext_Options(t *testing.T) {
	space := expr.NewLabelSpace()
	c := NewContext(
		WithSolutionVariables("x", "y"),
		WithPreferredStrategy("linear", "balance"),
		WithStrategySelectionMode(SelectFirst),
		WithLabelSpace(space),
		WithMaxIterations(7),
	)

	assert.Equal(t, []string{"x", "y"}, c.SolutionVariables())
	id, ok := c.PreferredStrategy("linear")
	require.True(t, ok)
	assert.Equal(t, "balance", id)
	_, ok = c.PreferredStrategy("other")
	assert.False(t, ok)
	assert.Equal(t, SelectFirst, c.StrategySelectionMode())
	assert.Same(t, space, c.LabelSpace())
	assert.Equal(t, 7, c.MaxIterations())
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(map[string]string{"BalancingMode": "advanced", "PreferDecimals": "true"})
	require.NoError(t, err)
	assert.Equal(t, BalancingAdvanced, s[BalancingMode])

	_, err = ParseSettings(map[string]string{"NoSuchSetting": "true"})
	var invalid *InvalidSettingError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, `unknown setting "NoSuchSetting"`, err.Error())

	_, err = ParseSettings(map[string]string{"BalancingMode": "sideways"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "sideways", invalid.Value)
}

func TestParseStrategySelectionMode(t *testing.T) {
	for _, m := range []StrategySelectionMode{SelectAll, SelectHighestPriority, SelectFirst} {
		parsed, err := ParseStrategySelectionMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseStrategySelectionMode("best")
	assert.Error(t, err)
}

func TestUnlessPreviouslyFailed(t *testing.T) {
	c := NewContext()
	plan := new(int)
	sub := expr.Sum(expr.Int(1), expr.Var("x"))
	calls := 0
	fail := func() *string {
		calls++
		return nil
	}

	assert.Nil(t, UnlessPreviouslyFailed(c, plan, sub, fail))
	assert.Nil(t, UnlessPreviouslyFailed(c, plan, expr.Sum(expr.Int(1), expr.Var("x")), fail))
	assert.Equal(t, 1, calls, "second attempt on an equal expression should hit the cache")

	derived := c.With(WithPrecision(5))
	assert.Nil(t, UnlessPreviouslyFailed(derived, plan, sub, fail))
	assert.Equal(t, 2, calls, "a derived context has its own outcomes")
	assert.Nil(t, UnlessPreviouslyFailed(derived, plan, sub, fail))
	assert.Equal(t, 2, calls)

	assert.Nil(t, UnlessPreviouslyFailed(NewContext(), plan, sub, fail))
	assert.Equal(t, 3, calls, "a new context has its own outcomes")

	result := "ok"
	succeed := func() *string {
		calls++
		return &result
	}
	other := new(int)
	assert.Equal(t, &result, UnlessPreviouslyFailed(c, other, sub, succeed))
	assert.Equal(t, &result, UnlessPreviouslyFailed(c, other, sub, succeed))
	assert.Equal(t, 5, calls, "successes are recomputed")
}

func TestUnlessPreviouslyFailed_Position(t *testing.T) {
	c := NewContext()
	plan := new(int)
	root := expr.Sum(expr.Int(1), expr.Product(expr.Int(2), expr.Int(3))).WithOrigin(expr.NewRootOrigin())
	calls := 0
	fail := func() *string {
		calls++
		return nil
	}

	UnlessPreviouslyFailed(c, plan, root.SecondChild(), fail)
	UnlessPreviouslyFailed(c, plan, expr.Product(expr.Int(2), expr.Int(3)), fail)
	assert.Equal(t, 2, calls, "a detached expression is a different position")
}

func TestUnlessPreviouslyFailed_ParentPosition(t *testing.T) {
	c := NewContext()
	plan := new(int)
	root := expr.Sum(expr.Neg(expr.Int(1)), expr.Neg(expr.Int(1))).WithOrigin(expr.NewRootOrigin())
	calls := 0
	fail := func() *string {
		calls++
		return nil
	}

	first := root.FirstChild().FirstChild()
	second := root.SecondChild().FirstChild()
	require.Equal(t, first.ChildIndex(), second.ChildIndex())

	UnlessPreviouslyFailed(c, plan, first, fail)
	UnlessPreviouslyFailed(c, plan, second, fail)
	assert.Equal(t, 2, calls, "operands of different minus signs are different positions")

	UnlessPreviouslyFailed(c, plan, root.SecondChild().FirstChild(), fail)
	assert.Equal(t, 2, calls)
}

func TestWith_SharesLogDepth(t *testing.T) {
	c := NewContext()
	derived := c.With(WithPrecision(5))

	unnest := c.Nest()
	assert.Equal(t, 1, derived.Depth())
	unnest()
	assert.Equal(t, 0, derived.Depth())
}

func TestContext_LogNesting(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewContext(WithLogger(logger))

	unnest := c.Nest()
	c.Log(slog.LevelDebug, "inside", "method", "M")
	unnest()
	c.Log(LevelTrace, "hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=inside")
	assert.Contains(t, out, "depth=1")
	assert.Contains(t, out, "method=M")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 0, c.Depth())
}
