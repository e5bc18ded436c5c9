package rule

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/steps"
)

func rooted(e *expr.Expression) *expr.Expression { return e.WithOrigin(expr.NewRootOrigin()) }

func mappings(t *steps.Transformation) []string {
	var out []string
	for _, m := range t.PathMappings() {
		out = append(out, m.String())
	}
	return out
}

var addIntegers = func() *Rule {
	a, b := pattern.UnsignedInteger(), pattern.UnsignedInteger()
	sum := pattern.SumContaining(a, b)
	return New(sum, func(r *Builder) *steps.Transformation {
		total := r.IntegerOp2(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
		return r.Result(r.SubstituteIn(sum, total), steps.NewMetadata("Test.Add", r.Move(a), r.Move(b)))
	})
}()

func TestRuleRun(t *testing.T) {
	ctx := engine.NewContext()

	tests := []struct {
		name  string
		input *expr.Expression
		want  string
	}{
		{"two integers", expr.Sum(expr.Int(1), expr.Int(2)), "3"},
		{"first adjacent pair", expr.Sum(expr.Int(1), expr.Int(2), expr.Int(3)), "3 + 3"},
		{"skips variables", expr.Sum(expr.Var("x"), expr.Int(2), expr.Int(5)), "x + 7"},
		{"no match", expr.Sum(expr.Var("x"), expr.Int(2)), ""},
		{"not a sum", expr.Int(4), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := addIntegers.Run(ctx, rooted(tt.input))
			if tt.want == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, steps.TypeRule, result.Type)
			assert.Equal(t, tt.want, result.ToExpr.String())
			assert.Equal(t, steps.MetadataKey("Test.Add"), result.ExplanationKey())
		})
	}
}

func TestRuleResultMappings(t *testing.T) {
	ctx := engine.NewContext()
	result := addIntegers.Run(ctx, rooted(expr.Sum(expr.Int(1), expr.Int(2), expr.Int(3))))
	require.NotNil(t, result)

	assert.Equal(t, []string{
		"[./0, ./1, ./1:outerOp] Combine [./0]",
		"[./2] Shift [./1]",
	}, mappings(result))

	params := result.Explanation.Params
	require.Len(t, params, 2)
	moved, ok := params[1].Origin().(*expr.MoveOrigin)
	require.True(t, ok)
	p, ok := moved.From.Path()
	require.True(t, ok)
	assert.Equal(t, "./1", p.String())
}

func TestRuleTriesNextMatch(t *testing.T) {
	ctx := engine.NewContext()
	a := pattern.UnsignedInteger()
	sum := pattern.CommutativeSumContaining(a)
	seen := 0
	r := New(sum, func(b *Builder) *steps.Transformation {
		seen++
		if b.GetInt(a).Int64() != 7 {
			return nil
		}
		return b.Result(b.RestOf(sum), nil)
	})

	result := r.Run(ctx, rooted(expr.Sum(expr.Int(1), expr.Int(7), expr.Var("x"))))
	require.NotNil(t, result)
	assert.Equal(t, "1 + x", result.ToExpr.String())
	assert.Equal(t, 2, seen)
}

func TestWhere(t *testing.T) {
	ctx := engine.NewContext()
	a, b := pattern.UnsignedInteger(), pattern.UnsignedInteger()
	p := Where(pattern.FractionOf(a, b), func(r *Builder) bool {
		return r.GetInt(a).Cmp(r.GetInt(b)) < 0
	})

	assert.NotNil(t, pattern.First(ctx, p, rooted(expr.Fraction(expr.Int(1), expr.Int(2)))))
	assert.Nil(t, pattern.First(ctx, p, rooted(expr.Fraction(expr.Int(3), expr.Int(2)))))
}

func TestBuilderProvenance(t *testing.T) {
	ctx := engine.NewContext()
	x := pattern.Fixed(expr.Var("x"))
	lhs := pattern.SumOf(x, x)
	e := rooted(expr.Sum(expr.Var("x"), expr.Var("x")))
	m := pattern.First(ctx, lhs, e)
	require.NotNil(t, m)
	b := NewBuilder(ctx, e, m)

	assert.IsType(t, &expr.FactorOrigin{}, b.Get(x).Origin())
	assert.IsType(t, &expr.FactorOrigin{}, b.Move(x).Origin())
	assert.IsType(t, &expr.CombineOrigin{}, b.Transform(x).Origin())
	assert.IsType(t, &expr.DistributeOrigin{}, b.Distribute(x).Origin())
	assert.IsType(t, &expr.SubstitutionOrigin{}, b.Substitute(x).Origin())
	assert.IsType(t, &expr.IntroduceOrigin{}, b.IntroduceFrom(x, expr.Int(2)).Origin())
	assert.Equal(t, expr.Fresh, b.Introduce(expr.Int(2)).Origin())
	assert.Equal(t, "a", b.SubstituteName(x, "a").String())

	single := b.Move(lhs)
	assert.IsType(t, &expr.MoveOrigin{}, single.Origin())
	assert.Same(t, e, b.Get(lhs))
}

func TestBuilderSigns(t *testing.T) {
	ctx := engine.NewContext()
	n := pattern.OptionalNeg(pattern.UnsignedInteger())
	e := rooted(expr.Neg(expr.Int(4)))
	m := pattern.First(ctx, n, e)
	require.NotNil(t, m)
	b := NewBuilder(ctx, e, m)

	assert.True(t, b.IsNeg(n))
	assert.True(t, b.IsWrapping(n.OptionalWrappingPattern))
	assert.Equal(t, "-y", b.CopySign(n, expr.Var("y")).String())
	assert.Equal(t, "y", b.CopyFlippedSign(n, expr.Var("y")).String())
	assert.Equal(t, "abs[y]", b.WrapIf(n.OptionalWrappingPattern, expr.Var("y"), expr.AbsoluteValue).String())
}

func TestBuilderPanicsOnEmptyProvider(t *testing.T) {
	ctx := engine.NewContext()
	unbound := pattern.Any()
	b := NewBuilder(ctx, expr.Int(1), pattern.Root)

	assert.PanicsWithError(t, (&EmptyProviderError{}).Error(), func() { b.Move(unbound) })
	assert.Equal(t, "5", b.GetOr(unbound, expr.Int(5)).String())
}

func TestRound(t *testing.T) {
	tests := []struct {
		precision int
		in        string
		want      string
	}{
		{3, "1.23456", "1.235"},
		{2, "2.345", "2.35"},
		{2, "-2.345", "-2.35"},
		{3, "1.5", "1.500"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ctx := engine.NewContext(engine.WithPrecision(tt.precision))
			d, _, err := apd.NewFromString(tt.in)
			require.NoError(t, err)
			b := NewBuilder(ctx, expr.Int(0), pattern.Root)
			assert.Equal(t, tt.want, b.Round(d).String())
		})
	}
}

func TestBuilderHelpers(t *testing.T) {
	ctx := engine.NewContext(engine.WithSolutionVariables("x", "y"), engine.WithLabelSpace(expr.NewLabelSpace()))
	b := NewBuilder(ctx, expr.Int(0), pattern.Root)

	assert.Equal(t, "x, y", b.SolutionVariables().String())
	labelled := b.WithLabel(expr.Int(2), expr.LabelA)
	_, ok := labelled.Label()
	assert.True(t, ok)

	single := NewBuilder(engine.NewContext(engine.WithSolutionVariables("x")), expr.Int(0), pattern.Root)
	assert.Equal(t, "x", single.SolutionVariables().String())
	_, ok = single.WithLabel(expr.Int(2), expr.LabelA).Label()
	assert.False(t, ok)
}

func TestMatchPatternAndBuildWith(t *testing.T) {
	ctx := engine.NewContext()
	a := pattern.UnsignedInteger()
	e := rooted(expr.Equation(expr.Int(2), expr.Int(3)))
	eq := pattern.EquationOf(a, pattern.Any())
	m := pattern.First(ctx, eq, e)
	require.NotNil(t, m)
	b := NewBuilder(ctx, e, m)

	c := pattern.UnsignedInteger()
	sub := b.MatchPattern(c, e.SecondChild())
	require.NotNil(t, sub)
	got := b.BuildWith(sub, func(r *Builder) *expr.Expression {
		return r.IntegerOp2(a, c, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
	})
	assert.Equal(t, "6", got.String())
	assert.Nil(t, b.MatchPattern(a, e.SecondChild()))
}

func TestResultOptions(t *testing.T) {
	ctx := engine.NewContext()
	b := NewBuilder(ctx, expr.Int(1), pattern.Root)
	skill := steps.NewMetadata("Skill.Add")
	r := b.Result(expr.Int(2), steps.NewMetadata("Test.Step"),
		WithTags(steps.Cosmetic), WithFormula(expr.Var("f")), WithSkills(skill))

	assert.Equal(t, []steps.Tag{steps.Cosmetic}, r.Tags)
	assert.Equal(t, "f", r.Formula.String())
	assert.Equal(t, []*steps.Metadata{skill}, r.Skills)
	assert.Equal(t, "1", r.FromExpr.String())
}
