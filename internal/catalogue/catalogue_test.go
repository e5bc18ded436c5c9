package catalogue

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/steps"
)

func quiet(opts ...engine.Option) *engine.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.NewContext(append([]engine.Option{engine.WithLogger(logger)}, opts...)...)
}

func solving(mode engine.SettingValue, opts ...engine.Option) *engine.Context {
	return quiet(append([]engine.Option{
		engine.WithSolutionVariables("x"),
		engine.WithSettings(engine.Settings{engine.BalancingMode: mode}),
	}, opts...)...)
}

func decimal(t *testing.T, s string) *expr.Expression {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return expr.DecimalOf(d)
}

func mappings(t *steps.Transformation) []string {
	var out []string
	for _, m := range t.PathMappings() {
		out = append(out, m.String())
	}
	return out
}

func results(ss []*steps.Transformation) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ToExpr.String()
	}
	return out
}

func keys(ss []*steps.Transformation) []steps.MetadataKey {
	out := make([]steps.MetadataKey, len(ss))
	for i, s := range ss {
		out[i] = s.ExplanationKey()
	}
	return out
}

func TestEvaluateSumOfIntegers(t *testing.T) {
	ctx := quiet()
	result, err := method.Solve(ctx, EvaluateSumOfIntegers, expr.Sum(expr.Int(1), expr.Int(2), expr.Int(3)))
	require.NoError(t, err)

	assert.Equal(t, steps.TypePlan, result.Type)
	assert.Equal(t, "6", result.ToExpr.String())
	assert.Equal(t, ExplainEvaluateSumOfIntegers, result.ExplanationKey())

	require.Len(t, result.Steps, 2)
	assert.Equal(t, []string{"3 + 3", "6"}, results(result.Steps))
	assert.Equal(t, []string{
		"[./0, ./1, ./1:outerOp] Combine [./0]",
		"[./2] Shift [./1]",
	}, mappings(result.Steps[0]))
	assert.Equal(t, []string{"[./0, ./1, ./1:outerOp] Combine [.]"}, mappings(result.Steps[1]))
}

func TestEvaluateArithmeticExpression(t *testing.T) {
	tests := []struct {
		name  string
		input *expr.Expression
		want  string
	}{
		{"sum", expr.Sum(expr.Int(1), expr.Int(2), expr.Int(3)), "6"},
		{"subtraction", expr.Sum(expr.Int(3), expr.Int(-5)), "-2"},
		{"product before sum", expr.Sum(expr.Product(expr.Int(2), expr.Int(3)), expr.Int(4)), "10"},
		{"division", expr.Product(expr.Int(12), expr.DivideBy(expr.Int(4))), "3"},
		{"product with zero", expr.Product(expr.Int(0), expr.Int(5)), "0"},
		{"brackets first", expr.Product(expr.Sum(expr.Int(1), expr.Int(2)), expr.Int(3)), "9"},
		{"outer bracket", expr.Sum(expr.Int(1), expr.Int(2)).Decorate(expr.RoundBracket), "3"},
		{"small power", expr.Power(expr.Int(2), expr.Int(3)), "8"},
		{"large power", expr.Power(expr.Int(2), expr.Int(10)), "1024"},
		{"odd power of negative", expr.Power(expr.Int(-2).Decorate(expr.RoundBracket), expr.Int(3)), "-8"},
		{"even power of negative", expr.Power(expr.Int(-3).Decorate(expr.RoundBracket), expr.Int(2)), "9"},
		{"exact fraction", expr.Fraction(expr.Int(6), expr.Int(3)), "2"},
		{"double minus", expr.Neg(expr.Neg(expr.Int(4))), "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := method.Solve(quiet(), EvaluateArithmeticExpression, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ToExpr.String())
			assert.Equal(t, ExplainEvaluateArithmeticExpression, result.ExplanationKey())
		})
	}
}

func TestEvaluateDecimalAddition(t *testing.T) {
	tests := []struct {
		name    string
		input   *expr.Expression
		want    string
		wantKey steps.MetadataKey
	}{
		{"decimals", expr.Sum(decimal(t, "0.5"), decimal(t, "1.25")), "1.75", ExplainEvaluateDecimalAddition},
		{"decimal and integer", expr.Sum(expr.Int(2), decimal(t, "0.5")), "2.5", ExplainEvaluateDecimalAddition},
		{"subtraction", expr.Sum(decimal(t, "1.5"), expr.Neg(decimal(t, "0.5"))), "1", ExplainEvaluateDecimalSubtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := method.Solve(quiet(), EvaluateDecimalAddition, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ToExpr.String())
			assert.Equal(t, tt.wantKey, result.ExplanationKey())
		})
	}

	_, err := method.Solve(quiet(), EvaluateDecimalAddition, expr.Sum(expr.Int(1), expr.Int(2)))
	assert.True(t, engine.IsNoTransformation(err))
}

func TestGeneralRules(t *testing.T) {
	x := expr.Var("x")
	tests := []struct {
		name  string
		m     method.Method
		input *expr.Expression
		want  string
	}{
		{"zero in sum", EliminateZeroInSum, expr.Sum(x, expr.Zero()), "x"},
		{"one in product", EliminateOneInProduct, expr.Product(expr.One(), x, expr.Var("y")), "x * y"},
		{"double minus", SimplifyDoubleMinus, expr.Neg(expr.Neg(x)), "x"},
		{"outer bracket", RemoveOuterBracket, x.Decorate(expr.RoundBracket), "x"},
		{"sum in sum", RemoveBracketSumInSum,
			expr.Sum(expr.One(), expr.Sum(expr.Int(2), x).Decorate(expr.RoundBracket)), "1 + 2 + x"},
		{"product in product", RemoveBracketProductInProduct,
			expr.New(expr.Op(expr.KindProduct), expr.Int(2), expr.Product(expr.Int(3), x).Decorate(expr.RoundBracket)), "2 * 3 * x"},
		{"redundant bracket", RemoveRedundantBracket,
			expr.New(expr.Op(expr.KindSum), expr.One(), expr.Int(2).Decorate(expr.RoundBracket)), "1 + 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := method.Solve(quiet(), tt.m, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ToExpr.String())
		})
	}
}

func TestBracketsThatAreNeeded(t *testing.T) {
	needed := expr.Product(expr.Sum(expr.One(), expr.Var("x")), expr.Int(2))
	_, err := method.Solve(quiet(), RemoveRedundantBracket, needed)
	assert.True(t, engine.IsNoTransformation(err))
}

func TestIntegerRules(t *testing.T) {
	tests := []struct {
		name    string
		m       method.Method
		input   *expr.Expression
		want    string
		wantKey steps.MetadataKey
	}{
		{"addition", EvaluateSignedIntegerAddition, expr.Sum(expr.Int(2), expr.Int(3)), "5", ExplainEvaluateIntegerAddition},
		{"subtraction", EvaluateSignedIntegerAddition, expr.Sum(expr.Int(3), expr.Int(-5)), "-2", ExplainEvaluateIntegerSubtraction},
		{"product", EvaluateIntegerProductAndDivision, expr.Product(expr.Int(4), expr.Int(5)), "20", ExplainEvaluateIntegerProduct},
		{"division", EvaluateIntegerProductAndDivision,
			expr.Product(expr.Int(12), expr.DivideBy(expr.Int(3))), "4", ExplainEvaluateIntegerDivision},
		{"negative product", EvaluateIntegerProductAndDivision,
			expr.Neg(expr.Product(expr.Int(4), expr.Int(5))), "-20", ExplainEvaluateIntegerProduct},
		{"direct power", EvaluateIntegerPowerDirectly, expr.Power(expr.Int(3), expr.Int(4)), "81", ExplainEvaluateIntegerPowerDirectly},
		{"power as product", RewriteIntegerPowerAsProduct,
			expr.Power(expr.Int(2), expr.Int(3)), "2 * 2 * 2", ExplainRewriteIntegerPowerAsProduct},
		{"product with zero", EvaluateProductContainingZero,
			expr.Product(expr.Var("x"), expr.Zero()), "0", ExplainEvaluateProductContainingZero},
		{"fraction", SimplifyFractionToInteger, expr.Fraction(expr.Int(8), expr.Int(2)), "4", ExplainSimplifyFractionToInteger},
		{"common factor", CancelCommonFactorInFraction,
			expr.Fraction(expr.Product(expr.Int(2), expr.Var("x")), expr.Int(2)), "x", ExplainCancelCommonFactorInFraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := method.Solve(quiet(), tt.m, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ToExpr.String())
			assert.Equal(t, tt.wantKey, result.ExplanationKey())
		})
	}
}

func TestIntegerRulesDoNotApply(t *testing.T) {
	tests := []struct {
		name  string
		m     method.Method
		input *expr.Expression
	}{
		{"inexact division", EvaluateIntegerProductAndDivision, expr.Product(expr.Int(7), expr.DivideBy(expr.Int(2)))},
		{"division by zero", EvaluateIntegerProductAndDivision, expr.Product(expr.Int(7), expr.DivideBy(expr.Zero()))},
		{"zero to the zero", EvaluateIntegerPowerDirectly, expr.Power(expr.Zero(), expr.Zero())},
		{"exponent too large", EvaluateIntegerPowerDirectly, expr.Power(expr.Int(2), expr.Int(MaxPower+1))},
		{"zero times a division", EvaluateProductContainingZero,
			expr.Product(expr.Zero(), expr.DivideBy(expr.Var("x")))},
		{"inexact fraction", SimplifyFractionToInteger, expr.Fraction(expr.Int(7), expr.Int(2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := method.Solve(quiet(), tt.m, tt.input)
			assert.True(t, engine.IsNoTransformation(err))
		})
	}
}

func linearEquation() *expr.Expression {
	return expr.Equation(expr.Sum(expr.Product(expr.Int(2), expr.Var("x")), expr.Int(3)), expr.Int(7))
}

func TestSolveLinearEquationBasic(t *testing.T) {
	result, err := method.Solve(solving(engine.BalancingBasic), SolveLinearEquation, linearEquation())
	require.NoError(t, err)

	assert.Equal(t, "SetSolution[x : {2}]", result.ToExpr.String())
	assert.Equal(t, ExplainSolveLinearEquationByBalancing, result.ExplanationKey())
	assert.Empty(t, result.Alternatives)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, []steps.MetadataKey{
		ExplainMoveConstantsToTheRightAndSimplify,
		ExplainDivideByCoefficientOfVariableAndSimplify,
		ExplainExtractSolutionFromEquationInSolvedForm,
	}, keys(result.Steps))

	move := result.Steps[0]
	require.NotEmpty(t, move.Steps)
	assert.Equal(t, "2 * x + 3 - 3 = 7 - 3", move.Steps[0].ToExpr.String())
	assert.Equal(t, "2 * x = 4", move.ToExpr.String())

	divide := result.Steps[1]
	require.NotEmpty(t, divide.Steps)
	assert.Equal(t, "[2 * x / 2] = [4 / 2]", divide.Steps[0].ToExpr.String())
	assert.Equal(t, "x = 2", divide.ToExpr.String())

	assert.True(t, result.Steps[2].HasTag(steps.Pedantic))
}

func TestSolveLinearEquationAdvanced(t *testing.T) {
	result, err := method.Solve(solving(engine.BalancingAdvanced), SolveLinearEquation, linearEquation())
	require.NoError(t, err)

	assert.Equal(t, "SetSolution[x : {2}]", result.ToExpr.String())
	assert.Equal(t, ExplainSolveLinearEquationByIsolating, result.ExplanationKey())
	assert.Empty(t, result.Alternatives)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, "2 * x = 7 - 3", result.Steps[0].Steps[0].ToExpr.String())
	assert.Equal(t, "2 * x = 4", result.Steps[0].ToExpr.String())
	assert.Equal(t, "x = [4 / 2]", result.Steps[1].Steps[0].ToExpr.String())
	assert.Equal(t, "x = 2", result.Steps[1].ToExpr.String())
}

func TestSolveLinearEquationNextTo(t *testing.T) {
	input := expr.Equation(expr.Sum(expr.Int(3), expr.Product(expr.Int(2), expr.Var("x"))), expr.Int(7))
	result, err := method.Solve(solving(engine.BalancingNextTo), SolveLinearEquation, input)
	require.NoError(t, err)

	assert.Equal(t, "SetSolution[x : {2}]", result.ToExpr.String())
	assert.Equal(t, "3 - 3 + 2 * x = 7 - 3", result.Steps[0].Steps[0].ToExpr.String())
}

func TestSolveLinearEquationOneByOne(t *testing.T) {
	x := expr.Var("x")
	input := expr.Equation(expr.Sum(x, expr.Int(2), expr.Int(3)), expr.Int(10))
	ctx := solving(engine.BalancingBasic, engine.WithSettings(engine.Settings{
		engine.BalancingMode:     engine.BalancingBasic,
		engine.MoveTermsOneByOne: engine.True,
	}))

	result, err := method.Solve(ctx, SolveLinearEquation, input)
	require.NoError(t, err)
	assert.Equal(t, "SetSolution[x : {5}]", result.ToExpr.String())
	assert.Equal(t, "x + 2 + 3 - 2 = 10 - 2", result.Steps[0].Steps[0].ToExpr.String())
}

func TestSolveLinearEquationNeedsSolutionVariable(t *testing.T) {
	_, err := method.Solve(quiet(), SolveLinearEquation, linearEquation())
	assert.True(t, engine.IsNoTransformation(err))
}

func TestSolveFactoredEquation(t *testing.T) {
	x := expr.Var("x")
	input := expr.Equation(
		expr.Product(expr.Sum(x, expr.Int(-2)), expr.Sum(x, expr.Int(3))),
		expr.Zero(),
	)
	result, err := method.Solve(solving(engine.BalancingBasic), SolveFactoredEquation, input)
	require.NoError(t, err)

	assert.Equal(t, steps.TypeTaskSet, result.Type)
	assert.Equal(t, "SetSolution[x : {2, -3}]", result.ToExpr.String())
	assert.Equal(t, ExplainSolveEquationUsingTheZeroProductProperty, result.ExplanationKey())

	require.Len(t, result.Tasks, 3)
	assert.Equal(t, "x - 2 = 0", result.Tasks[0].StartExpr.String())
	assert.Equal(t, "SetSolution[x : {2}]", result.Tasks[0].Result().String())
	assert.Equal(t, "SetSolution[x : {-3}]", result.Tasks[1].Result().String())

	last := result.Tasks[2]
	assert.Equal(t, "#3", last.ID)
	assert.Equal(t, []string{"#1", "#2"}, last.DependsOn)
	assert.Empty(t, last.Steps)
}

func TestSolveFactoredEquationMergesEqualSolutions(t *testing.T) {
	x := expr.Var("x")
	factor := func() *expr.Expression { return expr.Sum(x, expr.Int(-1)) }
	input := expr.Equation(expr.Product(factor(), factor()), expr.Zero())

	result, err := method.Solve(solving(engine.BalancingAdvanced), SolveFactoredEquation, input)
	require.NoError(t, err)
	assert.Equal(t, "SetSolution[x : {1}]", result.ToExpr.String())
}

func TestRegister(t *testing.T) {
	r := Default()
	assert.Same(t, r, Default())

	var listed []string
	for _, e := range r.List() {
		listed = append(listed, e.ID)
	}
	assert.Equal(t, []string{
		"EvaluateArithmeticExpression",
		"EvaluateProductOfIntegers",
		"EvaluateSignedIntegerPower",
		"EvaluateSumOfIntegers",
		"SolveFactoredEquation",
		"SolveLinearEquation",
	}, listed)

	hidden, ok := r.Lookup("MoveConstantsToTheRight")
	require.True(t, ok)
	assert.True(t, hidden.Hidden)

	assert.Error(t, Register(r), "registering twice must fail")
}

func TestSolveIsDeterministic(t *testing.T) {
	first, err := method.Solve(solving(engine.BalancingBasic), SolveLinearEquation, linearEquation())
	require.NoError(t, err)
	for range 5 {
		again, err := method.Solve(solving(engine.BalancingBasic), SolveLinearEquation, linearEquation())
		require.NoError(t, err)
		assert.Equal(t, results(first.Steps), results(again.Steps))
		assert.Equal(t, keys(first.Steps), keys(again.Steps))
	}
}
