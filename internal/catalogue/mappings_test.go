package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/steps"
)

// leafPaths returns the paths of the leaves of e, with e at root.
func leafPaths(e *expr.Expression, root expr.Path) []expr.Path {
	children := e.Children()
	if len(children) == 0 {
		return []expr.Path{root}
	}
	var out []expr.Path
	for i, c := range children {
		out = append(out, leafPaths(c, root.Child(i))...)
	}
	return out
}

// covering counts the expression-scoped paths that leaf lies under.
func covering(leaf expr.Path, paths []expr.ScopedPath) int {
	n := 0
	for _, sp := range paths {
		if sp.Scope == expr.ScopeExpression && leaf.HasAncestor(sp.Path) {
			n++
		}
	}
	return n
}

// ruleSteps collects the rule applications inside t, including those of
// its tasks.
func ruleSteps(t *steps.Transformation) []*steps.Transformation {
	if t.Type == steps.TypeRule {
		return []*steps.Transformation{t}
	}
	var out []*steps.Transformation
	for _, s := range t.Steps {
		out = append(out, ruleSteps(s)...)
	}
	for _, task := range t.Tasks {
		for _, s := range task.Steps {
			out = append(out, ruleSteps(s)...)
		}
	}
	return out
}

// assertCompleteMappings checks every rule step of t: each leaf of toExpr
// is the target of exactly one mapping, and each leaf of fromExpr is the
// source of at least one. Sources may be shared, as when balancing writes
// a term on both sides of an equation.
func assertCompleteMappings(t *testing.T, tr *steps.Transformation) {
	t.Helper()
	rules := ruleSteps(tr)
	require.NotEmpty(t, rules)

	for _, s := range rules {
		root, ok := s.FromExpr.Path()
		if !ok {
			root = expr.RootPath()
		}
		var sources, targets []expr.ScopedPath
		for _, m := range s.PathMappings() {
			sources = append(sources, m.FromPaths...)
			targets = append(targets, m.ToPaths...)
		}
		for _, leaf := range leafPaths(s.FromExpr, root) {
			assert.NotZero(t, covering(leaf, sources), "%s: %s of %s is not mapped from",
				s.ExplanationKey(), leaf, s.FromExpr)
		}
		for _, leaf := range leafPaths(s.ToExpr, root) {
			assert.Equal(t, 1, covering(leaf, targets), "%s: %s of %s should be mapped to once",
				s.ExplanationKey(), leaf, s.ToExpr)
		}
	}
}

func TestPathMappingsAreComplete(t *testing.T) {
	x := expr.Var("x")
	tests := []struct {
		name  string
		ctx   *engine.Context
		m     method.Method
		input *expr.Expression
	}{
		{"sum of integers", quiet(), EvaluateSumOfIntegers, expr.Sum(expr.Int(1), expr.Int(2), expr.Int(3))},
		{"arithmetic", quiet(), EvaluateArithmeticExpression,
			expr.Product(expr.Sum(expr.Int(1), expr.Int(2)).Decorate(expr.RoundBracket), expr.Int(3))},
		{"signed power", quiet(), EvaluateSignedIntegerPower, expr.Power(expr.Int(2), expr.Int(3))},
		{"decimal addition", quiet(), EvaluateDecimalAddition, expr.Sum(decimal(t, "0.5"), decimal(t, "1.25"))},
		{"zero in sum", quiet(), EliminateZeroInSum, expr.Sum(x, expr.Zero())},
		{"one in product", quiet(), EliminateOneInProduct, expr.Product(expr.One(), x, expr.Var("y"))},
		{"double minus", quiet(), SimplifyDoubleMinus, expr.Neg(expr.Neg(x))},
		{"sum in sum", quiet(), RemoveBracketSumInSum,
			expr.Sum(expr.One(), expr.Sum(expr.Int(2), x).Decorate(expr.RoundBracket))},
		{"integer product", quiet(), EvaluateIntegerProductAndDivision, expr.Neg(expr.Product(expr.Int(4), expr.Int(5)))},
		{"integer division", quiet(), EvaluateIntegerProductAndDivision,
			expr.Product(expr.Int(12), expr.DivideBy(expr.Int(3)))},
		{"power as product", quiet(), RewriteIntegerPowerAsProduct, expr.Power(expr.Int(2), expr.Int(3))},
		{"product with zero", quiet(), EvaluateProductContainingZero, expr.Product(x, expr.Zero())},
		{"fraction", quiet(), SimplifyFractionToInteger, expr.Fraction(expr.Int(8), expr.Int(2))},
		{"common factor", quiet(), CancelCommonFactorInFraction,
			expr.Fraction(expr.Product(expr.Int(2), x), expr.Int(2))},
		{"linear basic", solving(engine.BalancingBasic), SolveLinearEquation, linearEquation()},
		{"linear advanced", solving(engine.BalancingAdvanced), SolveLinearEquation, linearEquation()},
		{"linear next to", solving(engine.BalancingNextTo), SolveLinearEquation,
			expr.Equation(expr.Sum(expr.Int(3), expr.Product(expr.Int(2), x)), expr.Int(7))},
		{"factored", solving(engine.BalancingBasic), SolveFactoredEquation,
			expr.Equation(expr.Product(expr.Sum(x, expr.Int(-2)), expr.Sum(x, expr.Int(3))), expr.Zero())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := method.Solve(tt.ctx, tt.m, tt.input)
			require.NoError(t, err)
			assertCompleteMappings(t, result)
		})
	}
}

func TestDroppedTermsAreMapped(t *testing.T) {
	x := expr.Var("x")

	t.Run("variable of a solved equation", func(t *testing.T) {
		result, err := method.Solve(solving(engine.BalancingBasic), ExtractSolutionFromEquation,
			expr.Equation(x, expr.Int(2)))
		require.NoError(t, err)
		assert.Contains(t, mappings(result), "[./0] Transform [./0]")
	})

	t.Run("coefficient in advanced mode", func(t *testing.T) {
		result, err := method.Solve(solving(engine.BalancingAdvanced), DivideByCoefficientOfVariable,
			expr.Equation(expr.Product(expr.Int(2), x), expr.Int(4)))
		require.NoError(t, err)
		assert.Contains(t, mappings(result), "[./0/0] Cancel []")
	})

	t.Run("zero right hand side", func(t *testing.T) {
		result, err := method.Solve(solving(engine.BalancingBasic), MoveConstantsToTheRight,
			expr.Equation(expr.Sum(x, expr.Int(3)), expr.Zero()))
		require.NoError(t, err)
		assert.Contains(t, mappings(result), "[./1] Cancel []")
	})
}
