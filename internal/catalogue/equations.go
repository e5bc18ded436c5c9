package catalogue

import (
	"math/big"
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

// LinearEquationFamily is the strategy family of SolveLinearEquation.
const LinearEquationFamily = "LinearEquation"

var (
	ExplainMoveConstantsToTheRight                  = steps.Key("Equations", "MoveConstantsToTheRight")
	ExplainMoveConstantsToTheRightAndSimplify       = steps.Key("Equations", "MoveConstantsToTheRightAndSimplify")
	ExplainDivideByCoefficientOfVariable            = steps.Key("Equations", "DivideByCoefficientOfVariable")
	ExplainDivideByCoefficientOfVariableAndSimplify = steps.Key("Equations", "DivideByCoefficientOfVariableAndSimplify")
	ExplainExtractSolutionFromEquationInSolvedForm  = steps.Key("Equations", "ExtractSolutionFromEquationInSolvedForm")
	ExplainSimplifyEquation                         = steps.Key("Equations", "SimplifyEquation")
	ExplainSolveLinearEquationByBalancing           = steps.Key("Equations", "SolveLinearEquationByBalancing")
	ExplainSolveLinearEquationByIsolating           = steps.Key("Equations", "SolveLinearEquationByIsolating")
	ExplainSolveEquationUsingTheZeroProductProperty = steps.Key("Equations", "SolveEquationUsingTheZeroProductProperty")
	ExplainSolveEquationForFactor                   = steps.Key("Equations", "SolveEquationForFactor")
	ExplainCollectSolutions                         = steps.Key("Equations", "CollectSolutions")
)

// solutionVariable matches a variable the context solves for.
func solutionVariable() *pattern.LeafPattern {
	return pattern.PureCondition(func(ctx *engine.Context, sub *expr.Expression) bool {
		return sub.Is(expr.KindVariable) && slices.Contains(ctx.SolutionVariables(), sub.Operator().VariableName())
	})
}

// negate is the opposite of a term: -t for t, and t for an unbracketed -t.
func negate(t *expr.Expression) *expr.Expression {
	if t.Is(expr.KindMinus) && !t.HasBracket() {
		return t.FirstChild()
	}
	return expr.Neg(t)
}

// MoveConstantsToTheRight moves the terms of the left hand side that do
// not contain the solution variables to the right hand side. How the left
// hand side is written depends on the BalancingMode setting:
//
//	basic     2 * x + 3 - 3 = 7 - 3
//	nextTo    the inverse terms follow the last moved term
//	advanced  2 * x = 7 - 3
var MoveConstantsToTheRight = func() *method.RunnerMethod {
	lhs := pattern.SumContaining()
	rhs := pattern.ConstantInSolutionVariable()
	equation := pattern.EquationOf(lhs, rhs)

	return method.Named("MoveConstantsToTheRight", rule.New(equation, func(b *rule.Builder) *steps.Transformation {
		vars := b.Context().SolutionVariables()
		terms := b.Get(lhs).Children()

		var constants, kept []*expr.Expression
		for _, t := range terms {
			if t.IsConstantIn(vars) {
				constants = append(constants, t)
			} else {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 || len(constants) == 0 {
			return nil
		}
		if len(constants) == 1 && constants[0].Equiv(expr.Zero()) {
			return nil
		}
		if b.Context().IsSet(engine.MoveTermsOneByOne) {
			kept = append(kept, constants[1:]...)
			constants = constants[:1]
			slices.SortFunc(kept, func(x, y *expr.Expression) int { return x.ChildIndex() - y.ChildIndex() })
		}

		negated := make([]*expr.Expression, len(constants))
		for i, c := range constants {
			negated[i] = negate(c)
		}

		var from *expr.Expression
		switch b.Context().Get(engine.BalancingMode) {
		case engine.BalancingAdvanced:
			from = expr.SumOrSingle(kept...)
		case engine.BalancingNextTo:
			last := constants[len(constants)-1].ChildIndex()
			withInverse := slices.Clone(terms[:last+1])
			withInverse = append(withInverse, negated...)
			from = expr.Sum(append(withInverse, terms[last+1:]...)...)
		default:
			from = expr.Sum(append([]*expr.Expression{b.Get(lhs)}, negated...)...)
		}

		var to *expr.Expression
		if b.Get(rhs).Equiv(expr.Zero()) {
			to = b.Cancel(rhs, expr.SumOrSingle(negated...))
		} else {
			to = expr.Sum(append([]*expr.Expression{b.Get(rhs)}, negated...)...)
		}
		return b.Result(expr.Equation(from, to), steps.NewMetadata(ExplainMoveConstantsToTheRight, expr.SumOrSingle(constants...)))
	}))
}()

// DivideByCoefficientOfVariable divides both sides of c * x = d by c.
// In advanced balancing mode the left hand side is cancelled at once.
var DivideByCoefficientOfVariable = func() *method.RunnerMethod {
	coefficient := pattern.IntegerCondition(pattern.UnsignedInteger(), func(c *big.Int) bool {
		return c.Sign() != 0 && c.Cmp(big.NewInt(1)) != 0
	})
	variable := solutionVariable()
	lhs := pattern.ProductOf(coefficient, variable)
	rhs := pattern.ConstantInSolutionVariable()
	equation := pattern.EquationOf(lhs, rhs)

	return method.Named("DivideByCoefficientOfVariable", rule.New(equation, func(b *rule.Builder) *steps.Transformation {
		divisor := b.Get(coefficient)
		var from *expr.Expression
		if b.Context().Get(engine.BalancingMode) == engine.BalancingAdvanced {
			from = b.Cancel(coefficient, b.Move(variable))
		} else {
			from = expr.Fraction(b.Get(lhs), b.Introduce(divisor))
		}
		to := expr.Fraction(b.Get(rhs), b.Introduce(divisor))
		return b.Result(expr.Equation(from, to), steps.NewMetadata(ExplainDivideByCoefficientOfVariable, b.Move(coefficient)))
	}))
}()

// ExtractSolutionFromEquation turns x = c into the solution set {c}.
var ExtractSolutionFromEquation = func() *method.RunnerMethod {
	variable := solutionVariable()
	value := pattern.ConstantInSolutionVariable()
	equation := pattern.EquationOf(variable, value)

	return method.Named("ExtractSolutionFromEquation", rule.New(equation, func(b *rule.Builder) *steps.Transformation {
		name := b.Get(variable).Operator().VariableName()
		solution := expr.SetSolution(b.TransformTo(variable, expr.VariableList(name)), expr.FiniteSet(b.Move(value)))
		return b.Result(solution, steps.NewMetadata(ExplainExtractSolutionFromEquationInSolvedForm), rule.WithTags(steps.Pedantic))
	}))
}()

// SimplifyEquation simplifies both sides of an equation, innermost
// subexpressions first.
var SimplifyEquation = method.Named("SimplifyEquation", method.NewPlan(method.PlanSpec{
	Pattern:     pattern.EquationOf(pattern.Any(), pattern.Any()),
	Explanation: method.Explain(ExplainSimplifyEquation),
	Steps: method.Steps(method.WhilePossible(method.Steps(method.Deeply(method.FirstOf(
		method.Option(EvaluateSignedIntegerAddition),
		method.Option(EliminateZeroInSum),
		method.Option(EvaluateIntegerProductAndDivision),
		method.Option(EliminateOneInProduct),
		method.Option(SimplifyFractionToInteger),
		method.Option(CancelCommonFactorInFraction),
		method.Option(SimplifyDoubleMinus),
		method.Option(RemoveRedundantBracket),
		method.Option(EvaluateDecimalAddition),
	), true)))),
}))

var MoveConstantsToTheRightAndSimplify = method.Named("MoveConstantsToTheRightAndSimplify", method.NewPlan(method.PlanSpec{
	Explanation: method.Explain(ExplainMoveConstantsToTheRightAndSimplify),
	Steps: method.Steps(
		method.Apply(MoveConstantsToTheRight),
		method.Optionally(SimplifyEquation),
	),
}))

var DivideByCoefficientOfVariableAndSimplify = method.Named("DivideByCoefficientOfVariableAndSimplify", method.NewPlan(method.PlanSpec{
	Explanation: method.Explain(ExplainDivideByCoefficientOfVariableAndSimplify),
	Steps: method.Steps(
		method.Apply(DivideByCoefficientOfVariable),
		method.Optionally(SimplifyEquation),
	),
}))

func linearSteps() method.StepsProducer {
	return method.Steps(
		method.CheckForm(pattern.EquationOf(pattern.Any(), pattern.Any())),
		method.Optionally(SimplifyEquation),
		method.WhilePossible(MoveConstantsToTheRightAndSimplify),
		method.Optionally(DivideByCoefficientOfVariableAndSimplify),
		method.Apply(ExtractSolutionFromEquation),
	)
}

// BalanceStrategy solves by applying the inverse operation to both sides.
// It is used in the basic and nextTo balancing modes.
var BalanceStrategy = &method.Strategy{
	Family:      LinearEquationFamily,
	ID:          "Balance",
	Priority:    10,
	Explanation: ExplainSolveLinearEquationByBalancing,
	Steps: method.BranchOn(engine.BalancingMode,
		method.Case(engine.BalancingBasic, linearSteps()),
		method.Case(engine.BalancingNextTo, linearSteps()),
	),
	Excludes: []string{"Isolate"},
}

// IsolateStrategy solves by cancelling terms directly. It is used in the
// advanced balancing mode.
var IsolateStrategy = &method.Strategy{
	Family:      LinearEquationFamily,
	ID:          "Isolate",
	Priority:    20,
	Explanation: ExplainSolveLinearEquationByIsolating,
	Steps: method.BranchOn(engine.BalancingMode,
		method.Case(engine.BalancingAdvanced, linearSteps()),
	),
}

// SolveLinearEquation solves a linear equation in one solution variable.
var SolveLinearEquation = method.Named("SolveLinearEquation", method.WhileStrategiesAvailableFirstOf(
	LinearEquationFamily,
	[]*method.Strategy{BalanceStrategy, IsolateStrategy},
	method.StrategyOption(BalanceStrategy),
	method.StrategyOption(IsolateStrategy),
))

// SolveFactoredEquation solves a product equal to zero by solving one
// linear equation per factor, then collecting the solutions.
var SolveFactoredEquation = func() *method.RunnerMethod {
	product := pattern.ProductContaining()
	equation := pattern.EquationOf(product, pattern.Fixed(expr.Zero()))

	return method.Named("SolveFactoredEquation", method.NewTaskSet(method.TaskSetSpec{
		Pattern:     equation,
		Explanation: method.Explain(ExplainSolveEquationUsingTheZeroProductProperty),
		Tasks: func(tb *method.TasksBuilder) []*steps.Task {
			var solved []*steps.Task
			var values []*expr.Expression
			for _, factor := range tb.Get(product).Children() {
				start := expr.Equation(factor.RemoveBrackets(), expr.Zero())
				task := tb.Task(start, steps.NewMetadata(ExplainSolveEquationForFactor, factor), SolveLinearEquation)
				if task == nil {
					return nil
				}
				solved = append(solved, task)
				for _, v := range solutionValues(task.Result()) {
					if !slices.ContainsFunc(values, v.Equiv) {
						values = append(values, v)
					}
				}
			}
			vars := expr.VariableList(tb.Context().SolutionVariables()...)
			tb.Task(expr.SetSolution(vars, expr.FiniteSet(values...)), steps.NewMetadata(ExplainCollectSolutions), nil,
				method.DependsOn(solved...))
			return tb.AllTasks()
		},
	}))
}()

// solutionValues returns the elements of a finite solution set.
func solutionValues(e *expr.Expression) []*expr.Expression {
	if !e.Is(expr.KindSetSolution) {
		return nil
	}
	set := e.SecondChild()
	if !set.Is(expr.KindFiniteSet) {
		return nil
	}
	return set.Children()
}
