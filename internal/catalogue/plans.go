package catalogue

import (
	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/steps"
)

var (
	ExplainEvaluateSumOfIntegers        = steps.Key("IntegerArithmetic", "EvaluateSumOfIntegers")
	ExplainEvaluateProductOfIntegers    = steps.Key("IntegerArithmetic", "EvaluateProductOfIntegers")
	ExplainEvaluateIntegerPower         = steps.Key("IntegerArithmetic", "EvaluateIntegerPower")
	ExplainSimplifyExpressionInBrackets = steps.Key("General", "SimplifyExpressionInBrackets")
	ExplainEvaluateArithmeticExpression = steps.Key("IntegerArithmetic", "EvaluateArithmeticExpression")
)

// EvaluateSumOfIntegers adds up the integers of a sum, left to right.
var EvaluateSumOfIntegers = func() *method.RunnerMethod {
	sum := pattern.SumContaining()
	return method.Named("EvaluateSumOfIntegers", method.NewPlan(method.PlanSpec{
		Pattern:     sum,
		Explanation: method.Explain(ExplainEvaluateSumOfIntegers, sum),
		Steps:       method.Steps(method.WhilePossible(EvaluateSignedIntegerAddition)),
	}))
}()

// EvaluateProductOfIntegers multiplies and divides the integers of a
// product, left to right.
var EvaluateProductOfIntegers = func() *method.RunnerMethod {
	product := pattern.StickyOptionalNeg(pattern.ProductContaining(), true)
	return method.Named("EvaluateProductOfIntegers", method.NewPlan(method.PlanSpec{
		Pattern:     product,
		Explanation: method.Explain(ExplainEvaluateProductOfIntegers, product),
		Steps:       method.Steps(method.WhilePossible(EvaluateIntegerProductAndDivision)),
	}))
}()

// EvaluateSignedIntegerPower evaluates a power of integers. Small powers
// are first written out as products; powers of negative bases lose or
// move their sign first.
var EvaluateSignedIntegerPower = func() *method.RunnerMethod {
	power := pattern.PowerOf(pattern.Any(), pattern.SignedInteger())
	return method.Named("EvaluateSignedIntegerPower", method.NewPlan(method.PlanSpec{
		Pattern:     power,
		Explanation: method.Explain(ExplainEvaluateIntegerPower, power),
		Steps: method.FirstOf(
			method.Option(method.Steps(
				method.Apply(RewriteIntegerPowerAsProduct),
				method.Apply(EvaluateProductOfIntegers),
			)),
			method.Option(method.Steps(
				method.Optionally(SimplifyEvenPowerOfNegative),
				method.Optionally(SimplifyOddPowerOfNegative),
				method.Deeply(EvaluateIntegerPowerDirectly, false),
			)),
		),
	}))
}()

// evaluationSteps performs one step of the evaluation of an arithmetic
// expression, deepest first.
var evaluationSteps = method.FirstOf(
	method.Option(method.Steps(method.Deeply(RemoveRedundantBracket, true))),
	method.Option(method.Steps(method.Deeply(SimplifyDoubleMinus, true))),
	method.Option(method.Steps(method.Deeply(EvaluateProductContainingZero, true))),
	method.Option(method.Steps(method.Deeply(EvaluateSignedIntegerPower, true))),
	method.Option(method.Steps(method.Deeply(SimplifyFractionToInteger, true))),
	method.Option(method.Steps(method.Deeply(EvaluateProductOfIntegers, true))),
	method.Option(method.Steps(method.Deeply(EvaluateSumOfIntegers, true))),
	method.Option(method.Steps(method.Deeply(EvaluateDecimalAddition, true))),
)

// EvaluateArithmeticSubexpression evaluates an expression in brackets
// inside a larger expression.
var EvaluateArithmeticSubexpression = func() *method.RunnerMethod {
	bracketed := pattern.PureCondition(func(_ *engine.Context, sub *expr.Expression) bool {
		return sub.Parent() != nil && sub.HasVisibleBracket() && isArithmetic(sub)
	})
	return method.Named("EvaluateArithmeticSubexpression", method.NewPlan(method.PlanSpec{
		Pattern:     bracketed,
		Explanation: method.Explain(ExplainSimplifyExpressionInBrackets),
		Steps:       method.Steps(method.WhilePossible(evaluationSteps)),
	}))
}()

// EvaluateArithmeticExpression evaluates an expression made of numbers,
// innermost brackets first.
var EvaluateArithmeticExpression = func() *method.RunnerMethod {
	arithmetic := pattern.PureCondition(func(_ *engine.Context, sub *expr.Expression) bool {
		return isArithmetic(sub)
	})
	return method.Named("EvaluateArithmeticExpression", method.NewPlan(method.PlanSpec{
		Pattern:     arithmetic,
		Explanation: method.Explain(ExplainEvaluateArithmeticExpression),
		Steps: method.Steps(method.WhilePossible(method.FirstOf(
			method.Option(RemoveOuterBracket),
			method.Option(method.Steps(method.Deeply(EvaluateArithmeticSubexpression, true))),
			method.Option(evaluationSteps),
		))),
	}))
}()
