package catalogue

import (
	"fmt"
	"sync"

	"github.com/roach88/stepsolver/internal/method"
)

type entry struct {
	method      *method.RunnerMethod
	description string
	hidden      bool
}

func entries() []entry {
	return []entry{
		{EvaluateArithmeticExpression, "Evaluate an expression made of integers and decimals", false},
		{EvaluateSumOfIntegers, "Add up the integers of a sum", false},
		{EvaluateProductOfIntegers, "Multiply and divide the integers of a product", false},
		{EvaluateSignedIntegerPower, "Evaluate a power of integers", false},
		{SolveLinearEquation, "Solve a linear equation in one variable", false},
		{SolveFactoredEquation, "Solve a product of linear factors equal to zero", false},

		{EvaluateSignedIntegerAddition, "Add two integers", true},
		{EvaluateIntegerProductAndDivision, "Multiply or divide two integers", true},
		{EvaluateIntegerPowerDirectly, "Compute a power of an integer", true},
		{RewriteIntegerPowerAsProduct, "Write a small power as a product", true},
		{SimplifyEvenPowerOfNegative, "Drop the sign of a negative base with an even exponent", true},
		{SimplifyOddPowerOfNegative, "Move the sign of a negative base with an odd exponent", true},
		{EvaluateProductContainingZero, "Evaluate a product containing zero", true},
		{SimplifyFractionToInteger, "Evaluate an exact integer fraction", true},
		{CancelCommonFactorInFraction, "Cancel a factor common to a fraction's numerator and denominator", true},
		{EvaluateDecimalAddition, "Add two numbers, one of them a decimal", true},
		{RemoveBracketSumInSum, "Flatten a bracketed sum in a sum", true},
		{RemoveBracketProductInProduct, "Flatten a bracketed product in a product", true},
		{RemoveRedundantBracket, "Remove a bracket that is not needed", true},
		{RemoveOuterBracket, "Remove the brackets around the whole expression", true},
		{SimplifyDoubleMinus, "Simplify a double minus", true},
		{EliminateZeroInSum, "Drop a zero term", true},
		{EliminateOneInProduct, "Drop a factor of one", true},
		{MoveConstantsToTheRight, "Move constant terms to the right hand side", true},
		{DivideByCoefficientOfVariable, "Divide both sides by the coefficient of the variable", true},
		{ExtractSolutionFromEquation, "Turn x = c into a solution set", true},
		{SimplifyEquation, "Simplify both sides of an equation", true},
	}
}

// Register adds the catalogue's methods to r, under their names.
func Register(r *method.Registry) error {
	for _, e := range entries() {
		err := r.Register(method.Entry{
			ID:          e.method.Name(),
			Description: e.description,
			Hidden:      e.hidden,
			Method:      e.method,
		})
		if err != nil {
			return fmt.Errorf("register catalogue: %w", err)
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *method.Registry
)

// Default returns a registry holding the catalogue. It is built once.
func Default() *method.Registry {
	defaultOnce.Do(func() {
		r := method.NewRegistry()
		if err := Register(r); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
