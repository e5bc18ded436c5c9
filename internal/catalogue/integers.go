package catalogue

import (
	"math/big"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

// MaxPower is the largest exponent EvaluateIntegerPowerDirectly computes.
const MaxPower = 64

// maxPowerAsProduct is the largest exponent written out as a product.
const maxPowerAsProduct = 5

var (
	ExplainEvaluateIntegerAddition       = steps.Key("IntegerArithmetic", "EvaluateIntegerAddition")
	ExplainEvaluateIntegerSubtraction    = steps.Key("IntegerArithmetic", "EvaluateIntegerSubtraction")
	ExplainEvaluateIntegerProduct        = steps.Key("IntegerArithmetic", "EvaluateIntegerProduct")
	ExplainEvaluateIntegerDivision       = steps.Key("IntegerArithmetic", "EvaluateIntegerDivision")
	ExplainEvaluateIntegerPowerDirectly  = steps.Key("IntegerArithmetic", "EvaluateIntegerPowerDirectly")
	ExplainRewriteIntegerPowerAsProduct  = steps.Key("IntegerArithmetic", "RewriteIntegerPowerAsProduct")
	ExplainSimplifyEvenPowerOfNegative   = steps.Key("IntegerArithmetic", "SimplifyEvenPowerOfNegative")
	ExplainSimplifyOddPowerOfNegative    = steps.Key("IntegerArithmetic", "SimplifyOddPowerOfNegative")
	ExplainEvaluateProductContainingZero = steps.Key("General", "EvaluateProductContainingZero")
	ExplainSimplifyFractionToInteger     = steps.Key("FractionArithmetic", "SimplifyFractionToInteger")
	ExplainCancelCommonFactorInFraction  = steps.Key("FractionArithmetic", "CancelCommonFactor")
	ExplainEvaluateDecimalAddition       = steps.Key("DecimalArithmetic", "EvaluateDecimalAddition")
	ExplainEvaluateDecimalSubtraction    = steps.Key("DecimalArithmetic", "EvaluateDecimalSubtraction")
)

// EvaluateSignedIntegerAddition adds two integers of a sum, either of
// which may be negative: 3 - 5 becomes -2.
var EvaluateSignedIntegerAddition = func() *method.RunnerMethod {
	term1, term2 := pattern.SignedInteger(), pattern.SignedInteger()
	sum := pattern.SumContaining(term1, term2)

	return method.Named("EvaluateSignedIntegerAddition", rule.New(sum, func(b *rule.Builder) *steps.Transformation {
		total := b.IntegerOp2(term1, term2, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
		key := ExplainEvaluateIntegerAddition
		if !b.IsNeg(term1) && b.IsNeg(term2) {
			key = ExplainEvaluateIntegerSubtraction
		}
		return b.Result(b.SubstituteIn(sum, total), steps.NewMetadata(key, b.Move(term1), b.Move(term2)))
	}))
}()

// EvaluateIntegerProductAndDivision multiplies two integer factors, or
// divides one by a later divisor when the division is exact. A minus sign
// in front of the product is kept unless the result is zero.
var EvaluateIntegerProductAndDivision = func() *method.RunnerMethod {
	base := pattern.UnsignedInteger()
	multiplier := pattern.UnsignedInteger()
	divisor := pattern.UnsignedInteger()
	division := rule.Where(pattern.DivideBy(divisor), func(b *rule.Builder) bool {
		d := b.GetInt(divisor)
		return d.Sign() != 0 && new(big.Int).Rem(b.GetInt(base), d).Sign() == 0
	})
	product := pattern.ProductContaining(base, pattern.OneOf(multiplier, division))
	signed := pattern.StickyOptionalNeg(product, true)

	return method.Named("EvaluateIntegerProductAndDivision", rule.New(signed, func(b *rule.Builder) *steps.Transformation {
		var (
			value       *big.Int
			explanation *steps.Metadata
		)
		if b.IsBound(multiplier) {
			value = new(big.Int).Mul(b.GetInt(base), b.GetInt(multiplier))
			explanation = steps.NewMetadata(ExplainEvaluateIntegerProduct, b.Move(base), b.Move(multiplier))
		} else {
			value = new(big.Int).Quo(b.GetInt(base), b.GetInt(divisor))
			explanation = steps.NewMetadata(ExplainEvaluateIntegerDivision, b.Move(base), b.Move(divisor))
		}
		other := pattern.Provider(multiplier)
		if !b.IsBound(multiplier) {
			other = division
		}
		result := b.SubstituteIn(product, b.CombineTo(base, other, expr.IntegerOf(value)))
		if value.Sign() != 0 {
			result = b.CopySign(signed, result)
		}
		return b.Result(result, explanation)
	}))
}()

// EvaluateIntegerPowerDirectly computes [n ^ k] for k up to MaxPower.
var EvaluateIntegerPowerDirectly = func() *method.RunnerMethod {
	base := pattern.SignedInteger()
	exponent := pattern.IntegerCondition(pattern.UnsignedInteger(), func(k *big.Int) bool {
		return k.Cmp(big.NewInt(MaxPower)) <= 0
	})
	power := rule.Where(pattern.PowerOf(base, exponent), func(b *rule.Builder) bool {
		return b.GetInt(base).Sign() != 0 || b.GetInt(exponent).Sign() != 0
	})

	return method.Named("EvaluateIntegerPowerDirectly", rule.New(power, func(b *rule.Builder) *steps.Transformation {
		value := b.IntegerOp2(base, exponent, func(n, k *big.Int) *big.Int { return new(big.Int).Exp(n, k, nil) })
		return b.Result(value, steps.NewMetadata(ExplainEvaluateIntegerPowerDirectly, b.Move(base), b.Move(exponent)))
	}))
}()

// RewriteIntegerPowerAsProduct writes [2 ^ 4] as 2 * 2 * 2 * 2.
var RewriteIntegerPowerAsProduct = func() *method.RunnerMethod {
	base := pattern.IntegerCondition(pattern.UnsignedInteger(), func(n *big.Int) bool { return n.Cmp(big.NewInt(1)) > 0 })
	exponent := pattern.IntegerCondition(pattern.UnsignedInteger(), func(k *big.Int) bool {
		return k.Cmp(big.NewInt(1)) > 0 && k.Cmp(big.NewInt(maxPowerAsProduct)) <= 0
	})
	power := pattern.PowerOf(base, exponent)

	return method.Named("RewriteIntegerPowerAsProduct", rule.New(power, func(b *rule.Builder) *steps.Transformation {
		n := int(b.GetInt(exponent).Int64())
		factors := make([]*expr.Expression, n)
		for i := range factors {
			factors[i] = b.Distribute(base)
		}
		return b.Result(b.Cancel(exponent, expr.Product(factors...)), steps.NewMetadata(ExplainRewriteIntegerPowerAsProduct, b.Move(base), b.Move(exponent)))
	}))
}()

func powerOfNegative(name string, key steps.MetadataKey, even bool) *method.RunnerMethod {
	positiveBase := pattern.Any()
	exponent := pattern.IntegerCondition(pattern.SignedInteger(), func(k *big.Int) bool {
		return (k.Bit(0) == 0) == even
	})
	power := pattern.PowerOf(pattern.BracketOf(pattern.NegOf(positiveBase)), exponent)

	return method.Named(name, rule.New(power, func(b *rule.Builder) *steps.Transformation {
		result := expr.Power(b.Move(positiveBase), b.Move(exponent))
		if !even {
			result = expr.Neg(result)
		}
		return b.Result(result, steps.NewMetadata(key))
	}))
}

// SimplifyEvenPowerOfNegative drops the sign of a negative base raised
// to an even power: [(-2) ^ 4] becomes [2 ^ 4].
var SimplifyEvenPowerOfNegative = powerOfNegative("SimplifyEvenPowerOfNegative", ExplainSimplifyEvenPowerOfNegative, true)

// SimplifyOddPowerOfNegative moves the sign of a negative base raised to
// an odd power in front: [(-2) ^ 3] becomes -[2 ^ 3].
var SimplifyOddPowerOfNegative = powerOfNegative("SimplifyOddPowerOfNegative", ExplainSimplifyOddPowerOfNegative, false)

// EvaluateProductContainingZero evaluates 0 * anything to 0, provided
// nothing in the product is a division or undefined.
var EvaluateProductContainingZero = func() *method.RunnerMethod {
	zero := pattern.Fixed(expr.Zero())
	product := pattern.Condition(pattern.ProductContaining(zero), pattern.MatchConditionFunc(
		func(_ *engine.Context, _ *pattern.Match, sub *expr.Expression) bool {
			for _, c := range sub.Children() {
				if c.Is(expr.KindDivideBy) || c.IsUndefined() {
					return false
				}
			}
			return true
		}))

	return method.Named("EvaluateProductContainingZero", rule.New(product, func(b *rule.Builder) *steps.Transformation {
		return b.Result(b.TransformTo(product, expr.Zero()), steps.NewMetadata(ExplainEvaluateProductContainingZero, b.Move(zero)))
	}))
}()

// SimplifyFractionToInteger evaluates an integer fraction whose
// denominator divides its numerator: [6 / 3] becomes 2.
var SimplifyFractionToInteger = func() *method.RunnerMethod {
	numerator := pattern.SignedInteger()
	denominator := pattern.IntegerCondition(pattern.UnsignedInteger(), func(d *big.Int) bool { return d.Sign() != 0 })
	fraction := rule.Where(pattern.FractionOf(numerator, denominator), func(b *rule.Builder) bool {
		return new(big.Int).Rem(b.GetInt(numerator), b.GetInt(denominator)).Sign() == 0
	})

	return method.Named("SimplifyFractionToInteger", rule.New(fraction, func(b *rule.Builder) *steps.Transformation {
		value := b.IntegerOp2(numerator, denominator, func(n, d *big.Int) *big.Int { return new(big.Int).Quo(n, d) })
		return b.Result(value, steps.NewMetadata(ExplainSimplifyFractionToInteger, b.Move(numerator), b.Move(denominator)))
	}))
}()

// CancelCommonFactorInFraction cancels an integer factor of the numerator
// against an equal denominator: [2 * x / 2] becomes x.
var CancelCommonFactorInFraction = func() *method.RunnerMethod {
	factor := pattern.UnsignedInteger()
	numerator := pattern.ProductContaining(factor)
	denominator := pattern.UnsignedInteger()
	fraction := rule.Where(pattern.FractionOf(numerator, denominator), func(b *rule.Builder) bool {
		d := b.GetInt(denominator)
		return d.Sign() != 0 && d.Cmp(b.GetInt(factor)) == 0
	})

	return method.Named("CancelCommonFactorInFraction", rule.New(fraction, func(b *rule.Builder) *steps.Transformation {
		rest := b.CancelScoped(b.RestOf(numerator),
			rule.Scoped{Provider: factor, Scopes: []expr.PathScope{expr.ScopeExpression}},
			rule.Scoped{Provider: denominator, Scopes: []expr.PathScope{expr.ScopeExpression}},
		)
		return b.Result(rest, steps.NewMetadata(ExplainCancelCommonFactorInFraction, b.Move(factor)))
	}))
}()
