package catalogue

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

var decimalContext = apd.BaseContext.WithPrecision(1000)

// EvaluateDecimalAddition adds two terms of a sum when at least one of
// them is a decimal: 0.5 + 1.25 becomes 1.75.
var EvaluateDecimalAddition = func() *method.RunnerMethod {
	term1, term2 := pattern.SignedNumber(), pattern.SignedNumber()
	sum := rule.Where(pattern.SumContaining(term1, term2), func(b *rule.Builder) bool {
		return isDecimal(b.Get(term1.Unsigned())) || isDecimal(b.Get(term2.Unsigned()))
	})
	inner := sum.Inner().(*pattern.NaryPattern)

	return method.Named("EvaluateDecimalAddition", rule.New(sum, func(b *rule.Builder) *steps.Transformation {
		total := b.NumericOp2(term1, term2, func(x, y *apd.Decimal) *apd.Decimal {
			out := new(apd.Decimal)
			if _, err := decimalContext.Add(out, x, y); err != nil {
				panic(err)
			}
			out.Reduce(out)
			return out
		})
		key := ExplainEvaluateDecimalAddition
		if !b.IsNeg(term1) && b.IsNeg(term2) {
			key = ExplainEvaluateDecimalSubtraction
		}
		return b.Result(b.SubstituteIn(inner, total), steps.NewMetadata(key, b.Move(term1), b.Move(term2)))
	}))
}()

func isDecimal(e *expr.Expression) bool { return e.Is(expr.KindDecimal) }
