package catalogue

import (
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/method"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/rule"
	"github.com/roach88/stepsolver/internal/steps"
)

var (
	ExplainRemoveBracketSumInSum         = steps.Key("General", "RemoveBracketSumInSum")
	ExplainRemoveBracketProductInProduct = steps.Key("General", "RemoveBracketProductInProduct")
	ExplainRemoveRedundantBracket        = steps.Key("General", "RemoveRedundantBracket")
	ExplainRemoveOuterBracket            = steps.Key("General", "RemoveOuterBracket")
	ExplainSimplifyDoubleMinus           = steps.Key("General", "SimplifyDoubleMinus")
	ExplainEliminateZeroInSum            = steps.Key("General", "EliminateZeroInSum")
	ExplainEliminateOneInProduct         = steps.Key("General", "EliminateOneInProduct")
)

func hasVisibleBracket(p pattern.Pattern) *pattern.ConditionPattern {
	return pattern.Condition(p, pattern.MatchConditionFunc(func(_ *engine.Context, _ *pattern.Match, sub *expr.Expression) bool {
		return sub.HasVisibleBracket()
	}))
}

func cancelDecorator(b *rule.Builder, p pattern.Provider, in *expr.Expression) *expr.Expression {
	return b.CancelScoped(in, rule.Scoped{Provider: p, Scopes: []expr.PathScope{expr.ScopeDecorator}})
}

// RemoveBracketSumInSum flattens a bracketed sum into the sum around it:
// 1 + (2 + x) becomes 1 + 2 + x.
var RemoveBracketSumInSum = func() *method.RunnerMethod {
	inner := hasVisibleBracket(pattern.SumContaining())
	outer := pattern.SumContaining(inner)

	return method.Named("RemoveBracketSumInSum", rule.New(outer, func(b *rule.Builder) *steps.Transformation {
		flat := b.SubstituteIn(outer, b.Get(inner).RemoveBrackets())
		return b.Result(cancelDecorator(b, inner, flat), steps.NewMetadata(ExplainRemoveBracketSumInSum),
			rule.WithTags(steps.Cosmetic))
	}))
}()

// RemoveBracketProductInProduct flattens a bracketed product into the
// product around it.
var RemoveBracketProductInProduct = func() *method.RunnerMethod {
	inner := hasVisibleBracket(pattern.ProductContaining())
	outer := pattern.ProductContaining(inner)

	return method.Named("RemoveBracketProductInProduct", rule.New(outer, func(b *rule.Builder) *steps.Transformation {
		flat := b.SubstituteIn(outer, b.Get(inner).RemoveBrackets())
		return b.Result(cancelDecorator(b, inner, flat), steps.NewMetadata(ExplainRemoveBracketProductInProduct),
			rule.WithTags(steps.Cosmetic))
	}))
}()

// hasRedundantBracket reports whether e has a visible bracket that its
// position does not need. Outermost brackets are left to RemoveOuterBracket.
func hasRedundantBracket(e *expr.Expression) bool {
	parent := e.Parent()
	if parent == nil || !e.HasVisibleBracket() {
		return false
	}
	if d, _ := e.OuterBracket(); d == expr.MissingBracket {
		return false
	}
	return parent.Operator().NthChildAllowed(e.ChildIndex(), e.Operator())
}

// RemoveRedundantBracket removes a bracket the expression does not need:
// 1 + (2) becomes 1 + 2.
var RemoveRedundantBracket = func() *method.RunnerMethod {
	redundant := pattern.PureCondition(func(_ *engine.Context, sub *expr.Expression) bool {
		return hasRedundantBracket(sub)
	})

	return method.Named("RemoveRedundantBracket", rule.New(redundant, func(b *rule.Builder) *steps.Transformation {
		return b.Result(cancelDecorator(b, redundant, b.Get(redundant).RemoveBrackets()),
			steps.NewMetadata(ExplainRemoveRedundantBracket), rule.WithTags(steps.Cosmetic))
	}))
}()

// RemoveOuterBracket removes the brackets around a whole expression.
var RemoveOuterBracket = func() *method.RunnerMethod {
	outer := pattern.PureCondition(func(_ *engine.Context, sub *expr.Expression) bool {
		return sub.Parent() == nil && sub.HasVisibleBracket()
	})

	return method.Named("RemoveOuterBracket", rule.New(outer, func(b *rule.Builder) *steps.Transformation {
		return b.Result(cancelDecorator(b, outer, b.Get(outer).RemoveBrackets()),
			steps.NewMetadata(ExplainRemoveOuterBracket), rule.WithTags(steps.Cosmetic))
	}))
}()

// SimplifyDoubleMinus turns -(-x) into x.
var SimplifyDoubleMinus = func() *method.RunnerMethod {
	value := pattern.Any()
	p := pattern.NegOf(pattern.NegOf(value))

	return method.Named("SimplifyDoubleMinus", rule.New(p, func(b *rule.Builder) *steps.Transformation {
		return b.Result(b.Move(value), steps.NewMetadata(ExplainSimplifyDoubleMinus, b.Move(value)))
	}))
}()

// EliminateZeroInSum drops a zero term.
var EliminateZeroInSum = func() *method.RunnerMethod {
	zero := pattern.Fixed(expr.Zero())
	sum := pattern.SumContaining(zero)

	return method.Named("EliminateZeroInSum", rule.New(sum, func(b *rule.Builder) *steps.Transformation {
		return b.Result(b.Cancel(zero, b.RestOf(sum)), steps.NewMetadata(ExplainEliminateZeroInSum, b.Move(zero)))
	}))
}()

// EliminateOneInProduct drops a factor of one.
var EliminateOneInProduct = func() *method.RunnerMethod {
	one := pattern.Fixed(expr.One())
	product := pattern.ProductContaining(one)

	return method.Named("EliminateOneInProduct", rule.New(product, func(b *rule.Builder) *steps.Transformation {
		return b.Result(b.Cancel(one, b.RestOf(product)), steps.NewMetadata(ExplainEliminateOneInProduct, b.Move(one)))
	}))
}()

// isArithmetic reports whether e is built from numbers with the operators
// of arithmetic only.
func isArithmetic(e *expr.Expression) bool {
	if !slices.Contains(arithmeticKinds, e.Kind()) {
		return false
	}
	for _, c := range e.Children() {
		if !isArithmetic(c) {
			return false
		}
	}
	return true
}

var arithmeticKinds = []expr.Kind{
	expr.KindInteger,
	expr.KindDecimal,
	expr.KindMinus,
	expr.KindPlus,
	expr.KindDivideBy,
	expr.KindFraction,
	expr.KindPower,
	expr.KindSum,
	expr.KindProduct,
}
