package rule

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
	"github.com/roach88/stepsolver/internal/pattern"
	"github.com/roach88/stepsolver/internal/steps"
)

// EmptyProviderError is the panic value of a Builder method that needs a
// binding when the provider has none.
type EmptyProviderError struct{}

func (*EmptyProviderError) Error() string { return "no expressions were bound by the expression provider" }

// Builder creates the result of a rule from one match.
type Builder struct {
	ctx        *engine.Context
	expression *expr.Expression
	match      *pattern.Match
}

// NewBuilder reads m, a match on e. Plans and task sets use it to build
// their explanations.
func NewBuilder(ctx *engine.Context, e *expr.Expression, m *pattern.Match) *Builder {
	return &Builder{ctx: ctx, expression: e, match: m}
}

func (b *Builder) Context() *engine.Context { return b.ctx }

// Expression is the expression the rule is applied to.
func (b *Builder) Expression() *expr.Expression { return b.expression }

func (b *Builder) Match() *pattern.Match { return b.match }

func (b *Builder) bound(p pattern.Provider) []*expr.Expression {
	es := p.BoundExprs(b.match)
	if len(es) == 0 {
		panic(&EmptyProviderError{})
	}
	return es
}

// Get returns the expression bound by p. When p bound several Equiv
// expressions, the first is returned with an origin factoring all of them.
func (b *Builder) Get(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	if len(es) == 1 {
		return es[0]
	}
	return es[0].WithOrigin(expr.Factored(expr.ScopeExpression, es...))
}

// GetOr is Get, with def when p bound nothing.
func (b *Builder) GetOr(p pattern.Provider, def *expr.Expression) *expr.Expression {
	if len(p.BoundExprs(b.match)) == 0 {
		return def
	}
	return b.Get(p)
}

// Move returns the expression bound by p, recorded as moved.
func (b *Builder) Move(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	if len(es) == 1 {
		return es[0].WithOrigin(expr.Moved(es[0]))
	}
	return es[0].WithOrigin(expr.Factored(expr.ScopeExpression, es...))
}

// Introduce returns e as a new expression that comes from nothing.
func (b *Builder) Introduce(e *expr.Expression) *expr.Expression { return e.WithOrigin(expr.Fresh) }

// IntroduceFrom returns e as a new expression prompted by p's bindings.
func (b *Builder) IntroduceFrom(p pattern.Provider, e *expr.Expression) *expr.Expression {
	return e.WithOrigin(expr.Introduced(p.BoundExprs(b.match)...))
}

// Transform returns p's binding as computed from all of p's bindings.
func (b *Builder) Transform(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	return es[len(es)-1].WithOrigin(expr.Combined(es...))
}

// TransformTo returns e as computed from p's bindings.
func (b *Builder) TransformTo(p pattern.Provider, e *expr.Expression) *expr.Expression {
	return e.WithOrigin(expr.Combined(p.BoundExprs(b.match)...))
}

// TransformWith applies f to p's binding and returns the result as
// computed from p's bindings.
func (b *Builder) TransformWith(p pattern.Provider, f func(*expr.Expression) *expr.Expression) *expr.Expression {
	return b.TransformTo(p, f(b.Get(p)))
}

// CombineTo returns e as computed from the bindings of p and q.
func (b *Builder) CombineTo(p, q pattern.Provider, e *expr.Expression) *expr.Expression {
	from := append(p.BoundExprs(b.match), q.BoundExprs(b.match)...)
	return e.WithOrigin(expr.Combined(from...))
}

// Factor returns p's binding as factored out of all of p's bindings.
func (b *Builder) Factor(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	return es[len(es)-1].WithOrigin(expr.Factored(expr.ScopeExpression, es...))
}

// FactorOp returns to as the operator factored out of from.
func (b *Builder) FactorOp(from []*expr.Expression, to *expr.Expression) *expr.Expression {
	return to.WithOrigin(expr.Factored(expr.ScopeOperator, from...))
}

// Distribute returns p's binding as distributed over its positions.
func (b *Builder) Distribute(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	return es[len(es)-1].WithOrigin(expr.Distributed(es...))
}

// DistributeAll is Distribute for each provider.
func (b *Builder) DistributeAll(ps ...pattern.Provider) []*expr.Expression {
	out := make([]*expr.Expression, len(ps))
	for i, p := range ps {
		out[i] = b.Distribute(p)
	}
	return out
}

// Cancel records that p's bindings cancel out inside in.
func (b *Builder) Cancel(p pattern.Provider, in *expr.Expression) *expr.Expression {
	var parts []expr.CancelPart
	for _, e := range p.BoundExprs(b.match) {
		parts = append(parts, expr.CancelPart{Expr: e, Scope: expr.ScopeExpression})
	}
	return in.WithOrigin(expr.Cancelled(in.Origin(), parts...))
}

// Scoped pairs a provider with the parts of its bindings that cancel.
type Scoped struct {
	Provider pattern.Provider
	Scopes   []expr.PathScope
}

// CancelScoped is Cancel with explicit scopes per provider.
func (b *Builder) CancelScoped(in *expr.Expression, scoped ...Scoped) *expr.Expression {
	var parts []expr.CancelPart
	for _, s := range scoped {
		for _, e := range s.Provider.BoundExprs(b.match) {
			for _, scope := range s.Scopes {
				parts = append(parts, expr.CancelPart{Expr: e, Scope: scope})
			}
		}
	}
	return in.WithOrigin(expr.Cancelled(in.Origin(), parts...))
}

// Substitute returns p's binding as the value a formula variable stands for.
func (b *Builder) Substitute(p pattern.Provider) *expr.Expression {
	es := b.bound(p)
	return es[0].WithOrigin(expr.Substituted(es...))
}

// SubstituteName returns the formula variable name standing for p's binding.
func (b *Builder) SubstituteName(p pattern.Provider, name string) *expr.Expression {
	return expr.Var(name).WithOrigin(expr.Substituted(b.bound(p)...))
}

// MoveUnaryOperator returns to, whose outer unary operator is the one of
// from's binding, as in 2 * (-x) to -(2 * x).
func (b *Builder) MoveUnaryOperator(from pattern.Provider, to *expr.Expression) *expr.Expression {
	return to.WithOrigin(expr.MovedUnaryOperator(b.bound(from)[0].Origin()))
}

func (b *Builder) GetInt(p pattern.IntegerProvider) *big.Int { return p.BoundInt(b.match) }

func (b *Builder) GetNumber(p pattern.NumberProvider) *apd.Decimal { return p.BoundNumber(b.match) }

// IntegerOp computes an integer from p's value.
func (b *Builder) IntegerOp(p pattern.IntegerProvider, op func(*big.Int) *big.Int) *expr.Expression {
	return b.TransformTo(p, expr.IntegerOf(op(p.BoundInt(b.match))))
}

// IntegerOp2 computes an integer from the values of p and q.
func (b *Builder) IntegerOp2(p, q pattern.IntegerProvider, op func(x, y *big.Int) *big.Int) *expr.Expression {
	return b.CombineTo(p, q, expr.IntegerOf(op(p.BoundInt(b.match), q.BoundInt(b.match))))
}

// NumericOp computes a number from p's value.
func (b *Builder) NumericOp(p pattern.NumberProvider, op func(*apd.Decimal) *apd.Decimal) *expr.Expression {
	return b.TransformTo(p, expr.NumberOf(op(p.BoundNumber(b.match))))
}

// NumericOp2 computes a number from the values of p and q.
func (b *Builder) NumericOp2(p, q pattern.NumberProvider, op func(x, y *apd.Decimal) *apd.Decimal) *expr.Expression {
	return b.CombineTo(p, q, expr.NumberOf(op(p.BoundNumber(b.match), q.BoundNumber(b.match))))
}

// Round rounds d half up to the context's precision.
func (b *Builder) Round(d *apd.Decimal) *apd.Decimal {
	c := apd.BaseContext.WithPrecision(1000)
	c.Rounding = apd.RoundHalfUp
	out := new(apd.Decimal)
	if _, err := c.Quantize(out, d, -int32(b.ctx.Precision())); err != nil {
		panic(err)
	}
	return out
}

func (b *Builder) IsBound(p pattern.Pattern) bool { return b.match.IsBound(p) }

func (b *Builder) IsNeg(p pattern.SignedPattern) bool { return p.IsNeg(b.match) }

func (b *Builder) IsWrapping(p *pattern.OptionalWrappingPattern) bool { return p.IsWrapping(b.match) }

// CopySign negates to when from matched a negation.
func (b *Builder) CopySign(from pattern.SignedPattern, to *expr.Expression) *expr.Expression {
	if from.IsNeg(b.match) {
		return expr.Neg(to)
	}
	return to
}

// CopyFlippedSign negates to unless from matched a negation.
func (b *Builder) CopyFlippedSign(from pattern.SignedPattern, to *expr.Expression) *expr.Expression {
	if from.IsNeg(b.match) {
		return to
	}
	return expr.Neg(to)
}

// WrapIf applies wrapper to e when p matched its wrapped form.
func (b *Builder) WrapIf(p *pattern.OptionalWrappingPattern, e *expr.Expression, wrapper func(*expr.Expression) *expr.Expression) *expr.Expression {
	if p.IsWrapping(b.match) {
		return wrapper(e)
	}
	return e
}

// RestOf is the n-ary match with its matched operands removed.
func (b *Builder) RestOf(p pattern.Substitutable) *expr.Expression { return p.Substitute(b.match) }

// SubstituteIn is the n-ary match with its matched operands replaced by vals.
func (b *Builder) SubstituteIn(p pattern.Substitutable, vals ...*expr.Expression) *expr.Expression {
	return p.Substitute(b.match, vals...)
}

// MatchPattern extends the current match with the first match of p in
// sub, or returns nil.
func (b *Builder) MatchPattern(p pattern.Pattern, sub *expr.Expression) *pattern.Match {
	for m := range p.FindMatches(b.ctx, b.match, sub) {
		return m
	}
	return nil
}

// BuildWith runs f with a Builder reading m instead of the current match.
func (b *Builder) BuildWith(m *pattern.Match, f func(*Builder) *expr.Expression) *expr.Expression {
	return f(NewBuilder(b.ctx, b.expression, m))
}

// SolutionVariables is the context's solution variable, or the list of
// them when there are several.
func (b *Builder) SolutionVariables() *expr.Expression {
	vars := b.ctx.SolutionVariables()
	if len(vars) == 1 {
		return expr.Var(vars[0])
	}
	return expr.VariableList(vars...)
}

// WithLabel labels e in the context's label space. Without a label space
// e is returned unchanged.
func (b *Builder) WithLabel(e *expr.Expression, l expr.Label) *expr.Expression {
	space := b.ctx.LabelSpace()
	if space == nil {
		return e
	}
	li := space.Instance(l)
	return e.WithLabel(&li)
}

// ResultOption sets an optional part of a rule result.
type ResultOption func(*steps.Transformation)

func WithFormula(f *expr.Expression) ResultOption {
	return func(t *steps.Transformation) { t.Formula = f }
}

func WithTags(tags ...steps.Tag) ResultOption {
	return func(t *steps.Transformation) { t.Tags = append(t.Tags, tags...) }
}

func WithSkills(skills ...*steps.Metadata) ResultOption {
	return func(t *steps.Transformation) { t.Skills = append(t.Skills, skills...) }
}

func WithSteps(s ...*steps.Transformation) ResultOption {
	return func(t *steps.Transformation) { t.Steps = s }
}

func WithTasks(tasks ...*steps.Task) ResultOption {
	return func(t *steps.Transformation) { t.Tasks = tasks }
}

// Result builds the rule's transformation of the current expression.
func (b *Builder) Result(toExpr *expr.Expression, explanation *steps.Metadata, opts ...ResultOption) *steps.Transformation {
	t := &steps.Transformation{
		Type:        steps.TypeRule,
		FromExpr:    b.expression,
		ToExpr:      toExpr,
		Explanation: explanation,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
