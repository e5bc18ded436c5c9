package pattern

import (
	"iter"
	"slices"

	"github.com/roach88/stepsolver/internal/engine"
	"github.com/roach88/stepsolver/internal/expr"
)

// Substitutable is a pattern that can rebuild its match with some
// operands replaced.
type Substitutable interface {
	Pattern
	Substitute(m *Match, newVals ...*expr.Expression) *expr.Expression
}

// NaryPattern matches a sum or a product.
//
// Operand patterns are assigned to distinct operands. A commutative
// pattern tries every assignment; an ordered one keeps the operand order.
// A partial pattern leaves unmatched operands over (see Rest); an exact
// one requires one operand per pattern.
type NaryPattern struct {
	common
	kind        expr.Kind
	operands    []Pattern
	partial     bool
	commutative bool
	restFilter  func(ctx *engine.Context, rest []*expr.Expression) bool
	minDepth    int
}

func nary(kind expr.Kind, operands []Pattern, partial, commutative bool) *NaryPattern {
	depth := 1
	for _, o := range operands {
		depth = max(depth, 1+o.MinDepth())
	}
	return &NaryPattern{
		common:      baseCommon(),
		kind:        kind,
		operands:    operands,
		partial:     partial,
		commutative: commutative,
		minDepth:    depth,
	}
}

// SumOf matches a sum of exactly these terms, in order.
func SumOf(terms ...Pattern) *NaryPattern { return nary(expr.KindSum, terms, false, false) }

// SumContaining matches a sum with these terms in order, possibly among others.
func SumContaining(terms ...Pattern) *NaryPattern { return nary(expr.KindSum, terms, true, false) }

// CommutativeSumOf matches a sum of exactly these terms, in any order.
func CommutativeSumOf(terms ...Pattern) *NaryPattern { return nary(expr.KindSum, terms, false, true) }

// CommutativeSumContaining matches a sum with these terms in any order, possibly among others.
func CommutativeSumContaining(terms ...Pattern) *NaryPattern {
	return nary(expr.KindSum, terms, true, true)
}

func ProductOf(factors ...Pattern) *NaryPattern {
	return nary(expr.KindProduct, factors, false, false)
}

func ProductContaining(factors ...Pattern) *NaryPattern {
	return nary(expr.KindProduct, factors, true, false)
}

func CommutativeProductOf(factors ...Pattern) *NaryPattern {
	return nary(expr.KindProduct, factors, false, true)
}

func CommutativeProductContaining(factors ...Pattern) *NaryPattern {
	return nary(expr.KindProduct, factors, true, true)
}

// SumContainingWhere is CommutativeSumContaining, restricted to matches
// whose every other term satisfies rest.
func SumContainingWhere(rest func(*engine.Context, *expr.Expression) bool, terms ...Pattern) *NaryPattern {
	p := CommutativeSumContaining(terms...)
	p.restFilter = allSatisfy(rest)
	return p
}

// ProductContainingWhere is CommutativeProductContaining, restricted to
// matches whose every other factor satisfies rest.
func ProductContainingWhere(rest func(*engine.Context, *expr.Expression) bool, factors ...Pattern) *NaryPattern {
	p := CommutativeProductContaining(factors...)
	p.restFilter = allSatisfy(rest)
	return p
}

func allSatisfy(cond func(*engine.Context, *expr.Expression) bool) func(*engine.Context, []*expr.Expression) bool {
	return func(ctx *engine.Context, rest []*expr.Expression) bool {
		for _, e := range rest {
			if !cond(ctx, e) {
				return false
			}
		}
		return true
	}
}

func (p *NaryPattern) FindMatches(ctx *engine.Context, m *Match, sub *expr.Expression) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		if !admits(p, m, sub) || !sub.Is(p.kind) {
			return
		}
		n := sub.ChildCount()
		if n < len(p.operands) || (!p.partial && n > len(p.operands)) {
			return
		}
		emit := yield
		if p.restFilter != nil {
			emit = func(r *Match) bool {
				if !p.restFilter(ctx, p.Rest(r)) {
					return true
				}
				return yield(r)
			}
		}
		p.assign(ctx, m.Bind(p, sub), sub.Children(), make([]bool, n), 0, emit)
	}
}

// assign matches operand pattern i and the ones after it against the
// unused children. It returns false once yield asks to stop.
func (p *NaryPattern) assign(ctx *engine.Context, m *Match, children []*expr.Expression, used []bool, i int, yield func(*Match) bool) bool {
	if i == len(p.operands) {
		return yield(m)
	}
	for _, j := range p.candidates(used, i) {
		used[j] = true
		for next := range p.operands[i].FindMatches(ctx, m, children[j]) {
			if !p.assign(ctx, next, children, used, i+1, yield) {
				used[j] = false
				return false
			}
		}
		used[j] = false
	}
	return true
}

func (p *NaryPattern) candidates(used []bool, i int) []int {
	if p.commutative {
		var out []int
		for j, u := range used {
			if !u {
				out = append(out, j)
			}
		}
		return out
	}
	last := -1
	for j, u := range used {
		if u {
			last = j
		}
	}
	if !p.partial {
		if last+1 < len(used) {
			return []int{last + 1}
		}
		return nil
	}
	var out []int
	for j := last + 1; j <= len(used)-len(p.operands)+i; j++ {
		out = append(out, j)
	}
	return out
}

func (p *NaryPattern) Key() Pattern { return p }

func (p *NaryPattern) MinDepth() int { return p.minDepth }

// OperandCount is the number of operand patterns.
func (p *NaryPattern) OperandCount() int { return len(p.operands) }

// Kind is KindSum or KindProduct.
func (p *NaryPattern) Kind() expr.Kind { return p.kind }

// MatchedChildren returns the operands assigned to operand patterns, in
// pattern order.
func (p *NaryPattern) MatchedChildren(m *Match) []*expr.Expression {
	bound := p.BoundExpr(m)
	if bound == nil {
		return nil
	}
	var out []*expr.Expression
	for _, o := range p.operands {
		for _, e := range o.BoundExprs(m) {
			if e.Parent() == bound {
				out = append(out, e)
			}
		}
	}
	return out
}

// MatchedIndices returns the positions of MatchedChildren in the match.
func (p *NaryPattern) MatchedIndices(m *Match) []int {
	matched := p.MatchedChildren(m)
	out := make([]int, len(matched))
	for i, e := range matched {
		out[i] = e.ChildIndex()
	}
	return out
}

// Rest returns the operands no operand pattern was assigned to.
func (p *NaryPattern) Rest(m *Match) []*expr.Expression {
	matched := p.MatchedChildren(m)
	var out []*expr.Expression
	for _, c := range p.BoundExpr(m).Children() {
		if !slices.Contains(matched, c) {
			out = append(out, c)
		}
	}
	return out
}

// Substitute rebuilds the matched expression with the k-th matched
// operand replaced by newVals[k]. Matched operands beyond newVals are
// removed. A result with a single operand is that operand; one with none
// is the neutral element.
func (p *NaryPattern) Substitute(m *Match, newVals ...*expr.Expression) *expr.Expression {
	matched := p.MatchedChildren(m)
	var out []*expr.Expression
	for _, c := range p.BoundExpr(m).Children() {
		switch k := slices.Index(matched, c); {
		case k < 0:
			out = append(out, c)
		case k < len(newVals):
			out = append(out, newVals[k])
		}
	}
	return p.build(out)
}

// Extract builds a sum or product of the matched operands in their
// original order.
func (p *NaryPattern) Extract(m *Match) *expr.Expression {
	matched := p.MatchedChildren(m)
	slices.SortFunc(matched, func(a, b *expr.Expression) int { return a.ChildIndex() - b.ChildIndex() })
	return p.build(matched)
}

func (p *NaryPattern) build(operands []*expr.Expression) *expr.Expression {
	if p.kind == expr.KindSum {
		return expr.SumOrSingle(operands...)
	}
	return expr.ProductOrSingle(operands...)
}
