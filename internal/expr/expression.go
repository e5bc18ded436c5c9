package expr

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
)

// Decorator is a bracket kind wrapped around an expression.
type Decorator int

const (
	RoundBracket Decorator = iota
	SquareBracket
	CurlyBracket
	// MissingBracket marks a bracket that is needed but absent from the input.
	MissingBracket
	// PartialBracket groups a sub-sum of a sum (or sub-product of a product)
	// without being displayed.
	PartialBracket
)

var decoratorNames = []string{"RoundBracket", "SquareBracket", "CurlyBracket", "MissingBracket", "PartialBracket"}

func (d Decorator) String() string {
	if int(d) < len(decoratorNames) {
		return decoratorNames[d]
	}
	return fmt.Sprintf("Decorator(%d)", int(d))
}

// DecoratorByName resolves a name produced by Decorator.String.
func DecoratorByName(name string) (Decorator, bool) {
	i := slices.Index(decoratorNames, name)
	return Decorator(i), i >= 0
}

func (d Decorator) wrap(s string) string {
	switch d {
	case RoundBracket:
		return "(" + s + ")"
	case SquareBracket:
		return "[. " + s + " .]"
	case CurlyBracket:
		return "{. " + s + " .}"
	case PartialBracket:
		return "<. " + s + " .>"
	}
	return s
}

// Label tags sub-expressions of a result for later extraction.
type Label int

const (
	LabelA Label = iota
	LabelB
	LabelC
)

func (l Label) String() string { return string(rune('A' + int(l))) }

// LabelSpace scopes labels so nested users do not see each other's labels.
type LabelSpace struct{ _ byte }

func NewLabelSpace() *LabelSpace { return &LabelSpace{} }

// Instance returns the label l within the space.
func (s *LabelSpace) Instance(l Label) LabelInstance { return LabelInstance{Space: s, Label: l} }

// LabelInstance is a label within a space. It is an Extractor for the
// labelled part of an expression.
type LabelInstance struct {
	Space *LabelSpace
	Label Label
}

func (li LabelInstance) Extract(e *Expression) *Expression { return e.LabelledPart(li) }

// Extractor selects a sub-expression, or returns nil.
type Extractor interface {
	Extract(e *Expression) *Expression
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(e *Expression) *Expression

func (f ExtractorFunc) Extract(e *Expression) *Expression { return f(e) }

type meta struct {
	decorators []Decorator
	origin     Origin
	label      *LabelInstance
	name       string
}

// Expression is an immutable expression tree node.
//
// Operands are stored as given; Children derives them through the origin
// so they know where they sit. Always pass expressions by pointer.
type Expression struct {
	op       Operator
	operands []*Expression
	meta     meta
	depth    int

	childrenOnce sync.Once
	children     []*Expression

	keyOnce sync.Once
	key     string
}

func newExpression(op Operator, operands []*Expression, m meta) *Expression {
	if !op.AcceptsChildCount(len(operands)) {
		panic(fmt.Sprintf("expr: operator %s does not accept %d operands", op.kind, len(operands)))
	}
	depth := 0
	for _, o := range operands {
		depth = max(depth, o.depth+1)
	}
	if m.origin == nil {
		m.origin = Built
	}
	return &Expression{op: op, operands: operands, meta: m, depth: depth}
}

// New builds an expression with a Built origin and no decorators.
func New(op Operator, operands ...*Expression) *Expression {
	return newExpression(op, slices.Clone(operands), meta{})
}

func (e *Expression) copyMeta(m meta) *Expression {
	return newExpression(e.op, e.operands, m)
}

func (e *Expression) Operator() Operator { return e.op }

func (e *Expression) Kind() Kind { return e.op.kind }

func (e *Expression) Is(kind Kind) bool { return e.op.kind == kind }

// Operands returns the operands without origins.
func (e *Expression) Operands() []*Expression { return slices.Clone(e.operands) }

func (e *Expression) ChildCount() int { return len(e.operands) }

// Children returns the operands carrying origins derived from e.
func (e *Expression) Children() []*Expression {
	e.childrenOnce.Do(func() {
		e.children = e.meta.origin.childrenOrigin(e)
	})
	return e.children
}

func (e *Expression) NthChild(n int) *Expression { return e.Children()[n] }

func (e *Expression) FirstChild() *Expression { return e.NthChild(0) }

func (e *Expression) SecondChild() *Expression { return e.NthChild(1) }

func (e *Expression) Origin() Origin { return e.meta.origin }

func (e *Expression) Path() (Path, bool) { return e.meta.origin.Path() }

// Parent returns the expression e is a child of, when its origin says so.
func (e *Expression) Parent() *Expression {
	if c, ok := e.meta.origin.(*ChildOrigin); ok {
		return c.Parent
	}
	return nil
}

// ChildIndex returns e's position in its parent, or -1.
func (e *Expression) ChildIndex() int {
	if c, ok := e.meta.origin.(*ChildOrigin); ok {
		return c.Index
	}
	return -1
}

func (e *Expression) Decorators() []Decorator { return slices.Clone(e.meta.decorators) }

func (e *Expression) Name() string { return e.meta.name }

func (e *Expression) Label() (LabelInstance, bool) {
	if e.meta.label == nil {
		return LabelInstance{}, false
	}
	return *e.meta.label, true
}

// Depth is 0 for leaves.
func (e *Expression) Depth() int { return e.depth }

func (e *Expression) WithOrigin(o Origin) *Expression {
	m := e.meta
	m.origin = o
	return e.copyMeta(m)
}

func (e *Expression) WithName(name string) *Expression {
	m := e.meta
	m.name = name
	return e.copyMeta(m)
}

func (e *Expression) WithLabel(li *LabelInstance) *Expression {
	m := e.meta
	m.label = li
	return e.copyMeta(m)
}

func (e *Expression) withDecorators(ds []Decorator) *Expression {
	if slices.Equal(ds, e.meta.decorators) {
		return e
	}
	m := e.meta
	m.decorators = ds
	return e.copyMeta(m)
}

// Decorate wraps e in one more decorator.
func (e *Expression) Decorate(d Decorator) *Expression {
	return e.withDecorators(append(slices.Clone(e.meta.decorators), d))
}

func (e *Expression) HasBracket() bool { return len(e.meta.decorators) > 0 }

// HasVisibleBracket ignores partial and missing brackets.
func (e *Expression) HasVisibleBracket() bool {
	for _, d := range e.meta.decorators {
		if d != PartialBracket && d != MissingBracket {
			return true
		}
	}
	return false
}

func (e *Expression) RemoveBrackets() *Expression {
	if !e.HasBracket() {
		return e
	}
	return e.withDecorators(nil)
}

// OuterBracket returns the outermost decorator.
func (e *Expression) OuterBracket() (Decorator, bool) {
	if len(e.meta.decorators) == 0 {
		return 0, false
	}
	return e.meta.decorators[len(e.meta.decorators)-1], true
}

func (e *Expression) IsPartialSum() bool {
	return e.Is(KindSum) && len(e.meta.decorators) > 0 && e.meta.decorators[0] == PartialBracket
}

func (e *Expression) IsPartialProduct() bool {
	return e.Is(KindProduct) && len(e.meta.decorators) > 0 && e.meta.decorators[0] == PartialBracket
}

func (e *Expression) IsUndefined() bool { return e.Is(KindUndefined) }

// Equiv is structural equality ignoring decorators, origins, labels and names.
func (e *Expression) Equiv(other *Expression) bool {
	if e == other {
		return true
	}
	if !e.op.Equal(other.op) || len(e.operands) != len(other.operands) {
		return false
	}
	for i := range e.operands {
		if !e.operands[i].Equiv(other.operands[i]) {
			return false
		}
	}
	return true
}

// Equal is structural equality including decorators at every level.
func (e *Expression) Equal(other *Expression) bool {
	if e == other {
		return true
	}
	if !e.op.Equal(other.op) || !slices.Equal(e.meta.decorators, other.meta.decorators) ||
		len(e.operands) != len(other.operands) {
		return false
	}
	for i := range e.operands {
		if !e.operands[i].Equal(other.operands[i]) {
			return false
		}
	}
	return true
}

// Key is a string identifying e up to Equal. It is computed once per node.
func (e *Expression) Key() string {
	e.keyOnce.Do(func() {
		var b strings.Builder
		e.writeKey(&b)
		e.key = b.String()
	})
	return e.key
}

func (e *Expression) writeKey(b *strings.Builder) {
	b.WriteString(e.op.kind.String())
	switch e.op.kind {
	case KindInteger, KindDecimal, KindVariable:
		b.WriteByte(':')
		b.WriteString(e.op.String())
	}
	for _, d := range e.meta.decorators {
		fmt.Fprintf(b, "/%d", int(d))
	}
	if len(e.operands) == 0 {
		return
	}
	b.WriteByte('(')
	for i, o := range e.operands {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(o.Key())
	}
	b.WriteByte(')')
}

// Variables returns the sorted distinct variable names in e.
func (e *Expression) Variables() []string {
	var names []string
	var walk func(*Expression)
	walk = func(x *Expression) {
		if x.Is(KindVariable) {
			names = append(names, x.op.name)
		}
		for _, o := range x.operands {
			walk(o)
		}
	}
	walk(e)
	slices.Sort(names)
	return slices.Compact(names)
}

func (e *Expression) IsConstant() bool { return len(e.Variables()) == 0 }

// IsConstantIn reports whether e mentions none of the symbols.
func (e *Expression) IsConstantIn(symbols []string) bool {
	for _, v := range e.Variables() {
		if slices.Contains(symbols, v) {
			return false
		}
	}
	return true
}

// LabelledPart returns the first node, in pre-order, carrying li.
func (e *Expression) LabelledPart(li LabelInstance) *Expression {
	if e.meta.label != nil && *e.meta.label == li {
		return e
	}
	for _, c := range e.Children() {
		if found := c.LabelledPart(li); found != nil {
			return found
		}
	}
	return nil
}

// ClearLabels removes every label of the given space.
func (e *Expression) ClearLabels(space *LabelSpace) *Expression {
	operands := make([]*Expression, len(e.operands))
	for i, o := range e.operands {
		operands[i] = o.ClearLabels(space)
	}
	m := e.meta
	if m.label != nil && m.label.Space == space {
		m.label = nil
	}
	return newExpression(e.op, operands, m)
}

// PathMappings returns the mappings of e relative to its origin, with e at root.
func (e *Expression) PathMappings(root Path) []PathMapping {
	return e.meta.origin.pathMappings(root, e.Children())
}

// MergedPathMappings is PathMappings passed through MergePathMappings.
func (e *Expression) MergedPathMappings(root Path) []PathMapping {
	return MergePathMappings(e.PathMappings(root))
}

// ReplaceChildren rebuilds e with new operands and a Built origin.
func (e *Expression) ReplaceChildren(children []*Expression) *Expression {
	m := e.meta
	m.origin = Built
	return newExpression(e.op, slices.Clone(children), m)
}

func (e *Expression) replaceNthChild(index int, child *Expression) *Expression {
	children := slices.Clone(e.Children())
	children[index] = child
	return e.ReplaceChildren(children)
}

// AdjustBracketFor adds or removes brackets so e can be the index-th
// operand of op.
func (e *Expression) AdjustBracketFor(op Operator, index int) *Expression {
	required := !op.NthChildAllowed(index, e.op)
	switch {
	case required && !e.HasBracket():
		return e.Decorate(RoundBracket)
	case !required:
		return e.RemoveBrackets()
	}
	return e
}

// Substitute replaces old, a descendant of e found through its origin, by
// replacement. Brackets around replacement are adjusted for its new
// position. No flattening takes place.
func (e *Expression) Substitute(old, replacement *Expression) *Expression {
	return e.justSubstitute(old.meta.origin, replacement.adjustBracketToReplace(old))
}

func (e *Expression) justSubstitute(at Origin, replacement *Expression) *Expression {
	if SameOrigin(at, e.meta.origin) {
		return replacement
	}
	if c, ok := at.(*ChildOrigin); ok {
		return e.justSubstitute(c.Parent.meta.origin, c.Parent.replaceNthChild(c.Index, replacement))
	}
	return e
}

func (e *Expression) adjustBracketToReplace(old *Expression) *Expression {
	c, ok := old.meta.origin.(*ChildOrigin)
	if !ok {
		return e.RemoveBrackets()
	}
	parent := c.Parent
	oldBracket, hasOld := old.OuterBracket()
	switch {
	case parent.op.NthChildAllowed(c.Index, e.op):
		return e.RemoveBrackets()
	case hasOld && e.canUseOldBracket(old, parent):
		return e.withDecorators([]Decorator{oldBracket})
	default:
		return e.withDecorators([]Decorator{e.fallbackBracket(parent)})
	}
}

func (e *Expression) fallbackBracket(parent *Expression) Decorator {
	if (e.Is(KindSum) && parent.Is(KindSum)) || (e.Is(KindProduct) && parent.Is(KindProduct)) {
		return PartialBracket
	}
	return RoundBracket
}

func (e *Expression) canUseOldBracket(old, parent *Expression) bool {
	switch {
	case e.Is(KindSum) && parent.Is(KindSum):
		return old.Is(KindSum)
	case e.Is(KindProduct) && parent.Is(KindProduct):
		return old.Is(KindProduct)
	}
	b, _ := old.OuterBracket()
	return b != MissingBracket && b != PartialBracket
}

// SubstituteAll replaces every sub-expression Equal to old.
func (e *Expression) SubstituteAll(old, replacement *Expression) *Expression {
	if e.Equal(old) {
		return replacement
	}
	result := e
	for i, c := range e.Children() {
		next := c.SubstituteAll(old, replacement)
		if next != c {
			result = result.replaceNthChild(i, next.AdjustBracketFor(e.op, i))
		}
	}
	return result
}

// AsInteger returns the value of an integer leaf or of the negation of one.
func (e *Expression) AsInteger() (*big.Int, bool) {
	switch {
	case e.Is(KindInteger):
		return e.op.IntegerValue(), true
	case e.Is(KindMinus) && e.operands[0].Is(KindInteger):
		return new(big.Int).Neg(e.operands[0].op.integer), true
	}
	return nil, false
}

// AsDecimal returns the value of a numeric leaf, or of its negation, as a decimal.
func (e *Expression) AsDecimal() (*apd.Decimal, bool) {
	neg := false
	x := e
	if x.Is(KindMinus) {
		neg = true
		x = x.operands[0]
	}
	var d *apd.Decimal
	switch {
	case x.Is(KindInteger):
		d = apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(x.op.integer), 0)
	case x.Is(KindDecimal):
		d = x.op.DecimalValue()
	default:
		return nil, false
	}
	if neg {
		d.Neg(d)
	}
	return d, true
}
