package syntax

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/stepsolver/internal/expr"
)

// Error is a syntax error at a byte offset of the input.
type Error struct {
	Pos     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Message)
}

// Parse reads an expression in the plain solver format. Brackets,
// operand order and operators are kept as written: nothing is flattened
// or simplified.
func Parse(src string) (*expr.Expression, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.statement()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return e, nil
}

// MustParse is Parse for inputs known to be valid. It panics otherwise.
func MustParse(src string) *expr.Expression {
	e, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("syntax: %q: %v", src, err))
	}
	return e
}

// Format renders e in the format Parse reads.
func Format(e *expr.Expression) string { return e.String() }

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) is(kind tokenKind, text string) bool {
	t := p.peek()
	return t.kind == kind && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(tokPunct, text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		t := p.peek()
		return p.errorf(t, "expected '%s', found %s", text, t)
	}
	return nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &Error{Pos: t.pos, Message: fmt.Sprintf(format, args...)}
}

func build(kind expr.Kind, operands ...*expr.Expression) *expr.Expression {
	return expr.New(expr.Op(kind), operands...)
}

// infixLoop parses operands separated by keyword, at the level below.
func (p *parser) infixLoop(kind expr.Kind, keyword string, operand func() (*expr.Expression, error)) (*expr.Expression, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	operands := []*expr.Expression{first}
	for p.is(tokIdent, keyword) {
		p.next()
		e, err := operand()
		if err != nil {
			return nil, err
		}
		operands = append(operands, e)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return build(kind, operands...), nil
}

func (p *parser) statement() (*expr.Expression, error) {
	return p.infixLoop(expr.KindStatementSystem, "AND", func() (*expr.Expression, error) {
		return p.infixLoop(expr.KindStatementUnion, "OR", p.relation)
	})
}

var relations = map[string]expr.Kind{
	"=":  expr.KindEquation,
	"!=": expr.KindInequation,
	"<":  expr.KindLessThan,
	"<=": expr.KindLessThanOrEqual,
	">":  expr.KindGreaterThan,
	">=": expr.KindGreaterThanOrEqual,
}

func (p *parser) relation() (*expr.Expression, error) {
	lhs, err := p.sum()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	kind, ok := relations[t.text]
	if t.kind != tokPunct || !ok {
		return lhs, nil
	}
	p.next()
	rhs, err := p.sum()
	if err != nil {
		return nil, err
	}
	return build(kind, lhs, rhs), nil
}

func (p *parser) sum() (*expr.Expression, error) {
	first, err := p.signedTerm()
	if err != nil {
		return nil, err
	}
	terms := []*expr.Expression{first}
	for {
		var term *expr.Expression
		switch {
		case p.accept("+"):
			term, err = p.product()
		case p.accept("-"):
			term, err = p.wrapped(expr.KindMinus)
		case p.accept("+/-"):
			term, err = p.wrapped(expr.KindPlusMinus)
		default:
			if len(terms) == 1 {
				return first, nil
			}
			return build(expr.KindSum, terms...), nil
		}
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
}

func (p *parser) signedTerm() (*expr.Expression, error) {
	switch {
	case p.accept("-"):
		return p.wrapped(expr.KindMinus)
	case p.accept("+/-"):
		return p.wrapped(expr.KindPlusMinus)
	case p.accept("+"):
		return p.wrapped(expr.KindPlus)
	}
	return p.product()
}

func (p *parser) wrapped(kind expr.Kind) (*expr.Expression, error) {
	e, err := p.signedTerm()
	if err != nil {
		return nil, err
	}
	return build(kind, e), nil
}

func (p *parser) product() (*expr.Expression, error) {
	var factors []*expr.Expression
	for {
		var (
			f   *expr.Expression
			err error
		)
		switch {
		case len(factors) == 0 && !p.is(tokPunct, ":"):
			f, err = p.percentage()
		case p.accept(":"):
			f, err = p.percentage()
			if err == nil {
				f = build(expr.KindDivideBy, f)
			}
		case p.accept("*"):
			f, err = p.percentage()
		default:
			if len(factors) == 1 {
				return factors[0], nil
			}
			return build(expr.KindProduct, factors...), nil
		}
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
}

func (p *parser) percentage() (*expr.Expression, error) {
	e, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.accept("%") {
		e = build(expr.KindPercentage, e)
	}
	return e, nil
}

var brackets = map[string]struct {
	close     string
	decorator expr.Decorator
}{
	"(":  {")", expr.RoundBracket},
	"[.": {".]", expr.SquareBracket},
	"{.": {".}", expr.CurlyBracket},
	"<.": {".>", expr.PartialBracket},
}

var constants = map[string]func() *expr.Expression{
	"/undefined/": expr.Undefined,
	"/reals/":     expr.Reals,
	"/emptyset/":  expr.EmptySet,
}

func (p *parser) atom() (*expr.Expression, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return number(t)
	case tokIdent:
		return p.identifier(t)
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}

	if b, ok := brackets[t.text]; ok {
		e, err := p.statement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(b.close); err != nil {
			return nil, err
		}
		return e.Decorate(b.decorator), nil
	}
	if c, ok := constants[t.text]; ok {
		return c(), nil
	}
	switch t.text {
	case "[":
		return p.fractionOrPower()
	case "{":
		return p.finiteSet()
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func number(t token) (*expr.Expression, error) {
	if strings.Contains(t.text, ".") {
		d, _, err := apd.NewFromString(t.text)
		if err != nil {
			return nil, &Error{Pos: t.pos, Message: err.Error()}
		}
		return expr.DecimalOf(d), nil
	}
	n, ok := new(big.Int).SetString(t.text, 10)
	if !ok {
		return nil, &Error{Pos: t.pos, Message: "invalid integer " + t.text}
	}
	return expr.IntegerOf(n), nil
}

func (p *parser) fractionOrPower() (*expr.Expression, error) {
	first, err := p.statement()
	if err != nil {
		return nil, err
	}
	kind := expr.KindFraction
	switch {
	case p.accept("/"):
	case p.accept("^"):
		kind = expr.KindPower
	default:
		t := p.peek()
		return nil, p.errorf(t, "expected '/' or '^', found %s", t)
	}
	second, err := p.statement()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return build(kind, first, second), nil
}

func (p *parser) finiteSet() (*expr.Expression, error) {
	var elements []*expr.Expression
	if p.accept("}") {
		return expr.FiniteSet(), nil
	}
	for {
		e, err := p.statement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
		if p.accept("}") {
			return expr.FiniteSet(elements...), nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

var functions = map[string]expr.Kind{
	"sqrt": expr.KindSquareRoot,
	"abs":  expr.KindAbsoluteValue,
	"root": expr.KindRoot,
}

var solutions = map[string]expr.Kind{
	"SetSolution":   expr.KindSetSolution,
	"Identity":      expr.KindIdentity,
	"Contradiction": expr.KindContradiction,
}

func (p *parser) identifier(t token) (*expr.Expression, error) {
	if !p.is(tokPunct, "[") {
		return expr.Var(t.text), nil
	}
	if kind, ok := functions[t.text]; ok {
		p.next()
		args, err := p.arguments(kind)
		if err != nil {
			return nil, err
		}
		return build(kind, args...), nil
	}
	if kind, ok := solutions[t.text]; ok {
		p.next()
		vars, err := p.variableList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return build(kind, vars, body), nil
	}
	return expr.Var(t.text), nil
}

func (p *parser) arguments(kind expr.Kind) ([]*expr.Expression, error) {
	var args []*expr.Expression
	for {
		e, err := p.statement()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.accept("]") {
			break
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
	if op := expr.Op(kind); !op.AcceptsChildCount(len(args)) {
		return nil, &Error{Pos: p.peek().pos, Message: fmt.Sprintf("%s takes %d arguments, got %d", kind, op.MinChildCount(), len(args))}
	}
	return args, nil
}

func (p *parser) variableList() (*expr.Expression, error) {
	var names []string
	for p.peek().kind == tokIdent {
		names = append(names, p.next().text)
		if !p.accept(",") {
			break
		}
	}
	return expr.VariableList(names...), nil
}
