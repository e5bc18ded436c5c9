package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "'" + t.text + "'"
}

// puncts is ordered so that longer symbols are tried first.
var puncts = []string{
	"/undefined/", "/emptyset/", "/reals/",
	"+/-", "!=", "<=", ">=",
	"[.", ".]", "{.", ".}", "<.", ".>",
	"+", "-", "*", ":", "/", "^", "%", ",", "=", "<", ">",
	"(", ")", "[", "]", "{", "}",
}

func tokenize(src string) ([]token, error) {
	var out []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(src[i]):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i+1 < len(src) && src[i] == '.' && isDigit(src[i+1]) {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			out = append(out, token{kind: tokNumber, text: src[start:i], pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
					break
				}
				i += size
			}
			out = append(out, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			p := matchPunct(src[i:])
			if p == "" {
				return nil, &Error{Pos: i, Message: "unexpected character " + string(r)}
			}
			out = append(out, token{kind: tokPunct, text: p, pos: i})
			i += len(p)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(src)}), nil
}

func matchPunct(s string) string {
	for _, p := range puncts {
		if strings.HasPrefix(s, p) {
			return p
		}
	}
	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
