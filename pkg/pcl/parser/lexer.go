package parser

import (
	"fmt"
	"strconv"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// tokenType identifies the lexical class of a token.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenString
	tokenNumber
	tokenOperator
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
	tokenNot
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of expression"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenNumber:
		return "number"
	case tokenOperator:
		return "operator"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenAnd:
		return "'AND'"
	case tokenOr:
		return "'OR'"
	case tokenNot:
		return "'NOT'"
	default:
		return "unknown token"
	}
}

// token is a single lexical token with its source position.
type token struct {
	typ tokenType
	// text is the token's meaning-bearing text: the unquoted content for
	// strings, the raw text otherwise.
	text string
	num  float64 // parsed value for tokenNumber
	pos  ast.Position
}

// lexer turns a condition expression into a token stream.
// Logical keywords (AND, OR, NOT) are case-sensitive uppercase; lowercase
// forms lex as identifiers, which keeps enum members like "and" usable.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next token, or a *ParseError for unknown input.
func (l *lexer) next() (token, error) {
	l.skipSpace()

	start := ast.Position{Offset: l.pos}
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: start}, nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return token{typ: tokenLParen, text: "(", pos: start}, nil

	case ch == ')':
		l.pos++
		return token{typ: tokenRParen, text: ")", pos: start}, nil

	case ch == '\'' || ch == '"':
		return l.lexString(ch, start)

	case ch == '=' || ch == '!' || ch == '<' || ch == '>':
		return l.lexOperator(start)

	case ch >= '0' && ch <= '9', ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
		return l.lexNumber(start)

	case isIdentStart(ch):
		return l.lexIdent(start)

	default:
		return token{}, &ParseError{
			Pos:    start,
			Reason: fmt.Sprintf("unknown token %q", string(ch)),
		}
	}
}

// lexString consumes a quoted string. Single and double quotes are
// interchangeable; the closing quote must match the opening one.
func (l *lexer) lexString(quote byte, start ast.Position) (token, error) {
	l.pos++ // opening quote
	from := l.pos
	for l.pos < len(l.input) {
		if l.input[l.pos] == quote {
			text := l.input[from:l.pos]
			l.pos++ // closing quote
			return token{typ: tokenString, text: text, pos: start}, nil
		}
		l.pos++
	}
	return token{}, &ParseError{
		Pos:    start,
		Reason: "unterminated string literal",
	}
}

// lexOperator consumes a comparison operator.
// Two-character forms are checked before single-character forms so that
// ">=" never lexes as ">" followed by "=".
func (l *lexer) lexOperator(start ast.Position) (token, error) {
	rest := l.input[l.pos:]
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			l.pos += len(op)
			return token{typ: tokenOperator, text: op, pos: start}, nil
		}
	}
	return token{}, &ParseError{
		Pos:    start,
		Reason: fmt.Sprintf("unknown token %q", string(l.input[l.pos])),
	}
}

// lexNumber consumes an integer or decimal literal.
func (l *lexer) lexNumber(start ast.Position) (token, error) {
	from := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}

	text := l.input[from:l.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &ParseError{
			Pos:    start,
			Reason: fmt.Sprintf("invalid number literal %q", text),
		}
	}
	return token{typ: tokenNumber, text: text, num: num, pos: start}, nil
}

// lexIdent consumes an identifier, keyword, or bareword literal.
func (l *lexer) lexIdent(start ast.Position) (token, error) {
	from := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	text := l.input[from:l.pos]
	switch text {
	case "AND":
		return token{typ: tokenAnd, text: text, pos: start}, nil
	case "OR":
		return token{typ: tokenOr, text: text, pos: start}, nil
	case "NOT":
		return token{typ: tokenNot, text: text, pos: start}, nil
	default:
		return token{typ: tokenIdent, text: text, pos: start}, nil
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
