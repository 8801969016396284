package parser

import (
	"fmt"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// ParseError describes why a condition expression failed to parse.
type ParseError struct {
	Pos    ast.Position // Byte offset of the offending token
	Reason string       // What went wrong
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Reason)
}

// Parse parses a PCL condition expression into an AST.
// It performs no type or variable-existence checking.
func Parse(expression string) (*ast.ExprNode, error) {
	p := &parser{lex: newLexer(expression)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	// The whole input must be consumed; a trailing token means an
	// unsupported sequence (e.g. "a == 1 b == 2") or an unbalanced ')'.
	if p.tok.typ != tokenEOF {
		if p.tok.typ == tokenRParen {
			return nil, &ParseError{Pos: p.tok.pos, Reason: "unbalanced parentheses: unexpected ')'"}
		}
		return nil, &ParseError{
			Pos:    p.tok.pos,
			Reason: fmt.Sprintf("unexpected %s after expression", p.tok.typ),
		}
	}

	return expr, nil
}

// parser is a recursive-descent parser over the lexer's token stream.
// It holds a single token of lookahead.
type parser struct {
	lex *lexer
	tok token
}

// advance moves to the next token.
func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// parseOr parses: andExpr ("OR" andExpr)*
func (p *parser) parseOr() (*ast.ExprNode, error) {
	pos := p.tok.pos

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	if p.tok.typ != tokenOr {
		return left, nil
	}

	children := []*ast.ExprNode{left}
	for p.tok.typ == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}

	return &ast.ExprNode{Kind: ast.ExprKindAny, Children: children, Pos: pos}, nil
}

// parseAnd parses: notExpr ("AND" notExpr)*
func (p *parser) parseAnd() (*ast.ExprNode, error) {
	pos := p.tok.pos

	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	if p.tok.typ != tokenAnd {
		return left, nil
	}

	children := []*ast.ExprNode{left}
	for p.tok.typ == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}

	return &ast.ExprNode{Kind: ast.ExprKindAll, Children: children, Pos: pos}, nil
}

// parseNot parses: "NOT"? atom
func (p *parser) parseNot() (*ast.ExprNode, error) {
	if p.tok.typ != tokenNot {
		return p.parseAtom()
	}

	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}

	child, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	return &ast.ExprNode{Kind: ast.ExprKindNot, Children: []*ast.ExprNode{child}, Pos: pos}, nil
}

// parseAtom parses: "(" expr ")" | comparison
func (p *parser) parseAtom() (*ast.ExprNode, error) {
	switch p.tok.typ {
	case tokenLParen:
		open := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}

		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.tok.typ != tokenRParen {
			return nil, &ParseError{
				Pos:    open,
				Reason: "unbalanced parentheses: missing ')'",
			}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil

	case tokenIdent:
		return p.parseComparison()

	case tokenEOF:
		return nil, &ParseError{Pos: p.tok.pos, Reason: "missing operand"}

	default:
		return nil, &ParseError{
			Pos:    p.tok.pos,
			Reason: fmt.Sprintf("expected identifier or '(', found %s", p.tok.typ),
		}
	}
}

// parseComparison parses: identifier operator literal
func (p *parser) parseComparison() (*ast.ExprNode, error) {
	ident := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.typ != tokenOperator {
		return nil, &ParseError{
			Pos:    p.tok.pos,
			Reason: fmt.Sprintf("expected comparison operator after %q, found %s", ident.text, p.tok.typ),
		}
	}
	op := ast.Operator(p.tok.text)
	if err := p.advance(); err != nil {
		return nil, err
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return &ast.ExprNode{
		Kind:    ast.ExprKindCompare,
		Ident:   ident.text,
		Op:      op,
		Literal: lit,
		Pos:     ident.pos,
	}, nil
}

// parseLiteral parses: quotedString | number | "true" | "false" | bareEnumToken
func (p *parser) parseLiteral() (*ast.Literal, error) {
	tok := p.tok
	switch tok.typ {
	case tokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Kind: ast.LiteralKindString, Str: tok.text, Raw: tok.text, Pos: tok.pos}, nil

	case tokenNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Kind: ast.LiteralKindNumber, Num: tok.num, Raw: tok.text, Pos: tok.pos}, nil

	case tokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if tok.text == "true" || tok.text == "false" {
			return &ast.Literal{Kind: ast.LiteralKindBool, Bool: tok.text == "true", Raw: tok.text, Pos: tok.pos}, nil
		}
		return &ast.Literal{Kind: ast.LiteralKindBareword, Str: tok.text, Raw: tok.text, Pos: tok.pos}, nil

	case tokenEOF:
		return nil, &ParseError{Pos: tok.pos, Reason: "missing operand: expected literal"}

	default:
		return nil, &ParseError{
			Pos:    tok.pos,
			Reason: fmt.Sprintf("expected literal, found %s", tok.typ),
		}
	}
}
