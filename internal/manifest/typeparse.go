package manifest

import (
	"fmt"

	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/lexer"
	"github.com/sunholo/ailang-infer/internal/types"
)

// ParseTypeExpr parses one wire-format type string (spec.md §6) — the
// same textual shape `types.Print` produces — into the surface
// `ast.TypeExpr` tree the alias table expands. It reuses the teacher's
// general-purpose lexer rather than hand-rolling a tokenizer, since the
// delimiters and identifier rules it already implements cover this
// narrower grammar exactly.
//
// Convention: an identifier starting with an uppercase letter, or one
// of the built-in constant names, is a type constructor or alias
// reference; a lowercase-starting identifier is a type variable
// (user-named, or a wildcard when prefixed with "_").
func ParseTypeExpr(src string) (ast.TypeExpr, error) {
	p := &typeParser{lex: lexer.New(src, "manifest")}
	p.advance()
	texpr, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.EOF {
		return nil, fmt.Errorf("unexpected trailing token %q after type", p.tok.Literal)
	}
	return texpr, nil
}

type typeParser struct {
	lex *lexer.Lexer
	tok lexer.Token
}

func (p *typeParser) advance() { p.tok = p.lex.NextToken() }

func (p *typeParser) expect(tt lexer.TokenType) error {
	if p.tok.Type != tt {
		return fmt.Errorf("expected %s, got %q", tt, p.tok.Literal)
	}
	p.advance()
	return nil
}

func (p *typeParser) parseType() (ast.TypeExpr, error) {
	switch p.tok.Type {
	case lexer.IDENT:
		return p.parseIdent()
	case lexer.LBRACKET:
		return p.parseVector()
	case lexer.LBRACE:
		return p.parseRecordLiteral()
	case lexer.LPAREN:
		return p.parseParenForm()
	default:
		return nil, fmt.Errorf("unexpected token %q at start of type", p.tok.Literal)
	}
}

func (p *typeParser) parseIdent() (ast.TypeExpr, error) {
	name := p.tok.Literal
	p.advance()
	return identExpr(name), nil
}

// identExpr applies the uppercase/lowercase, "_"-wildcard naming
// convention documented on ParseTypeExpr.
func identExpr(name string) ast.TypeExpr {
	if name == "" {
		return ast.TVarExpr{IsWildcard: true}
	}
	if name[0] == '_' {
		rest := name[1:]
		return ast.TVarExpr{Name: rest, IsWildcard: true}
	}
	switch name {
	case types.Number.Name, types.String.Name, types.Boolean.Name, types.Void.Name:
		return ast.TConstExpr{Name: name}
	}
	r := rune(name[0])
	if r >= 'A' && r <= 'Z' {
		return ast.TConstExpr{Name: name}
	}
	return ast.TVarExpr{Name: name, IsWildcard: false}
}

func (p *typeParser) parseVector() (ast.TypeExpr, error) {
	if err := p.expect(lexer.LBRACKET); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return ast.TAppExpr{Op: types.OpVector, Args: []ast.TypeExpr{elem}}, nil
}

// parseRecordLiteral parses "{:l1 t1 … :ln tn [| tail]}" — a record
// literal, with typed fields.
func (p *typeParser) parseRecordLiteral() (ast.TypeExpr, error) {
	if err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	row, err := p.parseRowBody(true)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return row, nil
}

// parseRowBody parses the shared interior of "{…}" and "(effect …)":
// zero or more fields followed by an optional "| tail". When typed is
// true, each field is ":label type"; when false (effect labels), each
// field is a bare label name with an implicit void payload.
func (p *typeParser) parseRowBody(typed bool) (ast.TypeExpr, error) {
	var fields []ast.TRowFieldExpr
	for {
		var label string
		if typed {
			if p.tok.Type != lexer.COLON {
				break
			}
			p.advance()
			if p.tok.Type != lexer.IDENT {
				return nil, fmt.Errorf("expected field label after ':', got %q", p.tok.Literal)
			}
			label = p.tok.Literal
			p.advance()
			ft, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.TRowFieldExpr{Label: label, Type: ft})
			continue
		}
		if p.tok.Type != lexer.IDENT {
			break
		}
		label = p.tok.Literal
		p.advance()
		fields = append(fields, ast.TRowFieldExpr{Label: label, Type: ast.TConstExpr{Name: "void"}})
	}

	var tail ast.TypeExpr
	if p.tok.Type == lexer.PIPE {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		tail = t
	}
	return ast.TRowExpr{Fields: fields, Tail: tail}, nil
}

// parseParenForm parses "(-> a1 … an effect result)", "(effect … )",
// or a general application "(op a1 … an)".
func (p *typeParser) parseParenForm() (ast.TypeExpr, error) {
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	if p.tok.Type == lexer.ARROW {
		p.advance()
		var args []ast.TypeExpr
		for p.tok.Type != lexer.RPAREN && p.tok.Type != lexer.EOF {
			a, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, fmt.Errorf("function type needs at least an effect and a result")
		}
		return ast.TAppExpr{Op: types.OpFunc, Args: args}, nil
	}

	if p.tok.Type == lexer.IDENT && p.tok.Literal == "effect" {
		p.advance()
		row, err := p.parseRowBody(false)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return ast.TAppExpr{Op: types.OpEffect, Args: []ast.TypeExpr{row}}, nil
	}

	if p.tok.Type != lexer.IDENT {
		return nil, fmt.Errorf("expected an operator name, got %q", p.tok.Literal)
	}
	op := p.tok.Literal
	p.advance()
	var args []ast.TypeExpr
	for p.tok.Type != lexer.RPAREN && p.tok.Type != lexer.EOF {
		a, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return ast.TAppExpr{Op: op, Args: args}, nil
}
