// Package parser implements a hand-written recursive-descent parser with
// operator-precedence climbing for binary expressions, building the typed
// ast.Program tree. B tradition has no error recovery: the first diagnostic
// ends the parse.
package parser

import (
	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/diag"
	"github.com/frankischilling/bcc/internal/lexer"
)

// Parser holds a fully-tokenized input and a small lookahead buffer. The
// original compiler peeks one token ahead by cloning the entire lexer state,
// calling next, then restoring the clone; we buffer tokens in the parser
// directly instead, per spec's own design-notes recommendation.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
}

// New creates a Parser over a pre-tokenized input. Tokenization errors are
// lexical diagnostics and are reported before the parser ever runs, via
// lexer.TokenizeAll's own error return.
func New(toks []lexer.Token, file string) *Parser {
	return &Parser{toks: toks, file: file}
}

// Parse tokenizes and parses src into a Program, or returns the first fatal
// diagnostic encountered.
func Parse(src, file string) (*ast.Program, error) {
	toks, err := lexer.TokenizeAll(src, file)
	if err != nil {
		return nil, err
	}
	p := New(toks, file)
	return p.ParseProgram()
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) peekNext() lexer.Token { return p.peekAt(1) }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) pos_(t lexer.Token) diag.Pos {
	return diag.Pos{File: t.File, Line: t.Line, Col: t.Col}
}

// Error is a fatal parse diagnostic.
type Error struct{ Diag diag.Diagnostic }

func (e *Error) Error() string { return e.Diag.Error() }

func (p *Parser) errf(code diag.Code, t lexer.Token, format string, args ...interface{}) *Error {
	return &Error{Diag: diag.Newf(code, p.pos_(t), format, args...)}
}

func (p *Parser) expect(k lexer.Kind, code diag.Code, what string) (lexer.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errf(code, p.cur(), "expected %s, got %s", what, p.cur().Kind)
}

// ParseProgram is the grammar's top-level entry point:
//
//	program := { top }
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(lexer.EOF) {
		top, err := p.parseTop()
		if err != nil {
			return nil, err
		}
		prog.Tops = append(prog.Tops, *top)
	}
	return prog, nil
}

// parseTop disambiguates a top-level item on its leading identifier: a
// following '(' means a function definition, otherwise it's an extern
// definition or declaration.
//
//	top := extern-decl | extern-def | function-def
func (p *Parser) parseTop() (*ast.Top, error) {
	nameTok, err := p.expect(lexer.IDENT, diag.CodeExternSyn, "identifier")
	if err != nil {
		return nil, err
	}
	pos := p.pos_(nameTok)

	if p.at(lexer.LPAREN) {
		fn, err := p.parseFunctionDef(nameTok)
		if err != nil {
			return nil, err
		}
		return &ast.Top{Kind: ast.TopFunction, Function: fn, Pos: pos}, nil
	}

	item, err := p.parseExternDef(nameTok)
	if err != nil {
		return nil, err
	}
	kind := ast.TopExternDef
	if item.Init == nil && item.Variant == ast.ExternScalar {
		kind = ast.TopExternDecl
	}
	return &ast.Top{Kind: kind, Extern: item, Pos: pos}, nil
}

// parseFunctionDef parses the parameter list and body following a name
// already known to be followed by '('.
//
//	function-def := IDENT '(' param-list? ')' block
func (p *Parser) parseFunctionDef(nameTok lexer.Token) (*ast.Function, error) {
	if _, err := p.expect(lexer.LPAREN, diag.CodeExternSyn, "("); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.at(lexer.RPAREN) {
		for {
			pt, err := p.expect(lexer.IDENT, diag.CodeExternSyn, "parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pt.Lexeme, Pos: p.pos_(pt)})
			if _, ok := p.accept(lexer.COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN, diag.CodeExternSyn, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: nameTok.Lexeme, Params: params, Body: body, Pos: p.pos_(nameTok)}, nil
}

// parseExternDef parses every shape after a name that turned out not to be a
// function: a bare declaration, a scalar initializer, a blob, or a vector.
//
//	name ';'                              => scalar, no initializer
//	name '=' expr ';'                     => scalar with initializer
//	name '{' init-list '}' ';'            => blob
//	name [ '[' expr? ']' ] '{' init-list '}' ';'  => vector
//	name [ '[' expr? ']' ] comma-init-list? ';'   => vector, or blob (no brackets)
//	name comma-init-list ';'              => blob with implicit multi-element initializer
func (p *Parser) parseExternDef(nameTok lexer.Token) (*ast.ExternItem, error) {
	item := &ast.ExternItem{Name: nameTok.Lexeme, Pos: p.pos_(nameTok)}

	if p.at(lexer.LBRACK) {
		item.Variant = ast.ExternVector
		p.advance()
		if !p.at(lexer.RBRACK) {
			item.HasBrack = true
			bound, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			item.Bound = bound
		} else {
			item.HasBrack = true
			item.HasEmpty = true
		}
		if _, err := p.expect(lexer.RBRACK, diag.CodeExternSyn, "]"); err != nil {
			return nil, err
		}
		init, err := p.parseOptionalInitTail()
		if err != nil {
			return nil, err
		}
		item.Init = init
		if _, err := p.expect(lexer.SEMI, diag.CodeExternSyn, ";"); err != nil {
			return nil, err
		}
		return item, nil
	}

	if _, ok := p.accept(lexer.SEMI); ok {
		item.Variant = ast.ExternScalar
		return item, nil
	}

	if _, ok := p.accept(lexer.ASSIGN); ok {
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		item.Variant = ast.ExternScalar
		item.Init = &ast.Init{Expr: e, Pos: e.Position()}
		if _, err := p.expect(lexer.SEMI, diag.CodeExternSyn, ";"); err != nil {
			return nil, err
		}
		return item, nil
	}

	if p.at(lexer.LBRACE) {
		list, err := p.parseInitList()
		if err != nil {
			return nil, err
		}
		item.Variant = ast.ExternBlob
		item.Init = list
		if _, err := p.expect(lexer.SEMI, diag.CodeExternSyn, ";"); err != nil {
			return nil, err
		}
		return item, nil
	}

	// Bare comma-separated literal list with no brackets: a blob with an
	// implicit multi-element initializer (spec's extern-def fallback).
	elems, err := p.parseCommaInitElements()
	if err != nil {
		return nil, err
	}
	if elems == nil {
		return nil, p.errf(diag.CodeExternSyn, p.cur(), "bad external definition")
	}
	item.Variant = ast.ExternBlob
	item.Init = &ast.Init{List: elems, Pos: p.pos_(nameTok)}
	if _, err := p.expect(lexer.SEMI, diag.CodeExternSyn, ";"); err != nil {
		return nil, err
	}
	return item, nil
}

// parseOptionalInitTail parses the initializer that may follow a vector's
// "[ expr? ]": either a brace list or a bare comma list, or nothing at all.
func (p *Parser) parseOptionalInitTail() (*ast.Init, error) {
	if p.at(lexer.LBRACE) {
		return p.parseInitList()
	}
	if p.at(lexer.SEMI) {
		return nil, nil
	}
	elems, err := p.parseCommaInitElements()
	if err != nil {
		return nil, err
	}
	if elems == nil {
		return nil, nil
	}
	return &ast.Init{List: elems, Pos: p.pos_(p.cur())}, nil
}

// parseCommaInitElements parses a bare (unbracketed) comma-separated list of
// assignment-level initializer elements, returning nil if the next token
// can't start one (i.e. there is no such list here).
func (p *Parser) parseCommaInitElements() ([]ast.Init, error) {
	if !p.startsInitElement() {
		return nil, nil
	}
	var elems []ast.Init
	for {
		el, err := p.parseInitElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, *el)
		if _, ok := p.accept(lexer.COMMA); !ok {
			break
		}
	}
	return elems, nil
}

func (p *Parser) startsInitElement() bool {
	switch p.cur().Kind {
	case lexer.SEMI, lexer.EOF, lexer.RBRACE:
		return false
	default:
		return true
	}
}

// parseInitList parses a '{' ... '}' initializer list; elements are
// assignment-level expressions (not comma expressions) so that commas keep
// their role as list separators, and nested '{' ... '}' become edge
// subvectors.
func (p *Parser) parseInitList() (*ast.Init, error) {
	open, err := p.expect(lexer.LBRACE, diag.CodeExternSyn, "{")
	if err != nil {
		return nil, err
	}
	var elems []ast.Init
	if !p.at(lexer.RBRACE) {
		for {
			el, err := p.parseInitElement()
			if err != nil {
				return nil, err
			}
			elems = append(elems, *el)
			if _, ok := p.accept(lexer.COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RBRACE, diag.CodeBraceImbal, "}"); err != nil {
		return nil, err
	}
	if elems == nil {
		elems = []ast.Init{} // "{}" still reserves one word at emission time
	}
	return &ast.Init{List: elems, Pos: p.pos_(open)}, nil
}

func (p *Parser) parseInitElement() (*ast.Init, error) {
	if p.at(lexer.LBRACE) {
		return p.parseInitList()
	}
	e, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Init{Expr: e, Pos: e.Position()}, nil
}
