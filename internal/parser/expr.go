package parser

import (
	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/diag"
	"github.com/frankischilling/bcc/internal/lexer"
)

// The expression grammar, precedence lowest to highest:
//
//	comma := assign (',' assign)*
//	assign := ternary (assign-op assign)?             -- right associative
//	ternary := logicalOr ('?' assign ':' assign)?
//	logicalOr := bitOr ('||' bitOr)*
//	bitOr := bitAnd ('|' bitAnd)*
//	bitAnd := equality ('&' equality)*
//	equality := relational (('==' | '!=') relational)*
//	relational := shift (('<' | '<=' | '>' | '>=') shift)*
//	shift := additive (('<<' | '>>') additive)*
//	additive := multiplicative (('+' | '-') multiplicative)*
//	multiplicative := unary (('*' | '/' | '%') unary)*
//	unary := ('-' | '!' | '*' | '&' | '++' | '--') unary | postfix
//	postfix := primary (('++' | '--') | '[' expr ']' | '(' arg-list? ')')*
//	primary := NUMBER | STRING | CHAR | IDENT | '(' comma ')'
func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseComma() }

func (p *Parser) parseComma() (ast.Expr, error) {
	lhs, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(lexer.COMMA); !ok {
			return lhs, nil
		}
		rhs, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Comma{Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: lhs.Position()}}
	}
}

var assignOps = map[lexer.Kind]ast.AssignOp{
	lexer.ASSIGN:    ast.AssignPlain,
	lexer.PLUSEQ:    ast.AssignAdd,
	lexer.MINUSEQ:   ast.AssignSub,
	lexer.STAREQ:    ast.AssignMul,
	lexer.SLASHEQ:   ast.AssignDiv,
	lexer.PERCENTEQ: ast.AssignMod,
	lexer.ANDEQ:     ast.AssignAnd,
	lexer.OREQ:      ast.AssignOr,
	lexer.LSHIFTEQ:  ast.AssignShl,
	lexer.RSHIFTEQ:  ast.AssignShr,
	lexer.LTEQ:      ast.AssignLt,
	lexer.LEEQ:      ast.AssignLe,
	lexer.GTEQ:      ast.AssignGt,
	lexer.GEEQ:      ast.AssignGe,
	lexer.EQEQ:      ast.AssignEq,
	lexer.NEEQ:      ast.AssignNe,
}

// parseAssignExpr parses one assignment-level expression: an lvalue followed
// by '=' or one of B's compound/relational-assignment operators, right
// associative, or falls through to a plain ternary expression.
func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.cur().Kind]
	if !ok {
		return lhs, nil
	}
	tok := p.advance()
	if !ast.IsLvalue(lhs) {
		return nil, p.errf(diag.CodeLvalue, tok, "left side of assignment is not an lvalue")
	}
	rhs, err := p.parseAssignExpr() // right associative
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}, nil
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	tok, ok := p.accept(lexer.QUESTION)
	if !ok {
		return cond, nil
	}
	then, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, diag.CodeExprSyntax, ":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Cond: cond, Then: then, Else: els, Base: ast.Base{Pos: p.pos_(tok)}}, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	lhs, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.accept(lexer.BARBAR)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: ast.BinOr, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	lhs, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.accept(lexer.BAR)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: ast.BinBitOr, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.accept(lexer.AMP)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: ast.BinBitAnd, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	lhs, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.EQ:
			op = ast.BinEq
		case lexer.NE:
			op = ast.BinNe
		default:
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	lhs, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.LT:
			op = ast.BinLt
		case lexer.LE:
			op = ast.BinLe
		case lexer.GT:
			op = ast.BinGt
		case lexer.GE:
			op = ast.BinGe
		default:
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseShift() (ast.Expr, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.LSHIFT:
			op = ast.BinShl
		case lexer.RSHIFT:
			op = ast.BinShr
		default:
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.PLUS:
			op = ast.BinAdd
		case lexer.MINUS:
			op = ast.BinSub
		default:
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.STAR:
			op = ast.BinMul
		case lexer.SLASH:
			op = ast.BinDiv
		case lexer.PERCENT:
			op = ast.BinMod
		default:
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs, Base: ast.Base{Pos: p.pos_(tok)}}
	}
}

// parseUnary parses the prefix-operator family. '-', '!', '*' (dereference),
// '&' (address-of), '++', '--' all nest right; '&' and prefix '++'/'--'
// additionally require their operand to be an lvalue.
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.cur()
	var op ast.PrefixOp
	switch tok.Kind {
	case lexer.MINUS:
		op = ast.PrefixNeg
	case lexer.BANG:
		op = ast.PrefixNot
	case lexer.STAR:
		op = ast.PrefixDeref
	case lexer.AMP:
		op = ast.PrefixAddr
	case lexer.PLUSPLUS:
		op = ast.PrefixInc
	case lexer.MINUSMINUS:
		op = ast.PrefixDec
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if (op == ast.PrefixAddr || op == ast.PrefixInc || op == ast.PrefixDec) && !ast.IsLvalue(operand) {
		return nil, p.errf(diag.CodeLvalue, tok, "operand of %s is not an lvalue", tok.Kind)
	}
	return &ast.UnaryPrefix{Op: op, Operand: operand, Base: ast.Base{Pos: p.pos_(tok)}}, nil
}

// parsePostfix parses a primary expression followed by any number of
// postfix forms: call, index, or post-increment/decrement.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case lexer.LPAREN:
			tok := p.advance()
			var args []ast.Expr
			if !p.at(lexer.RPAREN) {
				for {
					a, err := p.parseAssignExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if _, ok := p.accept(lexer.COMMA); !ok {
						break
					}
				}
			}
			if _, err := p.expect(lexer.RPAREN, diag.CodeParenImbal, ")"); err != nil {
				return nil, err
			}
			e = &ast.Call{Callee: e, Args: args, Base: ast.Base{Pos: p.pos_(tok)}}

		case lexer.LBRACK:
			tok := p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACK, diag.CodeBracketImb, "]"); err != nil {
				return nil, err
			}
			e = &ast.Index{X: e, Index: idx, Base: ast.Base{Pos: p.pos_(tok)}}

		case lexer.PLUSPLUS, lexer.MINUSMINUS:
			tok := p.cur()
			if !ast.IsLvalue(e) {
				return nil, p.errf(diag.CodeLvalue, tok, "operand of %s is not an lvalue", tok.Kind)
			}
			op := ast.PostfixInc
			if tok.Kind == lexer.MINUSMINUS {
				op = ast.PostfixDec
			}
			p.advance()
			e = &ast.UnaryPostfix{Op: op, Operand: e, Base: ast.Base{Pos: p.pos_(tok)}}

		default:
			return e, nil
		}
	}
}

// parsePrimary parses a literal, identifier, or parenthesized expression.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.NUMBER:
		p.advance()
		return &ast.Num{Value: tok.Num, Base: ast.Base{Pos: p.pos_(tok)}}, nil

	case lexer.CHAR:
		p.advance()
		return &ast.Num{Value: tok.Num, Base: ast.Base{Pos: p.pos_(tok)}}, nil

	case lexer.STRING:
		p.advance()
		return &ast.Str{Value: tok.Lexeme, Base: ast.Base{Pos: p.pos_(tok)}}, nil

	case lexer.IDENT:
		p.advance()
		return &ast.Var{Name: tok.Lexeme, Base: ast.Base{Pos: p.pos_(tok)}}, nil

	case lexer.LPAREN:
		p.advance()
		e, err := p.parseComma()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, diag.CodeParenImbal, ")"); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, p.errf(diag.CodeExprSyntax, tok, "expected expression, got %s", tok.Kind)
	}
}
