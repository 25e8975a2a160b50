package parser

import (
	"errors"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/source"
	"jstep/internal/token"
)

func (p *Parser) span(id ast.ExprID) source.Span {
	return p.b.Exprs.Get(id).Span
}

func (p *Parser) parseExpr() ast.ExprID {
	lhs := p.parseTernary()
	op, ok := assignOps[p.peek().Kind]
	if !ok {
		return lhs
	}
	p.advance()
	if !p.isAssignable(lhs) {
		p.report(diag.SynInvalidAssignTarget, diag.SevError, p.span(lhs), "invalid assignment target")
	}
	rhs := p.parseExpr()
	return p.b.Exprs.NewAssign(p.span(lhs).Cover(p.span(rhs)), op, lhs, rhs)
}

func (p *Parser) isAssignable(id ast.ExprID) bool {
	switch p.b.Exprs.Get(p.b.Exprs.Unparen(id)).Kind {
	case ast.ExprIdent, ast.ExprMember, ast.ExprIndex, ast.ExprInvalid:
		return true
	}
	return false
}

func (p *Parser) parseTernary() ast.ExprID {
	cond := p.parseBinary(precOr)
	if !p.eat(token.Question) {
		return cond
	}
	then := p.parseExpr()
	p.expect(token.Colon)
	els := p.parseTernary()
	return p.b.Exprs.NewTernary(p.span(cond).Cover(p.span(els)), cond, then, els)
}

// parseBinary - precedence climbing
func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	left := p.parseUnary()
	for {
		if p.at(token.KwInstanceof) {
			if precRelational < minPrec {
				return left
			}
			p.advance()
			typ := p.parseType(0)
			left = p.b.Exprs.NewTyped(ast.ExprInstanceOf, p.span(left).Cover(p.lastSpan), typ, left)
			continue
		}
		info, n, ok := p.peekBinary()
		if !ok || info.prec < minPrec {
			return left
		}
		for range n {
			p.advance()
		}
		right := p.parseBinary(info.prec + 1)
		left = p.b.Exprs.NewBinary(p.span(left).Cover(p.span(right)), info.op, left, right)
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Minus:
		if next := p.peekN(1); next.Kind == token.IntLit {
			// -2147483648 допустим только со знаком
			p.advance()
			p.advance()
			sp := tok.Span.Cover(next.Span)
			if _, err := lexer.ParseIntLiteral(next.Text, true); err != nil {
				p.reportIntRange(sp, err)
			}
			return p.parsePostfix(p.b.Exprs.NewLiteral(sp, ast.LitInt, "-"+next.Text))
		}
		return p.unary(ast.UnNeg)
	case token.Plus:
		return p.unary(ast.UnPlus)
	case token.Bang:
		return p.unary(ast.UnNot)
	case token.Tilde:
		return p.unary(ast.UnBitNot)
	case token.PlusPlus, token.MinusMinus:
		p.advance()
		x := p.parseUnary()
		if !p.isAssignable(x) {
			p.report(diag.SynInvalidAssignTarget, diag.SevError, p.span(x), "operand of '"+tok.Text+"' must be a variable")
		}
		return p.b.Exprs.NewIncDec(tok.Span.Cover(p.span(x)), tok.Kind == token.PlusPlus, true, x)
	case token.LParen:
		if p.atCast() {
			p.advance()
			typ := p.parseType(0)
			p.expect(token.RParen)
			x := p.parseUnary()
			return p.b.Exprs.NewTyped(ast.ExprCast, tok.Span.Cover(p.span(x)), typ, x)
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) unary(op ast.UnaryOp) ast.ExprID {
	tok := p.advance()
	x := p.parseUnary()
	return p.b.Exprs.NewUnary(tok.Span.Cover(p.span(x)), op, x)
}

// atCast decides between "(Type) x" and a parenthesized expression.
func (p *Parser) atCast() bool {
	j, ok := p.scanType(1)
	if !ok || p.peekN(j).Kind != token.RParen {
		return false
	}
	if p.peekN(1).Kind != token.Ident {
		return true // (int) ...
	}
	switch p.peekN(j + 1).Kind {
	case token.Ident, token.IntLit, token.DoubleLit, token.CharLit, token.StringLit,
		token.KwThis, token.KwSuper, token.KwNew, token.KwTrue, token.KwFalse, token.KwNull,
		token.LParen, token.Bang, token.Tilde:
		return true
	}
	return false
}

func (p *Parser) parsePostfix(x ast.ExprID) ast.ExprID {
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.Dot:
			p.advance()
			name, nameSpan, ok := p.ident()
			if !ok {
				return x
			}
			if p.at(token.LParen) {
				args := p.parseArgs()
				x = p.b.Exprs.NewCall(p.span(x).Cover(p.lastSpan), ast.ExprCallData{Target: x, Name: name, NameSpan: nameSpan, Args: args})
				continue
			}
			x = p.b.Exprs.NewMember(p.span(x).Cover(nameSpan), ast.ExprMemberData{Target: x, Name: name, NameSpan: nameSpan})
		case token.LBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBracket)
			x = p.b.Exprs.NewIndex(p.span(x).Cover(p.lastSpan), x, idx)
		case token.PlusPlus, token.MinusMinus:
			if p.atLineStart() {
				return x
			}
			p.advance()
			if !p.isAssignable(x) {
				p.report(diag.SynInvalidAssignTarget, diag.SevError, p.span(x), "operand of '"+tok.Text+"' must be a variable")
			}
			x = p.b.Exprs.NewIncDec(p.span(x).Cover(tok.Span), tok.Kind == token.PlusPlus, false, x)
		default:
			return x
		}
	}
}

func (p *Parser) parseArgs() []ast.ExprID {
	p.advance() // (
	var args []ast.ExprID
	if p.eat(token.RParen) {
		return args
	}
	for {
		args = append(args, p.parseExpr())
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen); !ok {
		// пропускаем хвост до ')' на той же строке
		for !p.atAny(token.RParen, token.Semicolon, token.RBrace, token.EOF) && !p.atLineStart() {
			p.advance()
		}
		p.eat(token.RParen)
	}
	return args
}

func (p *Parser) reportIntRange(sp source.Span, err error) {
	msg := "invalid int literal"
	if errors.Is(err, lexer.ErrIntRange) {
		msg = "int literal out of range"
	}
	p.report(diag.SynBadLiteral, diag.SevError, sp, msg)
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		if _, err := lexer.ParseIntLiteral(tok.Text, false); err != nil {
			p.reportIntRange(tok.Span, err)
		}
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitInt, tok.Text)
	case token.DoubleLit:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitDouble, tok.Text)
	case token.CharLit:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitChar, tok.Text)
	case token.StringLit:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitString, tok.Text)
	case token.KwTrue:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitTrue, tok.Text)
	case token.KwFalse:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitFalse, tok.Text)
	case token.KwNull:
		p.advance()
		return p.b.Exprs.NewLiteral(tok.Span, ast.LitNull, tok.Text)
	case token.KwThis:
		p.advance()
		return p.b.Exprs.NewThis(tok.Span)
	case token.KwSuper:
		p.advance()
		if !p.at(token.Dot) {
			p.err(diag.SynExpectToken, "expected '.' after 'super'")
		}
		return p.b.Exprs.NewSuper(tok.Span)
	case token.Ident:
		p.advance()
		name := p.b.Strings.Intern(tok.Text)
		if p.at(token.LParen) {
			args := p.parseArgs()
			return p.b.Exprs.NewCall(p.spanFrom(tok.Span), ast.ExprCallData{Name: name, NameSpan: tok.Span, Args: args})
		}
		return p.b.Exprs.NewIdent(tok.Span, name)
	case token.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RParen)
		return p.b.Exprs.NewGroup(p.spanFrom(tok.Span), x)
	case token.KwNew:
		return p.parseNew()
	case token.LBrace:
		p.err(diag.SynUnexpectedToken, "array initializer is only allowed in declarations or after 'new T[]'")
		return p.parseArrayInit()
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	return p.b.Exprs.NewInvalid(p.diagSpan())
}

func (p *Parser) parseNew() ast.ExprID {
	start := p.advance().Span
	elem := p.parseBaseType()
	if !elem.IsValid() {
		return p.b.Exprs.NewInvalid(start)
	}
	if p.at(token.LParen) {
		if p.b.Type(elem).Kind != ast.TypeNamed {
			p.err(diag.SynUnexpectedToken, "primitive types cannot be instantiated with 'new'")
		}
		args := p.parseArgs()
		if p.at(token.LBrace) {
			p.err(diag.SynUnsupported, "anonymous classes are not supported")
			p.skipBalanced()
		}
		return p.b.Exprs.NewNew(p.spanFrom(start), elem, args)
	}
	if !p.at(token.LBracket) {
		p.err(diag.SynExpectToken, "expected '(' or '[' after type in 'new' expression")
		return p.b.Exprs.NewInvalid(p.spanFrom(start))
	}

	data := ast.ExprNewArrayData{}
	dims := 0
	for p.at(token.LBracket) {
		p.advance()
		if p.eat(token.RBracket) {
			dims++
			continue
		}
		if dims > len(data.Dims) {
			p.err(diag.SynUnexpectedToken, "dimension sizes must come before empty '[]'")
		}
		data.Dims = append(data.Dims, p.parseExpr())
		p.expect(token.RBracket)
		dims++
	}
	data.Type = p.b.ArrayOf(elem, dims, p.spanFrom(start))
	if p.at(token.LBrace) {
		if len(data.Dims) > 0 {
			p.err(diag.SynUnexpectedToken, "array creation with both sizes and an initializer")
		}
		data.Init = p.parseArrayInit()
	} else if len(data.Dims) == 0 {
		p.err(diag.SynExpectToken, "array creation needs a size or an initializer")
	}
	return p.b.Exprs.NewNewArray(p.spanFrom(start), data)
}

// parseBaseType is a type without trailing [] dims.
func (p *Parser) parseBaseType() ast.TypeID {
	tok := p.peek()
	switch tok.Kind {
	case token.KwInt, token.KwDouble, token.KwBoolean, token.KwChar:
		p.advance()
		return p.b.NewType(ast.TypeExpr{Kind: primitiveKind(tok.Kind), Span: tok.Span})
	case token.Ident:
		p.advance()
		te := ast.TypeExpr{Kind: ast.TypeNamed, Span: tok.Span, Name: p.b.Strings.Intern(tok.Text)}
		if p.at(token.Lt) {
			if p.peekN(1).Kind == token.Gt {
				p.advance()
				p.advance()
				te.Diamond = true
			} else {
				te.Args = p.parseTypeArgs()
			}
			te.Span = p.spanFrom(tok.Span)
		}
		return p.b.NewType(te)
	}
	p.err(diag.SynExpectType, "expected type after 'new', got "+describe(tok))
	return ast.NoTypeID
}

func (p *Parser) parseVarInit() ast.ExprID {
	if p.at(token.LBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpr()
}

func (p *Parser) parseArrayInit() ast.ExprID {
	start := p.advance().Span
	var elems []ast.ExprID
	for !p.atAny(token.RBrace, token.EOF) {
		elems = append(elems, p.parseVarInit())
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace)
	return p.b.Exprs.NewArrayInit(p.spanFrom(start), elems)
}
