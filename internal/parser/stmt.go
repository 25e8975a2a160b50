package parser

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/token"
)

func (p *Parser) parseBlock() ast.StmtID {
	start := p.peek().Span
	if _, ok := p.expect(token.LBrace); !ok {
		return ast.NoStmtID
	}
	var stmts []ast.StmtID
	for !p.atAny(token.RBrace, token.EOF) {
		before := p.pos
		if st := p.parseStmt(); st.IsValid() {
			stmts = append(stmts, st)
		}
		if p.pos == before {
			p.errUnexpected()
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return p.b.Stmts.NewBlock(p.spanFrom(start), stmts)
}

// endStmt closes a simple statement. When the statement already produced an
// error, the missing ';' is not reported again.
func (p *Parser) endStmt(errsBefore int) {
	if p.errors > errsBefore {
		if !p.eat(token.Semicolon) {
			p.resyncStmt()
		}
		return
	}
	if !p.expectSemi() && !p.atLineStart() && !p.atAny(token.RBrace, token.EOF) {
		p.resyncStmt()
	}
}

func (p *Parser) parseStmt() ast.StmtID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		p.advance()
		return p.b.Stmts.NewEmpty(tok.Span)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		p.advance()
		cond := p.parseParenExpr()
		body := p.parseStmt()
		return p.b.Stmts.NewLoop(ast.StmtWhile, p.spanFrom(tok.Span), ast.StmtLoopData{Cond: cond, Body: body})
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwTry:
		return p.parseTry()
	case token.KwBreak, token.KwContinue:
		p.advance()
		errs := p.errors
		if p.at(token.Ident) && !p.atLineStart() {
			p.err(diag.SynUnsupported, "labeled "+tok.Text+" is not supported")
			p.advance()
		}
		p.endStmt(errs)
		if tok.Kind == token.KwBreak {
			return p.b.Stmts.NewBreak(tok.Span)
		}
		return p.b.Stmts.NewContinue(tok.Span)
	case token.KwReturn:
		p.advance()
		errs := p.errors
		x := ast.NoExprID
		if !p.atAny(token.Semicolon, token.RBrace, token.EOF) {
			x = p.parseExpr()
		}
		p.endStmt(errs)
		return p.b.Stmts.NewExprLike(ast.StmtReturn, p.spanFrom(tok.Span), x)
	case token.KwThrow:
		p.advance()
		errs := p.errors
		x := p.parseExpr()
		p.endStmt(errs)
		return p.b.Stmts.NewExprLike(ast.StmtThrow, p.spanFrom(tok.Span), x)
	case token.KwCase, token.KwDefault:
		p.err(diag.SynMisplacedCase, "'"+tok.Text+"' outside of switch")
		p.advance()
		p.resyncStmt()
		return ast.NoStmtID
	case token.KwElse, token.KwCatch:
		p.err(diag.SynUnexpectedToken, "'"+tok.Text+"' without matching '"+map[token.Kind]string{token.KwElse: "if", token.KwCatch: "try"}[tok.Kind]+"'")
		p.advance()
		p.resyncStmt()
		return ast.NoStmtID
	case token.KwFinally:
		p.err(diag.SynUnsupported, "'finally' is not supported")
		p.advance()
		p.skipBalanced()
		return ast.NoStmtID
	case token.KwClass, token.KwInterface, token.KwEnum:
		p.err(diag.SynUnsupported, "type declarations are only allowed at top level")
		for !p.atAny(token.LBrace, token.EOF) {
			p.advance()
		}
		p.skipBalanced()
		return ast.NoStmtID
	case token.KwThis, token.KwSuper:
		if p.peekN(1).Kind == token.LParen {
			p.advance()
			errs := p.errors
			args := p.parseArgs()
			p.endStmt(errs)
			return p.b.Stmts.NewCtorCall(p.spanFrom(tok.Span), ast.StmtCtorCallData{Super: tok.Kind == token.KwSuper, Args: args})
		}
	case token.KwFinal:
		p.advance()
		if !p.atLocalDecl() {
			p.err(diag.SynExpectType, "expected variable declaration after 'final'")
			p.resyncStmt()
			return ast.NoStmtID
		}
		return p.parseLocalStmt()
	case token.KwVoid:
		p.err(diag.SynUnexpectedToken, "methods must be declared inside a class")
		p.advance()
		p.resyncMember()
		return ast.NoStmtID
	}
	if p.atLocalDecl() {
		return p.parseLocalStmt()
	}
	return p.parseExprStmt()
}

func (p *Parser) parseLocalStmt() ast.StmtID {
	start := p.peek().Span
	errs := p.errors
	st := p.parseLocal()
	p.endStmt(errs)
	if !st.IsValid() {
		return st
	}
	p.b.Stmts.Get(st).Span = p.spanFrom(start)
	return st
}

// parseLocal parses "Type a = x, b[] = y" without the terminator.
func (p *Parser) parseLocal() ast.StmtID {
	start := p.peek().Span
	typ := p.parseType(allowVar)
	if !typ.IsValid() {
		return ast.NoStmtID
	}
	if p.at(token.Ident) && p.peekN(1).Kind == token.LParen {
		p.err(diag.SynUnexpectedToken, "methods must be declared inside a class")
		p.resyncMember()
		return ast.NoStmtID
	}
	data := ast.StmtLocalData{Type: typ}
	for {
		name, sp, ok := p.ident()
		if !ok {
			break
		}
		d := ast.VarDecl{Name: name, NameSpan: sp, Type: p.parseDims(typ, p.toks[p.pos-1])}
		if p.eat(token.Assign) {
			d.Init = p.parseVarInit()
		}
		data.Decls = append(data.Decls, d)
		if !p.eat(token.Comma) {
			break
		}
	}
	return p.b.Stmts.NewLocal(p.spanFrom(start), data)
}

func (p *Parser) parseExprStmt() ast.StmtID {
	start := p.peek().Span
	errs := p.errors
	x := p.parseExpr()
	if p.errors == errs {
		switch p.b.Exprs.Get(x).Kind {
		case ast.ExprAssign, ast.ExprIncDec, ast.ExprCall, ast.ExprNew:
		default:
			p.report(diag.SynUnexpectedToken, diag.SevError, p.b.Exprs.Get(x).Span, "not a statement")
		}
	}
	p.endStmt(errs)
	return p.b.Stmts.NewExprLike(ast.StmtExpr, p.spanFrom(start), x)
}

func (p *Parser) parseIf() ast.StmtID {
	start := p.advance().Span
	data := ast.StmtIfData{Cond: p.parseParenExpr()}
	data.Then = p.parseStmt()
	if p.eat(token.KwElse) {
		data.Else = p.parseStmt()
	}
	return p.b.Stmts.NewIf(p.spanFrom(start), data)
}

func (p *Parser) parseDoWhile() ast.StmtID {
	start := p.advance().Span
	body := p.parseStmt()
	errs := p.errors
	if _, ok := p.expect(token.KwWhile); !ok {
		p.resyncStmt()
		return p.b.Stmts.NewLoop(ast.StmtDoWhile, p.spanFrom(start), ast.StmtLoopData{Body: body})
	}
	cond := p.parseParenExpr()
	p.endStmt(errs)
	return p.b.Stmts.NewLoop(ast.StmtDoWhile, p.spanFrom(start), ast.StmtLoopData{Cond: cond, Body: body})
}

func (p *Parser) parseParenExpr() ast.ExprID {
	if _, ok := p.expect(token.LParen); !ok {
		return p.b.Exprs.NewInvalid(p.diagSpan())
	}
	x := p.parseExpr()
	p.expect(token.RParen)
	return x
}

func (p *Parser) parseFor() ast.StmtID {
	start := p.advance().Span
	if _, ok := p.expect(token.LParen); !ok {
		p.resyncStmt()
		return ast.NoStmtID
	}
	// for (Type name : iter)
	off := 0
	if p.at(token.KwFinal) {
		off = 1
	}
	if j, ok := p.scanType(off); ok && p.peekN(j).Kind == token.Ident && p.peekN(j+1).Kind == token.Colon ||
		p.peekN(off).Kind == token.KwVar && p.peekN(off+1).Kind == token.Ident && p.peekN(off+2).Kind == token.Colon {
		p.eat(token.KwFinal)
		data := ast.StmtForEachData{Type: p.parseType(allowVar)}
		data.Name, data.NameSpan, _ = p.ident()
		p.advance() // :
		data.Iter = p.parseExpr()
		p.expect(token.RParen)
		data.Body = p.parseStmt()
		return p.b.Stmts.NewForEach(p.spanFrom(start), data)
	}

	var data ast.StmtForData
	if !p.at(token.Semicolon) {
		p.eat(token.KwFinal)
		if p.atLocalDecl() {
			if st := p.parseLocal(); st.IsValid() {
				data.Init = append(data.Init, st)
			}
		} else {
			for {
				xs := p.peek().Span
				x := p.parseExpr()
				data.Init = append(data.Init, p.b.Stmts.NewExprLike(ast.StmtExpr, p.spanFrom(xs), x))
				if !p.eat(token.Comma) {
					break
				}
			}
		}
	}
	p.expect(token.Semicolon)
	if !p.at(token.Semicolon) {
		data.Cond = p.parseExpr()
	}
	p.expect(token.Semicolon)
	if !p.at(token.RParen) {
		for {
			data.Update = append(data.Update, p.parseExpr())
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if _, ok := p.expect(token.RParen); !ok {
		for !p.atAny(token.RParen, token.LBrace, token.EOF) {
			p.advance()
		}
		p.eat(token.RParen)
	}
	data.Body = p.parseStmt()
	return p.b.Stmts.NewFor(p.spanFrom(start), data)
}

func (p *Parser) parseSwitch() ast.StmtID {
	start := p.advance().Span
	data := ast.StmtSwitchData{Tag: p.parseParenExpr()}
	if _, ok := p.expect(token.LBrace); !ok {
		p.resyncStmt()
		return p.b.Stmts.NewSwitch(p.spanFrom(start), data)
	}
	for !p.atAny(token.RBrace, token.EOF) {
		tok := p.peek()
		if tok.Kind != token.KwCase && tok.Kind != token.KwDefault {
			p.err(diag.SynMisplacedCase, "statement before the first 'case' label")
			before := p.pos
			p.parseStmt()
			if p.pos == before {
				p.advance()
			}
			continue
		}
		p.advance()
		c := ast.SwitchCase{}
		if tok.Kind == token.KwCase {
			for {
				c.Labels = append(c.Labels, p.parseTernary())
				if !p.eat(token.Comma) {
					break
				}
			}
		}
		p.expect(token.Colon)
		for !p.atAny(token.KwCase, token.KwDefault, token.RBrace, token.EOF) {
			before := p.pos
			if st := p.parseStmt(); st.IsValid() {
				c.Body = append(c.Body, st)
			}
			if p.pos == before {
				p.errUnexpected()
				p.advance()
			}
		}
		c.Span = p.spanFrom(tok.Span)
		data.Cases = append(data.Cases, c)
	}
	p.expect(token.RBrace)
	return p.b.Stmts.NewSwitch(p.spanFrom(start), data)
}

func (p *Parser) parseTry() ast.StmtID {
	start := p.advance().Span
	data := ast.StmtTryData{Body: p.parseBlock()}
	for p.at(token.KwCatch) {
		cs := p.advance().Span
		c := ast.CatchClause{}
		if _, ok := p.expect(token.LParen); !ok {
			p.resyncStmt()
			break
		}
		p.eat(token.KwFinal)
		for {
			if t := p.parseType(0); t.IsValid() {
				c.Types = append(c.Types, t)
			}
			if !p.eat(token.Pipe) {
				break
			}
		}
		c.Name, c.NameSpan, _ = p.ident()
		p.expect(token.RParen)
		c.Body = p.parseBlock()
		c.Span = p.spanFrom(cs)
		data.Catches = append(data.Catches, c)
	}
	if p.at(token.KwFinally) {
		p.err(diag.SynUnsupported, "'finally' is not supported")
		p.advance()
		p.skipBalanced()
	} else if len(data.Catches) == 0 {
		p.report(diag.SynExpectToken, diag.SevError, p.lastSpan, "'try' requires at least one 'catch' clause")
	}
	return p.b.Stmts.NewTry(p.spanFrom(start), data)
}
