package parser

import (
	"slices"

	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		if !tok.Virtual {
			p.lastSpan = tok.Span
		}
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// atLineStart reports whether the current token begins a new source line.
func (p *Parser) atLineStart() bool {
	tok := p.peek()
	return p.pos > 0 && token.HasNewline(tok.Leading)
}

// spanFrom covers everything from start to the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.lastSpan)
}

// diagSpan is the current token, or the point after the last token at EOF.
func (p *Parser) diagSpan() source.Span {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return p.lastSpan.AtEnd()
	}
	return tok.Span
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string, fixes ...diag.Fix) {
	if sev == diag.SevError {
		p.errors++
	}
	d := diag.New(sev, code, sp, msg)
	d.Fixes = fixes
	p.diags = append(p.diags, d)
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.DoubleLit, token.StringLit, token.CharLit, token.Invalid:
		return "'" + tok.Text + "'"
	default:
		return "'" + tok.Kind.String() + "'"
	}
}

func (p *Parser) errUnexpected() {
	p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
}

// expect consumes k or reports it missing. For closing tokens the diagnostic
// carries a quick fix inserting the token after the previous one.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	msg := "expected '" + k.String() + "', got " + describe(p.peek())
	switch k {
	case token.RParen, token.RBracket, token.RBrace, token.Gt, token.Colon:
		at := p.lastSpan.AtEnd()
		p.report(diag.SynExpectToken, diag.SevError, p.diagSpan(), msg,
			diag.Fix{Title: "insert '" + k.String() + "'", Edits: []diag.FixEdit{diag.InsertText(at, k.String())}})
	default:
		p.err(diag.SynExpectToken, msg)
	}
	return token.Token{Kind: token.Invalid, Span: p.diagSpan()}, false
}

// expectSemi consumes a statement terminator. A miss at a line end or before
// '}' becomes a healing candidate.
func (p *Parser) expectSemi() bool {
	if p.eat(token.Semicolon) {
		return true
	}
	if p.atLineStart() || p.atAny(token.RBrace, token.EOF) {
		p.candidates = append(p.candidates, p.pos)
	}
	at := p.lastSpan.AtEnd()
	p.report(diag.SynExpectSemicolon, diag.SevError, p.lastSpan,
		"expected ';' after "+describe(p.toks[max(p.pos-1, 0)])+", got "+describe(p.peek()),
		diag.Fix{Title: "insert ';'", Edits: []diag.FixEdit{diag.InsertText(at, ";")}})
	return false
}

func (p *Parser) ident() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.b.Strings.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.peek()))
	return source.NoStringID, p.diagSpan(), false
}

func isStmtStarter(k token.Kind) bool {
	switch k {
	case token.KwIf, token.KwWhile, token.KwDo, token.KwFor, token.KwSwitch, token.KwReturn,
		token.KwBreak, token.KwContinue, token.KwThrow, token.KwTry, token.KwInt, token.KwDouble,
		token.KwBoolean, token.KwChar, token.KwVar, token.KwFinal, token.KwThis, token.KwSuper,
		token.KwNew, token.Ident, token.LBrace, token.KwClass, token.KwInterface, token.KwEnum,
		token.PlusPlus, token.MinusMinus:
		return true
	}
	return false
}

// resyncStmt skips to the end of a broken statement: past ';', before '}',
// or before a statement starter at the beginning of a line.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.peek()
		switch tok.Kind {
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.LBrace:
			if depth == 0 && p.atLineStart() {
				return
			}
		case token.RBrace:
			return
		}
		if depth == 0 && p.atLineStart() && isStmtStarter(tok.Kind) && p.pos > 0 {
			return
		}
		p.advance()
		if depth == 0 && p.atLineStart() && isStmtStarter(p.peek().Kind) {
			return
		}
	}
}

// resyncMember skips a broken class member: past ';' or a balanced {...}
// body, stopping before the closing '}' of the class.
func (p *Parser) resyncMember() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// skipBalanced consumes a {...} group without building nodes.
func (p *Parser) skipBalanced() {
	if !p.at(token.LBrace) {
		return
	}
	depth := 0
	for !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}
