package parser

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/token"
)

var modifierBits = map[token.Kind]ast.Modifiers{
	token.KwPublic:    ast.ModPublic,
	token.KwPrivate:   ast.ModPrivate,
	token.KwProtected: ast.ModProtected,
	token.KwStatic:    ast.ModStatic,
	token.KwFinal:     ast.ModFinal,
	token.KwAbstract:  ast.ModAbstract,
}

func (p *Parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for p.peek().IsModifier() {
		tok := p.advance()
		bit := modifierBits[tok.Kind]
		if mods.Has(bit) {
			p.report(diag.SynDuplicateModifier, diag.SevError, tok.Span, "duplicate modifier '"+tok.Text+"'",
				diag.Fix{Title: "remove modifier", Edits: []diag.FixEdit{{Span: tok.Span, OldText: tok.Text}}})
			continue
		}
		mods |= bit
	}
	if countBits(mods&(ast.ModPublic|ast.ModPrivate|ast.ModProtected)) > 1 {
		p.report(diag.SynModifierNotAllowed, diag.SevError, p.lastSpan, "conflicting access modifiers")
	}
	return mods
}

func countBits(m ast.Modifiers) int {
	n := 0
	for ; m != 0; m &= m - 1 {
		n++
	}
	return n
}

func (p *Parser) parseTypeDecl() (ast.ItemID, bool) {
	start := p.peek().Span
	mods := p.parseModifiers()
	if mods.Has(ast.ModPrivate | ast.ModProtected | ast.ModStatic) {
		p.report(diag.SynModifierNotAllowed, diag.SevError, start.Cover(p.lastSpan),
			"top-level types may only be public, abstract or final")
	}
	kw := p.advance()
	it := ast.Item{Mods: mods}
	switch kw.Kind {
	case token.KwInterface:
		it.Kind = ast.ClassInterface
		it.Mods |= ast.ModAbstract
	case token.KwEnum:
		it.Kind = ast.ClassEnum
	default:
		it.Kind = ast.ClassPlain
	}
	name, nameSpan, ok := p.ident()
	if !ok {
		p.resyncMember()
		return ast.NoItemID, false
	}
	it.Name, it.NameSpan = name, nameSpan
	if p.at(token.Lt) {
		if it.Kind == ast.ClassEnum {
			p.err(diag.SynUnsupported, "enums cannot be generic")
		}
		it.TypeParams = p.parseTypeParams()
	}
	if p.eat(token.KwExtends) {
		switch it.Kind {
		case ast.ClassInterface:
			it.Extends = p.parseTypeList()
		case ast.ClassEnum:
			p.report(diag.SynUnexpectedToken, diag.SevError, p.lastSpan, "enums cannot extend other types")
			p.parseType(0)
		default:
			it.Extends = []ast.TypeID{p.parseType(0)}
			if p.at(token.Comma) {
				p.err(diag.SynUnexpectedToken, "a class can extend only one class")
				p.advance()
				p.parseTypeList()
			}
		}
	}
	if p.eat(token.KwImplements) {
		list := p.parseTypeList()
		if it.Kind == ast.ClassInterface {
			p.report(diag.SynUnexpectedToken, diag.SevError, p.lastSpan, "interfaces use 'extends', not 'implements'")
			it.Extends = append(it.Extends, list...)
		} else {
			it.Implements = list
		}
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.resyncMember()
		return ast.NoItemID, false
	}
	if it.Kind == ast.ClassEnum {
		it.EnumConsts = p.parseEnumConsts()
	}
	for !p.atAny(token.RBrace, token.EOF) {
		before := p.pos
		it.Members = append(it.Members, p.parseMember(it.Name, it.Kind)...)
		if p.pos == before {
			p.errUnexpected()
			p.advance()
		}
	}
	p.expect(token.RBrace)
	it.Span = p.spanFrom(start)
	return p.b.NewItem(it), true
}

func (p *Parser) parseTypeList() []ast.TypeID {
	var out []ast.TypeID
	for {
		if t := p.parseType(0); t.IsValid() {
			out = append(out, t)
		}
		if !p.eat(token.Comma) {
			return out
		}
	}
}

func (p *Parser) parseEnumConsts() []ast.EnumConst {
	var out []ast.EnumConst
	for p.at(token.Ident) {
		tok := p.advance()
		ec := ast.EnumConst{Name: p.b.Strings.Intern(tok.Text), Span: tok.Span}
		if p.at(token.LParen) {
			ec.Args = p.parseArgs()
			ec.Span = p.spanFrom(tok.Span)
		}
		if p.at(token.LBrace) {
			p.err(diag.SynUnsupported, "enum constant bodies are not supported")
			p.skipBalanced()
		}
		out = append(out, ec)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.at(token.RBrace) {
		p.expectSemi()
	}
	return out
}

// parseMember returns several IDs for "int a, b;" field lists.
func (p *Parser) parseMember(className source.StringID, kind ast.ClassKind) []ast.MemberID {
	start := p.peek().Span
	mods := p.parseModifiers()
	if kind == ast.ClassInterface {
		if mods.Has(ast.ModPrivate | ast.ModProtected) {
			p.report(diag.SynModifierNotAllowed, diag.SevError, start, "interface members are always public")
		}
	}

	switch p.peek().Kind {
	case token.KwClass, token.KwInterface, token.KwEnum:
		p.err(diag.SynUnsupported, "nested types are not supported")
		for !p.atAny(token.LBrace, token.EOF) {
			p.advance()
		}
		p.skipBalanced()
		return nil
	case token.LBrace:
		p.err(diag.SynUnsupported, "initializer blocks are not supported")
		p.skipBalanced()
		return nil
	case token.Lt:
		p.err(diag.SynUnsupported, "generic methods are not supported")
		p.resyncMember()
		return nil
	case token.Semicolon:
		p.advance()
		return nil
	}

	// конструктор: Name(
	if tok := p.peek(); tok.Kind == token.Ident && p.peekN(1).Kind == token.LParen &&
		p.b.Strings.Intern(tok.Text) == className {
		p.advance()
		m := ast.Member{Kind: ast.MemberCtor, Mods: mods, Name: className, NameSpan: tok.Span}
		if kind == ast.ClassInterface {
			p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "interfaces cannot have constructors")
		}
		if mods.Has(ast.ModStatic | ast.ModAbstract | ast.ModFinal) {
			p.report(diag.SynModifierNotAllowed, diag.SevError, start, "constructors cannot be static, abstract or final")
		}
		m.Params = p.parseParams()
		p.skipThrows()
		m.Body = p.parseBlock()
		m.Span = p.spanFrom(start)
		return []ast.MemberID{p.b.NewMember(m)}
	}

	typ := p.parseType(allowVoid)
	if !typ.IsValid() {
		p.resyncMember()
		return nil
	}
	name, nameSpan, ok := p.ident()
	if !ok {
		p.resyncMember()
		return nil
	}

	if p.at(token.LParen) {
		m := ast.Member{Kind: ast.MemberMethod, Mods: mods, Type: typ, Name: name, NameSpan: nameSpan}
		m.Params = p.parseParams()
		p.skipThrows()
		if kind == ast.ClassInterface && !mods.Has(ast.ModStatic) && !p.at(token.LBrace) {
			m.Mods |= ast.ModAbstract | ast.ModPublic
		}
		if p.at(token.LBrace) {
			if m.Mods.Has(ast.ModAbstract) {
				p.err(diag.SynUnexpectedToken, "abstract methods cannot have a body")
			}
			m.Body = p.parseBlock()
		} else {
			if !m.Mods.Has(ast.ModAbstract) {
				p.err(diag.SynExpectToken, "expected method body")
			}
			p.expectSemi()
		}
		m.Span = p.spanFrom(start)
		return []ast.MemberID{p.b.NewMember(m)}
	}

	if kind == ast.ClassInterface && !mods.Has(ast.ModStatic) {
		mods |= ast.ModStatic | ast.ModFinal | ast.ModPublic
	}
	if mods.Has(ast.ModAbstract) {
		p.report(diag.SynModifierNotAllowed, diag.SevError, start, "fields cannot be abstract")
	}
	var out []ast.MemberID
	for {
		m := ast.Member{Kind: ast.MemberField, Mods: mods, Type: typ, Name: name, NameSpan: nameSpan}
		m.Type = p.parseDims(typ, p.toks[max(p.pos-1, 0)])
		if p.eat(token.Assign) {
			m.Init = p.parseVarInit()
		}
		m.Span = p.spanFrom(start)
		out = append(out, p.b.NewMember(m))
		if !p.eat(token.Comma) {
			break
		}
		if name, nameSpan, ok = p.ident(); !ok {
			break
		}
	}
	if !p.expectSemi() && !p.atLineStart() && !p.at(token.RBrace) {
		p.resyncMember()
	}
	return out
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LParen)
	var out []ast.Param
	if p.eat(token.RParen) {
		return out
	}
	for {
		p.eat(token.KwFinal)
		typ := p.parseType(0)
		if !typ.IsValid() {
			break
		}
		name, sp, ok := p.ident()
		if !ok {
			break
		}
		typ = p.parseDims(typ, p.toks[p.pos-1])
		out = append(out, ast.Param{Name: name, Span: sp, Type: typ})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen); !ok {
		for !p.atAny(token.RParen, token.LBrace, token.Semicolon, token.EOF) {
			p.advance()
		}
		p.eat(token.RParen)
	}
	return out
}

// throws-клауза принимается, но не проверяется: исключения непроверяемые
func (p *Parser) skipThrows() {
	if p.eat(token.KwThrows) {
		p.parseTypeList()
	}
}
