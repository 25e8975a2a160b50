package parser

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/token"
)

type typeFlags uint8

const (
	allowVoid typeFlags = 1 << iota
	allowVar
)

// parseType parses Name<Args>[]..., a primitive, void or var.
func (p *Parser) parseType(flags typeFlags) ast.TypeID {
	tok := p.peek()
	var id ast.TypeID
	switch tok.Kind {
	case token.KwInt, token.KwDouble, token.KwBoolean, token.KwChar:
		p.advance()
		id = p.b.NewType(ast.TypeExpr{Kind: primitiveKind(tok.Kind), Span: tok.Span})
	case token.KwVoid:
		p.advance()
		if flags&allowVoid == 0 {
			p.report(diag.SynExpectType, diag.SevError, tok.Span, "'void' is only allowed as a method return type")
		}
		return p.b.NewType(ast.TypeExpr{Kind: ast.TypeVoid, Span: tok.Span})
	case token.KwVar:
		p.advance()
		if flags&allowVar == 0 {
			p.report(diag.SynExpectType, diag.SevError, tok.Span, "'var' is only allowed for local variables")
		}
		return p.b.NewType(ast.TypeExpr{Kind: ast.TypeVar, Span: tok.Span})
	case token.Ident:
		p.advance()
		te := ast.TypeExpr{Kind: ast.TypeNamed, Span: tok.Span, Name: p.b.Strings.Intern(tok.Text)}
		if p.at(token.Lt) {
			te.Args = p.parseTypeArgs()
			te.Span = p.spanFrom(tok.Span)
		}
		id = p.b.NewType(te)
	default:
		p.err(diag.SynExpectType, "expected type, got "+describe(tok))
		return ast.NoTypeID
	}
	return p.parseDims(id, tok)
}

func (p *Parser) parseDims(id ast.TypeID, first token.Token) ast.TypeID {
	for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		id = p.b.NewType(ast.TypeExpr{Kind: ast.TypeArray, Span: p.spanFrom(first.Span), Elem: id})
	}
	return id
}

func (p *Parser) parseTypeArgs() []ast.TypeID {
	p.advance() // <
	var args []ast.TypeID
	for {
		if p.at(token.Question) {
			p.err(diag.SynUnsupported, "wildcard type arguments are not supported")
			p.advance()
		} else if t := p.parseType(0); t.IsValid() {
			args = append(args, t)
		} else {
			break
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
	return args
}

func (p *Parser) parseTypeParams() []ast.TypeParam {
	p.advance() // <
	var out []ast.TypeParam
	for {
		name, sp, ok := p.ident()
		if !ok {
			break
		}
		tp := ast.TypeParam{Name: name, Span: sp}
		if p.eat(token.KwExtends) {
			tp.Bound = p.parseType(0)
			for p.eat(token.Amp) {
				p.err(diag.SynUnsupported, "intersection bounds are not supported")
				p.parseType(0)
			}
		}
		out = append(out, tp)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
	return out
}

func primitiveKind(k token.Kind) ast.TypeExprKind {
	switch k {
	case token.KwInt:
		return ast.TypeInt
	case token.KwDouble:
		return ast.TypeDouble
	case token.KwBoolean:
		return ast.TypeBoolean
	case token.KwChar:
		return ast.TypeChar
	}
	return ast.TypeVoid
}

// scanType looks ahead from offset i without building nodes and returns the
// offset just past a syntactically valid type.
func (p *Parser) scanType(i int) (int, bool) {
	switch p.peekN(i).Kind {
	case token.KwInt, token.KwDouble, token.KwBoolean, token.KwChar:
		i++
	case token.Ident:
		i++
		if p.peekN(i).Kind == token.Lt {
			i++
			for {
				j, ok := p.scanType(i)
				if !ok {
					return i, false
				}
				i = j
				if p.peekN(i).Kind == token.Comma {
					i++
					continue
				}
				if p.peekN(i).Kind != token.Gt {
					return i, false
				}
				i++
				break
			}
		}
	default:
		return i, false
	}
	for p.peekN(i).Kind == token.LBracket && p.peekN(i+1).Kind == token.RBracket {
		i += 2
	}
	return i, true
}

// atLocalDecl reports whether the statement at the cursor declares variables.
func (p *Parser) atLocalDecl() bool {
	switch p.peek().Kind {
	case token.KwInt, token.KwDouble, token.KwBoolean, token.KwChar, token.KwVar:
		return true
	case token.Ident:
		j, ok := p.scanType(0)
		return ok && p.peekN(j).Kind == token.Ident
	}
	return false
}
