// Package parser builds the AST of one compilation unit from its tokens.
package parser

import (
	"fmt"
	"slices"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/token"
)

type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
	NoHeal    bool // отключает "semicolon angel"
}

type Result struct {
	Builder *ast.Builder
	File    ast.FileID
	// Tokens is the token view the AST was built from, virtual ';' included.
	Tokens []token.Token
	// Healed lists the spans of the tokens after which ';' was inserted.
	Healed []source.Span
	Errors int
}

// Parser - состояние парсера на один проход по срезу токенов.
type Parser struct {
	toks     []token.Token
	pos      int
	b        *ast.Builder
	file     ast.FileID
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики

	diags      []diag.Diagnostic
	errors     int
	candidates []int // индексы токенов, перед которыми не хватает ';'
}

const maxHealRounds = 4

// ParseFile parses one compilation unit. When statements fail only because a
// ';' is missing at a line end, virtual terminators are inserted into the
// token view and the unit is re-parsed; the healed parse wins when it has
// strictly fewer errors. The source text is never changed.
func ParseFile(toks []token.Token, opts Options) Result {
	best := parseAttempt(toks)
	if !opts.NoHeal {
		for round := 0; round < maxHealRounds && len(best.candidates) > 0; round++ {
			next := parseAttempt(heal(best.toks, best.candidates))
			if next.errors >= best.errors {
				break
			}
			best = next
		}
	}

	var healed []source.Span
	for i, tok := range best.toks {
		if tok.Virtual && tok.Kind == token.Semicolon && i > 0 {
			healed = append(healed, best.toks[i-1].Span)
		}
	}
	emit(best, healed, opts)
	return Result{
		Builder: best.b,
		File:    best.file,
		Tokens:  best.toks,
		Healed:  healed,
		Errors:  best.errors,
	}
}

func parseAttempt(toks []token.Token) *Parser {
	p := &Parser{
		toks: toks,
		b:    ast.NewBuilder(ast.Hints{Exprs: uint(len(toks))}), // #nosec G115
	}
	if len(toks) > 0 {
		p.lastSpan = toks[0].Span.AtStart()
	}
	p.parseFile()
	return p
}

// heal returns a copy of toks with a virtual ';' before every candidate index.
func heal(toks []token.Token, candidates []int) []token.Token {
	cands := slices.Clone(candidates)
	slices.Sort(cands)
	cands = slices.Compact(cands)
	out := make([]token.Token, 0, len(toks)+len(cands))
	ci := 0
	for i, tok := range toks {
		for ci < len(cands) && cands[ci] == i {
			sp := tok.Span.AtStart()
			if i > 0 {
				sp = toks[i-1].Span.AtEnd()
			}
			out = append(out, token.Token{Kind: token.Semicolon, Span: sp, Text: ";", Virtual: true})
			ci++
		}
		out = append(out, tok)
	}
	return out
}

func emit(p *Parser, healed []source.Span, opts Options) {
	if opts.Reporter == nil {
		return
	}
	var errs uint
	for _, d := range p.diags {
		if d.Severity == diag.SevError {
			errs++
			if opts.MaxErrors > 0 && errs > opts.MaxErrors {
				diag.ReportError(opts.Reporter, diag.SynTooManyErrors, d.Primary,
					fmt.Sprintf("too many syntax errors (limit %d)", opts.MaxErrors)).Emit()
				break
			}
		}
		opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
	}
	for _, sp := range healed {
		diag.ReportWarning(opts.Reporter, diag.SynHealedSemicolon, sp, "missing ';' was inserted after this").
			WithFix("insert ';'", diag.InsertText(sp.AtEnd(), ";")).
			Emit()
	}
}

// ExprResult is the outcome of ParseExpr.
type ExprResult struct {
	Builder *ast.Builder
	Expr    ast.ExprID
	Span    source.Span
	Errors  int
}

// ParseExpr parses toks as a single expression, as typed at a debugger
// prompt. Any expression is accepted, not only those that may stand as a
// statement; one trailing ';' is allowed. Nothing is healed.
func ParseExpr(toks []token.Token, opts Options) ExprResult {
	p := &Parser{
		toks: toks,
		b:    ast.NewBuilder(ast.Hints{Exprs: uint(len(toks))}), // #nosec G115
	}
	if len(toks) > 0 {
		p.lastSpan = toks[0].Span.AtStart()
	}
	start := p.peek().Span
	x := p.parseExpr()
	p.eat(token.Semicolon)
	if !p.at(token.EOF) && p.errors == 0 {
		p.errUnexpected()
	}
	emit(p, nil, opts)
	return ExprResult{Builder: p.b, Expr: x, Span: p.spanFrom(start), Errors: p.errors}
}

// parseFile - основной цикл верхнего уровня: объявления типов и операторы скрипта.
func (p *Parser) parseFile() {
	start := p.peek().Span
	p.file = p.b.NewFile(start)
	for !p.at(token.EOF) {
		before := p.pos
		if p.atTypeDecl() {
			if id, ok := p.parseTypeDecl(); ok {
				f := p.b.File(p.file)
				f.Items = append(f.Items, id)
			}
		} else {
			st := p.parseStmt()
			if st.IsValid() {
				f := p.b.File(p.file)
				f.Stmts = append(f.Stmts, st)
			}
		}
		if p.pos == before {
			// гарантия прогресса
			p.errUnexpected()
			p.advance()
		}
	}
	p.b.File(p.file).Span = start.Cover(p.peek().Span)
}

// atTypeDecl reports whether the upcoming tokens (modifiers included) start
// a class, interface or enum declaration.
func (p *Parser) atTypeDecl() bool {
	for i := 0; ; i++ {
		tok := p.peekN(i)
		switch {
		case tok.IsModifier():
			continue
		case tok.Kind == token.KwClass || tok.Kind == token.KwInterface || tok.Kind == token.KwEnum:
			return true
		default:
			return false
		}
	}
}
