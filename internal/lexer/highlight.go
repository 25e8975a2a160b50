package lexer

import (
	"strings"

	"jstep/internal/source"
	"jstep/internal/token"
)

// ColorClass is a syntax-coloring category for editors.
type ColorClass uint8

const (
	ColorNone ColorClass = iota
	ColorKeyword
	ColorType
	ColorIdent
	ColorNumber
	ColorString
	ColorChar
	ColorLiteral // true, false, null
	ColorComment
	ColorOperator
	ColorError
)

var colorNames = [...]string{
	"none", "keyword", "type", "ident", "number", "string", "char", "literal", "comment", "operator", "error",
}

func (c ColorClass) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "none"
}

// ColorSpan is one coloring hint.
type ColorSpan struct {
	Span  source.Span
	Class ColorClass
}

// Highlight derives coloring hints from a token stream, comments included.
// Identifiers starting with an upper-case letter are colored as types.
func Highlight(toks []token.Token) []ColorSpan {
	out := make([]ColorSpan, 0, len(toks))
	for _, tok := range toks {
		for _, tr := range tok.Leading {
			if tr.Kind == token.TriviaLineComment || tr.Kind == token.TriviaBlockComment || tr.Kind == token.TriviaDocBlock {
				out = append(out, ColorSpan{Span: tr.Span, Class: ColorComment})
			}
		}
		if tok.Virtual || tok.Kind == token.EOF {
			continue
		}
		if c := classify(tok); c != ColorNone {
			out = append(out, ColorSpan{Span: tok.Span, Class: c})
		}
	}
	return out
}

func classify(tok token.Token) ColorClass {
	switch {
	case tok.Kind == token.Invalid:
		return ColorError
	case tok.Kind == token.KwTrue || tok.Kind == token.KwFalse || tok.Kind == token.KwNull:
		return ColorLiteral
	case tok.IsPrimitiveType():
		return ColorType
	case tok.IsKeyword():
		return ColorKeyword
	case tok.Kind == token.Ident:
		if tok.Text != "" && strings.ToUpper(tok.Text[:1]) == tok.Text[:1] && tok.Text[0] != '_' && tok.Text[0] != '$' {
			return ColorType
		}
		return ColorIdent
	case tok.Kind == token.IntLit || tok.Kind == token.DoubleLit:
		return ColorNumber
	case tok.Kind == token.StringLit:
		return ColorString
	case tok.Kind == token.CharLit:
		return ColorChar
	case tok.IsPunctOrOp():
		return ColorOperator
	}
	return ColorNone
}

// Reconstruct concatenates trivia and lexemes back into source text.
// Virtual tokens inserted by the parser are skipped.
func Reconstruct(toks []token.Token) string {
	var sb strings.Builder
	for _, tok := range toks {
		for _, tr := range tok.Leading {
			sb.WriteString(tr.Text)
		}
		if !tok.Virtual {
			sb.WriteString(tok.Text)
		}
	}
	return sb.String()
}
