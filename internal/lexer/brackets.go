package lexer

import (
	"jstep/internal/diag"
	"jstep/internal/token"
)

var closerOf = map[token.Kind]token.Kind{
	token.LParen:   token.RParen,
	token.LBracket: token.RBracket,
	token.LBrace:   token.RBrace,
}

// CheckBrackets reports unmatched, mismatched and unclosed brackets.
// A mismatched closer that matches a deeper opener closes everything above it,
// reporting each skipped opener once.
func CheckBrackets(toks []token.Token, r diag.Reporter) {
	if r == nil {
		return
	}
	var stack []token.Token
	for _, tok := range toks {
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			stack = append(stack, tok)
		case token.RParen, token.RBracket, token.RBrace:
			if len(stack) == 0 {
				diag.ReportError(r, diag.LexUnmatchedBracket, tok.Span, "unmatched '"+tok.Text+"'").Emit()
				continue
			}
			top := stack[len(stack)-1]
			if closerOf[top.Kind] == tok.Kind {
				stack = stack[:len(stack)-1]
				continue
			}
			depth := -1
			for i := len(stack) - 2; i >= 0; i-- {
				if closerOf[stack[i].Kind] == tok.Kind {
					depth = i
					break
				}
			}
			diag.ReportError(r, diag.LexMismatchedBracket, tok.Span,
				"'"+tok.Text+"' does not match '"+top.Text+"'").
				WithNote(top.Span, "opened here").
				Emit()
			if depth >= 0 {
				for _, open := range stack[depth+1 : len(stack)-1] {
					diag.ReportError(r, diag.LexUnclosedBracket, open.Span, "unclosed '"+open.Text+"'").Emit()
				}
				stack = stack[:depth]
			} else {
				stack = stack[:len(stack)-1]
			}
		}
	}
	for _, open := range stack {
		diag.ReportError(r, diag.LexUnclosedBracket, open.Span, "unclosed '"+open.Text+"'").Emit()
	}
}
