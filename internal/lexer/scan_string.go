package lexer

import (
	"strings"
	"unicode/utf8"

	"jstep/internal/diag"
	"jstep/internal/token"
)

// scanString reads "..." on one line. An unterminated literal is reported at
// its opening quote and still produces a StringLit so parsing can continue.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		case '\\':
			lx.scanEscape()
			continue
		case '\n':
			return lx.unterminated(start, token.StringLit, diag.LexUnterminatedString, "unterminated string literal")
		}
		lx.bumpRune()
	}
	return lx.unterminated(start, token.StringLit, diag.LexUnterminatedString, "unterminated string literal")
}

// scanChar reads 'x' or an escape.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''
	switch lx.cursor.Peek() {
	case '\'':
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexEmptyChar, sp, "empty character literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	case '\n', 0:
		return lx.unterminated(start, token.CharLit, diag.LexUnterminatedChar, "unterminated character literal")
	case '\\':
		lx.scanEscape()
	default:
		lx.bumpRune()
	}
	if !lx.cursor.Eat('\'') {
		// 'ab' - съедаем до закрывающей кавычки в пределах строки
		mark := lx.cursor.Mark()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' && lx.cursor.Peek() != '\'' {
			lx.bumpRune()
		}
		if lx.cursor.Eat('\'') {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadEscape, sp, "character literal must contain exactly one character")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.Reset(mark)
		return lx.unterminated(start, token.CharLit, diag.LexUnterminatedChar, "unterminated character literal")
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CharLit, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) unterminated(start Mark, kind token.Kind, code diag.Code, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(code, headSpan(sp, 1), msg)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

// scanEscape consumes one escape sequence starting at '\' and reports bad ones.
func (lx *Lexer) scanEscape() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	b := lx.cursor.Peek()
	switch {
	case strings.IndexByte(`btnfr"'\`, b) >= 0 && b != 0:
		lx.cursor.Bump()
	case b >= '0' && b <= '7':
		for i := 0; i < 3 && lx.cursor.Peek() >= '0' && lx.cursor.Peek() <= '7'; i++ {
			lx.cursor.Bump()
		}
	case b == 'u':
		for lx.cursor.Peek() == 'u' {
			lx.cursor.Bump()
		}
		for i := 0; i < 4; i++ {
			if !isHex(lx.cursor.Peek()) {
				lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "\\u escape needs four hex digits")
				return
			}
			lx.cursor.Bump()
		}
	case b == '\n' || lx.cursor.EOF():
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "incomplete escape sequence")
	default:
		lx.bumpRune()
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid escape sequence")
	}
}

// Unquote decodes the body of a string literal token, quotes included.
// Invalid escapes decode to the escaped character; the lexer has already
// reported them.
func Unquote(text string) string {
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	if strings.IndexByte(text, '\\') < 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		r, n := decodeOne(text[i:])
		sb.WriteRune(r)
		i += n
	}
	return sb.String()
}

// UnquoteChar decodes a char literal token such as 'a' or '\n'.
func UnquoteChar(text string) rune {
	text = strings.TrimPrefix(text, `'`)
	text = strings.TrimSuffix(text, `'`)
	if text == "" {
		return 0
	}
	r, _ := decodeOne(text)
	return r
}

func decodeOne(s string) (rune, int) {
	if s[0] != '\\' || len(s) == 1 {
		r, n := utf8.DecodeRuneInString(s)
		return r, n
	}
	switch c := s[1]; c {
	case 'b':
		return '\b', 2
	case 't':
		return '\t', 2
	case 'n':
		return '\n', 2
	case 'f':
		return '\f', 2
	case 'r':
		return '\r', 2
	case '"', '\'', '\\':
		return rune(c), 2
	case 'u':
		i := 1
		for i < len(s) && s[i] == 'u' {
			i++
		}
		var v rune
		j := 0
		for ; j < 4 && i+j < len(s) && isHex(s[i+j]); j++ {
			v = v*16 + hexVal(s[i+j])
		}
		return v, i + j
	default:
		if c >= '0' && c <= '7' {
			var v rune
			i := 1
			// \377 максимум: трёхзначная форма допустима только с ведущей 0-3
			limit := 3
			if c > '3' {
				limit = 2
			}
			for ; i <= limit && i < len(s) && s[i] >= '0' && s[i] <= '7'; i++ {
				v = v*8 + rune(s[i]-'0')
			}
			return v, i
		}
		r, n := utf8.DecodeRuneInString(s[1:])
		return r, n + 1
	}
}

func hexVal(b byte) rune {
	switch {
	case b >= '0' && b <= '9':
		return rune(b - '0')
	case b >= 'a' && b <= 'f':
		return rune(b-'a') + 10
	default:
		return rune(b-'A') + 10
	}
}

