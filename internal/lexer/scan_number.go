package lexer

import (
	"jstep/internal/diag"
	"jstep/internal/token"
)

// Поддержка: 0, 123, 1_000, 0x1F, 0b101, 1.5, .5, 1e-3, 2.0d, 3f.
// Суффикс L не поддерживается (long отсутствует в языке) - репортим BadNumber.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	digits := func(ok func(byte) bool) int {
		n := 0
		for {
			b := lx.cursor.Peek()
			if b == '_' || ok(b) {
				lx.cursor.Bump()
				n++
				continue
			}
			return n
		}
	}

	if lx.cursor.Peek() == '0' {
		if _, b1, ok := lx.cursor.Peek2(); ok {
			switch b1 {
			case 'x', 'X':
				lx.cursor.Off += 2
				if digits(isHex) == 0 {
					return lx.badNumber(start, "expected hex digits after 0x")
				}
				return lx.finishNumber(start, token.IntLit)
			case 'b', 'B':
				lx.cursor.Off += 2
				if digits(func(b byte) bool { return b == '0' || b == '1' }) == 0 {
					return lx.badNumber(start, "expected binary digits after 0b")
				}
				return lx.finishNumber(start, token.IntLit)
			}
		}
	}

	digits(isDec)
	if lx.cursor.Peek() == '.' {
		if b0, b1, ok := lx.cursor.Peek2(); !ok || b0 != '.' || isDec(b1) || !isIdentStartByte(b1) {
			// "1." и "1.5" - double; "1.foo" оставляем как Int + Dot
			lx.cursor.Bump()
			kind = token.DoubleLit
			digits(isDec)
		}
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.DoubleLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if digits(isDec) == 0 {
			return lx.badNumber(start, "expected digit after exponent")
		}
	}
	switch lx.cursor.Peek() {
	case 'd', 'D', 'f', 'F':
		lx.cursor.Bump()
		kind = token.DoubleLit
	case 'l', 'L':
		lx.cursor.Bump()
		return lx.badNumber(start, "long literals are not supported")
	}
	return lx.finishNumber(start, kind)
}

func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	// "12abc" - хвост идентификатора делает литерал некорректным
	if isIdentContinueByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		return lx.badNumber(start, "invalid character in numeric literal")
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
