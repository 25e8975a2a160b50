package token

import "jstep/internal/source"

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
	Virtual bool // inserted by the parser, not present in the source
}

// IsLiteral reports whether the token is a literal, true/false/null included.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, DoubleLit, CharLit, StringLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwClass && t.Kind <= KwNull
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind < kindCount
}

// IsPrimitiveType reports whether the token names a primitive type or void.
func (t Token) IsPrimitiveType() bool {
	switch t.Kind {
	case KwInt, KwDouble, KwBoolean, KwChar, KwVoid:
		return true
	default:
		return false
	}
}

// IsModifier reports whether the token is a member or class modifier.
func (t Token) IsModifier() bool {
	switch t.Kind {
	case KwPublic, KwPrivate, KwProtected, KwStatic, KwFinal, KwAbstract:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsAssignOp reports whether the token is '=' or a compound assignment.
func (t Token) IsAssignOp() bool {
	return t.Kind >= Assign && t.Kind <= ShrAssign
}
