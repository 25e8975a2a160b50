package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	KwClass        // class
	KwInterface    // interface
	KwEnum         // enum
	KwExtends      // extends
	KwImplements   // implements
	KwPublic       // public
	KwPrivate      // private
	KwProtected    // protected
	KwStatic       // static
	KwFinal        // final
	KwAbstract     // abstract
	KwNew          // new
	KwThis         // this
	KwSuper        // super
	KwReturn       // return
	KwIf           // if
	KwElse         // else
	KwWhile        // while
	KwDo           // do
	KwFor          // for
	KwBreak        // break
	KwContinue     // continue
	KwSwitch       // switch
	KwCase         // case
	KwDefault      // default
	KwTry          // try
	KwCatch        // catch
	KwFinally      // finally (reserved, rejected by the parser)
	KwThrow        // throw
	KwThrows       // throws
	KwInstanceof   // instanceof
	KwInt          // int
	KwDouble       // double
	KwBoolean      // boolean
	KwChar         // char
	KwVoid         // void
	KwVar          // var
	KwTrue         // true
	KwFalse        // false
	KwNull         // null

	IntLit
	DoubleLit
	CharLit
	StringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	PlusPlus      // ++
	MinusMinus    // --
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Tilde         // ~
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Amp           // &
	Pipe          // |
	Caret         // ^
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	At            // @

	kindCount
)

// Shr is never produced by the lexer: '>>' is lexed as two Gt tokens so that
// nested generic arguments close naturally. The parser joins adjacent Gt tokens
// into a shift when it parses a binary expression.

var kindNames = [...]string{
	Invalid: "invalid", EOF: "EOF", Ident: "identifier",
	KwClass: "class", KwInterface: "interface", KwEnum: "enum", KwExtends: "extends",
	KwImplements: "implements", KwPublic: "public", KwPrivate: "private", KwProtected: "protected",
	KwStatic: "static", KwFinal: "final", KwAbstract: "abstract", KwNew: "new", KwThis: "this",
	KwSuper: "super", KwReturn: "return", KwIf: "if", KwElse: "else", KwWhile: "while", KwDo: "do",
	KwFor: "for", KwBreak: "break", KwContinue: "continue", KwSwitch: "switch", KwCase: "case",
	KwDefault: "default", KwTry: "try", KwCatch: "catch", KwFinally: "finally", KwThrow: "throw",
	KwThrows: "throws", KwInstanceof: "instanceof", KwInt: "int", KwDouble: "double",
	KwBoolean: "boolean", KwChar: "char", KwVoid: "void", KwVar: "var", KwTrue: "true",
	KwFalse: "false", KwNull: "null",
	IntLit: "int literal", DoubleLit: "double literal", CharLit: "char literal", StringLit: "string literal",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=", PlusAssign: "+=",
	MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=", PercentAssign: "%=", AmpAssign: "&=",
	PipeAssign: "|=", CaretAssign: "^=", ShlAssign: "<<=", ShrAssign: ">>=", PlusPlus: "++",
	MinusMinus: "--", EqEq: "==", Bang: "!", BangEq: "!=", Tilde: "~", Lt: "<", LtEq: "<=",
	Gt: ">", GtEq: ">=", Shl: "<<", Amp: "&", Pipe: "|", Caret: "^", AndAnd: "&&", OrOr: "||",
	Question: "?", Colon: ":", Semicolon: ";", Comma: ",", Dot: ".", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]", At: "@",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Invalid; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
