package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005
	LexBadEscape                Code = 1006
	LexEmptyChar                Code = 1007
	LexUnmatchedBracket         Code = 1008
	LexMismatchedBracket        Code = 1009
	LexUnclosedBracket          Code = 1010

	// Парсерные
	SynInfo                Code = 2000
	SynUnexpectedToken     Code = 2001
	SynExpectSemicolon     Code = 2002
	SynExpectIdentifier    Code = 2003
	SynExpectType          Code = 2004
	SynExpectExpression    Code = 2005
	SynExpectToken         Code = 2006
	SynHealedSemicolon     Code = 2007
	SynModifierNotAllowed  Code = 2008
	SynDuplicateModifier   Code = 2009
	SynUnsupported         Code = 2010
	SynTooManyErrors       Code = 2011
	SynBadLiteral          Code = 2012
	SynInvalidAssignTarget Code = 2013
	SynMisplacedCase       Code = 2014

	// Семантические
	SemaInfo                   Code = 3000
	SemaUnresolvedType         Code = 3001
	SemaCyclicInheritance      Code = 3002
	SemaSignatureMismatch      Code = 3003
	SemaInvalidOverride        Code = 3004
	SemaDuplicateType          Code = 3005
	SemaInvalidBase            Code = 3006
	SemaTypeArgCount           Code = 3007
	SemaAbstractNotImplemented Code = 3008
	SemaUnknownName            Code = 3009
	SemaUnknownMember          Code = 3010
	SemaNoMatchingMethod       Code = 3011
	SemaAmbiguousCall          Code = 3012
	SemaTypeMismatch           Code = 3013
	SemaBadOperands            Code = 3014
	SemaNotAssignable          Code = 3015
	SemaDuplicateVar           Code = 3016
	SemaMissingReturn          Code = 3017
	SemaReturnMismatch         Code = 3018
	SemaBreakOutsideLoop       Code = 3019
	SemaStaticContext          Code = 3020
	SemaAbstractInstantiation  Code = 3021
	SemaPrivateAccess          Code = 3022
	SemaBadCast                Code = 3023
	SemaNotThrowable           Code = 3024
	SemaUnreachableCatch       Code = 3025
	SemaDuplicateCase          Code = 3026
	SemaCtorCallPosition       Code = 3027
	SemaVoidValue              Code = 3028
	SemaDependsOnErrors        Code = 3029
	SemaDuplicateMember        Code = 3030
	SemaNoDefaultCtor          Code = 3031
	SemaMissingBody            Code = 3032
	SemaFinalAssign            Code = 3033
	SemaNotIterable            Code = 3034
	SemaNotAStatement          Code = 3035
	SemaBlockingEval           Code = 3036

	// Генерация кода: только дефекты компилятора
	GenInternal Code = 4001

	// Время выполнения
	RunUncaughtException Code = 5001
	RunInternalFault     Code = 5002

	// Проект
	ProjBadConfig        Code = 6001
	ProjDependencyFailed Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed numeric literal",
	LexUnterminatedChar:         "Unterminated char literal",
	LexBadEscape:                "Invalid escape sequence",
	LexEmptyChar:                "Empty char literal",
	LexUnmatchedBracket:         "Unmatched closing bracket",
	LexMismatchedBracket:        "Mismatched bracket",
	LexUnclosedBracket:          "Unclosed bracket",

	SynInfo:                "Syntax information",
	SynUnexpectedToken:     "Unexpected token",
	SynExpectSemicolon:     "Missing ';'",
	SynExpectIdentifier:    "Expected identifier",
	SynExpectType:          "Expected type",
	SynExpectExpression:    "Expected expression",
	SynExpectToken:         "Expected token",
	SynHealedSemicolon:     "Statement terminator inserted",
	SynModifierNotAllowed:  "Modifier not allowed here",
	SynDuplicateModifier:   "Duplicate modifier",
	SynUnsupported:         "Unsupported construct",
	SynTooManyErrors:       "Too many syntax errors",
	SynBadLiteral:          "Literal out of range",
	SynInvalidAssignTarget: "Invalid assignment target",
	SynMisplacedCase:       "Case label outside switch",

	SemaInfo:                   "Semantic information",
	SemaUnresolvedType:         "Unresolved type",
	SemaCyclicInheritance:      "Cyclic inheritance",
	SemaSignatureMismatch:      "Signature mismatch",
	SemaInvalidOverride:        "Invalid override",
	SemaDuplicateType:          "Duplicate type declaration",
	SemaInvalidBase:            "Invalid base type",
	SemaTypeArgCount:           "Wrong number of type arguments",
	SemaAbstractNotImplemented: "Abstract method not implemented",
	SemaUnknownName:            "Unknown name",
	SemaUnknownMember:          "Unknown member",
	SemaNoMatchingMethod:       "No matching method",
	SemaAmbiguousCall:          "Ambiguous call",
	SemaTypeMismatch:           "Type mismatch",
	SemaBadOperands:            "Invalid operand types",
	SemaNotAssignable:          "Not assignable",
	SemaDuplicateVar:           "Duplicate variable",
	SemaMissingReturn:          "Missing return statement",
	SemaReturnMismatch:         "Invalid return",
	SemaBreakOutsideLoop:       "break/continue outside loop",
	SemaStaticContext:          "Instance member used in static context",
	SemaAbstractInstantiation:  "Cannot instantiate abstract type",
	SemaPrivateAccess:          "Private member not accessible",
	SemaBadCast:                "Invalid cast",
	SemaNotThrowable:           "Type is not an exception",
	SemaUnreachableCatch:       "Unreachable catch clause",
	SemaDuplicateCase:          "Duplicate case label",
	SemaCtorCallPosition:       "Constructor call must be the first statement",
	SemaVoidValue:              "void value used",
	SemaDependsOnErrors:        "Module depends on modules with errors",
	SemaDuplicateMember:        "Duplicate member",
	SemaNoDefaultCtor:          "No default constructor in base class",
	SemaMissingBody:            "Missing method body",
	SemaFinalAssign:            "Assignment to final variable",
	SemaNotIterable:            "Not iterable",
	SemaNotAStatement:          "Not a statement",
	SemaBlockingEval:           "Blocking call in evaluation",

	GenInternal: "Internal code generator error",

	RunUncaughtException: "Uncaught exception",
	RunInternalFault:     "Interpreter fault",

	ProjBadConfig:        "Invalid project configuration",
	ProjDependencyFailed: "Dependency has errors",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("RUN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode finds the code with the given ID, such as "SYN2007".
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
