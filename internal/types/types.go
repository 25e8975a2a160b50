// Package types holds the semantic type model: primitive kinds, arrays,
// classes, interfaces, enums, type parameters and their specializations.
package types

import "fmt"

// TypeID uniquely identifies a type inside the table.
type TypeID uint32

// NoTypeID marks the absence of a type; as a method return it means void.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindNull
	KindInt
	KindDouble
	KindBool
	KindChar
	KindString
	KindArray
	KindClass
	KindInterface
	KindEnum
	KindTypeParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "boolean"
	case KindChar:
		return "char"
	case KindString:
		return "String"
	case KindArray:
		return "array"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindTypeParam:
		return "type parameter"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports value kinds that are never null.
func (k Kind) IsPrimitive() bool {
	return k == KindInt || k == KindDouble || k == KindBool || k == KindChar
}

// IsNumeric: char участвует в арифметике как int.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindDouble || k == KindChar
}

func (k Kind) IsReference() bool {
	switch k {
	case KindNull, KindString, KindArray, KindClass, KindInterface, KindEnum, KindTypeParam:
		return true
	}
	return false
}

// IsClassLike is true for kinds backed by a *Class record.
func (k Kind) IsClassLike() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Elem  TypeID  // массивы
	Class ClassID // class/interface/enum и строка; для TypeParam - владелец
	Index uint32  // номер параметра типа у владельца
}

// Builtins stores TypeIDs for built-in types. Object is set once the
// runtime library declares it.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Null    TypeID
	Int     TypeID
	Double  TypeID
	Bool    TypeID
	Char    TypeID
	String  TypeID
	Object  TypeID
}

type typeKey struct {
	Kind  Kind
	Elem  TypeID
	Class ClassID
	Index uint32
}
