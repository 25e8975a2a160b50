package ast

import "jstep/internal/source"

type TypeExprKind uint8

const (
	TypeVoid TypeExprKind = iota
	TypeInt
	TypeDouble
	TypeBoolean
	TypeChar
	TypeNamed // Name<Args...>
	TypeArray // Elem[]
	TypeVar   // var: выводится из инициализатора
)

// TypeExpr is the syntactic form of a type. Only the fields of its Kind are set.
type TypeExpr struct {
	Kind TypeExprKind
	Span source.Span
	Name source.StringID
	Args []TypeID
	Elem TypeID
	// Diamond is new Name<>(): arguments come from the target type.
	Diamond bool
}

type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (b *Builder) NewType(t TypeExpr) TypeID {
	return TypeID(b.Types.Arena.Allocate(t))
}

func (b *Builder) Type(id TypeID) *TypeExpr {
	return b.Types.Arena.Get(uint32(id))
}

// ArrayOf wraps elem into dims array levels.
func (b *Builder) ArrayOf(elem TypeID, dims int, sp source.Span) TypeID {
	for range dims {
		elem = b.NewType(TypeExpr{Kind: TypeArray, Span: sp, Elem: elem})
	}
	return elem
}
