package ast

import "jstep/internal/source"

// ClassKind distinguishes the three declaration forms sharing one payload.
type ClassKind uint8

const (
	ClassPlain ClassKind = iota
	ClassInterface
	ClassEnum
)

type TypeParam struct {
	Name  source.StringID
	Span  source.Span
	Bound TypeID
}

type EnumConst struct {
	Name source.StringID
	Span source.Span
	Args []ExprID
}

// Item is a top-level declaration. Only class-like items exist.
type Item struct {
	Kind       ClassKind
	Span       source.Span
	Name       source.StringID
	NameSpan   source.Span
	Mods       Modifiers
	TypeParams []TypeParam
	Extends    []TypeID // класс: не больше одного; интерфейс: список
	Implements []TypeID
	Members    []MemberID
	EnumConsts []EnumConst
}

type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberCtor
)

type Param struct {
	Name source.StringID
	Span source.Span
	Type TypeID
}

// Member is a field, method or constructor. Type is the field type or the
// method return type (a TypeExpr of kind TypeVoid for void methods).
type Member struct {
	Kind     MemberKind
	Span     source.Span
	Name     source.StringID
	NameSpan source.Span
	Mods     Modifiers
	Type     TypeID
	Params   []Param
	Body     StmtID // NoStmtID для abstract/interface методов
	Init     ExprID // инициализатор поля
}

type Items struct {
	Arena   *Arena[Item]
	Members *Arena[Member]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena:   NewArena[Item](capHint),
		Members: NewArena[Member](capHint * 8),
	}
}

func (b *Builder) NewItem(it Item) ItemID {
	return ItemID(b.Items.Arena.Allocate(it))
}

func (b *Builder) Item(id ItemID) *Item {
	return b.Items.Arena.Get(uint32(id))
}

func (b *Builder) NewMember(m Member) MemberID {
	return MemberID(b.Items.Members.Allocate(m))
}

func (b *Builder) Member(id MemberID) *Member {
	return b.Items.Members.Get(uint32(id))
}
