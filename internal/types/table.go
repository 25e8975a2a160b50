package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Table provides stable TypeIDs and owns every class and method record of
// one compilation. A fresh Table is built for each compile.
type Table struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	classes []*Class  // classes[0] = nil
	methods []*Method // methods[0] = nil
	byName  map[string]ClassID
	specs   map[string]ClassID

	membersFrozen bool
}

func NewTable() *Table {
	t := &Table{
		index:   make(map[typeKey]TypeID, 64),
		classes: []*Class{nil},
		methods: []*Method{nil},
		byName:  make(map[string]ClassID, 32),
		specs:   make(map[string]ClassID),
	}
	// слот 0 - void, он же NoTypeID
	t.types = append(t.types, Type{Kind: KindVoid})
	t.index[typeKey{Kind: KindVoid}] = NoTypeID
	t.builtins.Void = NoTypeID
	t.builtins.Invalid = t.internRaw(Type{Kind: KindInvalid})
	t.builtins.Null = t.Intern(Type{Kind: KindNull})
	t.builtins.Int = t.Intern(Type{Kind: KindInt})
	t.builtins.Double = t.Intern(Type{Kind: KindDouble})
	t.builtins.Bool = t.Intern(Type{Kind: KindBool})
	t.builtins.Char = t.Intern(Type{Kind: KindChar})
	t.builtins.String = t.Intern(Type{Kind: KindString})
	return t
}

func (t *Table) Builtins() Builtins {
	return t.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (t *Table) Intern(ty Type) TypeID {
	if ty.Kind == KindInvalid {
		return t.builtins.Invalid
	}
	if id, ok := t.index[typeKey(ty)]; ok {
		return id
	}
	return t.internRaw(ty)
}

func (t *Table) internRaw(ty Type) TypeID {
	n, err := safecast.Conv[uint32](len(t.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	t.types = append(t.types, ty)
	t.index[typeKey(ty)] = id
	return id
}

func (t *Table) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(t.types) {
		return Type{}, false
	}
	return t.types[id], true
}

// Kind returns KindInvalid for unknown ids, and KindVoid for NoTypeID.
func (t *Table) Kind(id TypeID) Kind {
	if id == NoTypeID {
		return KindVoid
	}
	ty, ok := t.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return ty.Kind
}

func (t *Table) ArrayOf(elem TypeID) TypeID {
	return t.Intern(Type{Kind: KindArray, Elem: elem})
}

// Elem returns the element type of an array type.
func (t *Table) Elem(id TypeID) TypeID {
	ty, ok := t.Lookup(id)
	if !ok || ty.Kind != KindArray {
		return NoTypeID
	}
	return ty.Elem
}

// Dims counts array nesting levels.
func (t *Table) Dims(id TypeID) int {
	n := 0
	for t.Kind(id) == KindArray {
		id = t.Elem(id)
		n++
	}
	return n
}

func (t *Table) TypeParam(owner ClassID, index int) TypeID {
	idx, err := safecast.Conv[uint32](index)
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	return t.Intern(Type{Kind: KindTypeParam, Class: owner, Index: idx})
}

// String renders a type the way it is written in source.
func (t *Table) String(id TypeID) string {
	if id == NoTypeID {
		return "void"
	}
	ty, ok := t.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch ty.Kind {
	case KindArray:
		return t.String(ty.Elem) + "[]"
	case KindClass, KindInterface, KindEnum:
		if c := t.Class(ty.Class); c != nil {
			return c.Name
		}
	case KindString:
		return "String"
	case KindTypeParam:
		if c := t.Class(ty.Class); c != nil && int(ty.Index) < len(c.TypeParams) {
			return c.TypeParams[ty.Index].Name
		}
	}
	return ty.Kind.String()
}

func (t *Table) joinTypes(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String(id))
	}
	return sb.String()
}

// Signature renders "name(int, String)".
func (t *Table) Signature(m *Method) string {
	params := make([]TypeID, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Type
	}
	return m.Name + "(" + t.joinTypes(params) + ")"
}
