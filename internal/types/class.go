package types

import (
	"fmt"

	"fortio.org/safecast"

	"jstep/internal/source"
)

type ClassID uint32

const NoClassID ClassID = 0

type Visibility uint8

const (
	VisPackage Visibility = iota
	VisPublic
	VisProtected
	VisPrivate
)

type ClassFlags uint8

const (
	ClassAbstract ClassFlags = 1 << iota
	ClassFinal
	ClassNative // объявлен библиотекой рантайма
	ClassThrowable
)

type TypeParam struct {
	Name  string
	Bound TypeID // NoTypeID = Object
	Type  TypeID
}

// Attribute is a field. Instance attributes carry an absolute Index into
// the object's attribute slice; statics index the class's static storage.
type Attribute struct {
	Name   string
	Type   TypeID
	Index  int
	Owner  ClassID
	Static bool
	Final  bool
	Vis    Visibility
	Span   source.Span
	// Computed, when set, names the native that derives the value on read.
	Computed NativeID
}

// Class is the record behind class, interface and enum types.
type Class struct {
	ID         ClassID
	Type       TypeID
	Name       string
	Kind       Kind
	Module     uint32 // 0 - библиотека рантайма
	Span       source.Span
	Flags      ClassFlags
	Base       TypeID
	Interfaces []TypeID
	TypeParams []TypeParam

	// Origin and TypeArgs are set on specializations of a generic class.
	Origin   ClassID
	TypeArgs []TypeID

	Attrs     []*Attribute // собственные поля экземпляра
	AttrCount int          // с учётом унаследованных
	Statics   []*Attribute
	Methods   []MethodID
	byName    map[string][]MethodID

	// VTable maps a method that may be called virtually to the
	// implementation used for instances of this class.
	VTable map[MethodID]MethodID

	// EnumConsts lists enum constant names in ordinal order; each has a
	// static attribute of the same name.
	EnumConsts []string

	// LaidOut is set once attribute indices and the vtable are final.
	LaidOut bool
	// Broken marks classes whose header failed to resolve.
	Broken bool

	membersCopied bool
}

func (c *Class) Is(f ClassFlags) bool { return c.Flags&f != 0 }

// IsGeneric reports a generic declaration, not a specialization.
func (c *Class) IsGeneric() bool { return len(c.TypeParams) > 0 && c.Origin == NoClassID }

// NewClass registers a class-like type. Names must be unique: a second
// registration under the same name is returned with ok=false.
func (t *Table) NewClass(name string, kind Kind, module uint32, sp source.Span) (*Class, bool) {
	if id, exists := t.byName[name]; exists {
		return t.classes[id], false
	}
	c := t.newClassRecord(name, kind, module, sp)
	t.byName[name] = c.ID
	return c, true
}

func (t *Table) newClassRecord(name string, kind Kind, module uint32, sp source.Span) *Class {
	n, err := safecast.Conv[uint32](len(t.classes))
	if err != nil {
		panic(fmt.Errorf("class table overflow: %w", err))
	}
	c := &Class{
		ID:     ClassID(n),
		Name:   name,
		Kind:   kind,
		Module: module,
		Span:   sp,
		byName: make(map[string][]MethodID),
		VTable: make(map[MethodID]MethodID),
	}
	t.classes = append(t.classes, c)
	c.Type = t.Intern(Type{Kind: kind, Class: c.ID})
	return c
}

func (t *Table) Class(id ClassID) *Class {
	if id == NoClassID || int(id) >= len(t.classes) {
		return nil
	}
	return t.classes[id]
}

// ClassOf returns the record behind a class-like or String type.
func (t *Table) ClassOf(id TypeID) *Class {
	ty, ok := t.Lookup(id)
	if !ok {
		return nil
	}
	switch ty.Kind {
	case KindClass, KindInterface, KindEnum, KindString:
		return t.Class(ty.Class)
	case KindArray, KindNull:
		return t.ClassOf(t.builtins.Object)
	case KindTypeParam:
		return t.ClassOf(t.Bound(id))
	}
	return nil
}

func (t *Table) ClassByName(name string) *Class {
	if id, ok := t.byName[name]; ok {
		return t.classes[id]
	}
	return nil
}

// Classes returns every registered class record, specializations included.
func (t *Table) Classes() []*Class {
	return t.classes[1:]
}

// SetObject marks c as the root class.
func (t *Table) SetObject(c *Class) {
	t.builtins.Object = c.Type
}

// BindString attaches the String type to the record holding its methods.
func (t *Table) BindString(c *Class) {
	id := t.builtins.String
	delete(t.index, typeKey(t.types[id]))
	t.types[id].Class = c.ID
	t.index[typeKey(t.types[id])] = id
	c.Type = id
}

// Bound returns the upper bound of a type parameter, Object by default.
func (t *Table) Bound(id TypeID) TypeID {
	ty, ok := t.Lookup(id)
	if !ok || ty.Kind != KindTypeParam {
		return id
	}
	c := t.Class(ty.Class)
	if c == nil || int(ty.Index) >= len(c.TypeParams) || c.TypeParams[ty.Index].Bound == NoTypeID {
		return t.builtins.Object
	}
	return c.TypeParams[ty.Index].Bound
}

// AddAttr appends an attribute. Instance indices are assigned by Layout.
func (t *Table) AddAttr(c *Class, a *Attribute) {
	a.Owner = c.ID
	if a.Static {
		a.Index = len(c.Statics)
		c.Statics = append(c.Statics, a)
		return
	}
	a.Index = -1
	c.Attrs = append(c.Attrs, a)
}

// Attr finds an instance or static attribute by name along the base chain.
func (t *Table) Attr(c *Class, name string) *Attribute {
	for cur := c; cur != nil; cur = t.ClassOf(cur.Base) {
		t.EnsureMembers(cur)
		for _, a := range cur.Attrs {
			if a.Name == name {
				return a
			}
		}
		for _, a := range cur.Statics {
			if a.Name == name {
				return a
			}
		}
		if cur.Base == NoTypeID {
			break
		}
	}
	if c != nil && c.Kind == KindInterface {
		for _, it := range c.Interfaces {
			if a := t.Attr(t.ClassOf(it), name); a != nil {
				return a
			}
		}
	}
	return nil
}

// AllAttrs lists the instance attributes of c, inherited ones first.
func (t *Table) AllAttrs(c *Class) []*Attribute {
	if c == nil {
		return nil
	}
	var out []*Attribute
	if base := t.ClassOf(c.Base); base != nil && c.Base != NoTypeID {
		out = t.AllAttrs(base)
	}
	t.EnsureMembers(c)
	return append(out, c.Attrs...)
}

// Ancestors returns base chain and all transitively implemented interfaces,
// nearest first, without duplicates. c itself is not included.
func (t *Table) Ancestors(c *Class) []*Class {
	seen := map[ClassID]bool{c.ID: true}
	var out []*Class
	queue := []*Class{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := make([]TypeID, 0, 1+len(cur.Interfaces))
		if cur.Base != NoTypeID {
			next = append(next, cur.Base)
		}
		next = append(next, cur.Interfaces...)
		for _, id := range next {
			p := t.ClassOf(id)
			if p == nil || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}
