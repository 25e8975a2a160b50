package vm

import (
	"fmt"

	"jstep/internal/types"
)

// Object is an instance of a class. Attrs is indexed by the absolute
// attribute index and sized to the class's AttrCount; Native is the side
// table of runtime-library classes (ArrayList items, Thread state, the
// throw site of an exception).
type Object struct {
	Class  *types.Class
	Attrs  []Value
	Native any
	id     uint64
}

// ID is the identity hash shown by Object.toString.
func (o *Object) ID() uint64 { return o.id }

// Array is a Java array: element type plus items.
type Array struct {
	Type  types.TypeID
	Items []Value
	id    uint64
}

func (a *Array) ID() uint64 { return a.id }

// Zero returns the default value of a field, array element or local of t.
func Zero(tbl *types.Table, t types.TypeID) Value {
	switch tbl.Kind(t) {
	case types.KindInt:
		return Int(0)
	case types.KindDouble:
		return Double(0)
	case types.KindBool:
		return Bool(false)
	case types.KindChar:
		return Char(0)
	}
	return Null()
}

// heap hands out identity hashes; the pool owns one.
type heap struct {
	tbl  *types.Table
	next uint64
}

func (h *heap) newObject(c *types.Class) *Object {
	if c.Origin != types.NoClassID {
		c = h.tbl.Class(c.Origin)
	}
	h.next++
	o := &Object{Class: c, Attrs: make([]Value, c.AttrCount), id: h.next}
	for _, a := range h.tbl.AllAttrs(c) {
		if !a.Static && a.Index < len(o.Attrs) {
			o.Attrs[a.Index] = Zero(h.tbl, a.Type)
		}
	}
	return o
}

func (h *heap) newArray(t types.TypeID, n int) *Array {
	h.next++
	a := &Array{Type: t, Items: make([]Value, n), id: h.next}
	z := Zero(h.tbl, h.tbl.Elem(t))
	for i := range a.Items {
		a.Items[i] = z
	}
	return a
}

// newMulti allocates new T[d0][d1]...; trailing unsized levels stay null.
func (h *heap) newMulti(t types.TypeID, dims []int32) *Array {
	a := h.newArray(t, int(dims[0]))
	if len(dims) > 1 {
		for i := range a.Items {
			a.Items[i] = Arr(h.newMulti(h.tbl.Elem(t), dims[1:]))
		}
	}
	return a
}

// DefaultString is Object.toString for instances without an override.
func DefaultString(tbl *types.Table, v Value) string {
	if s, ok := v.Primitive(); ok {
		return s
	}
	switch v.Kind {
	case VKObject:
		o := v.Object()
		return fmt.Sprintf("%s@%x", o.Class.Name, o.id)
	case VKArray:
		a := v.Array()
		return fmt.Sprintf("%s@%x", tbl.String(a.Type), a.id)
	}
	return "?"
}
