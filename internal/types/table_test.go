package types

import (
	"errors"
	"testing"

	"jstep/internal/source"
)

func newTestTable(t *testing.T) (*Table, *Class) {
	t.Helper()
	tbl := NewTable()
	obj, ok := tbl.NewClass("Object", KindClass, 0, source.Span{})
	if !ok {
		t.Fatalf("Object registered twice")
	}
	tbl.SetObject(obj)
	return tbl, obj
}

func TestBuiltinsAndArrays(t *testing.T) {
	tbl, _ := newTestTable(t)
	b := tbl.Builtins()
	if b.Int == b.Double || b.Int == NoTypeID {
		t.Fatalf("builtins not distinct: %+v", b)
	}
	a1 := tbl.ArrayOf(b.Int)
	a2 := tbl.ArrayOf(b.Int)
	if a1 != a2 {
		t.Fatalf("array types not interned: %d vs %d", a1, a2)
	}
	if got := tbl.String(tbl.ArrayOf(a1)); got != "int[][]" {
		t.Fatalf("got %q, want int[][]", got)
	}
	if tbl.Dims(tbl.ArrayOf(a1)) != 2 {
		t.Fatalf("dims mismatch")
	}
}

func TestAssignability(t *testing.T) {
	tbl, obj := newTestTable(t)
	b := tbl.Builtins()
	animal, _ := tbl.NewClass("Animal", KindClass, 1, source.Span{})
	animal.Base = obj.Type
	dog, _ := tbl.NewClass("Dog", KindClass, 1, source.Span{})
	dog.Base = animal.Type
	pet, _ := tbl.NewClass("Pet", KindInterface, 1, source.Span{})
	dog.Interfaces = []TypeID{pet.Type}

	cases := []struct {
		from, to TypeID
		want     bool
	}{
		{b.Char, b.Int, true},
		{b.Int, b.Double, true},
		{b.Double, b.Int, false},
		{b.Bool, b.Int, false},
		{b.Null, b.String, true},
		{b.Null, b.Int, false},
		{dog.Type, animal.Type, true},
		{animal.Type, dog.Type, false},
		{dog.Type, pet.Type, true},
		{b.Int, obj.Type, true},
		{tbl.ArrayOf(dog.Type), tbl.ArrayOf(animal.Type), true},
		{tbl.ArrayOf(b.Int), tbl.ArrayOf(b.Double), false},
	}
	for _, tc := range cases {
		if got := tbl.IsAssignable(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsAssignable(%s, %s) = %v, want %v", tbl.String(tc.from), tbl.String(tc.to), got, tc.want)
		}
	}
	if !tbl.IsCastable(animal.Type, dog.Type) {
		t.Fatalf("downcast must be allowed")
	}
	if tbl.IsCastable(b.Bool, b.Int) {
		t.Fatalf("boolean to int cast must be rejected")
	}
}

func TestSpecialize(t *testing.T) {
	tbl, obj := newTestTable(t)
	b := tbl.Builtins()
	box, _ := tbl.NewClass("Box", KindClass, 1, source.Span{})
	box.Base = obj.Type
	tp := tbl.TypeParam(box.ID, 0)
	box.TypeParams = []TypeParam{{Name: "T", Type: tp}}
	tbl.AddAttr(box, &Attribute{Name: "value", Type: tp})
	get := tbl.AddMethod(box, &Method{Name: "get", Return: tp})
	tbl.FreezeMembers()
	box.Attrs[0].Index = 0
	box.AttrCount = 1
	box.LaidOut = true

	s1, err := tbl.Specialize(box, []TypeID{b.Int})
	if err != nil {
		t.Fatalf("specialize: %v", err)
	}
	s2, _ := tbl.Specialize(box, []TypeID{b.Int})
	if s1 != s2 {
		t.Fatalf("specializations are not cached")
	}
	if s1.Name != "Box<int>" {
		t.Fatalf("got name %q", s1.Name)
	}
	if a := tbl.Attr(s1, "value"); a == nil || a.Type != b.Int || a.Index != 0 {
		t.Fatalf("specialized attr: %+v", a)
	}
	ms := tbl.OwnMethods(s1, "get")
	if len(ms) != 1 || ms[0].Return != b.Int || ms[0].Impl() != get.ID {
		t.Fatalf("specialized method: %+v", ms)
	}
	if self, _ := tbl.Specialize(box, []TypeID{tp}); self != box {
		t.Fatalf("generic applied to its own params must be itself")
	}
	if _, err := tbl.Specialize(box, nil); !errors.Is(err, ErrTypeArgCount) {
		t.Fatalf("got %v, want ErrTypeArgCount", err)
	}
	if tbl.Erase(s1.Type) != box.Type {
		t.Fatalf("erasure of Box<int> must be Box")
	}
}
