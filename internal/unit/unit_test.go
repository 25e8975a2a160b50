package unit

import (
	"testing"

	"jstep/internal/diag"
	"jstep/internal/source"
)

func TestSetPutRemove(t *testing.T) {
	s := NewSet()
	a, changed := s.Put("A.jst", []byte("class A {}"))
	if !changed || a.ID != 1 {
		t.Fatalf("first put: id=%d changed=%v", a.ID, changed)
	}
	a.Dirty = false
	if _, changed := s.Put("A.jst", []byte("class A {}")); changed || a.Dirty {
		t.Fatalf("same text must not mark the unit dirty")
	}
	b, _ := s.Put("B.jst", nil)
	if !s.Remove("A.jst") || s.Get(a.ID) != nil {
		t.Fatalf("remove failed")
	}
	c, _ := s.Put("A.jst", nil)
	if c.ID == a.ID || c.ID <= b.ID {
		t.Fatalf("ids reused: a=%d c=%d", a.ID, c.ID)
	}
	if len(s.All()) != 2 {
		t.Fatalf("All = %d units, want 2", len(s.All()))
	}
}

func TestStartable(t *testing.T) {
	u := New(1, "Main.jst", nil)
	u.Lex, u.Parse = diag.NewBag(0), diag.NewBag(0)
	u.ResetSemantic(0)
	u.Parse.Add(diag.New(diag.SevWarning, diag.SynHealedSemicolon, source.Span{}, "inserted ';'"))
	if !u.Startable() {
		t.Fatalf("warnings must not block start")
	}
	u.DependsOnModulesWithErrors = true
	if u.Startable() {
		t.Fatalf("unit depending on broken modules must not start")
	}
	u.DependsOnModulesWithErrors = false
	u.Type.Add(diag.NewError(diag.SemaUnknownName, source.Span{}, "x"))
	if u.Startable() || u.FirstError() == nil {
		t.Fatalf("errors must block start")
	}
}

func TestUsesIgnoreSelfAndLibrary(t *testing.T) {
	u := New(2, "B.jst", nil)
	u.Use(0, source.Span{}, 0)
	u.Use(2, source.Span{}, 0)
	u.Use(1, source.Span{Start: 5}, 0)
	u.Use(1, source.Span{Start: 9}, 0)
	deps := u.Deps()
	if len(deps) != 1 || deps[0].Span.Start != 5 {
		t.Fatalf("deps = %+v", deps)
	}
}
