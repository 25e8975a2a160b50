package ast

import (
	"testing"

	"jstep/internal/source"
)

func TestArenaOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatalf("index 0 must be nil")
	}
	id := a.Allocate(42)
	if id != 1 || *a.Get(id) != 42 {
		t.Fatalf("Allocate/Get mismatch: id=%d", id)
	}
	if a.Get(2) != nil {
		t.Fatalf("out-of-range Get must be nil")
	}
}

func TestPayloadAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{})
	sp := source.Span{Start: 0, End: 1}
	x := b.Exprs.NewIdent(sp, b.Strings.Intern("x"))
	one := b.Exprs.NewLiteral(sp, LitInt, "1")
	sum := b.Exprs.NewBinary(sp, BinAdd, x, one)
	if _, ok := b.Exprs.Call(sum); ok {
		t.Fatalf("binary expression must not decode as call")
	}
	bin, ok := b.Exprs.Binary(sum)
	if !ok || bin.Left != x || bin.Right != one || bin.Op != BinAdd {
		t.Fatalf("Binary payload = %+v", bin)
	}
	g := b.Exprs.NewGroup(sp, b.Exprs.NewGroup(sp, sum))
	if b.Exprs.Unparen(g) != sum {
		t.Fatalf("Unparen did not strip groups")
	}

	ret := b.Stmts.NewExprLike(StmtReturn, sp, sum)
	if data, ok := b.Stmts.ExprOf(ret); !ok || data.X != sum {
		t.Fatalf("ExprOf(return) failed")
	}
	if _, ok := b.Stmts.Block(ret); ok {
		t.Fatalf("return must not decode as block")
	}
}

func TestModifiersString(t *testing.T) {
	m := ModPublic | ModStatic | ModFinal
	if got := m.String(); got != "public static final" {
		t.Fatalf("String() = %q", got)
	}
}
