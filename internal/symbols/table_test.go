package symbols

import (
	"errors"
	"testing"

	"jstep/internal/source"
	"jstep/internal/types"
)

func TestSlotsAndShadowing(t *testing.T) {
	tbl := NewTable()
	frame := tbl.OpenFrame(ScopeFrame, 0, 0, true, source.Span{})
	a, err := tbl.Declare(frame, "a", types.NoTypeID, source.Span{}, 0)
	if err != nil || a.Slot != 0 {
		t.Fatalf("a: slot=%d err=%v", a.Slot, err)
	}
	block := tbl.Open(frame, source.Span{})
	b, _ := tbl.Declare(block, "b", types.NoTypeID, source.Span{}, 2)
	if b.Slot != 1 {
		t.Fatalf("b slot %d, want 1", b.Slot)
	}
	if _, err := tbl.Declare(block, "a", types.NoTypeID, source.Span{}, 3); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("shadowing a local: got %v", err)
	}
	tbl.Close(block, 5)
	if _, ok := tbl.Lookup(frame, "b"); ok {
		t.Fatalf("b visible after its block closed")
	}
	c, _ := tbl.Declare(frame, "c", types.NoTypeID, source.Span{}, 6)
	if c.Slot != 1 {
		t.Fatalf("c slot %d, want reused slot 1", c.Slot)
	}
	if tbl.SlotCount != 2 {
		t.Fatalf("SlotCount %d, want 2", tbl.SlotCount)
	}

	snap := tbl.Snapshot(10)
	names := func(vs []SnapVar) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.Name)
		}
		return out
	}
	if got := names(snap.At(3)); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("At(3) = %v", got)
	}
	if got := names(snap.At(7)); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("At(7) = %v", got)
	}
}

func TestImitate(t *testing.T) {
	snap := Snapshot{Vars: []SnapVar{
		{Name: "x", Slot: 0, From: 0, To: 9},
		{Name: "y", Slot: 3, From: 4, To: 9},
	}}
	tbl, root := Imitate(snap, 5)
	y, ok := tbl.Lookup(root, "y")
	if !ok || y.Slot != 3 {
		t.Fatalf("y not imitated: %+v", y)
	}
	if !tbl.Scopes.Get(root).FrameBoundary {
		t.Fatalf("imitation root must be a frame boundary")
	}
	tmp := tbl.Temp(root, types.NoTypeID)
	if tmp != 4 {
		t.Fatalf("temp slot %d, want 4", tmp)
	}
}

func TestCloseSkipsAnonymousSlots(t *testing.T) {
	tbl := NewTable()
	frame := tbl.OpenFrame(ScopeFrame, 0, 0, false, source.Span{})
	if this := tbl.Temp(frame, types.NoTypeID); this != 0 {
		t.Fatalf("this slot %d, want 0", this)
	}
	block := tbl.Open(frame, source.Span{})
	tbl.Temp(block, types.NoTypeID)
	x, _ := tbl.Declare(block, "x", types.NoTypeID, source.Span{}, 1)
	tbl.Close(block, 4)
	tbl.Close(frame, 6)

	snap := tbl.Snapshot(8)
	if len(snap.Vars) != 1 {
		t.Fatalf("got %d snapshot vars, want only x", len(snap.Vars))
	}
	if v := snap.Vars[0]; v.Name != "x" || v.Slot != x.Slot || v.From != 1 || v.To != 4 {
		t.Fatalf("got %+v, want x live over [1, 4)", v)
	}
}
