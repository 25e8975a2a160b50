// Package symbols tracks local variables of one frame: nested scopes,
// slot allocation and the per-offset snapshot used for imitation.
package symbols

import (
	"errors"
	"fmt"

	"jstep/internal/source"
	"jstep/internal/types"
)

var ErrDuplicate = errors.New("variable already defined")

// Table holds the scopes of one frame. Slots of closed block scopes are
// reused; SlotCount is the high-water mark.
type Table struct {
	Scopes *Scopes
	vars   []Var // vars[0] - sentinel

	nextSlot  int
	SlotCount int

	snap Snapshot
}

func NewTable() *Table {
	return &Table{Scopes: NewScopes(0), vars: make([]Var, 1, 16)}
}

// OpenFrame creates the root scope of a method, constructor or script.
func (t *Table) OpenFrame(kind ScopeKind, class types.ClassID, method types.MethodID, static bool, span source.Span) ScopeID {
	id := t.Scopes.New(kind, NoScopeID, span)
	sc := t.Scopes.Get(id)
	sc.FrameBoundary = true
	sc.Class, sc.Method, sc.Static = class, method, static
	t.nextSlot = 0
	t.snap.Class, t.snap.Method, t.snap.Static = class, method, static
	return id
}

// Open creates a nested block scope.
func (t *Table) Open(parent ScopeID, span source.Span) ScopeID {
	id := t.Scopes.New(ScopeBlock, parent, span)
	sc := t.Scopes.Get(id)
	if p := t.Scopes.Get(parent); p != nil {
		sc.Class, sc.Method, sc.Static = p.Class, p.Method, p.Static
	}
	sc.firstSlot = t.nextSlot
	return id
}

// Close ends a block scope at code offset pc and frees its slots.
func (t *Table) Close(id ScopeID, pc int) {
	sc := t.Scopes.Get(id)
	if sc == nil {
		return
	}
	for _, v := range sc.Order {
		// безымянные слоты (this, временные) в снимок не попадают
		if i := t.vars[v].snap; i >= 0 {
			t.snap.Vars[i].To = pc
		}
	}
	if !sc.FrameBoundary {
		t.nextSlot = sc.firstSlot
	}
}

// Declare binds name in scope to a fresh slot, live from offset pc.
// Shadowing another local of the same frame is an error.
func (t *Table) Declare(scope ScopeID, name string, typ types.TypeID, span source.Span, pc int) (*Var, error) {
	if prev, ok := t.Lookup(scope, name); ok {
		return prev, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	return t.declareSlot(scope, name, typ, span, pc, t.nextSlot), nil
}

// Temp allocates an anonymous slot in scope.
func (t *Table) Temp(scope ScopeID, typ types.TypeID) int {
	v := t.declareSlot(scope, "", typ, source.Span{}, -1, t.nextSlot)
	return v.Slot
}

func (t *Table) declareSlot(scope ScopeID, name string, typ types.TypeID, span source.Span, pc, slot int) *Var {
	sc := t.Scopes.Get(scope)
	id := VarID(len(t.vars)) // #nosec G115 -- ограничено размером программы
	t.vars = append(t.vars, Var{Name: name, Type: typ, Slot: slot, Span: span, Scope: scope, snap: -1})
	v := &t.vars[id]
	if name != "" {
		sc.Vars[name] = id
		v.snap = len(t.snap.Vars)
		t.snap.Vars = append(t.snap.Vars, SnapVar{Name: name, Type: typ, Slot: slot, From: pc, To: -1})
	}
	sc.Order = append(sc.Order, id)
	if slot >= t.nextSlot {
		t.nextSlot = slot + 1
	}
	if t.nextSlot > t.SlotCount {
		t.SlotCount = t.nextSlot
	}
	return v
}

// Lookup walks parents up to and including the frame boundary.
func (t *Table) Lookup(scope ScopeID, name string) (*Var, bool) {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if v, ok := sc.Vars[name]; ok {
			return &t.vars[v], true
		}
		if sc.FrameBoundary {
			break
		}
		id = sc.Parent
	}
	return nil, false
}

// Frame returns the frame scope enclosing scope.
func (t *Table) Frame(scope ScopeID) *Scope {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc.FrameBoundary {
			return sc
		}
		id = sc.Parent
	}
	return nil
}

// Snapshot returns the recorded live ranges. Variables still open are
// closed at end.
func (t *Table) Snapshot(end int) Snapshot {
	out := Snapshot{Class: t.snap.Class, Method: t.snap.Method, Static: t.snap.Static}
	out.Vars = make([]SnapVar, len(t.snap.Vars))
	copy(out.Vars, t.snap.Vars)
	for i := range out.Vars {
		if out.Vars[i].To < 0 {
			out.Vars[i].To = end
		}
	}
	return out
}
