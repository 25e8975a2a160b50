package symbols

import (
	"slices"

	"jstep/internal/source"
	"jstep/internal/types"
)

// SnapVar is a variable with the half-open code range [From, To) where it
// is in scope.
type SnapVar struct {
	Name string       `msgpack:"n"`
	Type types.TypeID `msgpack:"t"`
	Slot int          `msgpack:"s"`
	From int          `msgpack:"f"`
	To   int          `msgpack:"e"`
}

// Snapshot is the resolved symbol information kept with a compiled
// program, enough to evaluate expressions against a paused frame.
type Snapshot struct {
	Class  types.ClassID  `msgpack:"c"`
	Method types.MethodID `msgpack:"m"`
	Static bool           `msgpack:"st"`
	Vars   []SnapVar      `msgpack:"v"`
}

// At lists the variables visible at offset pc, ordered by slot.
func (s Snapshot) At(pc int) []SnapVar {
	var out []SnapVar
	for _, v := range s.Vars {
		if v.From <= pc && pc < v.To {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b SnapVar) int { return a.Slot - b.Slot })
	return out
}

// Imitate rebuilds a symbol table whose root scope holds exactly the
// variables visible at pc, bound to the same slots. New declarations get
// slots after them.
func Imitate(s Snapshot, pc int) (*Table, ScopeID) {
	t := NewTable()
	root := t.OpenFrame(ScopeImitation, s.Class, s.Method, s.Static, source.Span{})
	for _, v := range s.At(pc) {
		t.declareSlot(root, v.Name, v.Type, source.Span{}, 0, v.Slot)
	}
	return t, root
}
