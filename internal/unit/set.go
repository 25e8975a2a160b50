package unit

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Set owns the units of a workspace. IDs are never reused, so handles held
// by diagnostics of a removed unit cannot point at a new one.
type Set struct {
	units  []*Unit // units[0] = nil
	byPath map[string]ModuleID
}

func NewSet() *Set {
	return &Set{units: []*Unit{nil}, byPath: make(map[string]ModuleID)}
}

// Put creates the unit for path or replaces its text. It reports whether
// the text actually changed.
func (s *Set) Put(path string, text []byte) (*Unit, bool) {
	if id, ok := s.byPath[path]; ok {
		u := s.units[id]
		if string(u.Text) == string(text) {
			return u, false
		}
		u.Text = text
		u.Dirty = true
		return u, true
	}
	n, err := safecast.Conv[uint32](len(s.units))
	if err != nil {
		panic(fmt.Errorf("unit set overflow: %w", err))
	}
	u := New(ModuleID(n), path, text)
	s.units = append(s.units, u)
	s.byPath[path] = u.ID
	return u, true
}

// Remove destroys the unit for path.
func (s *Set) Remove(path string) bool {
	id, ok := s.byPath[path]
	if !ok {
		return false
	}
	delete(s.byPath, path)
	s.units[id] = nil
	return true
}

func (s *Set) Get(id ModuleID) *Unit {
	if id == NoModuleID || int(id) >= len(s.units) {
		return nil
	}
	return s.units[id]
}

func (s *Set) ByPath(path string) *Unit {
	if id, ok := s.byPath[path]; ok {
		return s.units[id]
	}
	return nil
}

// All returns the live units ordered by ID.
func (s *Set) All() []*Unit {
	out := make([]*Unit, 0, len(s.byPath))
	for _, u := range s.units[1:] {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}

// Paths returns the live unit paths sorted.
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
