package ast

import "strings"

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint8

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModStatic
	ModFinal
	ModAbstract
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

func (m Modifiers) String() string {
	var parts []string
	names := []struct {
		f Modifiers
		s string
	}{
		{ModPublic, "public"}, {ModPrivate, "private"}, {ModProtected, "protected"},
		{ModStatic, "static"}, {ModFinal, "final"}, {ModAbstract, "abstract"},
	}
	for _, n := range names {
		if m.Has(n.f) {
			parts = append(parts, n.s)
		}
	}
	return strings.Join(parts, " ")
}
