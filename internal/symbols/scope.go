package symbols

import (
	"jstep/internal/source"
	"jstep/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeFrame               // тело метода, конструктора или скрипта
	ScopeBlock               // блок, for, catch
	ScopeImitation           // корень для вычисления выражений в отладчике
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFrame:
		return "frame"
	case ScopeBlock:
		return "block"
	case ScopeImitation:
		return "imitation"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. Lookups stop
// at the first scope with FrameBoundary set.
type Scope struct {
	Kind          ScopeKind
	Parent        ScopeID
	Span          source.Span
	FrameBoundary bool
	Vars          map[string]VarID
	Order         []VarID

	// контекст метода
	Class  types.ClassID
	Method types.MethodID
	Static bool

	firstSlot int
}

// Var is a local variable or parameter bound to a frame slot.
type Var struct {
	Name  string
	Type  types.TypeID
	Slot  int
	Span  source.Span
	Scope ScopeID
	Param bool

	snap int // индекс в записи снимка
}
