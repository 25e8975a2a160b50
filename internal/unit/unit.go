// Package unit holds per-file compilation state.
package unit

import (
	"slices"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/source"
	"jstep/internal/token"
	"jstep/internal/types"
)

// ModuleID is a stable handle of a unit inside a Set. 0 is reserved for
// the runtime library.
type ModuleID uint32

const NoModuleID ModuleID = 0

// Usage records that this unit references a type declared in Module.
type Usage struct {
	Module ModuleID
	Span   source.Span
	Type   types.TypeID
}

// Unit is one compilation unit (module): a named source text and
// everything derived from it. Derived state is rebuilt on every compile.
type Unit struct {
	ID   ModuleID
	Path string
	Text []byte
	File source.FileID

	Tokens  []token.Token
	Builder *ast.Builder
	AST     ast.FileID
	Healed  []source.Span
	Colors  []lexer.ColorSpan

	Lex   *diag.Bag
	Parse *diag.Bag
	Type  *diag.Bag
	Gen   *diag.Bag

	// Dirty is set when Text changed since the last lex and parse.
	Dirty  bool
	Usages []Usage
	// DependsOnModulesWithErrors is set when a unit this one uses,
	// directly or transitively, has errors.
	DependsOnModulesWithErrors bool
}

func New(id ModuleID, path string, text []byte) *Unit {
	return &Unit{ID: id, Path: path, Text: text, Dirty: true}
}

// ResetSemantic clears what resolution and generation produced.
func (u *Unit) ResetSemantic(maxDiags int) {
	u.Type = diag.NewBag(maxDiags)
	u.Gen = diag.NewBag(maxDiags)
	u.Usages = u.Usages[:0]
	u.DependsOnModulesWithErrors = false
}

// Use records a reference to a type of another module.
func (u *Unit) Use(module ModuleID, sp source.Span, typ types.TypeID) {
	if module == NoModuleID || module == u.ID {
		return
	}
	u.Usages = append(u.Usages, Usage{Module: module, Span: sp, Type: typ})
}

func (u *Unit) bags() []*diag.Bag {
	return []*diag.Bag{u.Lex, u.Parse, u.Type, u.Gen}
}

// HasErrors reports error-severity diagnostics of any pass.
func (u *Unit) HasErrors() bool {
	for _, b := range u.bags() {
		if b.HasErrors() {
			return true
		}
	}
	return false
}

// Startable reports whether the unit's main program may be launched.
func (u *Unit) Startable() bool {
	return !u.HasErrors() && !u.DependsOnModulesWithErrors
}

// Diagnostics returns all diagnostics of the unit sorted by position.
func (u *Unit) Diagnostics() []diag.Diagnostic {
	merged := diag.NewBag(0)
	for _, b := range u.bags() {
		merged.Merge(b)
	}
	merged.Sort()
	merged.Dedup()
	return merged.Items()
}

// FirstError returns the first error by position, or nil.
func (u *Unit) FirstError() *diag.Diagnostic {
	for _, d := range u.Diagnostics() {
		if d.Severity.Blocking() {
			return &d
		}
	}
	return nil
}

// Deps lists the distinct modules this unit uses with the first usage span.
func (u *Unit) Deps() []Usage {
	var out []Usage
	for _, us := range u.Usages {
		if !slices.ContainsFunc(out, func(o Usage) bool { return o.Module == us.Module }) {
			out = append(out, us)
		}
	}
	return out
}
