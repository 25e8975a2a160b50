package ast

import "jstep/internal/source"

type Hints struct{ Items, Stmts, Exprs uint }

// Builder owns every arena of one compilation unit. Names are interned in
// the builder's own Interner so units can be parsed in parallel.
type Builder struct {
	Strings *source.Interner
	Files   *Arena[File]
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Types   *TypeExprs
}

func NewBuilder(hints Hints) *Builder {
	if hints.Items == 0 {
		hints.Items = 1 << 4
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Strings: source.NewInterner(),
		Files:   NewArena[File](1),
		Items:   NewItems(hints.Items),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Types:   NewTypeExprs(hints.Exprs / 4),
	}
}

// Name returns the text of an interned identifier.
func (b *Builder) Name(id source.StringID) string {
	s, _ := b.Strings.Lookup(id)
	return s
}

// File is the root of one compilation unit: declarations plus the
// top-level statements that form the unit's main program.
type File struct {
	Span  source.Span
	Items []ItemID
	Stmts []StmtID
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return FileID(b.Files.Allocate(File{Span: sp}))
}

func (b *Builder) File(id FileID) *File {
	return b.Files.Get(uint32(id))
}
