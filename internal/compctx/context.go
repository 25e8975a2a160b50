// Package compctx carries the shared state of one compilation through the
// resolver and the code generator.
package compctx

import (
	"context"

	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/trace"
	"jstep/internal/types"
	"jstep/internal/unit"
)

// Library is the runtime library as seen by the compiler: it declares its
// native classes into a fresh type table before user code is collected.
type Library interface {
	Declare(tbl *types.Table) error
}

// Context is rebuilt for every compile. Units are ordered by ModuleID.
type Context struct {
	Ctx     context.Context
	Files   *source.FileSet
	Units   []*unit.Unit
	Types   *types.Table
	Library Library
	Tracer  trace.Tracer
}

func New(ctx context.Context, files *source.FileSet, units []*unit.Unit, lib Library) *Context {
	return &Context{
		Ctx:     ctx,
		Files:   files,
		Units:   units,
		Types:   types.NewTable(),
		Library: lib,
		Tracer:  trace.FromContext(ctx),
	}
}

// Unit returns the unit with the given module id.
func (c *Context) Unit(id unit.ModuleID) *unit.Unit {
	for _, u := range c.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UnitOfFile maps a file id back to its unit.
func (c *Context) UnitOfFile(f source.FileID) *unit.Unit {
	for _, u := range c.Units {
		if u.File == f {
			return u
		}
	}
	return nil
}

// TypeReporter reports into the resolver bag of u.
func (c *Context) TypeReporter(u *unit.Unit) diag.Reporter {
	return diag.BagReporter{Bag: u.Type}
}

// GenReporter reports into the generator bag of u.
func (c *Context) GenReporter(u *unit.Unit) diag.Reporter {
	return diag.BagReporter{Bag: u.Gen}
}

// Cancelled reports whether the surrounding context is done.
func (c *Context) Cancelled() bool {
	if c.Ctx == nil {
		return false
	}
	return c.Ctx.Err() != nil
}
