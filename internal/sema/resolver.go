// Package sema resolves the class hierarchy of all units in dependency
// order: type names, inheritance, members, attribute layout and vtables.
// Method bodies are checked later by the code generator.
package sema

import (
	"errors"
	"fmt"

	"jstep/internal/ast"
	"jstep/internal/compctx"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/trace"
	"jstep/internal/types"
	"jstep/internal/unit"
)

var ErrNoLibrary = errors.New("runtime library is not set")

// ClassDecl ties a declared class to its source.
type ClassDecl struct {
	Class *types.Class
	Unit  *unit.Unit
	Item  ast.ItemID
	// Fields maps field members to their attribute records.
	Fields map[ast.MemberID]*types.Attribute
	// DefaultCtor is synthesized for classes without constructors.
	DefaultCtor *types.Method
	// Values is the synthesized values() of an enum.
	Values *types.Method

	linked bool
}

// MethodDecl ties a method record to its declaration. Member is NoMemberID
// for synthesized methods.
type MethodDecl struct {
	Unit   *unit.Unit
	Class  *types.Class
	Member ast.MemberID
}

// Info is the result of resolution shared with the code generator.
type Info struct {
	Types   *types.Table
	Classes []*ClassDecl
	Methods map[types.MethodID]MethodDecl

	byClass  map[types.ClassID]*ClassDecl
	byMember map[memberKey]types.MethodID
}

type memberKey struct {
	module unit.ModuleID
	member ast.MemberID
}

// Decl returns the declaration of a user class, nil for library classes.
func (info *Info) Decl(c *types.Class) *ClassDecl {
	if c == nil {
		return nil
	}
	if c.Origin != types.NoClassID {
		c = info.Types.Class(c.Origin)
	}
	return info.byClass[c.ID]
}

// MethodOf returns the method record created for a method or constructor member.
func (info *Info) MethodOf(u *unit.Unit, m ast.MemberID) *types.Method {
	id, ok := info.byMember[memberKey{module: u.ID, member: m}]
	if !ok {
		return nil
	}
	return info.Types.Method(id)
}

type resolver struct {
	ctx  *compctx.Context
	tbl  *types.Table
	info *Info

	visiting map[types.ClassID]bool
}

// Resolve declares the library, then collects, links and lays out every
// class of ctx.Units. Diagnostics go to each unit's Type bag; the returned
// error is reserved for failures outside user code.
func Resolve(ctx *compctx.Context) (*Info, error) {
	if ctx.Library == nil {
		return nil, ErrNoLibrary
	}
	tbl := ctx.Types
	if err := ctx.Library.Declare(tbl); err != nil {
		return nil, fmt.Errorf("declare runtime library: %w", err)
	}
	r := &resolver{
		ctx: ctx,
		tbl: tbl,
		info: &Info{
			Types:    tbl,
			Methods:  make(map[types.MethodID]MethodDecl),
			byClass:  make(map[types.ClassID]*ClassDecl),
			byMember: make(map[memberKey]types.MethodID),
		},
		visiting: make(map[types.ClassID]bool),
	}

	passes := []struct {
		name string
		run  func()
	}{
		{"sema.collect", r.collect},
		{"sema.link", r.link},
		{"sema.members", r.members},
		{"sema.layout", r.layoutAll},
	}
	for _, p := range passes {
		if ctx.Cancelled() {
			return nil, ctx.Ctx.Err()
		}
		span := trace.Begin(ctx.Tracer, trace.ScopePass, p.name, 0)
		p.run()
		span.End("")
	}
	return r.info, nil
}

func (r *resolver) reporter(u *unit.Unit) diag.Reporter {
	return r.ctx.TypeReporter(u)
}

func (r *resolver) report(u *unit.Unit, code diag.Code, sp source.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(r.reporter(u), code, sp, msg); b != nil {
		b.Emit()
	}
}

func (r *resolver) env(d *ClassDecl) TypeEnv {
	return TypeEnv{Unit: d.Unit, Class: d.Class, Reporter: r.reporter(d.Unit)}
}
