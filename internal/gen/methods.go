package gen

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/sema"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
	"jstep/internal/unit"
)

// genMethod compiles a method or constructor. mem is nil for the
// synthesized default constructor.
func (g *generator) genMethod(d *sema.ClassDecl, m *types.Method, mem *ast.Member) {
	kind := steps.KindMethod
	if m.Is(types.MethodCtor) {
		kind = steps.KindCtor
	}
	sp := m.Span
	if mem != nil {
		sp = mem.Span
	}
	f := g.newFn(d.Unit, kind, d.Class.Name+"."+m.Name, d.Class, m, m.Is(types.MethodStatic), sp)
	for i, p := range m.Params {
		psp := sp
		if mem != nil && i < len(mem.Params) {
			psp = mem.Params[i].Span
		}
		f.declare(p.Name, p.Type, psp)
	}
	f.prog.ParamCount = len(m.Params)
	if !f.static {
		f.prog.ParamCount++
	}
	f.prog.Returns = m.Return != types.NoTypeID

	var body []ast.StmtID
	var bodySpan source.Span
	if mem != nil && mem.Body.IsValid() {
		bodySpan = f.b.Stmts.Get(mem.Body).Span
		if blk, ok := f.b.Stmts.Block(mem.Body); ok {
			body = blk.Stmts
		}
	}

	if f.ctor {
		body = f.ctorPrologue(d, body, sp)
	}
	f.stmts(body)

	end := sp.AtEnd()
	if !bodySpan.Empty() {
		end = source.Span{File: bodySpan.File, Start: bodySpan.End - 1, End: bodySpan.End}
	}
	if m.Return == types.NoTypeID {
		f.stmt(end)
		f.emit(steps.OpReturn, 0, 0, end)
	} else if mem != nil && mem.Body.IsValid() && !f.terminatesAll(body) {
		f.report(diag.SemaMissingReturn, end, "missing return statement in %s", m.Name)
	}
	g.out.Methods[m.ID] = f.finish()
}

// ctorPrologue emits the explicit or implicit this(...)/super(...) call
// and, unless this(...) delegates, the instance field initializers. It
// returns the remaining body statements.
func (f *fn) ctorPrologue(d *sema.ClassDecl, body []ast.StmtID, sp source.Span) []ast.StmtID {
	c := d.Class
	delegates := false
	if len(body) > 0 {
		if cc, ok := f.b.Stmts.CtorCall(body[0]); ok {
			st := f.b.Stmts.Get(body[0])
			f.stmt(st.Span)
			delegates = !cc.Super
			f.explicitCtorCall(c, cc, st.Span)
			body = body[1:]
		} else {
			f.implicitSuper(c, sp)
		}
	} else {
		f.implicitSuper(c, sp)
	}
	if !delegates {
		f.fieldInits(d, false)
	}
	return body
}

func (f *fn) implicitSuper(c *types.Class, sp source.Span) {
	base := f.tbl.ClassOf(c.Base)
	if base == nil || c.Base == types.NoTypeID || base == f.g.lib.object || base == f.g.lib.enum || c.Kind == types.KindEnum {
		return
	}
	var ctor *types.Method
	for _, m := range f.tbl.Ctors(base) {
		if len(m.Params) == 0 {
			ctor = m
			break
		}
	}
	if ctor == nil {
		f.report(diag.SemaNoDefaultCtor, sp, "%s has no constructor without arguments; call super(...) explicitly", base.Name)
		return
	}
	if !f.canAccess(ctor.Vis, ctor.Owner) {
		f.report(diag.SemaPrivateAccess, sp, "constructor of %s is private", base.Name)
	}
	f.stmt(sp.AtStart())
	f.emit(steps.OpLoadLocal, 0, 0, sp)
	f.emit(steps.OpCall, int(ctor.Impl()), 1, sp)
}

func (f *fn) explicitCtorCall(c *types.Class, cc *ast.StmtCtorCallData, sp source.Span) {
	target := c
	if cc.Super {
		target = f.tbl.ClassOf(c.Base)
		if c.Kind == types.KindEnum || target == nil {
			f.report(diag.SemaCtorCallPosition, sp, "enum constructors cannot call super(...)")
			return
		}
	}
	f.emit(steps.OpLoadLocal, 0, 0, sp)
	m := f.pickMethod(f.tbl.Ctors(target), cc.Args, sp, "constructor", target.Name)
	if m == nil {
		f.discardArgs(cc.Args)
		return
	}
	if !f.canAccess(m.Vis, m.Owner) {
		f.report(diag.SemaPrivateAccess, sp, "constructor of %s is private", target.Name)
	}
	f.emitArgs(m, cc.Args)
	f.emit(steps.OpCall, int(m.Impl()), len(cc.Args)+1, sp)
}

// fieldInits emits initializers of instance (or static) fields in
// declaration order.
func (f *fn) fieldInits(d *sema.ClassDecl, static bool) {
	it := f.b.Item(d.Item)
	for _, mid := range it.Members {
		mem := f.b.Member(mid)
		if mem.Kind != ast.MemberField || !mem.Init.IsValid() {
			continue
		}
		a := d.Fields[mid]
		if a == nil || a.Static != static {
			continue
		}
		f.stmt(mem.Span)
		if static {
			f.coerce(mem.Init, a.Type)
			f.emit(steps.OpStoreStatic, int(a.Owner), a.Index, mem.NameSpan)
			continue
		}
		f.emit(steps.OpLoadLocal, 0, 0, mem.NameSpan)
		f.coerce(mem.Init, a.Type)
		f.emit(steps.OpStoreField, a.Index, 0, mem.NameSpan)
	}
}

// genValues emits Enum.values(): a fresh array of all constants.
func (g *generator) genValues(d *sema.ClassDecl) {
	c := d.Class
	m := d.Values
	f := g.newFn(d.Unit, steps.KindMethod, c.Name+".values", c, m, true, m.Span)
	f.prog.Returns = true
	f.stmt(m.Span)
	for _, name := range c.EnumConsts {
		a := g.tbl.Attr(c, name)
		f.emit(steps.OpLoadStatic, int(c.ID), a.Index, m.Span)
	}
	f.emit(steps.OpArrayLit, int(m.Return), len(c.EnumConsts), m.Span)
	f.emit(steps.OpReturnValue, 0, 0, m.Span)
	g.out.Methods[m.ID] = f.finish()
}

// genClassInit builds the static initializer: enum constants first, then
// static field initializers. Classes with nothing to initialize get none.
func (g *generator) genClassInit(d *sema.ClassDecl) {
	c := d.Class
	it := d.Unit.Builder.Item(d.Item)
	hasStatic := len(it.EnumConsts) > 0
	for _, a := range d.Fields {
		if a.Static {
			hasStatic = true
		}
	}
	if !hasStatic {
		return
	}
	f := g.newFn(d.Unit, steps.KindClassInit, c.Name+".<clinit>", c, nil, true, it.NameSpan)
	f.clinit = true
	for ord, ec := range it.EnumConsts {
		f.enumConst(d, ec, ord)
	}
	f.fieldInits(d, true)
	f.emit(steps.OpReturn, 0, 0, it.NameSpan.AtEnd())
	g.out.Inits[c.ID] = f.finish()
}

// enumConst creates one constant: new object, name and ordinal, then the
// constructor with the constant's arguments.
func (f *fn) enumConst(d *sema.ClassDecl, ec ast.EnumConst, ord int) {
	c := d.Class
	name := f.b.Name(ec.Name)
	a := f.tbl.Attr(c, name)
	if a == nil || a.Owner != c.ID {
		return // дубликат, уже сообщено
	}
	nameAttr := f.tbl.Attr(f.g.lib.enum, "$name")
	ordAttr := f.tbl.Attr(f.g.lib.enum, "$ordinal")
	sp := ec.Span
	f.stmt(sp)
	f.emit(steps.OpNew, int(c.Type), 0, sp)
	f.emit(steps.OpDup, 0, 0, sp)
	f.emit(steps.OpDup, 0, 0, sp)
	f.pushConst(steps.Const{Kind: steps.ConstString, S: name}, sp)
	f.emit(steps.OpStoreField, nameAttr.Index, 0, sp)
	f.emit(steps.OpDup, 0, 0, sp)
	f.pushInt(int64(ord), sp)
	f.emit(steps.OpStoreField, ordAttr.Index, 0, sp)
	m := f.pickMethod(f.tbl.Ctors(c), ec.Args, sp, "constructor", c.Name)
	if m != nil {
		f.emitArgs(m, ec.Args)
		f.emit(steps.OpCall, int(m.Impl()), len(ec.Args)+1, sp)
	} else {
		f.emit(steps.OpPop, 0, 0, sp)
	}
	f.emit(steps.OpStoreStatic, int(c.ID), a.Index, sp)
}

// genScript compiles the top-level statements of a unit.
func (g *generator) genScript(u *unit.Unit) {
	if u.Builder == nil {
		return
	}
	file := u.Builder.File(u.AST)
	if file == nil {
		return
	}
	f := g.newFn(u, steps.KindScript, u.Path, nil, nil, true, file.Span)
	f.stmts(file.Stmts)
	f.stmt(file.Span.AtEnd())
	f.emit(steps.OpReturn, 0, 0, file.Span.AtEnd())
	g.out.Scripts[u.ID] = f.finish()
}
