package gen

import (
	"strings"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

// receiver of a call being compiled
type recvKind uint8

const (
	recvNone  recvKind = iota // статический вызов
	recvValue                 // объект уже на стеке
	recvSuper                 // this, без виртуальной диспетчеризации
)

func (f *fn) call(id ast.ExprID, sp source.Span, want bool) types.TypeID {
	c, _ := f.b.Exprs.Call(id)
	name := f.b.Name(c.Name)

	var cands []*types.Method
	var owner string
	recv := recvNone
	staticOnly := false

	switch tx := f.b.Exprs.Get(f.b.Exprs.Unparen(c.Target)); {
	case !c.Target.IsValid():
		if f.class != nil {
			cands = f.tbl.LookupMethods(f.class, name)
			owner = f.class.Name
		}
		if len(cands) == 0 {
			cands = f.tbl.OwnMethods(f.g.lib.global, name)
			owner = ""
		}
	case tx != nil && tx.Kind == ast.ExprSuper:
		if f.static || f.class == nil {
			f.report(diag.SemaStaticContext, tx.Span, "'super' cannot be referenced from a static context")
			f.discardArgs(c.Args)
			return f.invalid()
		}
		base := f.tbl.ClassOf(f.class.Base)
		if f.class.Base == types.NoTypeID {
			base = f.g.lib.object
		}
		cands = f.tbl.LookupMethods(base, name)
		owner = base.Name
		recv = recvSuper
	default:
		if cl, ok := f.classRef(c.Target); ok {
			cands = f.tbl.LookupMethods(cl, name)
			owner = cl.Name
			staticOnly = true
			break
		}
		rt := f.expr(c.Target, types.NoTypeID)
		if f.isInvalid(rt) {
			f.discardArgs(c.Args)
			return rt
		}
		if k := f.tbl.Kind(rt); k.IsPrimitive() || rt == types.NoTypeID || k == types.KindNull {
			f.report(diag.SemaUnknownMember, c.NameSpan, "%s cannot be dereferenced", f.tbl.String(rt))
			f.discardArgs(c.Args)
			return f.invalid()
		}
		cl := f.tbl.ClassOf(rt)
		cands = f.tbl.LookupMethods(cl, name)
		owner = f.tbl.String(rt)
		recv = recvValue
	}

	if len(cands) == 0 {
		if owner == "" {
			f.report(diag.SemaUnknownMember, c.NameSpan, "cannot find symbol: method %s", name)
		} else {
			f.report(diag.SemaUnknownMember, c.NameSpan, "cannot find symbol: method %s in %s", name, owner)
		}
		f.discardArgs(c.Args)
		return f.invalid()
	}
	m := f.pickMethod(cands, c.Args, c.NameSpan, "method", name)
	if m == nil {
		f.discardArgs(c.Args)
		return f.invalid()
	}
	if !f.canAccess(m.Vis, m.Owner) {
		f.report(diag.SemaPrivateAccess, c.NameSpan, "%s has private access in %s", name, f.tbl.Class(m.Owner).Name)
	}
	static := m.Is(types.MethodStatic)
	switch {
	case static && recv == recvValue:
		f.emit(steps.OpPop, 0, 0, sp)
		recv = recvNone
	case !static && staticOnly:
		f.report(diag.SemaStaticContext, c.NameSpan, "non-static method %s cannot be referenced from a static context", f.tbl.Signature(m))
		return f.invalid()
	case !static && recv == recvNone:
		if f.static || f.class == nil {
			f.report(diag.SemaStaticContext, c.NameSpan, "non-static method %s cannot be referenced from a static context", f.tbl.Signature(m))
			return f.invalid()
		}
		f.emit(steps.OpLoadLocal, 0, 0, sp)
		recv = recvValue
	case recv == recvSuper && m.Is(types.MethodAbstract):
		f.report(diag.SemaAbstractInstantiation, c.NameSpan, "abstract method %s cannot be accessed directly", f.tbl.Signature(m))
	}
	f.use(f.tbl.Class(m.Owner), c.NameSpan)
	f.emitArgs(m, c.Args)
	f.invoke(m, recv, len(c.Args), sp)
	if !want && m.Return != types.NoTypeID {
		f.emit(steps.OpPop, 0, 0, sp)
	}
	return m.Return
}

// invoke emits the call of m whose receiver (if any) and arguments are
// on the stack.
func (f *fn) invoke(m *types.Method, recv recvKind, argc int, sp source.Span) {
	if m.Is(types.MethodStatic) {
		f.emit(steps.OpCall, int(m.Impl()), argc, sp)
		return
	}
	argc++
	virtual := recv == recvValue && m.Vis != types.VisPrivate &&
		(m.Virtual || m.Is(types.MethodAbstract) || f.tbl.Method(m.Impl()).Virtual)
	if virtual {
		f.emit(steps.OpCallVirtual, int(m.Impl()), argc, sp)
		return
	}
	f.emit(steps.OpCall, int(m.Impl()), argc, sp)
}

// applicable reports whether args can be passed to m.
func (f *fn) applicable(m *types.Method, args []ast.ExprID) bool {
	if len(m.Params) != len(args) {
		return false
	}
	for i, a := range args {
		p := m.Params[i]
		t := f.typeOf(a, p.Type)
		if p.Stringify {
			if t == types.NoTypeID {
				return false
			}
			continue
		}
		if t == types.NoTypeID || !f.tbl.IsAssignable(t, p.Type) {
			return false
		}
	}
	return true
}

// moreSpecific reports whether every parameter of a is assignable to the
// corresponding one of b.
func (f *fn) moreSpecific(a, b *types.Method) bool {
	for i := range a.Params {
		if !f.tbl.IsAssignable(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

// pickMethod selects the most specific applicable candidate. what and
// name only shape the diagnostics.
func (f *fn) pickMethod(cands []*types.Method, args []ast.ExprID, sp source.Span, what, name string) *types.Method {
	var ok []*types.Method
	for _, m := range cands {
		if f.applicable(m, args) {
			ok = append(ok, m)
		}
	}
	switch len(ok) {
	case 0:
		f.report(diag.SemaNoMatchingMethod, sp, "no suitable %s found for %s(%s)", what, name, f.argTypes(args))
		return nil
	case 1:
		return ok[0]
	}
	var best []*types.Method
	for _, m := range ok {
		all := true
		for _, o := range ok {
			if o != m && !f.moreSpecific(m, o) {
				all = false
				break
			}
		}
		if all {
			best = append(best, m)
		}
	}
	if len(best) == 0 {
		f.report(diag.SemaAmbiguousCall, sp, "reference to %s is ambiguous: both %s and %s match",
			name, f.tbl.Signature(ok[0]), f.tbl.Signature(ok[1]))
		return nil
	}
	// одинаковые сигнатуры: собственный метод идёт первым
	return best[0]
}

func (f *fn) argTypes(args []ast.ExprID) string {
	names := make([]string, len(args))
	for i, a := range args {
		t := f.typeOf(a, types.NoTypeID)
		if t == types.NoTypeID {
			names[i] = "void"
			continue
		}
		names[i] = f.tbl.String(t)
	}
	return strings.Join(names, ", ")
}

// emitArgs pushes arguments converted to m's parameter types.
func (f *fn) emitArgs(m *types.Method, args []ast.ExprID) {
	for i, a := range args {
		p := m.Params[i]
		if p.Stringify {
			t := f.expr(a, types.NoTypeID)
			f.stringify(t, f.exprSpan(a))
			continue
		}
		f.coerce(a, p.Type)
	}
}

// discardArgs compiles arguments of a failed call only to report errors
// inside them.
func (f *fn) discardArgs(args []ast.ExprID) {
	for _, a := range args {
		f.expr(a, types.NoTypeID)
	}
}

func (f *fn) newObject(id ast.ExprID, sp source.Span, hint types.TypeID, want bool) types.TypeID {
	n, _ := f.b.Exprs.New(id)
	t := f.resolveType(n.Type, hint)
	if f.isInvalid(t) {
		f.discardArgs(n.Args)
		return t
	}
	k := f.tbl.Kind(t)
	c := f.tbl.ClassOf(t)
	switch {
	case k == types.KindTypeParam:
		f.report(diag.SemaAbstractInstantiation, sp, "cannot instantiate type parameter %s", f.tbl.String(t))
		return f.invalid()
	case !k.IsClassLike() && k != types.KindString || c == nil:
		f.report(diag.SemaAbstractInstantiation, sp, "cannot instantiate %s", f.tbl.String(t))
		return f.invalid()
	case k == types.KindEnum:
		f.report(diag.SemaAbstractInstantiation, sp, "enum types may not be instantiated")
		return f.invalid()
	case k == types.KindInterface || c.Is(types.ClassAbstract):
		f.report(diag.SemaAbstractInstantiation, sp, "%s is abstract; cannot be instantiated", f.tbl.String(t))
		return f.invalid()
	}
	m := f.pickMethod(f.tbl.Ctors(c), n.Args, sp, "constructor", c.Name)
	if m == nil {
		f.discardArgs(n.Args)
		return f.invalid()
	}
	if !f.canAccess(m.Vis, m.Owner) {
		f.report(diag.SemaPrivateAccess, sp, "%s() has private access in %s", c.Name, c.Name)
	}
	f.use(c, sp)
	f.emit(steps.OpNew, int(f.tbl.Erase(t)), 0, sp)
	if want {
		f.emit(steps.OpDup, 0, 0, sp)
	}
	f.emitArgs(m, n.Args)
	f.emit(steps.OpCall, int(m.Impl()), len(n.Args)+1, sp)
	return t
}
