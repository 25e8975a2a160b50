package gen

import (
	"fmt"

	"fortio.org/safecast"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/sema"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/symbols"
	"jstep/internal/types"
	"jstep/internal/unit"
)

// jumpTarget is an enclosing loop or switch.
type jumpTarget struct {
	loop     bool
	breaks   []int
	conts    []int
	tryDepth int
}

// fn is the state of one program being emitted.
type fn struct {
	g    *generator
	tbl  *types.Table
	u    *unit.Unit
	b    *ast.Builder
	rep  diag.Reporter
	prog *steps.Program

	class  *types.Class // nil для скриптов
	method *types.Method
	static bool
	ctor   bool
	clinit bool
	ret    types.TypeID

	syms  *symbols.Table
	scope symbols.ScopeID

	targets  []*jumpTarget
	tryDepth int

	// dry > 0 while an expression is only being typed: nothing is emitted
	// and nothing is reported.
	dry int

	stmtStart bool
	stmtSpan  source.Span
}

func (g *generator) newFn(u *unit.Unit, kind steps.Kind, name string, class *types.Class, m *types.Method, static bool, sp source.Span) *fn {
	f := &fn{
		g:      g,
		tbl:    g.tbl,
		u:      u,
		b:      u.Builder,
		rep:    g.ctx.TypeReporter(u),
		class:  class,
		method: m,
		static: static,
		syms:   symbols.NewTable(),
		prog: &steps.Program{
			Name:   name,
			Kind:   kind,
			Module: uint32(u.ID),
			File:   u.File,
			Span:   sp,
		},
	}
	var cid types.ClassID
	var mid types.MethodID
	if class != nil {
		cid = class.ID
		f.prog.Class = cid
	}
	if m != nil {
		mid = m.ID
		f.prog.Method = mid
		f.ret = m.Return
		f.ctor = m.Is(types.MethodCtor)
	}
	f.scope = f.syms.OpenFrame(symbols.ScopeFrame, cid, mid, static, sp)
	if !static {
		f.syms.Temp(f.scope, class.Type) // слот 0 - this
	}
	return f
}

// finish closes the frame and seals the program.
func (f *fn) finish() *steps.Program {
	end := len(f.prog.Steps)
	f.syms.Close(f.scope, end)
	f.prog.SlotCount = f.syms.SlotCount
	f.prog.Symbols = f.syms.Snapshot(end)
	f.prog.Finish()
	return f.prog
}

func (f *fn) env() sema.TypeEnv {
	return sema.TypeEnv{Unit: f.u, Class: f.class, Reporter: f.rep, Static: f.static}
}

func (f *fn) report(code diag.Code, sp source.Span, format string, args ...any) {
	if f.dry > 0 {
		return
	}
	diag.ReportError(f.rep, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (f *fn) invalid() types.TypeID { return f.tbl.Builtins().Invalid }

func (f *fn) isInvalid(t types.TypeID) bool { return t == f.tbl.Builtins().Invalid }

func (f *fn) resolveType(id ast.TypeID, hint types.TypeID) types.TypeID {
	env := f.env()
	env.Hint = hint
	if f.dry > 0 {
		env.Reporter = diag.NopReporter{}
	}
	return f.g.info.ResolveValueType(env, id)
}

// use records a reference to a class declared by another unit.
func (f *fn) use(c *types.Class, sp source.Span) {
	if c == nil {
		return
	}
	f.u.Use(unit.ModuleID(c.Module), sp, c.Type)
}

// stmt marks the next emitted step as the start of a statement.
func (f *fn) stmt(sp source.Span) {
	f.stmtStart = true
	f.stmtSpan = sp
}

func (f *fn) pc() int { return len(f.prog.Steps) }

func (f *fn) emit(op steps.Op, a, b int, sp source.Span) int {
	if f.dry > 0 {
		return -1
	}
	s := steps.Step{Op: op, A: f.narrow(a, sp), B: f.narrow(b, sp), Span: sp}
	if f.stmtStart {
		s.Flags |= steps.FlagStmtStart
		if !f.stmtSpan.Empty() {
			s.Span = f.stmtSpan
		}
		f.stmtStart = false
	}
	f.prog.Steps = append(f.prog.Steps, s)
	return len(f.prog.Steps) - 1
}

func (f *fn) emitKeep(op steps.Op, a, b int, sp source.Span) {
	if idx := f.emit(op, a, b, sp); idx >= 0 {
		f.prog.Steps[idx].Flags |= steps.FlagKeep
	}
}

// patch points the jump at idx to the current offset.
func (f *fn) patch(idx int) {
	f.patchTo(idx, f.pc())
}

func (f *fn) patchTo(idx, pc int) {
	if idx < 0 || f.dry > 0 {
		return
	}
	f.prog.Steps[idx].A = f.narrow(pc, f.prog.Steps[idx].Span)
}

// narrow narrows v to a step operand.
func (f *fn) narrow(v int, sp source.Span) int32 {
	n, err := safecast.Conv[int32](v)
	if err != nil {
		f.report(diag.GenInternal, sp, "step operand %d out of range: %v", v, err)
	}
	return n
}

func (f *fn) pushConst(c steps.Const, sp source.Span) {
	if f.dry > 0 {
		return
	}
	f.emit(steps.OpPushConst, int(f.prog.AddConst(c)), 0, sp)
}

func (f *fn) pushInt(n int64, sp source.Span) {
	f.pushConst(steps.Const{Kind: steps.ConstInt, N: n}, sp)
}

// typeOf types an expression without emitting code or diagnostics.
func (f *fn) typeOf(id ast.ExprID, hint types.TypeID) types.TypeID {
	f.dry++
	start := f.stmtStart
	t := f.expr(id, hint)
	f.stmtStart = start
	f.dry--
	return t
}

func (f *fn) exprSpan(id ast.ExprID) source.Span {
	if x := f.b.Exprs.Get(id); x != nil {
		return x.Span
	}
	return source.Span{}
}

func (f *fn) openScope(sp source.Span) symbols.ScopeID {
	prev := f.scope
	f.scope = f.syms.Open(prev, sp)
	return prev
}

func (f *fn) closeScope(prev symbols.ScopeID) {
	f.syms.Close(f.scope, f.pc())
	f.scope = prev
}

func (f *fn) declare(name string, t types.TypeID, sp source.Span) int {
	v, err := f.syms.Declare(f.scope, name, t, sp, f.pc())
	if err != nil {
		f.report(diag.SemaDuplicateVar, sp, "variable %s is already defined", name)
		return v.Slot
	}
	return v.Slot
}

// numKind maps a primitive or reference type to its operand representation.
func (f *fn) numKind(t types.TypeID) steps.NumKind {
	switch f.tbl.Kind(t) {
	case types.KindInt:
		return steps.NumInt
	case types.KindDouble:
		return steps.NumDouble
	case types.KindBool:
		return steps.NumBool
	case types.KindChar:
		return steps.NumChar
	case types.KindString:
		return steps.NumString
	}
	return steps.NumRef
}

func (f *fn) isString(t types.TypeID) bool { return f.tbl.Kind(t) == types.KindString }

// convert emits the conversion of a value of type got into want, which
// must already be known to be assignable or castable.
func (f *fn) convert(got, want types.TypeID, sp source.Span) {
	gk, wk := f.tbl.Kind(got), f.tbl.Kind(want)
	if got == want || !gk.IsPrimitive() || !wk.IsPrimitive() || gk == wk {
		return
	}
	f.emit(steps.OpConvert, int(f.numKind(got)), int(f.numKind(want)), sp)
}

// assignConv checks assignment compatibility and emits widening.
func (f *fn) assignConv(got, want types.TypeID, sp source.Span) {
	if f.isInvalid(got) || f.isInvalid(want) {
		return
	}
	if got == types.NoTypeID {
		f.report(diag.SemaVoidValue, sp, "'void' method result cannot be used as a value")
		return
	}
	if !f.tbl.IsAssignable(got, want) {
		f.report(diag.SemaTypeMismatch, sp, "incompatible types: %s cannot be converted to %s",
			f.tbl.String(got), f.tbl.String(want))
		return
	}
	f.convert(got, want, sp)
}

// coerce emits id converted to want.
func (f *fn) coerce(id ast.ExprID, want types.TypeID) {
	got := f.expr(id, want)
	f.assignConv(got, want, f.exprSpan(id))
}

// stringify converts the value on the stack to String.
func (f *fn) stringify(t types.TypeID, sp source.Span) {
	if f.isString(t) {
		return
	}
	if t == types.NoTypeID {
		f.report(diag.SemaVoidValue, sp, "'void' method result cannot be used as a value")
		return
	}
	f.emit(steps.OpToString, int(f.g.lib.toString), 0, sp)
}

// cond emits a boolean condition.
func (f *fn) cond(id ast.ExprID) {
	f.coerce(id, f.tbl.Builtins().Bool)
}

func (f *fn) thisType() types.TypeID {
	if f.class == nil {
		return f.invalid()
	}
	return f.class.Type
}

// sameClass compares classes modulo specialization.
func (f *fn) sameClass(a, b *types.Class) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Origin != types.NoClassID {
		a = f.tbl.Class(a.Origin)
	}
	if b.Origin != types.NoClassID {
		b = f.tbl.Class(b.Origin)
	}
	return a == b
}

func (f *fn) canAccess(vis types.Visibility, owner types.ClassID) bool {
	return vis != types.VisPrivate || f.sameClass(f.class, f.tbl.Class(owner))
}
