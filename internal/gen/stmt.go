package gen

import (
	"strconv"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

func (f *fn) stmts(list []ast.StmtID) {
	for _, id := range list {
		f.statement(id)
	}
}

func (f *fn) statement(id ast.StmtID) {
	st := f.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtEmpty:
		return
	case ast.StmtBlock:
		blk, _ := f.b.Stmts.Block(id)
		prev := f.openScope(st.Span)
		f.stmts(blk.Stmts)
		f.closeScope(prev)
		return
	}

	f.stmt(st.Span)
	switch st.Kind {
	case ast.StmtLocal:
		f.local(id)
	case ast.StmtExpr:
		x, _ := f.b.Stmts.ExprOf(id)
		f.effect(x.X)
	case ast.StmtIf:
		f.ifStmt(id)
	case ast.StmtWhile:
		f.whileStmt(id, st.Span)
	case ast.StmtDoWhile:
		f.doWhile(id, st.Span)
	case ast.StmtFor:
		f.forStmt(id, st.Span)
	case ast.StmtForEach:
		f.forEach(id, st.Span)
	case ast.StmtSwitch:
		f.switchStmt(id, st.Span)
	case ast.StmtBreak, ast.StmtContinue:
		f.jumpOut(st.Kind == ast.StmtBreak, st.Span)
	case ast.StmtReturn:
		f.returnStmt(id, st.Span)
	case ast.StmtThrow:
		f.throwStmt(id, st.Span)
	case ast.StmtTry:
		f.tryStmt(id, st.Span)
	case ast.StmtCtorCall:
		cc, _ := f.b.Stmts.CtorCall(id)
		f.report(diag.SemaCtorCallPosition, st.Span, "call to this/super must be the first statement in a constructor")
		f.discardArgs(cc.Args)
	}
	// оператор без шагов не должен помечать чужой шаг
	f.stmtStart = false
}

func (f *fn) local(id ast.StmtID) {
	loc, _ := f.b.Stmts.Local(id)
	for i, d := range loc.Decls {
		name := f.b.Name(d.Name)
		if i > 0 {
			f.stmt(d.NameSpan)
		}
		var t types.TypeID
		if te := f.b.Type(d.Type); te != nil && te.Kind == ast.TypeVar {
			if !d.Init.IsValid() {
				f.report(diag.SemaTypeMismatch, d.NameSpan, "cannot infer type for local variable %s without initializer", name)
				f.declare(name, f.invalid(), d.NameSpan)
				continue
			}
			t = f.expr(d.Init, types.NoTypeID)
			switch {
			case t == types.NoTypeID:
				f.report(diag.SemaVoidValue, d.NameSpan, "cannot infer type for local variable %s: initializer is void", name)
				t = f.invalid()
			case f.tbl.Kind(t) == types.KindNull:
				f.report(diag.SemaTypeMismatch, d.NameSpan, "cannot infer type for local variable %s: initializer is null", name)
				t = f.invalid()
			}
		} else {
			t = f.resolveType(d.Type, types.NoTypeID)
			if d.Init.IsValid() {
				f.coerce(d.Init, t)
			} else {
				f.zero(t, d.NameSpan)
			}
		}
		slot := f.declare(name, t, d.NameSpan)
		f.emit(steps.OpStoreLocal, slot, 0, d.NameSpan)
	}
}

// zero pushes the default value of t.
func (f *fn) zero(t types.TypeID, sp source.Span) {
	switch f.tbl.Kind(t) {
	case types.KindInt:
		f.pushInt(0, sp)
	case types.KindDouble:
		f.pushConst(steps.Const{Kind: steps.ConstDouble}, sp)
	case types.KindBool:
		f.pushConst(steps.Const{Kind: steps.ConstBool}, sp)
	case types.KindChar:
		f.pushConst(steps.Const{Kind: steps.ConstChar}, sp)
	default:
		f.emit(steps.OpPushNull, 0, 0, sp)
	}
}

func (f *fn) ifStmt(id ast.StmtID) {
	s, _ := f.b.Stmts.If(id)
	f.cond(s.Cond)
	jElse := f.emit(steps.OpJumpIfFalse, 0, 0, f.exprSpan(s.Cond))
	f.branch(s.Then)
	if !s.Else.IsValid() {
		f.patch(jElse)
		return
	}
	jEnd := f.emit(steps.OpJump, 0, 0, f.exprSpan(s.Cond))
	f.patch(jElse)
	f.branch(s.Else)
	f.patch(jEnd)
}

// branch compiles a nested statement in its own scope.
func (f *fn) branch(id ast.StmtID) {
	st := f.b.Stmts.Get(id)
	if st == nil {
		return
	}
	prev := f.openScope(st.Span)
	f.statement(id)
	f.closeScope(prev)
}

func (f *fn) pushTarget(loop bool) *jumpTarget {
	t := &jumpTarget{loop: loop, tryDepth: f.tryDepth}
	f.targets = append(f.targets, t)
	return t
}

func (f *fn) popTarget(t *jumpTarget, brk, cont int) {
	f.targets = f.targets[:len(f.targets)-1]
	for _, j := range t.breaks {
		f.patchTo(j, brk)
	}
	for _, j := range t.conts {
		f.patchTo(j, cont)
	}
}

func (f *fn) whileStmt(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.Loop(id)
	top := f.pc()
	f.cond(s.Cond)
	jEnd := f.emit(steps.OpJumpIfFalse, 0, 0, sp)
	t := f.pushTarget(true)
	f.branch(s.Body)
	f.emit(steps.OpJump, top, 0, sp)
	f.patch(jEnd)
	f.popTarget(t, f.pc(), top)
}

func (f *fn) doWhile(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.Loop(id)
	f.stmtStart = false
	top := f.pc()
	t := f.pushTarget(true)
	f.branch(s.Body)
	cont := f.pc()
	f.stmt(f.exprSpan(s.Cond))
	f.cond(s.Cond)
	f.emit(steps.OpJumpIfTrue, top, 0, sp)
	f.popTarget(t, f.pc(), cont)
}

func (f *fn) forStmt(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.For(id)
	prev := f.openScope(sp)
	f.stmtStart = false
	f.stmts(s.Init)
	top := f.pc()
	jEnd := -1
	if s.Cond.IsValid() {
		f.stmt(f.exprSpan(s.Cond))
		f.cond(s.Cond)
		jEnd = f.emit(steps.OpJumpIfFalse, 0, 0, sp)
	}
	t := f.pushTarget(true)
	f.branch(s.Body)
	cont := f.pc()
	for _, u := range s.Update {
		f.stmt(f.exprSpan(u))
		f.effect(u)
	}
	f.stmtStart = false
	f.emit(steps.OpJump, top, 0, sp)
	if jEnd >= 0 {
		f.patch(jEnd)
	}
	f.popTarget(t, f.pc(), cont)
	f.closeScope(prev)
}

// forEach iterates arrays and classes offering size() and get(int).
func (f *fn) forEach(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.ForEach(id)
	bt := f.tbl.Builtins()
	prev := f.openScope(sp)
	defer f.closeScope(prev)

	it := f.expr(s.Iter, types.NoTypeID)
	if f.isInvalid(it) {
		return
	}
	var elem types.TypeID
	var size, get *types.Method
	if f.tbl.Kind(it) == types.KindArray {
		elem = f.tbl.Elem(it)
	} else if c := f.tbl.ClassOf(it); c != nil && f.tbl.Kind(it).IsReference() && f.tbl.Kind(it) != types.KindNull {
		size = firstNoStatic(f.tbl.LookupMethods(c, "size"), 0, bt.Int)
		get = firstNoStatic(f.tbl.LookupMethods(c, "get"), 1, bt.Int)
		if size != nil && get != nil && get.Return != types.NoTypeID {
			elem = get.Return
		}
	}
	if elem == types.NoTypeID {
		f.report(diag.SemaNotIterable, f.exprSpan(s.Iter), "for-each not applicable to expression type %s", f.tbl.String(it))
		return
	}

	coll := f.syms.Temp(f.scope, it)
	idx := f.syms.Temp(f.scope, bt.Int)
	f.emit(steps.OpStoreLocal, coll, 0, sp)
	f.pushInt(0, sp)
	f.emit(steps.OpStoreLocal, idx, 0, sp)

	top := f.pc()
	f.stmt(s.NameSpan)
	f.emit(steps.OpLoadLocal, idx, 0, sp)
	f.emit(steps.OpLoadLocal, coll, 0, sp)
	if size == nil {
		f.emit(steps.OpArrayLength, 0, 0, sp)
	} else {
		f.invoke(size, recvValue, 0, sp)
	}
	f.emit(steps.OpBinary, int(steps.BinLt), int(steps.NumInt), sp)
	jEnd := f.emit(steps.OpJumpIfFalse, 0, 0, sp)

	inner := f.openScope(sp)
	var vt types.TypeID
	if te := f.b.Type(s.Type); te != nil && te.Kind == ast.TypeVar {
		vt = elem
	} else {
		vt = f.resolveType(s.Type, types.NoTypeID)
	}
	f.emit(steps.OpLoadLocal, coll, 0, sp)
	f.emit(steps.OpLoadLocal, idx, 0, sp)
	if get == nil {
		f.emit(steps.OpArrayLoad, 0, 0, sp)
	} else {
		f.invoke(get, recvValue, 1, sp)
	}
	f.assignConv(elem, vt, s.NameSpan)
	slot := f.declare(f.b.Name(s.Name), vt, s.NameSpan)
	f.emit(steps.OpStoreLocal, slot, 0, s.NameSpan)

	t := f.pushTarget(true)
	f.statement(s.Body)
	f.closeScope(inner)
	cont := f.pc()
	f.emit(steps.OpLoadLocal, idx, 0, sp)
	f.pushInt(1, sp)
	f.emit(steps.OpBinary, int(steps.BinAdd), int(steps.NumInt), sp)
	f.emit(steps.OpStoreLocal, idx, 0, sp)
	f.emit(steps.OpJump, top, 0, sp)
	f.patch(jEnd)
	f.popTarget(t, f.pc(), cont)
}

func firstNoStatic(ms []*types.Method, params int, param types.TypeID) *types.Method {
	for _, m := range ms {
		if m.Is(types.MethodStatic) || len(m.Params) != params {
			continue
		}
		if params == 1 && m.Params[0].Type != param {
			continue
		}
		return m
	}
	return nil
}

func (f *fn) switchStmt(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.Switch(id)
	prev := f.openScope(sp)
	defer f.closeScope(prev)

	tag := f.expr(s.Tag, types.NoTypeID)
	if f.isInvalid(tag) {
		return
	}
	k := f.tbl.Kind(tag)
	var enum *types.Class
	switch k {
	case types.KindInt, types.KindChar, types.KindString:
	case types.KindEnum:
		enum = f.tbl.ClassOf(tag)
	default:
		f.report(diag.SemaTypeMismatch, f.exprSpan(s.Tag), "switch on %s is not supported", f.tbl.String(tag))
		return
	}
	tmp := f.syms.Temp(f.scope, tag)
	f.emit(steps.OpStoreLocal, tmp, 0, sp)

	kind := f.numKind(tag)
	if enum != nil {
		kind = steps.NumRef
	}
	seen := make(map[string]source.Span)
	jumps := make([][]int, len(s.Cases))
	def := -1
	for i, c := range s.Cases {
		if len(c.Labels) == 0 {
			if def >= 0 {
				f.report(diag.SemaDuplicateCase, c.Span, "duplicate default label")
			}
			def = i
			continue
		}
		for _, l := range c.Labels {
			key, ok := f.labelKey(l, enum)
			if ok {
				if first, dup := seen[key]; dup {
					diag.ReportError(f.rep, diag.SemaDuplicateCase, f.exprSpan(l), "duplicate case label").
						WithNote(first, "first used here").Emit()
				} else {
					seen[key] = f.exprSpan(l)
				}
			}
			f.emit(steps.OpLoadLocal, tmp, 0, f.exprSpan(l))
			f.caseLabel(l, tag, enum)
			f.emit(steps.OpBinary, int(steps.BinEq), int(kind), f.exprSpan(l))
			jumps[i] = append(jumps[i], f.emit(steps.OpJumpIfTrue, 0, 0, f.exprSpan(l)))
		}
	}
	jDefault := f.emit(steps.OpJump, 0, 0, sp)

	t := f.pushTarget(false)
	for i, c := range s.Cases {
		for _, j := range jumps[i] {
			f.patch(j)
		}
		if i == def {
			f.patch(jDefault)
		}
		f.stmts(c.Body)
	}
	if def < 0 {
		f.patch(jDefault)
	}
	f.popTarget(t, f.pc(), 0)
}

// caseLabel emits one case constant. Enum labels are bare constant names.
func (f *fn) caseLabel(l ast.ExprID, tag types.TypeID, enum *types.Class) {
	if enum != nil {
		if ident, ok := f.b.Exprs.Ident(f.b.Exprs.Unparen(l)); ok {
			name := f.b.Name(ident.Name)
			a := f.tbl.Attr(enum, name)
			if a == nil || !a.Static || a.Type != enum.Type {
				f.report(diag.SemaUnknownName, f.exprSpan(l), "an enum switch case label must be a constant of %s", enum.Name)
				return
			}
			f.emit(steps.OpLoadStatic, int(a.Owner), a.Index, f.exprSpan(l))
			return
		}
	}
	f.coerce(l, tag)
}

// labelKey identifies constant labels for duplicate detection.
func (f *fn) labelKey(l ast.ExprID, enum *types.Class) (string, bool) {
	l = f.b.Exprs.Unparen(l)
	if enum != nil {
		if ident, ok := f.b.Exprs.Ident(l); ok {
			return "e:" + f.b.Name(ident.Name), true
		}
		return "", false
	}
	lit, ok := f.b.Exprs.Literal(l)
	if !ok {
		return "", false
	}
	switch lit.Kind {
	case ast.LitInt:
		raw, neg := lit.Raw, false
		if len(raw) > 0 && raw[0] == '-' {
			raw, neg = raw[1:], true
		}
		n, err := lexer.ParseIntLiteral(raw, neg)
		if err != nil {
			return "", false
		}
		return "n:" + strconv.Itoa(int(n)), true
	case ast.LitChar:
		return "n:" + strconv.Itoa(int(lexer.UnquoteChar(lit.Raw))), true
	case ast.LitString:
		return "s:" + lexer.Unquote(lit.Raw), true
	}
	return "", false
}

func (f *fn) jumpOut(brk bool, sp source.Span) {
	var t *jumpTarget
	for i := len(f.targets) - 1; i >= 0; i-- {
		if brk || f.targets[i].loop {
			t = f.targets[i]
			break
		}
	}
	if t == nil {
		what := "continue"
		if brk {
			what = "break"
		}
		f.report(diag.SemaBreakOutsideLoop, sp, "%s outside of loop", what)
		return
	}
	for range f.tryDepth - t.tryDepth {
		f.emit(steps.OpLeaveCatch, 0, 0, sp)
	}
	j := f.emit(steps.OpJump, 0, 0, sp)
	if brk {
		t.breaks = append(t.breaks, j)
	} else {
		t.conts = append(t.conts, j)
	}
}

func (f *fn) returnStmt(id ast.StmtID, sp source.Span) {
	r, _ := f.b.Stmts.ExprOf(id)
	void := f.ret == types.NoTypeID || f.ctor || f.method == nil
	switch {
	case f.clinit:
		f.report(diag.SemaReturnMismatch, sp, "return outside method")
	case void && r.X.IsValid():
		f.expr(r.X, types.NoTypeID)
		f.report(diag.SemaReturnMismatch, f.exprSpan(r.X), "incompatible types: unexpected return value")
		return
	case !void && !r.X.IsValid():
		f.report(diag.SemaReturnMismatch, sp, "missing return value")
		return
	}
	if void {
		f.emit(steps.OpReturn, 0, 0, sp)
		return
	}
	got := f.expr(r.X, f.ret)
	if got != types.NoTypeID && !f.isInvalid(got) && !f.tbl.IsAssignable(got, f.ret) {
		f.report(diag.SemaReturnMismatch, f.exprSpan(r.X), "incompatible types: %s cannot be converted to %s",
			f.tbl.String(got), f.tbl.String(f.ret))
	} else {
		f.assignConv(got, f.ret, f.exprSpan(r.X))
	}
	f.emit(steps.OpReturnValue, 0, 0, sp)
}

// throwable reports whether values of t may be thrown or caught.
func (f *fn) throwable(t types.TypeID) bool {
	if f.isInvalid(t) {
		return true
	}
	if !f.tbl.Kind(t).IsClassLike() {
		return false
	}
	c := f.tbl.ClassOf(t)
	return c != nil && (c.Is(types.ClassThrowable) || f.tbl.IsSubclass(c, f.g.lib.exception))
}

func (f *fn) throwStmt(id ast.StmtID, sp source.Span) {
	r, _ := f.b.Stmts.ExprOf(id)
	t := f.expr(r.X, types.NoTypeID)
	if f.tbl.Kind(t) != types.KindNull && !f.throwable(t) {
		f.report(diag.SemaNotThrowable, f.exprSpan(r.X), "incompatible types: %s is not an exception", f.tbl.String(t))
	}
	f.emit(steps.OpThrow, 0, 0, sp)
}

func (f *fn) tryStmt(id ast.StmtID, sp source.Span) {
	s, _ := f.b.Stmts.Try(id)
	h := len(f.prog.Handlers)
	f.prog.Handlers = append(f.prog.Handlers, steps.Handler{})
	f.emit(steps.OpEnterCatch, h, 0, sp)
	f.tryDepth++
	f.branch(s.Body)
	f.tryDepth--
	f.emit(steps.OpLeaveCatch, 0, 0, sp)
	ends := []int{f.emit(steps.OpJump, 0, 0, sp)}

	type caught struct {
		c  *types.Class
		sp source.Span
	}
	var earlier []caught
	var clauses []steps.Clause
	for _, cl := range s.Catches {
		prev := f.openScope(cl.Span)
		var erased []types.TypeID
		var first types.TypeID
		for _, te := range cl.Types {
			t := f.resolveType(te, types.NoTypeID)
			tsp := f.b.Type(te).Span
			if f.isInvalid(t) {
				continue
			}
			if !f.throwable(t) {
				f.report(diag.SemaNotThrowable, tsp, "incompatible types: %s is not an exception", f.tbl.String(t))
				continue
			}
			c := f.tbl.ClassOf(t)
			for _, e := range earlier {
				if f.tbl.IsSubclass(c, e.c) {
					diag.ReportError(f.rep, diag.SemaUnreachableCatch, tsp,
						"exception "+c.Name+" has already been caught").WithNote(e.sp, "caught here").Emit()
					break
				}
			}
			earlier = append(earlier, caught{c: c, sp: tsp})
			erased = append(erased, f.tbl.Erase(t))
			if first == types.NoTypeID {
				first = t
			}
		}
		vt := first
		if len(erased) != 1 {
			vt = f.g.lib.exception.Type
		}
		f.stmtStart = false
		slot := f.declare(f.b.Name(cl.Name), vt, cl.NameSpan)
		clauses = append(clauses, steps.Clause{Types: erased, Target: f.pc(), Slot: slot})
		f.statement(cl.Body)
		f.closeScope(prev)
		ends = append(ends, f.emit(steps.OpJump, 0, 0, cl.Span))
	}
	if f.dry == 0 {
		f.prog.Handlers[h].Clauses = clauses
	}
	for _, j := range ends {
		f.patch(j)
	}
}
