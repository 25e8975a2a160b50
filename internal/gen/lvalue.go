package gen

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

type lvKind uint8

const (
	lvLocal lvKind = iota
	lvField
	lvStatic
	lvArray
)

// lvalue is an assignable location. For fields the object, for arrays the
// array and index are already on the stack when it is returned.
type lvalue struct {
	kind  lvKind
	typ   types.TypeID
	slot  int
	index int
	owner types.ClassID
	sp    source.Span
}

// lvalue emits the prefix of an assignable expression.
func (f *fn) lvalue(id ast.ExprID) (lvalue, bool) {
	id = f.b.Exprs.Unparen(id)
	x := f.b.Exprs.Get(id)
	if x == nil || x.Kind == ast.ExprInvalid {
		return lvalue{}, false
	}
	sp := x.Span
	switch x.Kind {
	case ast.ExprIdent:
		ident, _ := f.b.Exprs.Ident(id)
		name := f.b.Name(ident.Name)
		if v, ok := f.syms.Lookup(f.scope, name); ok {
			return lvalue{kind: lvLocal, typ: v.Type, slot: v.Slot, sp: sp}, true
		}
		if f.class != nil {
			if a := f.tbl.Attr(f.class, name); a != nil {
				if !a.Static {
					if f.static {
						f.report(diag.SemaStaticContext, sp, "non-static field %s cannot be referenced from a static context", name)
						return lvalue{}, false
					}
					f.emit(steps.OpLoadLocal, 0, 0, sp)
				}
				return f.attrLValue(a, sp)
			}
		}
		f.report(diag.SemaUnknownName, sp, "cannot find symbol: variable %s", name)
		return lvalue{}, false

	case ast.ExprMember:
		m, _ := f.b.Exprs.Member(id)
		name := f.b.Name(m.Name)
		if c, ok := f.classRef(m.Target); ok {
			a := f.tbl.Attr(c, name)
			if a == nil || !a.Static {
				f.report(diag.SemaUnknownMember, m.NameSpan, "cannot find symbol: static field %s.%s", c.Name, name)
				return lvalue{}, false
			}
			return f.attrLValue(a, m.NameSpan)
		}
		rt := f.expr(m.Target, types.NoTypeID)
		if f.isInvalid(rt) {
			return lvalue{}, false
		}
		if f.tbl.Kind(rt) == types.KindArray && name == "length" {
			f.report(diag.SemaFinalAssign, m.NameSpan, "cannot assign a value to final variable length")
			return lvalue{}, false
		}
		c := f.tbl.ClassOf(rt)
		if f.tbl.Kind(rt).IsPrimitive() || c == nil {
			f.report(diag.SemaUnknownMember, sp, "%s cannot be dereferenced", f.tbl.String(rt))
			return lvalue{}, false
		}
		a := f.tbl.Attr(c, name)
		if a == nil {
			f.report(diag.SemaUnknownMember, m.NameSpan, "cannot find symbol: field %s in %s", name, f.tbl.String(rt))
			return lvalue{}, false
		}
		if a.Static {
			f.emit(steps.OpPop, 0, 0, sp)
		}
		return f.attrLValue(a, m.NameSpan)

	case ast.ExprIndex:
		ix, _ := f.b.Exprs.Index(id)
		at := f.expr(ix.X, types.NoTypeID)
		if f.isInvalid(at) {
			return lvalue{}, false
		}
		if f.tbl.Kind(at) != types.KindArray {
			f.report(diag.SemaTypeMismatch, sp, "array required, but %s found", f.tbl.String(at))
			return lvalue{}, false
		}
		f.coerce(ix.Index, f.tbl.Builtins().Int)
		return lvalue{kind: lvArray, typ: f.tbl.Elem(at), sp: sp}, true
	}
	f.report(diag.SemaNotAssignable, sp, "unexpected assignment target")
	return lvalue{}, false
}

func (f *fn) attrLValue(a *types.Attribute, sp source.Span) (lvalue, bool) {
	if !f.canAccess(a.Vis, a.Owner) {
		f.report(diag.SemaPrivateAccess, sp, "%s has private access in %s", a.Name, f.tbl.Class(a.Owner).Name)
	}
	if a.Computed != types.NoNativeID {
		f.report(diag.SemaFinalAssign, sp, "cannot assign a value to final variable %s", a.Name)
		return lvalue{}, false
	}
	if a.Final && !f.initializes(a) {
		f.report(diag.SemaFinalAssign, sp, "cannot assign a value to final variable %s", a.Name)
		return lvalue{}, false
	}
	f.use(f.tbl.Class(a.Owner), sp)
	if a.Static {
		return lvalue{kind: lvStatic, typ: a.Type, owner: a.Owner, index: a.Index, sp: sp}, true
	}
	return lvalue{kind: lvField, typ: a.Type, index: a.Index, sp: sp}, true
}

// initializes reports whether the current program may assign final a:
// constructors assign instance finals, class initializers static ones.
func (f *fn) initializes(a *types.Attribute) bool {
	if !f.sameClass(f.class, f.tbl.Class(a.Owner)) {
		return false
	}
	if a.Static {
		return f.clinit
	}
	return f.ctor
}

// load reads the location, keeping its prefix on the stack.
func (f *fn) load(lv lvalue) {
	switch lv.kind {
	case lvLocal:
		f.emit(steps.OpLoadLocal, lv.slot, 0, lv.sp)
	case lvStatic:
		f.emit(steps.OpLoadStatic, int(lv.owner), lv.index, lv.sp)
	case lvField:
		f.emit(steps.OpDup, 0, 0, lv.sp)
		f.emit(steps.OpLoadField, lv.index, 0, lv.sp)
	case lvArray:
		f.emit(steps.OpDup2, 0, 0, lv.sp)
		f.emit(steps.OpArrayLoad, 0, 0, lv.sp)
	}
}

// store consumes the prefix and the value; with keep the value stays.
func (f *fn) store(lv lvalue, keep bool) {
	switch lv.kind {
	case lvLocal:
		if keep {
			f.emitKeep(steps.OpStoreLocal, lv.slot, 0, lv.sp)
		} else {
			f.emit(steps.OpStoreLocal, lv.slot, 0, lv.sp)
		}
	case lvStatic:
		if keep {
			f.emitKeep(steps.OpStoreStatic, int(lv.owner), lv.index, lv.sp)
		} else {
			f.emit(steps.OpStoreStatic, int(lv.owner), lv.index, lv.sp)
		}
	case lvField:
		if keep {
			f.emit(steps.OpDupX1, 0, 0, lv.sp)
		}
		f.emit(steps.OpStoreField, lv.index, 0, lv.sp)
	case lvArray:
		if keep {
			f.emit(steps.OpDupX2, 0, 0, lv.sp)
		}
		f.emit(steps.OpArrayStore, 0, 0, lv.sp)
	}
}

// keepOld duplicates the loaded value below the location prefix, so that
// after the store the old value remains.
func (f *fn) keepOld(lv lvalue) {
	switch lv.kind {
	case lvLocal, lvStatic:
		f.emit(steps.OpDup, 0, 0, lv.sp)
	case lvField:
		f.emit(steps.OpDupX1, 0, 0, lv.sp)
	case lvArray:
		f.emit(steps.OpDupX2, 0, 0, lv.sp)
	}
}

func (f *fn) assign(id ast.ExprID, sp source.Span, want bool) types.TypeID {
	as, _ := f.b.Exprs.Assign(id)
	lv, ok := f.lvalue(as.Target)
	if !ok {
		f.expr(as.Value, types.NoTypeID)
		return f.invalid()
	}
	if !as.Op.Compound {
		f.coerce(as.Value, lv.typ)
		f.store(lv, want)
		return lv.typ
	}

	vt := f.typeOf(as.Value, types.NoTypeID)
	if f.isInvalid(vt) || f.isInvalid(lv.typ) {
		return f.invalid()
	}
	operand, result, ok := f.operands(as.Op.Op, lv.typ, vt)
	if !ok || as.Op.Op == ast.BinAnd || as.Op.Op == ast.BinOr {
		f.report(diag.SemaBadOperands, sp, "bad operand types for binary operator '%s=': %s and %s",
			as.Op.Op, f.tbl.String(lv.typ), f.tbl.String(vt))
		return f.invalid()
	}
	if !f.tbl.IsCastable(result, lv.typ) || (f.isString(result) && !f.isString(lv.typ)) {
		f.report(diag.SemaTypeMismatch, sp, "incompatible types: %s cannot be converted to %s",
			f.tbl.String(result), f.tbl.String(lv.typ))
		return f.invalid()
	}
	f.load(lv)
	if f.isString(operand) {
		f.stringify(lv.typ, sp)
	} else {
		f.convert(lv.typ, operand, sp)
	}
	f.operand(as.Value, vt, operand)
	f.emit(steps.OpBinary, int(binOp(as.Op.Op)), int(f.numKind(operand)), sp)
	// неявное сужение: x += 1.5 для int x
	f.convert(result, lv.typ, sp)
	f.store(lv, want)
	return lv.typ
}

func (f *fn) incDec(id ast.ExprID, sp source.Span, want bool) types.TypeID {
	ic, _ := f.b.Exprs.IncDec(id)
	lv, ok := f.lvalue(ic.X)
	if !ok {
		return f.invalid()
	}
	k := f.tbl.Kind(lv.typ)
	if !k.IsNumeric() {
		if !f.isInvalid(lv.typ) {
			f.report(diag.SemaBadOperands, sp, "bad operand type %s for unary operator '%s'", f.tbl.String(lv.typ), incName(ic.Inc))
		}
		return f.invalid()
	}
	op := steps.BinAdd
	if !ic.Inc {
		op = steps.BinSub
	}
	f.load(lv)
	if want && !ic.Prefix {
		f.keepOld(lv)
	}
	bt := f.tbl.Builtins()
	if k == types.KindDouble {
		f.pushConst(steps.Const{Kind: steps.ConstDouble, F: 1}, sp)
		f.emit(steps.OpBinary, int(op), int(steps.NumDouble), sp)
	} else {
		f.convert(lv.typ, bt.Int, sp)
		f.pushInt(1, sp)
		f.emit(steps.OpBinary, int(op), int(steps.NumInt), sp)
		f.convert(bt.Int, lv.typ, sp)
	}
	f.store(lv, want && ic.Prefix)
	return lv.typ
}

func incName(inc bool) string {
	if inc {
		return "++"
	}
	return "--"
}
