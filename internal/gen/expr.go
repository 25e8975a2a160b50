package gen

import (
	"strings"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

// expr emits id leaving its value on the stack and returns its type;
// NoTypeID means a void call left nothing.
func (f *fn) expr(id ast.ExprID, hint types.TypeID) types.TypeID {
	return f.compile(id, hint, true)
}

// effect compiles an expression statement; its value, if any, is dropped.
func (f *fn) effect(id ast.ExprID) {
	x := f.b.Exprs.Get(f.b.Exprs.Unparen(id))
	if x == nil {
		return
	}
	switch x.Kind {
	case ast.ExprAssign, ast.ExprIncDec, ast.ExprCall, ast.ExprNew, ast.ExprInvalid:
		f.compile(id, types.NoTypeID, false)
	default:
		f.report(diag.SemaNotAStatement, x.Span, "not a statement")
	}
}

func (f *fn) compile(id ast.ExprID, hint types.TypeID, want bool) types.TypeID {
	x := f.b.Exprs.Get(id)
	if x == nil {
		return f.invalid()
	}
	switch x.Kind {
	case ast.ExprInvalid:
		return f.invalid()
	case ast.ExprGroup:
		g, _ := f.b.Exprs.Group(id)
		return f.compile(g.X, hint, want)
	case ast.ExprAssign:
		return f.assign(id, x.Span, want)
	case ast.ExprIncDec:
		return f.incDec(id, x.Span, want)
	case ast.ExprCall:
		return f.call(id, x.Span, want)
	case ast.ExprNew:
		return f.newObject(id, x.Span, hint, want)
	}
	t := f.value(id, x, hint)
	if !want && t != types.NoTypeID && !f.isInvalid(t) {
		f.emit(steps.OpPop, 0, 0, x.Span)
	}
	return t
}

func (f *fn) value(id ast.ExprID, x *ast.Expr, hint types.TypeID) types.TypeID {
	sp := x.Span
	switch x.Kind {
	case ast.ExprLit:
		return f.literal(id, sp)
	case ast.ExprIdent:
		return f.ident(id, sp)
	case ast.ExprThis:
		if f.static || f.class == nil {
			f.report(diag.SemaStaticContext, sp, "'this' cannot be referenced from a static context")
			return f.invalid()
		}
		f.emit(steps.OpLoadLocal, 0, 0, sp)
		return f.class.Type
	case ast.ExprSuper:
		if f.static || f.class == nil {
			f.report(diag.SemaStaticContext, sp, "'super' cannot be referenced from a static context")
			return f.invalid()
		}
		f.emit(steps.OpLoadLocal, 0, 0, sp)
		if f.class.Base == types.NoTypeID {
			return f.tbl.Builtins().Object
		}
		return f.class.Base
	case ast.ExprBinary:
		return f.binary(id, sp)
	case ast.ExprUnary:
		return f.unary(id, sp)
	case ast.ExprTernary:
		return f.ternary(id, sp, hint)
	case ast.ExprMember:
		return f.member(id, sp)
	case ast.ExprIndex:
		ix, _ := f.b.Exprs.Index(id)
		at := f.expr(ix.X, types.NoTypeID)
		if f.isInvalid(at) {
			return at
		}
		if f.tbl.Kind(at) != types.KindArray {
			f.report(diag.SemaTypeMismatch, sp, "array required, but %s found", f.tbl.String(at))
			return f.invalid()
		}
		f.coerce(ix.Index, f.tbl.Builtins().Int)
		f.emit(steps.OpArrayLoad, 0, 0, sp)
		return f.tbl.Elem(at)
	case ast.ExprNewArray:
		na, _ := f.b.Exprs.NewArray(id)
		t := f.resolveType(na.Type, types.NoTypeID)
		if f.isInvalid(t) {
			return t
		}
		if na.Init.IsValid() {
			return f.arrayInit(na.Init, t)
		}
		for _, d := range na.Dims {
			f.coerce(d, f.tbl.Builtins().Int)
		}
		f.emit(steps.OpNewArray, int(t), len(na.Dims), sp)
		return t
	case ast.ExprArrayInit:
		if f.tbl.Kind(hint) != types.KindArray {
			f.report(diag.SemaTypeMismatch, sp, "array initializer needs an explicit array type")
			return f.invalid()
		}
		return f.arrayInit(id, hint)
	case ast.ExprCast:
		return f.cast(id, sp)
	case ast.ExprInstanceOf:
		return f.instanceOf(id, sp)
	}
	f.report(diag.SemaNotAStatement, sp, "unexpected expression")
	return f.invalid()
}

func (f *fn) literal(id ast.ExprID, sp source.Span) types.TypeID {
	lit, _ := f.b.Exprs.Literal(id)
	bt := f.tbl.Builtins()
	switch lit.Kind {
	case ast.LitInt:
		raw, neg := lit.Raw, false
		if strings.HasPrefix(raw, "-") {
			raw, neg = raw[1:], true
		}
		n, _ := lexer.ParseIntLiteral(raw, neg) // диапазон проверен парсером
		f.pushInt(int64(n), sp)
		return bt.Int
	case ast.LitDouble:
		v, _ := lexer.ParseDoubleLiteral(lit.Raw)
		f.pushConst(steps.Const{Kind: steps.ConstDouble, F: v}, sp)
		return bt.Double
	case ast.LitChar:
		f.pushConst(steps.Const{Kind: steps.ConstChar, N: int64(lexer.UnquoteChar(lit.Raw))}, sp)
		return bt.Char
	case ast.LitString:
		f.pushConst(steps.Const{Kind: steps.ConstString, S: lexer.Unquote(lit.Raw)}, sp)
		return bt.String
	case ast.LitTrue, ast.LitFalse:
		n := int64(0)
		if lit.Kind == ast.LitTrue {
			n = 1
		}
		f.pushConst(steps.Const{Kind: steps.ConstBool, N: n}, sp)
		return bt.Bool
	}
	f.emit(steps.OpPushNull, 0, 0, sp)
	return bt.Null
}

// classRef reports whether id names a class rather than a value.
func (f *fn) classRef(id ast.ExprID) (*types.Class, bool) {
	ident, ok := f.b.Exprs.Ident(f.b.Exprs.Unparen(id))
	if !ok {
		return nil, false
	}
	name := f.b.Name(ident.Name)
	if _, local := f.syms.Lookup(f.scope, name); local {
		return nil, false
	}
	if f.class != nil && f.tbl.Attr(f.class, name) != nil {
		return nil, false
	}
	c := f.tbl.ClassByName(name)
	if c == nil || strings.HasPrefix(c.Name, "$") {
		return nil, false
	}
	f.use(c, f.exprSpan(id))
	return c, true
}

func (f *fn) ident(id ast.ExprID, sp source.Span) types.TypeID {
	ident, _ := f.b.Exprs.Ident(id)
	name := f.b.Name(ident.Name)
	if v, ok := f.syms.Lookup(f.scope, name); ok {
		f.emit(steps.OpLoadLocal, v.Slot, 0, sp)
		return v.Type
	}
	if f.class != nil {
		if a := f.tbl.Attr(f.class, name); a != nil {
			return f.loadAttr(a, sp, false)
		}
	}
	if c := f.tbl.ClassByName(name); c != nil && !strings.HasPrefix(c.Name, "$") {
		f.report(diag.SemaUnknownName, sp, "%s is a type, not a value", name)
		return f.invalid()
	}
	f.report(diag.SemaUnknownName, sp, "cannot find symbol: variable %s", name)
	return f.invalid()
}

// loadAttr reads an attribute. recv tells whether the object is already
// on the stack; for implicit access this is loaded.
func (f *fn) loadAttr(a *types.Attribute, sp source.Span, recv bool) types.TypeID {
	if !f.canAccess(a.Vis, a.Owner) {
		f.report(diag.SemaPrivateAccess, sp, "%s has private access in %s", a.Name, f.tbl.Class(a.Owner).Name)
	}
	f.use(f.tbl.Class(a.Owner), sp)
	if a.Static {
		if recv {
			f.emit(steps.OpPop, 0, 0, sp)
		}
		if a.Computed != types.NoNativeID {
			f.emit(steps.OpLoadComputed, int(a.Computed), 0, sp)
		} else {
			f.emit(steps.OpLoadStatic, int(a.Owner), a.Index, sp)
		}
		return a.Type
	}
	if !recv {
		if f.static {
			f.report(diag.SemaStaticContext, sp, "non-static field %s cannot be referenced from a static context", a.Name)
			return f.invalid()
		}
		f.emit(steps.OpLoadLocal, 0, 0, sp)
	}
	if a.Computed != types.NoNativeID {
		f.emit(steps.OpLoadComputed, int(a.Computed), 1, sp)
	} else {
		f.emit(steps.OpLoadField, a.Index, 0, sp)
	}
	return a.Type
}

func (f *fn) member(id ast.ExprID, sp source.Span) types.TypeID {
	m, _ := f.b.Exprs.Member(id)
	name := f.b.Name(m.Name)
	if c, ok := f.classRef(m.Target); ok {
		a := f.tbl.Attr(c, name)
		if a == nil {
			f.report(diag.SemaUnknownMember, m.NameSpan, "cannot find symbol: %s.%s", c.Name, name)
			return f.invalid()
		}
		if !a.Static {
			f.report(diag.SemaStaticContext, m.NameSpan, "non-static field %s cannot be referenced from a static context", name)
			return f.invalid()
		}
		return f.loadAttr(a, m.NameSpan, false)
	}
	rt := f.expr(m.Target, types.NoTypeID)
	if f.isInvalid(rt) {
		return rt
	}
	if f.tbl.Kind(rt) == types.KindArray && name == "length" {
		f.emit(steps.OpArrayLength, 0, 0, sp)
		return f.tbl.Builtins().Int
	}
	if k := f.tbl.Kind(rt); k.IsPrimitive() || rt == types.NoTypeID {
		f.report(diag.SemaUnknownMember, sp, "%s cannot be dereferenced", f.tbl.String(rt))
		return f.invalid()
	}
	c := f.tbl.ClassOf(rt)
	a := f.tbl.Attr(c, name)
	if a == nil {
		f.report(diag.SemaUnknownMember, m.NameSpan, "cannot find symbol: field %s in %s", name, f.tbl.String(rt))
		return f.invalid()
	}
	return f.loadAttr(a, m.NameSpan, true)
}

// arrayInit emits {e1, e2, ...} as an array of type t.
func (f *fn) arrayInit(id ast.ExprID, t types.TypeID) types.TypeID {
	init, ok := f.b.Exprs.ArrayInit(id)
	sp := f.exprSpan(id)
	if !ok {
		f.report(diag.SemaTypeMismatch, sp, "array initializer expected")
		return f.invalid()
	}
	if f.tbl.Kind(t) != types.KindArray {
		f.report(diag.SemaTypeMismatch, sp, "illegal initializer for %s", f.tbl.String(t))
		return f.invalid()
	}
	elem := f.tbl.Elem(t)
	for _, e := range init.Elems {
		if x := f.b.Exprs.Get(e); x != nil && x.Kind == ast.ExprArrayInit {
			f.arrayInit(e, elem)
			continue
		}
		f.coerce(e, elem)
	}
	f.emit(steps.OpArrayLit, int(f.tbl.Erase(t)), len(init.Elems), sp)
	return t
}

func (f *fn) cast(id ast.ExprID, sp source.Span) types.TypeID {
	c, _ := f.b.Exprs.Typed(id)
	to := f.resolveType(c.Type, types.NoTypeID)
	from := f.expr(c.X, types.NoTypeID)
	if f.isInvalid(to) || f.isInvalid(from) {
		return to
	}
	if from == types.NoTypeID || !f.tbl.IsCastable(from, to) {
		f.report(diag.SemaBadCast, sp, "incompatible types: %s cannot be converted to %s", f.tbl.String(from), f.tbl.String(to))
		return to
	}
	fk, tk := f.tbl.Kind(from), f.tbl.Kind(to)
	switch {
	case fk.IsPrimitive() && tk.IsPrimitive():
		f.convert(from, to, sp)
	case f.tbl.IsAssignable(from, to) && !tk.IsPrimitive():
	default:
		f.emit(steps.OpCheckCast, int(f.tbl.Erase(to)), 0, sp)
	}
	return to
}

func (f *fn) instanceOf(id ast.ExprID, sp source.Span) types.TypeID {
	c, _ := f.b.Exprs.Typed(id)
	to := f.resolveType(c.Type, types.NoTypeID)
	from := f.expr(c.X, types.NoTypeID)
	bt := f.tbl.Builtins()
	if f.isInvalid(to) || f.isInvalid(from) {
		return bt.Bool
	}
	if !f.tbl.Kind(from).IsReference() || !f.tbl.Kind(to).IsReference() || !f.tbl.IsCastable(from, to) {
		f.report(diag.SemaBadCast, sp, "incompatible types: %s cannot be converted to %s", f.tbl.String(from), f.tbl.String(to))
		return bt.Bool
	}
	f.emit(steps.OpInstanceOf, int(f.tbl.Erase(to)), 0, sp)
	return bt.Bool
}

func (f *fn) ternary(id ast.ExprID, sp source.Span, hint types.TypeID) types.TypeID {
	t, _ := f.b.Exprs.Ternary(id)
	tt := f.typeOf(t.Then, hint)
	et := f.typeOf(t.Else, hint)
	res := f.commonType(tt, et, hint, sp)

	f.cond(t.Cond)
	jElse := f.emit(steps.OpJumpIfFalse, 0, 0, sp)
	f.coerce(t.Then, res)
	jEnd := f.emit(steps.OpJump, 0, 0, sp)
	f.patch(jElse)
	f.coerce(t.Else, res)
	f.patch(jEnd)
	return res
}

// commonType picks the type of a conditional expression.
func (f *fn) commonType(a, b, hint types.TypeID, sp source.Span) types.TypeID {
	tbl := f.tbl
	switch {
	case f.isInvalid(a) || f.isInvalid(b):
		return f.invalid()
	case a == b:
		return a
	case tbl.Kind(a).IsNumeric() && tbl.Kind(b).IsNumeric():
		return tbl.BinaryNumeric(a, b)
	case tbl.IsAssignable(a, b):
		return b
	case tbl.IsAssignable(b, a):
		return a
	case hint != types.NoTypeID && tbl.IsAssignable(a, hint) && tbl.IsAssignable(b, hint):
		return hint
	case tbl.Kind(a).IsReference() && tbl.Kind(b).IsReference():
		return tbl.Builtins().Object
	}
	f.report(diag.SemaTypeMismatch, sp, "incompatible types in conditional: %s and %s", tbl.String(a), tbl.String(b))
	return f.invalid()
}
