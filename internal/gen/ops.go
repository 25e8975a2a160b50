package gen

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

// binOp maps a non-short-circuit source operator; the two enumerations
// share their order up to '|'.
func binOp(op ast.BinaryOp) steps.BinOp { return steps.BinOp(op) }

// operands decides the operand type of a binary operation and its result
// type. ok is false when the operation is not defined for the operands.
func (f *fn) operands(op ast.BinaryOp, lt, rt types.TypeID) (operand, result types.TypeID, ok bool) {
	tbl := f.tbl
	bt := tbl.Builtins()
	lk, rk := tbl.Kind(lt), tbl.Kind(rt)
	switch op {
	case ast.BinAdd:
		if lk == types.KindString || rk == types.KindString {
			if lt == types.NoTypeID || rt == types.NoTypeID {
				return 0, 0, false
			}
			return bt.String, bt.String, true
		}
		fallthrough
	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod:
		if p := tbl.BinaryNumeric(lt, rt); p != types.NoTypeID {
			return p, p, true
		}
	case ast.BinShl, ast.BinShr:
		if (lk == types.KindInt || lk == types.KindChar) && (rk == types.KindInt || rk == types.KindChar) {
			return bt.Int, bt.Int, true
		}
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		if p := tbl.BinaryNumeric(lt, rt); p != types.NoTypeID {
			return p, bt.Bool, true
		}
	case ast.BinEq, ast.BinNe:
		switch {
		case lk.IsNumeric() && rk.IsNumeric():
			return tbl.BinaryNumeric(lt, rt), bt.Bool, true
		case lk == types.KindBool && rk == types.KindBool:
			return bt.Bool, bt.Bool, true
		case lk == types.KindString && (rk == types.KindString || rk == types.KindNull),
			rk == types.KindString && lk == types.KindNull:
			return bt.String, bt.Bool, true
		case lk.IsReference() && rk.IsReference() && tbl.IsCastable(lt, rt):
			return bt.Object, bt.Bool, true
		}
	case ast.BinBitAnd, ast.BinBitXor, ast.BinBitOr:
		switch {
		case lk == types.KindBool && rk == types.KindBool:
			return bt.Bool, bt.Bool, true
		case (lk == types.KindInt || lk == types.KindChar) && (rk == types.KindInt || rk == types.KindChar):
			return bt.Int, bt.Int, true
		}
	case ast.BinAnd, ast.BinOr:
		if lk == types.KindBool && rk == types.KindBool {
			return bt.Bool, bt.Bool, true
		}
	}
	return 0, 0, false
}

func (f *fn) binary(id ast.ExprID, sp source.Span) types.TypeID {
	bin, _ := f.b.Exprs.Binary(id)
	bt := f.tbl.Builtins()

	if bin.Op == ast.BinAnd || bin.Op == ast.BinOr {
		f.cond(bin.Left)
		f.emit(steps.OpDup, 0, 0, sp)
		jop := steps.OpJumpIfFalse
		if bin.Op == ast.BinOr {
			jop = steps.OpJumpIfTrue
		}
		j := f.emit(jop, 0, 0, sp)
		f.emit(steps.OpPop, 0, 0, sp)
		f.cond(bin.Right)
		f.patch(j)
		return bt.Bool
	}

	lt := f.typeOf(bin.Left, types.NoTypeID)
	rt := f.typeOf(bin.Right, types.NoTypeID)
	if f.isInvalid(lt) || f.isInvalid(rt) {
		f.expr(bin.Left, types.NoTypeID)
		f.expr(bin.Right, types.NoTypeID)
		return f.invalid()
	}
	operand, result, ok := f.operands(bin.Op, lt, rt)
	if !ok {
		f.report(diag.SemaBadOperands, sp, "bad operand types for binary operator '%s': %s and %s",
			bin.Op, f.tbl.String(lt), f.tbl.String(rt))
		return f.invalid()
	}

	f.operand(bin.Left, lt, operand)
	f.operand(bin.Right, rt, operand)
	f.emit(steps.OpBinary, int(binOp(bin.Op)), int(f.numKind(operand)), sp)
	return result
}

// operand emits one side of a binary operation converted to want.
func (f *fn) operand(id ast.ExprID, got, want types.TypeID) {
	f.expr(id, types.NoTypeID)
	sp := f.exprSpan(id)
	switch f.tbl.Kind(want) {
	case types.KindString:
		if !f.isString(got) && f.tbl.Kind(got) != types.KindNull {
			f.stringify(got, sp)
		}
	default:
		f.convert(got, want, sp)
	}
}

func (f *fn) unary(id ast.ExprID, sp source.Span) types.TypeID {
	un, _ := f.b.Exprs.Unary(id)
	bt := f.tbl.Builtins()

	// -2147483648 складывается парсером в литерал
	t := f.expr(un.X, types.NoTypeID)
	if f.isInvalid(t) {
		return t
	}
	k := f.tbl.Kind(t)
	bad := func() types.TypeID {
		f.report(diag.SemaBadOperands, sp, "bad operand type %s for unary operator '%s'", f.tbl.String(t), un.Op)
		return f.invalid()
	}
	switch un.Op {
	case ast.UnNeg, ast.UnPlus:
		if !k.IsNumeric() {
			return bad()
		}
		res := bt.Int
		if k == types.KindDouble {
			res = bt.Double
		}
		f.convert(t, res, sp)
		if un.Op == ast.UnNeg {
			f.emit(steps.OpUnary, int(steps.UnNeg), int(f.numKind(res)), sp)
		}
		return res
	case ast.UnNot:
		if k != types.KindBool {
			return bad()
		}
		f.emit(steps.OpUnary, int(steps.UnNot), int(steps.NumBool), sp)
		return bt.Bool
	case ast.UnBitNot:
		if k != types.KindInt && k != types.KindChar {
			return bad()
		}
		f.convert(t, bt.Int, sp)
		f.emit(steps.OpUnary, int(steps.UnBitNot), int(steps.NumInt), sp)
		return bt.Int
	}
	return bad()
}
