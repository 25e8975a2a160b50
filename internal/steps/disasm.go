package steps

import (
	"fmt"
	"io"
	"strconv"

	"jstep/internal/source"
	"jstep/internal/types"
)

// Disasm writes a human-readable listing of p. Multi-step boundaries are
// marked with '|', statement starts with '*'.
func Disasm(w io.Writer, p *Program, tbl *types.Table, files *source.FileSet) error {
	if _, err := fmt.Fprintf(w, "%s %s slots=%d params=%d multi=%d\n", p.Kind, p.Name, p.SlotCount, p.ParamCount, len(p.Multi)); err != nil {
		return err
	}
	for pc, s := range p.Steps {
		mark := ' '
		if p.IsCut(pc) {
			mark = '|'
		}
		stmt := ' '
		if s.Has(FlagStmtStart) {
			stmt = '*'
		}
		pos := ""
		if files != nil && !s.Span.Empty() {
			start, _ := files.Resolve(s.Span)
			pos = fmt.Sprintf("  ; %d:%d", start.Line, start.Col)
		}
		if _, err := fmt.Fprintf(w, "%c%04d %c %-14s %s%s\n", mark, pc, stmt, s.Op, operands(p, s, tbl), pos); err != nil {
			return err
		}
	}
	for i, h := range p.Handlers {
		for _, c := range h.Clauses {
			names := ""
			for j, t := range c.Types {
				if j > 0 {
					names += "|"
				}
				names += typeName(tbl, t)
			}
			if _, err := fmt.Fprintf(w, "  handler %d: %s -> %04d slot %d\n", i, names, c.Target, c.Slot); err != nil {
				return err
			}
		}
	}
	return nil
}

func typeName(tbl *types.Table, id types.TypeID) string {
	if tbl == nil {
		return "#" + strconv.Itoa(int(id))
	}
	return tbl.String(id)
}

func operands(p *Program, s Step, tbl *types.Table) string {
	switch s.Op {
	case OpPushConst:
		if int(s.A) < len(p.Consts) {
			c := p.Consts[s.A]
			switch c.Kind {
			case ConstString:
				return strconv.Quote(c.S)
			case ConstDouble:
				return strconv.FormatFloat(c.F, 'g', -1, 64)
			case ConstChar:
				return strconv.QuoteRune(rune(c.N))
			case ConstBool:
				return strconv.FormatBool(c.N != 0)
			default:
				return strconv.FormatInt(c.N, 10)
			}
		}
	case OpLoadLocal, OpStoreLocal, OpLoadField, OpStoreField, OpEnterCatch, OpLoadComputed:
		return strconv.Itoa(int(s.A))
	case OpLoadStatic, OpStoreStatic:
		if tbl != nil {
			if c := tbl.Class(types.ClassID(s.A)); c != nil && int(s.B) < len(c.Statics) {
				return c.Name + "." + c.Statics[s.B].Name
			}
		}
		return fmt.Sprintf("%d.%d", s.A, s.B)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("-> %04d", s.A)
	case OpBinary:
		return BinOp(s.A).String() + " " + NumKind(s.B).String()
	case OpUnary:
		return UnOp(s.A).String() + " " + NumKind(s.B).String()
	case OpConvert:
		return NumKind(s.A).String() + " -> " + NumKind(s.B).String()
	case OpNew, OpCheckCast, OpInstanceOf:
		return typeName(tbl, types.TypeID(s.A))
	case OpNewArray, OpArrayLit:
		return typeName(tbl, types.TypeID(s.A)) + " " + strconv.Itoa(int(s.B))
	case OpCall, OpCallVirtual, OpToString:
		if tbl != nil {
			if m := tbl.Method(types.MethodID(s.A)); m != nil {
				owner := ""
				if c := tbl.Class(m.Owner); c != nil {
					owner = c.Name + "."
				}
				return owner + tbl.Signature(m)
			}
		}
		return fmt.Sprintf("#%d argc=%d", s.A, s.B)
	}
	return ""
}
