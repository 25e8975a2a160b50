package gen

import (
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/parser"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/symbols"
	"jstep/internal/types"
	"jstep/internal/unit"
)

const evalMaxDiags = 16

// CompileEval compiles text as an expression evaluated inside a frame of
// prog paused at pc. Locals visible at pc keep their slots, so the
// interpreter can copy them in and write assignments back. Blocking calls
// are rejected. The returned program is nil when the bag has errors.
func (o *Output) CompileEval(prog *steps.Program, pc int, text string) (*steps.Program, *diag.Bag) {
	bag := diag.NewBag(evalMaxDiags)
	files := source.NewFileSet()
	fid := files.AddVirtual("<eval>", []byte(text))
	rep := diag.BagReporter{Bag: bag}
	toks := lexer.Tokenize(files.Get(fid), lexer.Options{Reporter: rep})
	if bag.HasErrors() {
		return nil, bag
	}
	parsed := parser.ParseExpr(toks, parser.Options{Reporter: rep, MaxErrors: evalMaxDiags, NoHeal: true})
	bag.Filter(func(d diag.Diagnostic) bool { return d.Severity.Blocking() })
	if bag.HasErrors() || !parsed.Expr.IsValid() {
		return nil, bag
	}
	u := unit.New(unit.ModuleID(prog.Module), "<eval>", []byte(text))
	u.File = fid
	u.Builder = parsed.Builder
	x, span := parsed.Expr, parsed.Span

	g := o.g
	syms, scope := symbols.Imitate(prog.Symbols, pc)
	f := &fn{
		g:      g,
		tbl:    g.tbl,
		u:      u,
		b:      u.Builder,
		rep:    diag.BagReporter{Bag: bag},
		class:  g.tbl.Class(prog.Symbols.Class),
		method: g.tbl.Method(prog.Symbols.Method),
		static: prog.Symbols.Static,
		syms:   syms,
		scope:  scope,
		prog: &steps.Program{
			Name:   "<eval>",
			Kind:   steps.KindEval,
			Module: prog.Module,
			File:   fid,
			Method: prog.Method,
			Class:  prog.Class,
			Span:   span,
		},
	}
	if f.method != nil {
		f.ctor = f.method.Is(types.MethodCtor)
	}
	f.stmt(span)
	t := f.expr(x, types.NoTypeID)
	if t == types.NoTypeID {
		f.emit(steps.OpReturn, 0, 0, span)
	} else {
		f.prog.Returns = true
		f.emit(steps.OpReturnValue, 0, 0, span)
	}
	for _, s := range f.prog.Steps {
		if s.Op != steps.OpCall && s.Op != steps.OpCallVirtual {
			continue
		}
		if m := g.tbl.Method(types.MethodID(s.A)); m != nil && m.Is(types.MethodBlocking) {
			diag.ReportError(f.rep, diag.SemaBlockingEval, s.Span,
				"cannot call "+m.Name+" while the program is paused").Emit()
		}
	}
	if bag.HasErrors() {
		return nil, bag
	}
	out := f.finish()
	out.SlotCount = max(out.SlotCount, prog.SlotCount)
	return out, bag
}
