// Package gen type-checks method bodies and emits Step programs for
// methods, constructors, class initializers and unit scripts.
package gen

import (
	"errors"
	"fmt"

	"jstep/internal/ast"
	"jstep/internal/compctx"
	"jstep/internal/diag"
	"jstep/internal/sema"
	"jstep/internal/steps"
	"jstep/internal/trace"
	"jstep/internal/types"
	"jstep/internal/unit"
)

var ErrMissingLibraryClass = errors.New("runtime library class is missing")

// Output holds every program of one compilation.
type Output struct {
	// Methods is keyed by implementation id: specialized copies share the
	// program of their generic declaration.
	Methods map[types.MethodID]*steps.Program
	Inits   map[types.ClassID]*steps.Program
	Scripts map[unit.ModuleID]*steps.Program
	// InitOrder lists classes whose initializer must run before any script.
	InitOrder []types.ClassID

	g *generator
}

// Method returns the program of a compiled method, nil for natives and
// abstract methods.
func (o *Output) Method(id types.MethodID) *steps.Program { return o.Methods[id] }

// ClassInit returns the static initializer of a class, if it has one.
func (o *Output) ClassInit(id types.ClassID) *steps.Program { return o.Inits[id] }

// Script returns the main program of a unit.
func (o *Output) Script(id unit.ModuleID) *steps.Program { return o.Scripts[id] }

// Programs lists every program in a stable order.
func (o *Output) Programs() []*steps.Program {
	var out []*steps.Program
	for _, m := range o.g.tbl.Methods() {
		if p := o.Methods[m.ID]; p != nil {
			out = append(out, p)
		}
	}
	for _, c := range o.g.tbl.Classes() {
		if p := o.Inits[c.ID]; p != nil {
			out = append(out, p)
		}
	}
	for _, u := range o.g.ctx.Units {
		if p := o.Scripts[u.ID]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// StepCount sums the single steps of all programs.
func (o *Output) StepCount() int {
	n := 0
	for _, p := range o.Programs() {
		n += len(p.Steps)
	}
	return n
}

// library classes the generator relies on
type libClasses struct {
	object    *types.Class
	enum      *types.Class
	exception *types.Class
	global    *types.Class
	toString  types.MethodID
}

type generator struct {
	ctx  *compctx.Context
	info *sema.Info
	tbl  *types.Table
	lib  libClasses
	out  *Output
}

func newGenerator(ctx *compctx.Context, info *sema.Info) (*generator, error) {
	g := &generator{ctx: ctx, info: info, tbl: info.Types}
	for name, dst := range map[string]**types.Class{
		"Object":    &g.lib.object,
		"Enum":      &g.lib.enum,
		"Exception": &g.lib.exception,
		"$Global":   &g.lib.global,
	} {
		c := g.tbl.ClassByName(name)
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLibraryClass, name)
		}
		*dst = c
	}
	ts := g.tbl.FindMethod(g.lib.object, "toString")
	if ts == nil {
		return nil, fmt.Errorf("%w: Object.toString", ErrMissingLibraryClass)
	}
	g.lib.toString = ts.ID
	g.out = &Output{
		Methods: make(map[types.MethodID]*steps.Program),
		Inits:   make(map[types.ClassID]*steps.Program),
		Scripts: make(map[unit.ModuleID]*steps.Program),
		g:       g,
	}
	return g, nil
}

// Generate compiles every class and script. Type errors found in bodies go
// to the unit's Type bag; generator defects go to its Gen bag. Programs are
// produced even for units with errors so tools can inspect them, but such
// units must not be launched.
func Generate(ctx *compctx.Context, info *sema.Info) (*Output, error) {
	g, err := newGenerator(ctx, info)
	if err != nil {
		return nil, err
	}
	span := trace.Begin(ctx.Tracer, trace.ScopePass, "gen", 0)
	defer span.End("")

	for _, d := range info.Classes {
		if ctx.Cancelled() {
			return nil, ctx.Ctx.Err()
		}
		g.genClass(d)
	}
	for _, u := range ctx.Units {
		if ctx.Cancelled() {
			return nil, ctx.Ctx.Err()
		}
		us := trace.Begin(ctx.Tracer, trace.ScopeUnit, "gen.script", span.ID()).WithExtra("unit", u.Path)
		g.genScript(u)
		us.End("")
	}
	return g.out, nil
}

func (g *generator) genClass(d *sema.ClassDecl) {
	b := d.Unit.Builder
	it := b.Item(d.Item)
	for _, mid := range it.Members {
		mem := b.Member(mid)
		if mem.Kind == ast.MemberField {
			continue
		}
		m := g.info.MethodOf(d.Unit, mid)
		if m == nil || m.Is(types.MethodAbstract) {
			continue
		}
		g.genMethod(d, m, mem)
	}
	if d.DefaultCtor != nil {
		g.genMethod(d, d.DefaultCtor, nil)
	}
	if d.Values != nil {
		g.genValues(d)
	}
	g.genClassInit(d)
}

func (g *generator) internal(u *unit.Unit, err error) {
	diag.ReportError(g.ctx.GenReporter(u), diag.GenInternal, u.Builder.File(u.AST).Span, err.Error()).Emit()
}
