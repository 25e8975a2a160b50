// Package driver owns the units of a workspace and runs the compile
// pipeline: lex and parse in parallel, then resolve, generate and compute
// module status over the whole set.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"jstep/internal/compctx"
	"jstep/internal/gen"
	"jstep/internal/observ"
	"jstep/internal/rtlib"
	"jstep/internal/sema"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/trace"
	"jstep/internal/unit"
)

var ErrEmptyWorkspace = errors.New("workspace has no units")

type Options struct {
	// Console receives program output of pools built from results.
	Console        rtlib.Console
	MaxDiagnostics int
	// Jobs limits parallel lexing and parsing; 0 means GOMAXPROCS.
	Jobs   int
	Tracer trace.Tracer
	Cache  *DiskCache
	// Events, when set, receives compile progress. Compile never closes it.
	Events chan<- Event
}

// Workspace is not safe for concurrent use; hosts serialize Set, Remove
// and Compile on one goroutine.
type Workspace struct {
	opts  Options
	files *source.FileSet
	units *unit.Set
}

func NewWorkspace(opts Options) *Workspace {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Workspace{opts: opts, files: source.NewFileSet(), units: unit.NewSet()}
}

// Set creates or updates the unit for path. It reports whether the text changed.
func (w *Workspace) Set(path string, text []byte) bool {
	_, changed := w.units.Put(path, text)
	return changed
}

func (w *Workspace) Remove(path string) bool { return w.units.Remove(path) }
func (w *Workspace) Paths() []string         { return w.units.Paths() }
func (w *Workspace) Files() *source.FileSet  { return w.files }

// Load reads files from disk into the workspace.
func (w *Workspace) Load(paths ...string) error {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		w.Set(p, data)
	}
	return nil
}

// Compile rebuilds every unit. Only dirty units are lexed and parsed
// again; resolution and generation always cover the whole set because a
// change in one unit may invalidate its users.
func (w *Workspace) Compile(ctx context.Context) (*Result, error) {
	units := w.units.All()
	if len(units) == 0 {
		return nil, ErrEmptyWorkspace
	}
	ctx = trace.WithTracer(ctx, w.opts.Tracer)
	root := trace.Begin(w.opts.Tracer, trace.ScopeDriver, "compile", 0)
	defer root.End("")
	timer := observ.NewTimer()
	total := timer.Begin("compile")

	for _, u := range units {
		u.Attach(w.files)
		w.emit(ctx, Event{Path: u.Path, Stage: StageParse, Status: StatusQueued})
	}
	idx := timer.Begin("parse")
	parsed, err := w.analyze(ctx, units)
	if err != nil {
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d of %d units", parsed, len(units)))

	for _, u := range units {
		u.ResetSemantic(w.opts.MaxDiagnostics)
	}
	lib := rtlib.New(w.opts.Console)
	cc := compctx.New(ctx, w.files, units, lib)

	w.emit(ctx, Event{Stage: StageResolve, Status: StatusWorking})
	idx = timer.Begin("resolve")
	info, err := sema.Resolve(cc)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	w.emit(ctx, Event{Stage: StageGenerate, Status: StatusWorking})
	idx = timer.Begin("gen")
	out, err := gen.Generate(cc, info)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	out.InitOrder = sema.ModuleStatus(cc, info)
	timer.End(total, "")
	for _, u := range units {
		st := StatusDone
		if u.HasErrors() {
			st = StatusError
		}
		w.emit(ctx, Event{Path: u.Path, Stage: StageGenerate, Status: st})
	}

	res := &Result{
		Files:   w.files,
		Units:   units,
		Info:    info,
		Output:  out,
		Ctx:     cc,
		Natives: lib.Natives(),
		Timings: timer.Report(),
		Digest:  Digest(units),
	}
	if w.opts.Cache != nil && !res.HasErrors() {
		if err := w.storePrograms(res); err != nil {
			return res, fmt.Errorf("program cache: %w", err)
		}
	}
	return res, nil
}

// storePrograms writes the programs of res unless an entry with the same
// digest and the same step count is already there.
func (w *Workspace) storePrograms(res *Result) error {
	cached, ok, err := w.opts.Cache.Programs(res.Digest)
	if err == nil && ok && stepCount(cached) == res.Output.StepCount() {
		res.CacheHit = true
		return nil
	}
	return w.opts.Cache.PutPrograms(res.Digest, res.Output.Programs())
}

func stepCount(progs []*steps.Program) int {
	n := 0
	for _, p := range progs {
		n += len(p.Steps)
	}
	return n
}

// analyze lexes and parses dirty units in parallel. Each goroutine writes
// only to its own unit.
func (w *Workspace) analyze(ctx context.Context, units []*unit.Unit) (int, error) {
	jobs := w.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	dirty := make([]bool, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		file := w.files.Get(u.File)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w.emit(gctx, Event{Path: u.Path, Stage: StageParse, Status: StatusWorking})
			sp := trace.Begin(w.opts.Tracer, trace.ScopeUnit, "parse", 0).WithExtra("unit", u.Path)
			dirty[i] = u.Analyze(file, w.opts.MaxDiagnostics)
			sp.End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	n := 0
	for _, d := range dirty {
		if d {
			n++
		}
	}
	return n, nil
}
