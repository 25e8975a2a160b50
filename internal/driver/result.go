package driver

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"jstep/internal/compctx"
	"jstep/internal/diag"
	"jstep/internal/gen"
	"jstep/internal/observ"
	"jstep/internal/project"
	"jstep/internal/sema"
	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
	"jstep/internal/unit"
	"jstep/internal/vm"
)

var (
	ErrUnknownUnit  = errors.New("no such unit")
	ErrNotStartable = errors.New("unit is not startable")
)

// Result is one compile of the whole workspace.
type Result struct {
	Files   *source.FileSet
	Units   []*unit.Unit
	Info    *sema.Info
	Output  *gen.Output
	Ctx     *compctx.Context
	Natives []vm.NativeFunc
	Timings observ.Report
	// Digest identifies the source texts the result was built from.
	Digest project.Digest
	// CacheHit reports that the program cache already held this compile.
	CacheHit bool
}

func (r *Result) Types() *types.Table { return r.Info.Types }

func (r *Result) Unit(path string) *unit.Unit {
	for _, u := range r.Units {
		if u.Path == path {
			return u
		}
	}
	return nil
}

// HasErrors reports whether any unit has error diagnostics.
func (r *Result) HasErrors() bool {
	return slices.ContainsFunc(r.Units, (*unit.Unit).HasErrors)
}

// Startable reports whether the unit at path may be launched.
func (r *Result) Startable(path string) bool {
	u := r.Unit(path)
	return u != nil && u.Startable() && r.Output.Script(u.ID) != nil
}

// Diagnostics returns the diagnostics of every unit ordered by unit.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, u := range r.Units {
		out = append(out, u.Diagnostics()...)
	}
	return out
}

// Inits returns the class initializers in initialization order.
func (r *Result) Inits() []*steps.Program {
	var out []*steps.Program
	for _, id := range r.Output.InitOrder {
		if p := r.Output.ClassInit(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// NewPool builds a thread pool over the result; Types, Programs, Natives
// and Files of opts are filled in.
func (r *Result) NewPool(opts vm.Options) (*vm.ThreadPool, error) {
	opts.Types = r.Info.Types
	opts.Programs = r.Output
	opts.Natives = r.Natives
	opts.Files = r.Files
	return vm.NewThreadPool(opts)
}

// Launch builds a pool and starts the main program of the unit at path.
func (r *Result) Launch(path string, opts vm.Options) (*vm.ThreadPool, error) {
	u := r.Unit(path)
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, path)
	}
	if !r.Startable(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotStartable, path)
	}
	p, err := r.NewPool(opts)
	if err != nil {
		return nil, err
	}
	if err := p.Launch(r.Output.Script(u.ID), r.Inits()); err != nil {
		return nil, err
	}
	return p, nil
}

// Digest hashes unit paths and texts in path order.
func Digest(units []*unit.Unit) project.Digest {
	sorted := slices.Clone(units)
	slices.SortFunc(sorted, func(a, b *unit.Unit) int { return strings.Compare(a.Path, b.Path) })
	parts := make([]project.Digest, 0, len(sorted))
	for _, u := range sorted {
		parts = append(parts, project.SourceDigest(u.Path, u.Text))
	}
	return project.Combine(parts...)
}
