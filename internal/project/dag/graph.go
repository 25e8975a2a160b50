// Package dag builds the dependency graph between compilation units from
// the cross-unit type usages recorded by the resolver.
package dag

import (
	"fmt"
	"slices"

	"jstep/internal/diag"
	"jstep/internal/source"
)

type ModuleID uint32

// Dep is one usage of another unit: the referenced module and the span of
// the first reference.
type Dep struct {
	Module ModuleID
	Span   source.Span
}

type ModuleNode struct {
	ID       ModuleID
	Path     string
	Deps     []Dep
	Reporter diag.Reporter
	Broken   bool // собственные ошибки
	FirstErr *diag.Diagnostic
}

type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to
	Indeg   []int        // для Kahn, только присутствующие модули
	Present []bool
	Nodes   []ModuleNode // по ID; отсутствующие - нулевые
}

// BuildGraph indexes nodes by ID. IDs are dense handles starting at 1;
// slot 0 stays empty.
func BuildGraph(nodes []ModuleNode) Graph {
	size := 1
	for _, n := range nodes {
		if int(n.ID)+1 > size {
			size = int(n.ID) + 1
		}
	}
	g := Graph{
		Edges:   make([][]ModuleID, size),
		Indeg:   make([]int, size),
		Present: make([]bool, size),
		Nodes:   make([]ModuleNode, size),
	}
	for _, n := range nodes {
		g.Nodes[n.ID] = n
		g.Present[n.ID] = true
	}
	for _, n := range nodes {
		seen := make(map[ModuleID]struct{}, len(n.Deps))
		for _, d := range n.Deps {
			if d.Module == n.ID || int(d.Module) >= size || !g.Present[d.Module] {
				continue
			}
			if _, dup := seen[d.Module]; dup {
				continue
			}
			seen[d.Module] = struct{}{}
			g.Edges[n.ID] = append(g.Edges[n.ID], d.Module)
			g.Indeg[d.Module]++
		}
		slices.Sort(g.Edges[n.ID])
	}
	return g
}

// PropagateBroken returns, per module, whether it transitively depends on
// a module with errors. Iterates to a fixed point, so cycles are fine.
func PropagateBroken(g Graph) []bool {
	out := make([]bool, len(g.Nodes))
	for changed := true; changed; {
		changed = false
		for from := range g.Nodes {
			if !g.Present[from] || out[from] {
				continue
			}
			for _, to := range g.Edges[from] {
				if g.Nodes[to].Broken || out[to] {
					out[from] = true
					changed = true
					break
				}
			}
		}
	}
	return out
}

// ReportBrokenDeps adds one diagnostic per directly used unit that has
// errors of its own, pointing at the first usage.
func ReportBrokenDeps(g Graph) {
	for _, n := range g.Nodes {
		if n.Reporter == nil || len(n.Deps) == 0 {
			continue
		}
		emitted := make(map[ModuleID]struct{}, len(n.Deps))
		for _, d := range n.Deps {
			if int(d.Module) >= len(g.Nodes) || !g.Present[d.Module] || d.Module == n.ID {
				continue
			}
			dep := g.Nodes[d.Module]
			if !dep.Broken {
				continue
			}
			if _, seen := emitted[d.Module]; seen {
				continue
			}
			emitted[d.Module] = struct{}{}
			var notes []diag.Note
			if dep.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: dep.FirstErr.Primary,
					Msg:  fmt.Sprintf("first error in %s: %s", dep.Path, dep.FirstErr.Message),
				})
			}
			n.Reporter.Report(diag.SemaDependsOnErrors, diag.SevWarning, d.Span,
				fmt.Sprintf("uses %q, which has errors", dep.Path), notes, nil)
		}
	}
}
