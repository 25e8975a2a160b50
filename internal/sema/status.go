package sema

import (
	"jstep/internal/compctx"
	"jstep/internal/project/dag"
	"jstep/internal/types"
	"jstep/internal/unit"
)

// ModuleStatus must run after code generation, once every cross-unit
// usage is recorded. It warns about used units that have errors, marks
// units depending on them, and returns the class initialization order:
// classes of a unit come after the classes of the units it uses, and in
// declaration order within a unit.
func ModuleStatus(ctx *compctx.Context, info *Info) []types.ClassID {
	nodes := make([]dag.ModuleNode, 0, len(ctx.Units))
	for _, u := range ctx.Units {
		n := dag.ModuleNode{
			ID:       dag.ModuleID(u.ID),
			Path:     u.Path,
			Reporter: ctx.TypeReporter(u),
			Broken:   u.HasErrors(),
			FirstErr: u.FirstError(),
		}
		for _, us := range u.Deps() {
			n.Deps = append(n.Deps, dag.Dep{Module: dag.ModuleID(us.Module), Span: us.Span})
		}
		nodes = append(nodes, n)
	}
	g := dag.BuildGraph(nodes)
	broken := dag.PropagateBroken(g)
	dag.ReportBrokenDeps(g)
	for _, u := range ctx.Units {
		if int(u.ID) < len(broken) {
			u.DependsOnModulesWithErrors = broken[u.ID]
		}
	}

	var order []types.ClassID
	if info == nil {
		return order
	}
	topo := dag.ToposortKahn(g)
	for _, id := range topo.Order {
		for _, d := range info.Classes {
			if d.Unit.ID == unit.ModuleID(id) {
				order = append(order, d.Class.ID)
			}
		}
	}
	return order
}
