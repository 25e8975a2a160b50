package dag

import (
	"testing"

	"jstep/internal/diag"
	"jstep/internal/source"
)

func TestPropagateBrokenThroughChainAndCycle(t *testing.T) {
	// 1 -> 2 -> 3(broken); 4 <-> 5 isolated
	nodes := []ModuleNode{
		{ID: 1, Path: "A.jst", Deps: []Dep{{Module: 2}}},
		{ID: 2, Path: "B.jst", Deps: []Dep{{Module: 3}}},
		{ID: 3, Path: "C.jst", Broken: true},
		{ID: 4, Path: "D.jst", Deps: []Dep{{Module: 5}}},
		{ID: 5, Path: "E.jst", Deps: []Dep{{Module: 4}}},
	}
	g := BuildGraph(nodes)
	got := PropagateBroken(g)
	want := map[int]bool{1: true, 2: true, 3: false, 4: false, 5: false}
	for id, w := range want {
		if got[id] != w {
			t.Fatalf("module %d: got %v, want %v", id, got[id], w)
		}
	}
}

func TestToposortPutsDependenciesFirst(t *testing.T) {
	g := BuildGraph([]ModuleNode{
		{ID: 1, Deps: []Dep{{Module: 2}, {Module: 3}}},
		{ID: 2, Deps: []Dep{{Module: 3}}},
		{ID: 3},
	})
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", topo.Cycles)
	}
	if len(topo.Order) != 3 || topo.Order[0] != 3 || topo.Order[1] != 2 || topo.Order[2] != 1 {
		t.Fatalf("order = %v, want [3 2 1]", topo.Order)
	}
}

func TestToposortKeepsCyclicModules(t *testing.T) {
	g := BuildGraph([]ModuleNode{
		{ID: 1, Deps: []Dep{{Module: 2}}},
		{ID: 2, Deps: []Dep{{Module: 1}}},
		{ID: 3},
	})
	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 2 || len(topo.Order) != 3 {
		t.Fatalf("topo = %+v", topo)
	}
}

func TestReportBrokenDepsOncePerModule(t *testing.T) {
	bag := diag.NewBag(0)
	first := diag.NewError(diag.SemaUnknownName, source.Span{File: 2}, "unknown name x")
	g := BuildGraph([]ModuleNode{
		{ID: 1, Path: "A.jst", Reporter: diag.BagReporter{Bag: bag}, Deps: []Dep{
			{Module: 2, Span: source.Span{File: 1, Start: 3, End: 4}},
			{Module: 2, Span: source.Span{File: 1, Start: 9, End: 10}},
		}},
		{ID: 2, Path: "B.jst", Broken: true, FirstErr: &first},
	})
	ReportBrokenDeps(g)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaDependsOnErrors {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected a note pointing at the dependency's first error")
	}
}
