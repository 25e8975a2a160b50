package sema_test

import (
	"slices"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/driver"
	"jstep/internal/testkit"
	"jstep/internal/types"
)

func codes(res *driver.Result) []diag.Code {
	var out []diag.Code
	for _, d := range res.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func class(t *testing.T, tbl *types.Table, name string) *types.Class {
	t.Helper()
	c := tbl.ClassByName(name)
	if c == nil {
		t.Fatalf("class %s not declared", name)
	}
	return c
}

func method(t *testing.T, tbl *types.Table, c *types.Class, name string) *types.Method {
	t.Helper()
	ms := tbl.OwnMethods(c, name)
	if len(ms) != 1 {
		t.Fatalf("got %d methods %s.%s, want 1", len(ms), c.Name, name)
	}
	return ms[0]
}

func TestAttributesExtendBaseLayout(t *testing.T) {
	res, _ := testkit.MustCompile(t, `class A { int x; int y; }
class B extends A { String s; }
class C extends B { double w; static int count; }
`)
	tbl := res.Types()
	chain := []*types.Class{class(t, tbl, "A"), class(t, tbl, "B"), class(t, tbl, "C")}
	for i, c := range chain {
		all := tbl.AllAttrs(c)
		if len(all) != c.AttrCount {
			t.Fatalf("%s: got %d attributes, AttrCount %d", c.Name, len(all), c.AttrCount)
		}
		seen := map[int]bool{}
		for _, a := range all {
			if a.Index < 0 || a.Index >= c.AttrCount || seen[a.Index] {
				t.Fatalf("%s: bad or duplicate index %d for %s", c.Name, a.Index, a.Name)
			}
			seen[a.Index] = true
		}
		if i == 0 {
			continue
		}
		base := chain[i-1]
		for _, a := range tbl.AllAttrs(base) {
			got := tbl.Attr(c, a.Name)
			if got == nil || got.Index != a.Index {
				t.Fatalf("%s lost %s.%s at index %d", c.Name, base.Name, a.Name, a.Index)
			}
		}
	}
	if c := chain[2]; c.AttrCount != 4 || len(c.Statics) != 1 {
		t.Fatalf("C: got %d attributes and %d statics, want 4 and 1", c.AttrCount, len(c.Statics))
	}
}

func TestOverriddenMethodsAreVirtual(t *testing.T) {
	res, _ := testkit.MustCompile(t, `class A {
    void f() {}
    void g() {}
    private void h() {}
}
class B extends A {
    void f() {}
}
`)
	tbl := res.Types()
	a, b := class(t, tbl, "A"), class(t, tbl, "B")
	af, ag, ah := method(t, tbl, a, "f"), method(t, tbl, a, "g"), method(t, tbl, a, "h")
	if !af.Virtual {
		t.Fatalf("A.f is overridden but not virtual")
	}
	if ag.Virtual || ah.Virtual {
		t.Fatalf("A.g or A.h marked virtual without an override")
	}
	bf := method(t, tbl, b, "f")
	if got := tbl.Dispatch(b, af.ID); got != bf.ID {
		t.Fatalf("B dispatches A.f to %d, want %d", got, bf.ID)
	}
	if got := tbl.Dispatch(a, af.ID); got != af.ID {
		t.Fatalf("A dispatches A.f to %d, want itself", got)
	}
}

func TestHeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"cycle", "class A extends B {}\nclass B extends A {}\n", diag.SemaCyclicInheritance},
		{"unresolved", "class A extends Missing {}\n", diag.SemaUnresolvedType},
		{"abstract", "abstract class S { abstract int f(); }\nclass T extends S {}\n", diag.SemaAbstractNotImplemented},
		{"duplicate", "class A {}\nclass A {}\n", diag.SemaDuplicateType},
		{"final override", "class A { final void f() {} }\nclass B extends A { void f() {} }\n", diag.SemaInvalidOverride},
		{"extends interface", "interface I {}\nclass A extends I {}\n", diag.SemaInvalidBase},
		{"implements class", "class B {}\nclass A implements B {}\n", diag.SemaInvalidBase},
		{"final base", "final class B {}\nclass A extends B {}\n", diag.SemaInvalidBase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, _ := testkit.Compile(t, testkit.Source{Path: testkit.Main, Text: tc.src})
			if got := codes(res); !slices.Contains(got, tc.want) {
				t.Fatalf("got codes %v, want %v", got, tc.want)
			}
			if res.Startable(testkit.Main) {
				t.Fatalf("unit with errors is startable")
			}
		})
	}
}

func TestInterfaceHeaders(t *testing.T) {
	out := testkit.Run(t, `interface Named { String name(); }
interface Shape extends Named { int area(); }
class Sq implements Shape {
    int s;
    Sq(int s) { this.s = s; }
    public String name() { return "sq"; }
    public int area() { return s * s; }
}
Shape sh = new Sq(3);
println(sh.name() + " " + sh.area());
`)
	if out != "sq 9\n" {
		t.Fatalf("got %q, want %q", out, "sq 9\n")
	}
}

func TestUserOfBrokenUnitIsNotStartable(t *testing.T) {
	res, _ := testkit.Compile(t,
		testkit.Source{Path: "Shapes.jst", Text: "class Circle { double r = \"x\"; }\n"},
		testkit.Source{Path: testkit.Main, Text: "Circle c = new Circle();\nprintln(c);\n"},
		testkit.Source{Path: "Other.jst", Text: "println(1);\n"},
	)
	main := res.Unit(testkit.Main)
	if !res.Unit("Shapes.jst").HasErrors() {
		t.Fatalf("Shapes.jst compiled without errors")
	}
	if !main.DependsOnModulesWithErrors || res.Startable(testkit.Main) {
		t.Fatalf("Main.jst uses a broken unit but is startable")
	}
	if !res.Startable("Other.jst") {
		t.Fatalf("an independent unit is not startable")
	}
}

func TestInitOrderFollowsUsage(t *testing.T) {
	res, _ := testkit.Compile(t,
		testkit.Source{Path: testkit.Main, Text: "class M { static int v = Lib.base + 1; }\nprintln(M.v);\n"},
		testkit.Source{Path: "Lib.jst", Text: "class Lib { static int base = 41; }\n"},
	)
	testkit.FailOnErrors(t, res)
	tbl := res.Types()
	order := res.Output.InitOrder
	li := slices.Index(order, class(t, tbl, "Lib").ID)
	mi := slices.Index(order, class(t, tbl, "M").ID)
	if li < 0 || mi < 0 || li > mi {
		t.Fatalf("got init order %v, want Lib before M", order)
	}
}
