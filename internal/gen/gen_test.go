package gen_test

import (
	"slices"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/steps"
	"jstep/internal/testkit"
	"jstep/internal/vm"
)

const shapes = `abstract class Shape {
    abstract double area();
}
class Rect extends Shape {
    double w;
    double h;
    Rect(double w, double h) { this.w = w; this.h = h; }
    double area() { return w * h; }
}
class Counter {
    static int made = 0;
    Counter() { made++; }
}
double total = 0;
for (int i = 1; i <= 3; i++) {
    Shape s = new Rect(i, 2);
    total += s.area();
    new Counter();
}
if (total > 10) {
    println("big " + total);
} else {
    println("small");
}
println(Counter.made);
`

func TestCompileIsDeterministic(t *testing.T) {
	a, _ := testkit.MustCompile(t, shapes)
	b, _ := testkit.MustCompile(t, shapes)
	if a.Output.StepCount() == 0 {
		t.Fatalf("no steps generated")
	}
	if got, want := b.Output.StepCount(), a.Output.StepCount(); got != want {
		t.Fatalf("got %d steps on the second compile, want %d", got, want)
	}
	pa, pb := a.Output.Programs(), b.Output.Programs()
	if len(pa) != len(pb) {
		t.Fatalf("got %d programs, want %d", len(pb), len(pa))
	}
	for i := range pa {
		if pa[i].Name != pb[i].Name || len(pa[i].Steps) != len(pb[i].Steps) {
			t.Fatalf("program %d: got %s/%d, want %s/%d",
				i, pb[i].Name, len(pb[i].Steps), pa[i].Name, len(pa[i].Steps))
		}
	}
}

func TestMultiStepsCoverEveryStep(t *testing.T) {
	res, _ := testkit.MustCompile(t, shapes)
	for _, p := range res.Output.Programs() {
		next := 0
		for _, m := range p.Multi {
			if m.Begin != next || m.End <= m.Begin {
				t.Fatalf("%s: multi-step [%d,%d) after %d", p.Name, m.Begin, m.End, next)
			}
			next = m.End
		}
		if next != len(p.Steps) {
			t.Fatalf("%s: multi-steps end at %d of %d", p.Name, next, len(p.Steps))
		}
		for pc, s := range p.Steps {
			if s.Has(steps.FlagStmtStart) && !p.IsCut(pc) {
				t.Fatalf("%s: statement at %d inside a multi-step", p.Name, pc)
			}
			if s.Op.IsJump() && !p.IsCut(int(s.A)) {
				t.Fatalf("%s: jump target %d inside a multi-step", p.Name, s.A)
			}
		}
	}
}

func TestScriptRuns(t *testing.T) {
	if out := testkit.Run(t, shapes); out != "big 12.0\n3\n" {
		t.Fatalf("got %q, want %q", out, "big 12.0\n3\n")
	}
}

func TestBodyErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"mismatch", "int x = \"a\";\n", diag.SemaTypeMismatch},
		{"missing return", "class A { int f() { } }\n", diag.SemaMissingReturn},
		{"break outside loop", "break;\n", diag.SemaBreakOutsideLoop},
		{"unknown name", "println(y);\n", diag.SemaUnknownName},
		{"static context", "class A { int x; static void f() { x = 1; } }\n", diag.SemaStaticContext},
		{"private", "class A { private int x; }\nA a = new A();\na.x = 1;\n", diag.SemaPrivateAccess},
		{"array length", "int[] a = new int[1];\na.length = 2;\n", diag.SemaFinalAssign},
		{"abstract new", "abstract class S {}\nS s = new S();\n", diag.SemaAbstractInstantiation},
		{"unreachable catch", "try { println(1); } catch (Exception e) { } catch (ArithmeticException e) { }\n", diag.SemaUnreachableCatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, _ := testkit.Compile(t, testkit.Source{Path: testkit.Main, Text: tc.src})
			var got []diag.Code
			for _, d := range res.Diagnostics() {
				got = append(got, d.Code)
			}
			if !slices.Contains(got, tc.want) {
				t.Fatalf("got codes %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompileEvalSeesLocals(t *testing.T) {
	res, con := testkit.MustCompile(t, `int x = 7;
int y = 0;
println(x + y);
`)
	p := testkit.Launch(t, res, vm.Options{})
	if _, err := p.SetBreakpoint(testkit.Main, 3); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	p.RunSteps(1000, vm.ModeSingle)
	pos, ok := p.Position()
	if !ok || p.State() != vm.PoolPaused {
		t.Fatalf("got state %v, want paused", p.State())
	}

	prog, bag := res.Output.CompileEval(pos.Prog, pos.PC, "x * 2")
	if prog == nil {
		t.Fatalf("CompileEval: %v", bag.Items())
	}
	v, err := p.Eval(prog, 0)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Kind != vm.VKInt || v.N != 14 {
		t.Fatalf("got %v, want 14", v)
	}

	prog, _ = res.Output.CompileEval(pos.Prog, pos.PC, "y = 5")
	if prog == nil {
		t.Fatalf("assignment did not compile")
	}
	if _, err := p.Eval(prog, 0); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	p.Resume()
	testkit.RunToEnd(t, p, 1000)
	if out := con.String(); out != "12\n" {
		t.Fatalf("got %q, want %q", out, "12\n")
	}
}

func TestCompileEvalRejectsBlockingCalls(t *testing.T) {
	res, _ := testkit.MustCompile(t, "int x = 1;\nprintln(x);\n")
	p := testkit.Launch(t, res, vm.Options{})
	if _, err := p.SetBreakpoint(testkit.Main, 2); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	p.RunSteps(1000, vm.ModeSingle)
	pos, _ := p.Position()
	prog, bag := res.Output.CompileEval(pos.Prog, pos.PC, "Input.readLine()")
	if prog != nil {
		t.Fatalf("blocking call compiled for eval")
	}
	found := false
	for _, d := range bag.Items() {
		found = found || d.Code == diag.SemaBlockingEval
	}
	if !found {
		t.Fatalf("got %v, want %s", bag.Items(), diag.SemaBlockingEval.ID())
	}
}
