package vm_test

import (
	"strings"
	"testing"

	"jstep/internal/testkit"
	"jstep/internal/vm"
)

func position(p *vm.ThreadPool) vm.Position {
	pos, _ := p.Position()
	return pos
}

func TestDivideByZeroIsOneUncaughtException(t *testing.T) {
	res, con := testkit.MustCompile(t, `int a = 1;
int b = 0;
println(a / b);
println("after");
`)
	var got []*vm.Uncaught
	exits := 0
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnUncaught: func(u *vm.Uncaught) { got = append(got, u) },
		OnExit:     func() { exits++ },
	}})
	testkit.RunToEnd(t, p, 10000)

	if len(got) != 1 {
		t.Fatalf("got %d uncaught exceptions, want 1", len(got))
	}
	u := got[0]
	if u.Class != "ArithmeticException" || u.Message != "/ by zero" {
		t.Fatalf("got %s: %s, want ArithmeticException: / by zero", u.Class, u.Message)
	}
	if u.Fault {
		t.Fatalf("division by zero reported as an interpreter fault")
	}
	start, _ := res.Files.Resolve(u.Span)
	if start.Line != 3 {
		t.Fatalf("exception origin on line %d, want 3", start.Line)
	}
	if out := con.String(); out != "" {
		t.Fatalf("got output %q, want none", out)
	}
	if p.State() != vm.PoolStopped || exits != 1 {
		t.Fatalf("pool state %v with %d exits, want stopped once", p.State(), exits)
	}
	if want := `Exception in thread "main" ArithmeticException: / by zero`; !strings.HasPrefix(u.Error(), want) {
		t.Fatalf("got %q, want prefix %q", u.Error(), want)
	}
}

func TestCaughtExceptionDoesNotStopThread(t *testing.T) {
	out := testkit.Run(t, `int[] a = new int[2];
try {
    a[5] = 1;
} catch (ArithmeticException e) {
    println("wrong handler");
} catch (ArrayIndexOutOfBoundsException e) {
    println("caught " + e.getMessage());
}
println("done");
`)
	want := "caught Index 5 out of bounds for length 2\ndone\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestUncaughtInOneThreadLeavesOthersRunning(t *testing.T) {
	res, con := testkit.MustCompile(t, `class Bad extends Thread {
    public void run() {
        Object o = null;
        println(o.toString());
    }
}
Bad b = new Bad();
b.start();
b.join();
println("main done");
`)
	var got []*vm.Uncaught
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnUncaught: func(u *vm.Uncaught) { got = append(got, u) },
	}})
	testkit.RunToEnd(t, p, 10000)
	if len(got) != 1 || got[0].Class != "NullPointerException" {
		t.Fatalf("got %v, want one NullPointerException", got)
	}
	if got[0].Thread == "main" {
		t.Fatalf("exception attributed to the main thread")
	}
	if out := con.String(); out != "main done\n" {
		t.Fatalf("got %q, want %q", out, "main done\n")
	}
}

func TestBreakpointInLoopPausesEveryIteration(t *testing.T) {
	res, con := testkit.MustCompile(t, `int sum = 0;
for (int i = 0; i < 5; i++) {
    sum += i;
}
println(sum);
`)
	pauses := 0
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnPause: func(ev vm.PauseEvent) {
			if ev.Reason != vm.PauseBreakpoint {
				t.Errorf("got pause reason %v, want breakpoint", ev.Reason)
			}
			pauses++
		},
	}})
	if _, err := p.SetBreakpoint(testkit.Main, 3); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	for i := 0; i < 100 && p.State() != vm.PoolStopped; i++ {
		p.RunSteps(1000, vm.ModeSingle)
		if p.State() == vm.PoolPaused {
			start, _ := res.Files.Resolve(position(p).Span)
			if start.Line != 3 {
				t.Fatalf("paused on line %d, want 3", start.Line)
			}
			p.Resume()
		}
	}
	if pauses != 5 {
		t.Fatalf("got %d pauses, want 5", pauses)
	}
	if out := con.String(); out != "10\n" {
		t.Fatalf("got %q, want %q", out, "10\n")
	}
}

func TestMultiStepModeHonorsBreakpoints(t *testing.T) {
	res, con := testkit.MustCompile(t, `int sum = 0;
for (int i = 0; i < 5; i++) {
    sum += 2 * i + 1;
}
println(sum);
`)
	pauses := 0
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnPause: func(vm.PauseEvent) { pauses++ },
	}})
	if _, err := p.SetBreakpoint(testkit.Main, 3); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	for i := 0; i < 100 && p.State() != vm.PoolStopped; i++ {
		p.RunSteps(1000, vm.ModeMulti)
		if p.State() == vm.PoolPaused {
			start, _ := res.Files.Resolve(position(p).Span)
			if start.Line != 3 {
				t.Fatalf("paused on line %d, want 3", start.Line)
			}
			p.Resume()
		}
	}
	if pauses != 5 {
		t.Fatalf("got %d pauses, want 5", pauses)
	}
	if out := con.String(); out != "25\n" {
		t.Fatalf("got %q, want %q", out, "25\n")
	}
}

func TestStepOutReturnsToCaller(t *testing.T) {
	res, con := testkit.MustCompile(t, `class Util {
    static int inc(int x) {
        int y = x + 1;
        return y;
    }
}
int a = Util.inc(1);
println(a);
`)
	p := testkit.Launch(t, res, vm.Options{})
	if _, err := p.SetBreakpoint(testkit.Main, 3); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	var lines []int
	p.RunSteps(1000, vm.ModeSingle)
	if p.State() != vm.PoolPaused || position(p).Depth != 2 {
		t.Fatalf("got state %v depth %d, want paused in the callee", p.State(), position(p).Depth)
	}
	start, _ := res.Files.Resolve(position(p).Span)
	lines = append(lines, int(start.Line))
	if err := p.StepOut(); err != nil {
		t.Fatalf("StepOut: %v", err)
	}
	p.RunSteps(1000, vm.ModeSingle)
	if p.State() != vm.PoolPaused || position(p).Depth != 1 {
		t.Fatalf("after step out: state %v depth %d, want paused at depth 1", p.State(), position(p).Depth)
	}
	start, _ = res.Files.Resolve(position(p).Span)
	lines = append(lines, int(start.Line))
	if lines[0] != 3 || lines[1] != 8 {
		t.Fatalf("got lines %v, want [3 8]", lines)
	}
	if out := con.String(); out != "" {
		t.Fatalf("got %q before println, want nothing", out)
	}
	p.Resume()
	testkit.RunToEnd(t, p, 1000)
	if out := con.String(); out != "2\n" {
		t.Fatalf("got %q, want %q", out, "2\n")
	}
}

func TestBreakpointOnEmptyLine(t *testing.T) {
	res, _ := testkit.MustCompile(t, "int x = 1;\n\nprintln(x);\n")
	p := testkit.Launch(t, res, vm.Options{})
	if _, err := p.SetBreakpoint(testkit.Main, 2); err == nil {
		t.Fatalf("breakpoint on an empty line accepted")
	}
	if _, err := p.SetBreakpoint(testkit.Main, 3); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	if !p.ClearBreakpoint(testkit.Main, 3) {
		t.Fatalf("ClearBreakpoint reported no breakpoint")
	}
	if n := len(p.Breakpoints()); n != 0 {
		t.Fatalf("got %d breakpoints after clear, want 0", n)
	}
}

func TestStepOverSkipsCallee(t *testing.T) {
	res, _ := testkit.MustCompile(t, `class Util {
    static int twice(int x) {
        int y = x * 2;
        return y;
    }
}
int a = 1;
int b = Util.twice(a);
int c = b + 1;
println(c);
`)
	p := testkit.Launch(t, res, vm.Options{})
	if _, err := p.SetBreakpoint(testkit.Main, 8); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	p.RunSteps(1000, vm.ModeSingle)
	if p.State() != vm.PoolPaused {
		t.Fatalf("got state %v, want paused", p.State())
	}
	if err := p.StepOver(); err != nil {
		t.Fatalf("StepOver: %v", err)
	}
	p.RunSteps(1000, vm.ModeSingle)
	start, _ := res.Files.Resolve(position(p).Span)
	if p.State() != vm.PoolPaused || start.Line != 9 {
		t.Fatalf("after step over: state %v line %d, want paused on 9", p.State(), start.Line)
	}

	p.ClearBreakpoint(testkit.Main, 8)
	res2, _ := testkit.MustCompile(t, `class Util {
    static int twice(int x) {
        int y = x * 2;
        return y;
    }
}
int a = 1;
int b = Util.twice(a);
println(b);
`)
	q := testkit.Launch(t, res2, vm.Options{})
	if _, err := q.SetBreakpoint(testkit.Main, 8); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	q.RunSteps(1000, vm.ModeSingle)
	if err := q.StepInto(); err != nil {
		t.Fatalf("StepInto: %v", err)
	}
	q.RunSteps(1000, vm.ModeSingle)
	start, _ = res2.Files.Resolve(position(q).Span)
	if q.State() != vm.PoolPaused || start.Line != 3 || position(q).Depth != 2 {
		t.Fatalf("after step into: state %v line %d depth %d, want paused on 3 at depth 2", q.State(), start.Line, position(q).Depth)
	}
}

func TestInputBridgePausesAndResumes(t *testing.T) {
	res, con := testkit.MustCompile(t, `int n = Input.readInt("number? ");
println(n * 2);
`)
	var waits []*vm.Suspension
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnInput: func(s *vm.Suspension) { waits = append(waits, s) },
	}})
	testkit.RunToEnd(t, p, 1000)
	if p.State() != vm.PoolWaiting {
		t.Fatalf("got state %v, want waiting", p.State())
	}
	if len(waits) != 1 || waits[0].Prompt != "number? " {
		t.Fatalf("got %d input requests, want one with the prompt", len(waits))
	}
	if st := waits[0].Thread().State(); st != vm.ThreadWaitingForInput {
		t.Fatalf("got thread state %v, want waiting for input", st)
	}
	if !waits[0].Resume(vm.Str(" 21 "), nil) {
		t.Fatalf("first resume rejected")
	}
	if waits[0].Resume(vm.Str("5"), nil) {
		t.Fatalf("second resume accepted")
	}
	testkit.RunToEnd(t, p, 1000)
	if p.State() != vm.PoolStopped {
		t.Fatalf("got state %v, want stopped", p.State())
	}
	if out := con.String(); out != "42\n" {
		t.Fatalf("got %q, want %q", out, "42\n")
	}
}

func TestInputBridgeRethrowsBadNumber(t *testing.T) {
	res, _ := testkit.MustCompile(t, "int n = Input.readInt();\nprintln(n);\n")
	var s *vm.Suspension
	var got []*vm.Uncaught
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnInput:    func(x *vm.Suspension) { s = x },
		OnUncaught: func(u *vm.Uncaught) { got = append(got, u) },
	}})
	testkit.RunToEnd(t, p, 1000)
	if s == nil {
		t.Fatalf("no input request")
	}
	s.Resume(vm.Str("abc"), nil)
	testkit.RunToEnd(t, p, 1000)
	if len(got) != 1 || got[0].Class != "NumberFormatException" || got[0].Message != `For input string: "abc"` {
		t.Fatalf("got %v, want NumberFormatException for \"abc\"", got)
	}
}

func TestResumeAfterStopIsDiscarded(t *testing.T) {
	res, _ := testkit.MustCompile(t, "String s = Input.readLine();\nprintln(s);\n")
	var s *vm.Suspension
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnInput: func(x *vm.Suspension) { s = x },
	}})
	testkit.RunToEnd(t, p, 1000)
	p.Stop()
	if s == nil || s.Resume(vm.Str("late"), nil) {
		t.Fatalf("resume after stop was accepted")
	}
}

func TestOtherThreadsRunWhileOneWaits(t *testing.T) {
	res, con := testkit.MustCompile(t, `class Ticker extends Thread {
    public void run() {
        for (int i = 0; i < 3; i++) {
            println("tick");
        }
    }
}
Ticker t = new Ticker();
t.start();
String s = Input.readLine();
t.join();
println(s);
`)
	var s *vm.Suspension
	p := testkit.Launch(t, res, vm.Options{Hooks: vm.Hooks{
		OnInput: func(x *vm.Suspension) { s = x },
	}})
	testkit.RunToEnd(t, p, 10000)
	if p.State() != vm.PoolWaiting {
		t.Fatalf("got state %v, want waiting", p.State())
	}
	if out := con.String(); out != "tick\ntick\ntick\n" {
		t.Fatalf("got %q before input, want three ticks", out)
	}
	s.Resume(vm.Str("done"), nil)
	testkit.RunToEnd(t, p, 10000)
	if out := con.String(); out != "tick\ntick\ntick\ndone\n" {
		t.Fatalf("got %q, want ticks then done", out)
	}
}

func TestVirtualDispatchAndStringConcat(t *testing.T) {
	out := testkit.Run(t, `abstract class Shape {
    abstract double area();
    public String toString() { return "Shape(" + area() + ")"; }
}
class Square extends Shape {
    private double side;
    Square(double side) { this.side = side; }
    double area() { return side * side; }
}
Shape s = new Square(3);
println(s);
println("n=" + 1 + 2);
`)
	if want := "Shape(9.0)\nn=12\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestStackOverflowIsCatchable(t *testing.T) {
	out := testkit.Run(t, `class R {
    static int down(int n) { return down(n + 1); }
}
try {
    R.down(0);
} catch (StackOverflowError e) {
    println("overflow");
}
`)
	if out != "overflow\n" {
		t.Fatalf("got %q, want %q", out, "overflow\n")
	}
}
