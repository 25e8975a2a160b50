package debugger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"jstep/internal/testkit"
	"jstep/internal/vm"
)

const loop = `int sum = 0;
for (int i = 0; i < 3; i++) {
    sum += i;
}
println(sum);
`

func session(t *testing.T, src string, opts Options) (*Session, *bytes.Buffer, *testkit.Console) {
	t.Helper()
	res, con := testkit.MustCompile(t, src)
	var out bytes.Buffer
	s, err := New(res, testkit.Main, &out, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, &out, con
}

func exec(t *testing.T, s *Session, line string) {
	t.Helper()
	if _, err := s.Exec(context.Background(), line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
}

func TestBreakPrintContinue(t *testing.T) {
	s, out, con := session(t, loop, Options{})
	exec(t, s, "b 3")
	exec(t, s, "c")
	if !strings.Contains(out.String(), "breakpoint Main.jst:3 [main]  sum += i;") {
		t.Fatalf("got:\n%s", out.String())
	}

	out.Reset()
	exec(t, s, "p i * 10")
	if got := out.String(); got != "0\n" {
		t.Fatalf("got %q, want %q", got, "0\n")
	}
	exec(t, s, "c")
	out.Reset()
	exec(t, s, "p sum + i")
	if got := out.String(); got != "1\n" {
		t.Fatalf("got %q, want %q", got, "1\n")
	}

	exec(t, s, "clear 3")
	exec(t, s, "c")
	if !strings.HasSuffix(out.String(), "program finished\n") {
		t.Fatalf("got:\n%s", out.String())
	}
	if con.String() != "3\n" {
		t.Fatalf("got program output %q, want %q", con.String(), "3\n")
	}
	if _, err := s.Exec(context.Background(), "c"); err != ErrNotRunning {
		t.Fatalf("got %v, want ErrNotRunning", err)
	}
}

func TestStepAndLocals(t *testing.T) {
	s, out, _ := session(t, loop, Options{})
	exec(t, s, "n")
	exec(t, s, "n")
	out.Reset()
	exec(t, s, "locals")
	if !strings.Contains(out.String(), "int sum = 0") {
		t.Fatalf("got:\n%s", out.String())
	}
	out.Reset()
	exec(t, s, "where")
	if !strings.HasPrefix(out.String(), "#0 ") {
		t.Fatalf("got:\n%s", out.String())
	}
}

func TestInputIsReadThroughOptions(t *testing.T) {
	var prompts []string
	s, _, con := session(t, `String name = Input.readLine("name? ");
println("hi " + name);
`, Options{ReadInput: func(p string) (string, bool) {
		prompts = append(prompts, p)
		return "ann", true
	}})
	exec(t, s, "c")
	if len(prompts) != 1 || prompts[0] != "name? " {
		t.Fatalf("got prompts %q", prompts)
	}
	if con.String() != "hi ann\n" {
		t.Fatalf("got %q", con.String())
	}
}

func TestRestartKeepsBreakpoints(t *testing.T) {
	s, _, _ := session(t, loop, Options{})
	exec(t, s, "b Main.jst:5")
	exec(t, s, "c")
	exec(t, s, "restart")
	if n := len(s.Pool().Breakpoints()); n != 1 {
		t.Fatalf("got %d breakpoints after restart, want 1", n)
	}
	exec(t, s, "c")
	if s.Pool().State() != vm.PoolPaused {
		t.Fatalf("got state %v, want paused at the breakpoint", s.Pool().State())
	}
}

func TestUnknownCommandAndQuit(t *testing.T) {
	s, _, _ := session(t, loop, Options{})
	if _, err := s.Exec(context.Background(), "frobnicate"); err == nil {
		t.Fatalf("unknown command accepted")
	}
	quit, err := s.Exec(context.Background(), "q")
	if !quit || err != nil {
		t.Fatalf("got quit=%v err=%v", quit, err)
	}
}
