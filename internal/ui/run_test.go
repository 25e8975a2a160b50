package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jstep/internal/driver"
	"jstep/internal/loadctl"
	"jstep/internal/testkit"
	"jstep/internal/vm"
)

func runModelFor(t *testing.T, src string, opts RunOptions) (*runModel, *Console) {
	t.Helper()
	con := &Console{}
	ws := driver.NewWorkspace(driver.Options{Console: con})
	ws.Set(testkit.Main, []byte(src))
	res, err := ws.Compile(context.Background())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	testkit.FailOnErrors(t, res)
	if opts.Clock == nil {
		opts.Clock = loadctl.NewVirtualClock()
	}
	m, err := newRunModel(res, testkit.Main, con, opts)
	if err != nil {
		t.Fatalf("newRunModel: %v", err)
	}
	return m, con
}

func TestRunModelAnswersInput(t *testing.T) {
	m, con := runModelFor(t, `String name = Input.readLine("name? ");
println("hi " + name);
`, RunOptions{})

	m.Update(tickMsg{})
	if !m.input.Focused() || m.input.Prompt != "name? " {
		t.Fatalf("input not requested: focused=%v prompt=%q", m.input.Focused(), m.input.Prompt)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ann")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tickMsg{})

	if got, want := con.String(), "name? ann\nhi ann\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if m.pool.State() != vm.PoolStopped {
		t.Fatalf("got state %v, want stopped", m.pool.State())
	}
	if !strings.Contains(m.View(), "finished") {
		t.Fatalf("view does not report the end:\n%s", m.View())
	}
}

func TestRunModelPausesAtBreakpoint(t *testing.T) {
	m, con := runModelFor(t, `println(1);
println(2);
println(3);
`, RunOptions{Breakpoints: []vm.Breakpoint{{Path: testkit.Main, Line: 2}}})

	m.Update(tickMsg{})
	if m.pool.State() != vm.PoolPaused {
		t.Fatalf("got state %v, want paused", m.pool.State())
	}
	if con.String() != "1\n" {
		t.Fatalf("got %q before the breakpoint", con.String())
	}
	if !strings.Contains(m.status, "breakpoint at Main.jst:2") {
		t.Fatalf("got status %q", m.status)
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tickMsg{})
	if con.String() != "1\n2\n3\n" {
		t.Fatalf("got %q after resume", con.String())
	}
}

func TestRunModelQuitStopsPool(t *testing.T) {
	m, _ := runModelFor(t, "int n = 0;\nwhile (true) {\n    n++;\n}\n", RunOptions{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q did not quit")
	}
	if m.pool.State() != vm.PoolStopped {
		t.Fatalf("got state %v, want stopped", m.pool.State())
	}
}

func TestNextSpeed(t *testing.T) {
	tests := []struct {
		cur  float64
		dir  int
		want float64
	}{
		{10, 1, 20},
		{10, -1, 5},
		{1, -1, 1},
		{3, 1, 10},
		{0, 1, 0},
		{0, -1, 100_000},
	}
	for _, tt := range tests {
		if got := nextSpeed(tt.cur, tt.dir); got != tt.want {
			t.Errorf("nextSpeed(%v, %d) = %v, want %v", tt.cur, tt.dir, got, tt.want)
		}
	}
}
