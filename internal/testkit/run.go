// Package testkit holds helpers shared by package tests: compiling source
// snippets, launching them and checking AST invariants.
package testkit

import (
	"context"
	"strings"
	"sync"
	"testing"

	"jstep/internal/driver"
	"jstep/internal/vm"
)

// Console collects program output.
type Console struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *Console) Write(s string) {
	c.mu.Lock()
	c.buf.WriteString(s)
	c.mu.Unlock()
}

func (c *Console) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Source is one named unit text.
type Source struct {
	Path string
	Text string
}

// Main is the conventional single-unit path.
const Main = "Main.jst"

// Compile compiles srcs in a fresh workspace. It does not fail on
// diagnostics; use MustCompile for programs expected to be clean.
func Compile(t testing.TB, srcs ...Source) (*driver.Result, *Console) {
	t.Helper()
	con := &Console{}
	ws := driver.NewWorkspace(driver.Options{Console: con})
	for _, s := range srcs {
		ws.Set(s.Path, []byte(s.Text))
	}
	res, err := ws.Compile(context.Background())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res, con
}

// MustCompile compiles a single Main.jst and fails on any error diagnostic.
func MustCompile(t testing.TB, text string) (*driver.Result, *Console) {
	t.Helper()
	res, con := Compile(t, Source{Path: Main, Text: text})
	FailOnErrors(t, res)
	return res, con
}

func FailOnErrors(t testing.TB, res *driver.Result) {
	t.Helper()
	for _, d := range res.Diagnostics() {
		if d.Severity.Blocking() {
			start, _ := res.Files.Resolve(d.Primary)
			t.Fatalf("unexpected %s at %d:%d: %s", d.Code.ID(), start.Line, start.Col, d.Message)
		}
	}
}

// Launch starts Main.jst of res.
func Launch(t testing.TB, res *driver.Result, opts vm.Options) *vm.ThreadPool {
	t.Helper()
	p, err := res.Launch(Main, opts)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	return p
}

// RunToEnd drives p until it leaves Running and Waiting, polling between
// batches. It fails after limit steps.
func RunToEnd(t testing.TB, p *vm.ThreadPool, limit int) {
	t.Helper()
	total := 0
	for total < limit {
		p.Poll()
		if p.State() != vm.PoolRunning {
			return
		}
		total += p.RunSteps(256, vm.ModeSingle)
	}
	t.Fatalf("program did not finish within %d steps", limit)
}

// Run compiles text, launches it and runs it to the end. It returns the
// console output.
func Run(t testing.TB, text string) string {
	t.Helper()
	res, con := MustCompile(t, text)
	p := Launch(t, res, vm.Options{})
	RunToEnd(t, p, 1_000_000)
	return con.String()
}
