// Package debugger is the line-oriented debugger behind `jstep debug`:
// breakpoints, stepping and expression evaluation over a paused pool.
package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"jstep/internal/diagfmt"
	"jstep/internal/driver"
	"jstep/internal/loadctl"
	"jstep/internal/vm"
)

var (
	ErrNotRunning = errors.New("the program is not running")
	ErrUsage      = errors.New("usage")
)

const runBatch = 1024

// Options configures a Session.
type Options struct {
	// ReadInput answers blocking input calls of the program; ok=false means
	// end of input.
	ReadInput func(prompt string) (line string, ok bool)
	// Idle is called while every thread sleeps. Defaults to a short sleep.
	Idle  func()
	Clock vm.Clock
	Color bool
}

// Session debugs one unit of a compiled workspace.
type Session struct {
	res  *driver.Result
	path string
	out  io.Writer
	opts Options

	pool   *vm.ThreadPool
	breaks []vm.Breakpoint
	inputs []*vm.Suspension
	last   vm.PauseReason
}

// New launches path paused before its first statement.
func New(res *driver.Result, path string, out io.Writer, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = loadctl.RealClock{}
	}
	if opts.Idle == nil {
		opts.Idle = func() { time.Sleep(time.Millisecond) }
	}
	if opts.ReadInput == nil {
		opts.ReadInput = func(string) (string, bool) { return "", false }
	}
	s := &Session{res: res, path: path, out: out, opts: opts}
	if err := s.launch(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) launch() error {
	s.inputs = nil
	p, err := s.res.Launch(s.path, vm.Options{
		Clock: s.opts.Clock,
		Hooks: vm.Hooks{
			OnPause:    func(ev vm.PauseEvent) { s.last = ev.Reason },
			OnUncaught: func(u *vm.Uncaught) { diagfmt.Uncaught(s.out, u, s.res.Files, s.opts.Color) },
			OnInput:    func(in *vm.Suspension) { s.inputs = append(s.inputs, in) },
		},
	})
	if err != nil {
		return err
	}
	for _, bp := range s.breaks {
		if _, err := p.SetBreakpoint(bp.Path, bp.Line); err != nil {
			fmt.Fprintf(s.out, "breakpoint %s: %v\n", bp, err)
		}
	}
	s.pool = p
	p.Pause()
	return nil
}

// Pool exposes the debugged pool.
func (s *Session) Pool() *vm.ThreadPool { return s.pool }

// Exec runs one command line. quit reports that the user asked to leave.
func (s *Session) Exec(ctx context.Context, line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	cmd, ok := lookup(name)
	if !ok {
		if name == "" {
			return false, nil
		}
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	if cmd.name == "quit" {
		return true, nil
	}
	return false, cmd.run(ctx, s, arg)
}

// drive runs the pool until it pauses, stops or ctx is done.
func (s *Session) drive(ctx context.Context) error {
	p := s.pool
	for {
		if err := ctx.Err(); err != nil {
			p.Pause()
			return err
		}
		p.Poll()
		switch p.State() {
		case vm.PoolRunning:
			p.RunSteps(runBatch, vm.ModeSingle)
		case vm.PoolWaiting:
			if !s.answerInput() {
				s.opts.Idle()
			}
		default:
			s.report()
			return nil
		}
	}
}

func (s *Session) answerInput() bool {
	if len(s.inputs) == 0 {
		return false
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	line, ok := s.opts.ReadInput(in.Prompt)
	if !ok {
		in.Resume(vm.Null(), nil)
	} else {
		in.Resume(vm.Str(line), nil)
	}
	return true
}

func (s *Session) report() {
	switch s.pool.State() {
	case vm.PoolPaused:
		pos, ok := s.pool.Position()
		if !ok {
			return
		}
		fmt.Fprintf(s.out, "%s %s\n", s.last, s.where(pos))
	case vm.PoolStopped:
		fmt.Fprintln(s.out, "program finished")
	}
}

func (s *Session) where(pos vm.Position) string {
	start, _ := s.res.Files.Resolve(pos.Span)
	f := s.res.Files.Get(pos.Span.File)
	if f == nil {
		return pos.Prog.Name
	}
	return fmt.Sprintf("%s:%d [%s]  %s", f.Path, start.Line, pos.Thread.Name,
		strings.TrimSpace(f.GetLine(start.Line)))
}

func (s *Session) paused() error {
	if s.pool.State() != vm.PoolPaused {
		return ErrNotRunning
	}
	return nil
}

// parseLocation accepts "file:line" or a bare line of the debugged unit.
func (s *Session) parseLocation(arg string) (vm.Breakpoint, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n <= 0 {
			return vm.Breakpoint{}, fmt.Errorf("invalid line %d", n)
		}
		return vm.Breakpoint{Path: s.path, Line: n}, nil
	}
	return vm.ParseBreakpoint(arg)
}
