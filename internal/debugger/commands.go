package debugger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"jstep/internal/vm"
)

type command struct {
	name    string
	aliases []string
	args    string
	help    string
	run     func(ctx context.Context, s *Session, arg string) error
}

var commands []command

func init() {
	commands = []command{
		{"break", []string{"b"}, "[file:]line", "set a breakpoint", cmdBreak},
		{"clear", nil, "[file:]line", "remove a breakpoint", cmdClear},
		{"breakpoints", []string{"bl"}, "", "list breakpoints", cmdBreakpoints},
		{"continue", []string{"c"}, "", "run until a breakpoint or the end", cmdContinue},
		{"step", []string{"s"}, "", "step into the next statement", stepper((*vm.ThreadPool).StepInto)},
		{"next", []string{"n"}, "", "step over calls", stepper((*vm.ThreadPool).StepOver)},
		{"finish", []string{"out"}, "", "run until the current method returns", stepper((*vm.ThreadPool).StepOut)},
		{"print", []string{"p"}, "expr", "evaluate an expression in the paused frame", cmdPrint},
		{"locals", []string{"l"}, "", "show variables of the paused frame", cmdLocals},
		{"where", []string{"bt"}, "", "show the call stack", cmdWhere},
		{"threads", nil, "", "list threads", cmdThreads},
		{"restart", nil, "", "start the program again, keeping breakpoints", cmdRestart},
		{"help", []string{"h", "?"}, "", "list commands", cmdHelp},
		{"quit", []string{"q"}, "", "leave the debugger", nil},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name || slices.Contains(c.aliases, name) {
			return c, true
		}
	}
	return command{}, false
}

// Names lists command names for completion.
func Names() []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.name)
	}
	return out
}

func cmdBreak(_ context.Context, s *Session, arg string) error {
	bp, err := s.parseLocation(arg)
	if err != nil {
		return err
	}
	if _, err := s.pool.SetBreakpoint(bp.Path, bp.Line); err != nil {
		return err
	}
	if !slices.Contains(s.breaks, bp) {
		s.breaks = append(s.breaks, bp)
	}
	fmt.Fprintf(s.out, "breakpoint at %s\n", bp)
	return nil
}

func cmdClear(_ context.Context, s *Session, arg string) error {
	bp, err := s.parseLocation(arg)
	if err != nil {
		return err
	}
	s.breaks = slices.DeleteFunc(s.breaks, func(b vm.Breakpoint) bool { return b == bp })
	if !s.pool.ClearBreakpoint(bp.Path, bp.Line) {
		return fmt.Errorf("no breakpoint at %s", bp)
	}
	return nil
}

func cmdBreakpoints(_ context.Context, s *Session, _ string) error {
	list := s.pool.Breakpoints()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "no breakpoints")
	}
	for i, bp := range list {
		fmt.Fprintf(s.out, "%d  %s\n", i+1, bp)
	}
	return nil
}

func cmdContinue(ctx context.Context, s *Session, _ string) error {
	if err := s.paused(); err != nil {
		return err
	}
	s.pool.Resume()
	return s.drive(ctx)
}

func stepper(step func(*vm.ThreadPool) error) func(context.Context, *Session, string) error {
	return func(ctx context.Context, s *Session, _ string) error {
		if err := step(s.pool); err != nil {
			return ErrNotRunning
		}
		return s.drive(ctx)
	}
}

func cmdPrint(_ context.Context, s *Session, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: print expr", ErrUsage)
	}
	pos, ok := s.pool.Position()
	if !ok || pos.Prog == nil {
		return vm.ErrNoFrame
	}
	prog, bag := s.res.Output.CompileEval(pos.Prog, pos.PC, arg)
	if prog == nil {
		var msgs []string
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Message)
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	v, err := s.pool.Eval(prog, 0)
	if err != nil {
		return err
	}
	if prog.Returns {
		fmt.Fprintln(s.out, s.pool.Describe(v))
	}
	return nil
}

func cmdLocals(_ context.Context, s *Session, _ string) error {
	t := s.pool.Current()
	if t == nil {
		return vm.ErrNoFrame
	}
	locals := t.Locals(0)
	if len(locals) == 0 {
		fmt.Fprintln(s.out, "no locals")
	}
	tbl := s.pool.Types()
	for _, l := range locals {
		fmt.Fprintf(s.out, "%s %s = %s\n", tbl.String(l.Type), l.Name, s.pool.Describe(l.Value))
	}
	return nil
}

func cmdWhere(_ context.Context, s *Session, _ string) error {
	t := s.pool.Current()
	if t == nil {
		return vm.ErrNoFrame
	}
	for i, f := range t.Frames() {
		start, _ := s.res.Files.Resolve(f.Span)
		path := "?"
		if file := s.res.Files.Get(f.Span.File); file != nil {
			path = file.Path
		}
		fmt.Fprintf(s.out, "#%d %s (%s:%d)\n", i, f.Name, path, start.Line)
	}
	return nil
}

func cmdThreads(_ context.Context, s *Session, _ string) error {
	cur := s.pool.Current()
	for _, t := range s.pool.Threads() {
		mark := " "
		if t == cur {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %s\n", mark, t.Name, t.State())
	}
	return nil
}

func cmdRestart(_ context.Context, s *Session, _ string) error {
	s.pool.Stop()
	return s.launch()
}

func cmdHelp(_ context.Context, s *Session, _ string) error {
	for _, c := range commands {
		names := strings.Join(append([]string{c.name}, c.aliases...), ", ")
		fmt.Fprintf(s.out, "  %-22s %-12s %s\n", names, c.args, c.help)
	}
	return nil
}
