package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"jstep/internal/diag"
	"jstep/internal/diagfmt"
	"jstep/internal/driver"
	"jstep/internal/loadctl"
	"jstep/internal/project"
	"jstep/internal/rtlib"
	"jstep/internal/ui"
	"jstep/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [file.jst|directory]...",
	Short: "Run the main unit at a controlled speed",
	Long: `Compile the sources and run the main unit (the first file, or [run].main of
jstep.toml). The interpreter is paced by the host tick: --speed limits steps
per second, --budget limits the share of each tick spent interpreting.`,
	RunE: runProgram,
}

func init() {
	f := runCmd.Flags()
	f.Float64("speed", 0, "steps per second (0 = as fast as the budget allows)")
	f.Duration("tick", loadctl.DefaultInterval, "host tick interval")
	f.Float64("budget", loadctl.DefaultBudget, "share of a tick spent interpreting, in (0, 1]")
	f.Float64("single-step-below", loadctl.DefaultSingleStepBelow, "speeds below this run one single step per interval")
	f.Int("slice", 0, "steps a thread runs before the next one is scheduled")
	f.Bool("tui", false, "run in a full-screen view with pause, stepping and speed keys")
	f.StringSlice("break", nil, "breakpoints as file:line (requires --tui)")
}

// pacing merges [interpreter] of jstep.toml with the flags that were set.
type pacing struct {
	speed, budget, singleBelow float64
	tick                       time.Duration
	slice                      int
}

func readPacing(cmd *cobra.Command, cfg project.Config) pacing {
	in := cfg.Interpreter
	p := pacing{speed: in.Speed, budget: in.Budget, singleBelow: in.SingleStepBelow, tick: cfg.Tick(), slice: in.Slice}
	f := cmd.Flags()
	if f.Changed("speed") {
		p.speed, _ = f.GetFloat64("speed")
	}
	if f.Changed("tick") {
		p.tick, _ = f.GetDuration("tick")
	}
	if f.Changed("budget") {
		p.budget, _ = f.GetFloat64("budget")
	}
	if f.Changed("single-step-below") {
		p.singleBelow, _ = f.GetFloat64("single-step-below")
	}
	if f.Changed("slice") {
		p.slice, _ = f.GetInt("slice")
	}
	return p
}

func runProgram(cmd *cobra.Command, args []string) error {
	tui, _ := cmd.Flags().GetBool("tui")
	breakArgs, _ := cmd.Flags().GetStringSlice("break")
	if len(breakArgs) > 0 && !tui {
		return errors.New("--break needs --tui; use `jstep debug` for a line debugger")
	}
	var breaks []vm.Breakpoint
	for _, b := range breakArgs {
		bp, err := vm.ParseBreakpoint(b)
		if err != nil {
			return err
		}
		breaks = append(breaks, bp)
	}

	cfg, paths, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	var console rtlib.Console
	var screen *ui.Console
	if tui {
		screen = &ui.Console{}
		console = screen
	} else {
		console = &writerConsole{w: cmd.OutOrStdout()}
	}
	res, err := compileProject(cmd, cfg, paths, console)
	if err != nil {
		return err
	}
	mainPath := paths[0]
	if err := checkStartable(cmd, res, mainPath); err != nil {
		return err
	}

	p := readPacing(cmd, cfg)
	if tui {
		return ui.RunProgram(res, mainPath, screen, ui.RunOptions{
			Speed:           p.speed,
			Interval:        p.tick,
			Budget:          p.budget,
			SingleStepBelow: p.singleBelow,
			Slice:           p.slice,
			Breakpoints:     breaks,
		})
	}
	return runPlain(cmd, res, mainPath, console, p)
}

func runPlain(cmd *cobra.Command, res *driver.Result, mainPath string, console rtlib.Console, p pacing) error {
	inputs := make(chan *vm.Suspension, 16)
	uncaught := false
	pool, err := res.Launch(mainPath, vm.Options{
		Clock:  loadctl.RealClock{},
		Slice:  p.slice,
		Tracer: tracer,
		Hooks: vm.Hooks{
			OnUncaught: func(u *vm.Uncaught) {
				uncaught = true
				diagfmt.Uncaught(cmd.ErrOrStderr(), u, res.Files, useColor(cmd, os.Stderr))
				dumpTrace(cmd.ErrOrStderr())
			},
			OnInput: func(s *vm.Suspension) { inputs <- s },
		},
	})
	if err != nil {
		return err
	}
	go answerInputs(console, os.Stdin, inputs)

	ctl := &loadctl.Controller{
		Pool:            pool,
		Speed:           p.speed,
		Interval:        p.tick,
		Budget:          p.budget,
		SingleStepBelow: p.singleBelow,
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err = ctl.Run(ctx)
	close(inputs)
	if errors.Is(err, context.Canceled) {
		return exitCode(130)
	}
	if uncaught {
		return exitCode(1)
	}
	return nil
}

// answerInputs echoes each prompt and resumes the waiting thread with the
// next line of in. End of input resumes with null.
func answerInputs(console rtlib.Console, in io.Reader, inputs <-chan *vm.Suspension) {
	r := bufio.NewReader(in)
	for s := range inputs {
		console.Write(s.Prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			s.Resume(vm.Null(), nil)
			continue
		}
		s.Resume(vm.Str(strings.TrimRight(line, "\r\n")), nil)
	}
}

// checkStartable prints why the main unit cannot start. Warnings of a
// startable unit go to stderr unless --quiet.
func checkStartable(cmd *cobra.Command, res *driver.Result, mainPath string) error {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	opts := diagfmt.PrettyOpts{Color: useColor(cmd, os.Stderr), Context: 1}
	if res.Startable(mainPath) {
		if !quiet && len(res.Diagnostics()) > 0 {
			diagfmt.Pretty(cmd.ErrOrStderr(), res.Diagnostics(), res.Files, opts)
		}
		return nil
	}
	var errs []diag.Diagnostic
	for _, d := range res.Diagnostics() {
		if d.Severity.Blocking() {
			errs = append(errs, d)
		}
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), errs, res.Files, opts)
	if u := res.Unit(mainPath); u != nil && !u.HasErrors() && u.DependsOnModulesWithErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: uses units with errors\n", mainPath)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", mainPath, errNotStartable)
	return exitCode(1)
}

// writerConsole serializes program output and prompts onto w.
type writerConsole struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *writerConsole) Write(s string) {
	c.mu.Lock()
	_, _ = io.WriteString(c.w, s)
	c.mu.Unlock()
}
