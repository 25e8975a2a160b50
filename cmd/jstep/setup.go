package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"jstep/internal/driver"
	"jstep/internal/prof"
	"jstep/internal/project"
	"jstep/internal/rtlib"
	"jstep/internal/trace"
	"jstep/internal/ui"
)

var profiling *prof.Session

func startProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	cpu, _ := pf.GetString("cpu-profile")
	mem, _ := pf.GetString("mem-profile")
	rt, _ := pf.GetString("runtime-trace")
	s, err := prof.Start(cpu, mem, rt)
	if err != nil {
		return err
	}
	profiling = s
	return nil
}

func stopProfiling() error {
	return profiling.Stop()
}

// tracer lives for the whole command so that run can trace steps after
// the compile.
var tracer = trace.Nop

// startTracing builds the tracer from the trace flags.
func startTracing(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	output, _ := pf.GetString("trace")
	levelStr, _ := pf.GetString("trace-level")
	modeStr, _ := pf.GetString("trace-mode")

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	if level == trace.LevelOff {
		return nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	if output == "" {
		output = "-"
	}
	t, err := trace.New(trace.Config{Level: level, Mode: mode, OutputPath: output})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	tracer = t
	return nil
}

func stopTracing() error {
	return errors.Join(tracer.Flush(), tracer.Close())
}

// dumpTrace prints the ring buffer after a program died, when one is kept.
func dumpTrace(w io.Writer) {
	ring := trace.RingOf(tracer)
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "--- last trace events ---")
	_ = ring.Dump(w, trace.FormatText)
}

// loadProject resolves the sources to compile. Explicit arguments win over
// [run] of jstep.toml; the main unit always comes first.
func loadProject(cmd *cobra.Command, args []string) (project.Config, []string, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return project.Config{}, nil, err
	}
	if len(args) == 0 {
		if cfg.Path == "" {
			return cfg, nil, fmt.Errorf("no %s found; pass .jst files or run `jstep init`", project.ManifestName)
		}
		paths, err := cfg.Sources()
		return cfg, paths, err
	}
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return cfg, nil, err
		}
		if !st.IsDir() {
			if filepath.Ext(arg) != ".jst" {
				return cfg, nil, fmt.Errorf("%s: not a .jst file", arg)
			}
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.jst"))
		if err != nil {
			return cfg, nil, err
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	paths = slices.Compact(paths)
	if len(paths) == 0 {
		return cfg, nil, project.ErrNoSources
	}
	return cfg, paths, nil
}

func loadConfig(cmd *cobra.Command, args []string) (project.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		start := "."
		if len(args) > 0 {
			if st, err := os.Stat(args[0]); err == nil && st.IsDir() {
				start = args[0]
			} else {
				start = filepath.Dir(args[0])
			}
		}
		found, ok, err := project.FindManifest(start)
		if err != nil {
			return project.Config{}, err
		}
		if !ok {
			return project.Defaults(), nil
		}
		path = found
	}
	return project.Load(path)
}

func maxDiagnostics(cmd *cobra.Command, cfg project.Config) int {
	n, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if n > 0 {
		return n
	}
	return cfg.Diagnostics.Max
}

// compileProject compiles paths into a fresh workspace whose pools write
// program output to console.
func compileProject(cmd *cobra.Command, cfg project.Config, paths []string, console rtlib.Console) (*driver.Result, error) {
	pf := cmd.Root().PersistentFlags()
	jobs, _ := pf.GetInt("jobs")
	useCache, _ := pf.GetBool("cache")
	timings, _ := pf.GetBool("timings")

	opts := driver.Options{
		Console:        console,
		MaxDiagnostics: maxDiagnostics(cmd, cfg),
		Jobs:           jobs,
		Tracer:         tracer,
	}
	if useCache {
		c, err := driver.OpenDiskCache("jstep")
		if err != nil {
			return nil, fmt.Errorf("program cache: %w", err)
		}
		opts.Cache = c
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		res *driver.Result
		err error
	)
	if showProgress(cmd) {
		res, err = compileWithUI(ctx, opts, paths)
	} else {
		ws := driver.NewWorkspace(opts)
		if err := ws.Load(paths...); err != nil {
			return nil, err
		}
		res, err = ws.Compile(ctx)
	}
	if res != nil && timings {
		_ = res.Timings.Write(cmd.ErrOrStderr())
		if res.CacheHit {
			fmt.Fprintln(cmd.ErrOrStderr(), "program cache: hit")
		}
	}
	if err != nil && res == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return res, nil
}

type compileOutcome struct {
	res *driver.Result
	err error
}

func compileWithUI(ctx context.Context, opts driver.Options, paths []string) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Events = events
	ws := driver.NewWorkspace(opts)
	if err := ws.Load(paths...); err != nil {
		return nil, err
	}
	outcome := make(chan compileOutcome, 1)
	go func() {
		res, err := ws.Compile(ctx)
		close(events)
		outcome <- compileOutcome{res, err}
	}()
	uiErr := ui.RunCompileProgress("compiling", paths, events)
	// прогресс мог завершиться раньше компиляции (Ctrl-C)
	for range events {
	}
	out := <-outcome
	if uiErr != nil && out.err == nil {
		return out.res, uiErr
	}
	return out.res, out.err
}

func showProgress(cmd *cobra.Command) bool {
	pf := cmd.Root().PersistentFlags()
	mode, _ := pf.GetString("ui")
	quiet, _ := pf.GetBool("quiet")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return !quiet && isTerminal(os.Stdout)
}

var errNotStartable = errors.New("the main unit has errors")
