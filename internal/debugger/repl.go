package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"jstep/internal/driver"
)

const (
	prompt      = "(jdb) "
	historyFile = "debug_history"
)

// REPL runs the interactive debugger on the terminal until quit or EOF.
// Program input is read through the same line editor.
func REPL(ctx context.Context, res *driver.Result, path string, useColor bool) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, n := range Names() {
			if strings.HasPrefix(n, line) {
				out = append(out, n)
			}
		}
		return out
	})

	hist := historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(hist); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	errc := color.New(color.FgRed)
	if !useColor {
		errc.DisableColor()
	}
	s, err := New(res, path, os.Stdout, Options{
		Color: useColor,
		ReadInput: func(p string) (string, bool) {
			line, err := ln.Prompt(p)
			return line, err == nil
		},
	})
	if err != nil {
		return err
	}
	s.report()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			// Ctrl-C на приглашении
			continue
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		// Ctrl-C во время continue приостанавливает программу
		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		quit, err := s.Exec(runCtx, line)
		stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, errc.Sprint(err))
		}
		if errors.Is(err, context.Canceled) {
			s.report()
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "jstep")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, historyFile)
}
