package main

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"jstep/internal/project"
)

func pacingCmd() *cobra.Command {
	c := &cobra.Command{Use: "run"}
	f := c.Flags()
	f.Float64("speed", 0, "")
	f.Duration("tick", 0, "")
	f.Float64("budget", 0, "")
	f.Float64("single-step-below", 0, "")
	f.Int("slice", 0, "")
	return c
}

func TestPacingFlagsOverrideManifest(t *testing.T) {
	cfg := project.Defaults()
	cfg.Interpreter.Speed = 5
	cmd := pacingCmd()
	if err := cmd.Flags().Set("budget", "0.5"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("tick", "40ms"); err != nil {
		t.Fatal(err)
	}
	p := readPacing(cmd, cfg)
	if p.speed != 5 || p.budget != 0.5 || p.tick != 40*time.Millisecond || p.slice != 64 {
		t.Fatalf("got %+v", p)
	}
}

func TestMatchesAny(t *testing.T) {
	if !matchesAny("Main.<script>", nil) {
		t.Fatalf("no filter must match everything")
	}
	if !matchesAny("Box.get", []string{"Main", "Box."}) || matchesAny("Box.get", []string{"Main"}) {
		t.Fatalf("substring filter mismatch")
	}
}

func TestWriterConsoleSerializesWrites(t *testing.T) {
	var sb strings.Builder
	c := &writerConsole{w: &sb}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Write("ab")
		}()
	}
	wg.Wait()
	if got := sb.String(); got != strings.Repeat("ab", 8) {
		t.Fatalf("got %q", got)
	}
}
