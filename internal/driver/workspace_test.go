package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jstep/internal/driver"
	"jstep/internal/testkit"
	"jstep/internal/vm"
)

func compile(t *testing.T, ws *driver.Workspace) *driver.Result {
	t.Helper()
	res, err := ws.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func parseNote(res *driver.Result) string {
	for _, p := range res.Timings.Phases {
		if p.Name == "parse" {
			return p.Note
		}
	}
	return ""
}

func TestEmptyWorkspace(t *testing.T) {
	ws := driver.NewWorkspace(driver.Options{Console: &testkit.Console{}})
	if _, err := ws.Compile(context.Background()); !errors.Is(err, driver.ErrEmptyWorkspace) {
		t.Fatalf("got %v, want ErrEmptyWorkspace", err)
	}
}

func TestSetReportsChanges(t *testing.T) {
	ws := driver.NewWorkspace(driver.Options{Console: &testkit.Console{}})
	if !ws.Set("A.jst", []byte("println(1);\n")) {
		t.Fatalf("first Set reported no change")
	}
	if ws.Set("A.jst", []byte("println(1);\n")) {
		t.Fatalf("Set with the same text reported a change")
	}
	if !ws.Set("A.jst", []byte("println(2);\n")) {
		t.Fatalf("Set with new text reported no change")
	}
	if !ws.Remove("A.jst") || ws.Remove("A.jst") {
		t.Fatalf("Remove did not report the unit exactly once")
	}
}

func TestRecompileParsesOnlyChangedUnits(t *testing.T) {
	ws := driver.NewWorkspace(driver.Options{Console: &testkit.Console{}})
	ws.Set("A.jst", []byte("class Box { int v = 1; }\n"))
	ws.Set(testkit.Main, []byte("Box b = new Box();\nprintln(b.v);\n"))
	if got := parseNote(compile(t, ws)); got != "2 of 2 units" {
		t.Fatalf("got %q, want %q", got, "2 of 2 units")
	}

	ws.Set("A.jst", []byte("class Box { int v = 2; }\n"))
	res := compile(t, ws)
	if got := parseNote(res); got != "1 of 2 units" {
		t.Fatalf("got %q, want %q", got, "1 of 2 units")
	}
	if !res.Startable(testkit.Main) {
		t.Fatalf("main unit is not startable: %v", res.Diagnostics())
	}
}

func TestEventsCoverEveryUnit(t *testing.T) {
	events := make(chan driver.Event, 64)
	ws := driver.NewWorkspace(driver.Options{Console: &testkit.Console{}, Events: events})
	ws.Set("Good.jst", []byte("println(1);\n"))
	ws.Set("Bad.jst", []byte("int x = \"s\";\n"))
	compile(t, ws)
	close(events)

	final := map[string]driver.Status{}
	queued := map[string]bool{}
	for ev := range events {
		if ev.Path == "" {
			continue
		}
		if ev.Status == driver.StatusQueued {
			queued[ev.Path] = true
		}
		final[ev.Path] = ev.Status
	}
	if !queued["Good.jst"] || !queued["Bad.jst"] {
		t.Fatalf("got queued %v, want both units", queued)
	}
	if final["Good.jst"] != driver.StatusDone || final["Bad.jst"] != driver.StatusError {
		t.Fatalf("got final statuses %v", final)
	}
}

func TestLaunchRejectsUnknownAndBrokenUnits(t *testing.T) {
	res, _ := testkit.Compile(t, testkit.Source{Path: testkit.Main, Text: "int x = ;\n"})
	if _, err := res.Launch("Nope.jst", vm.Options{}); !errors.Is(err, driver.ErrUnknownUnit) {
		t.Fatalf("got %v, want ErrUnknownUnit", err)
	}
	if _, err := res.Launch(testkit.Main, vm.Options{}); !errors.Is(err, driver.ErrNotStartable) {
		t.Fatalf("got %v, want ErrNotStartable", err)
	}
}

func TestProgramCache(t *testing.T) {
	cache, err := driver.NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	build := func(text string) *driver.Result {
		ws := driver.NewWorkspace(driver.Options{Console: &testkit.Console{}, Cache: cache})
		ws.Set(testkit.Main, []byte(text))
		return compile(t, ws)
	}

	first := build("println(1 + 2);\n")
	if first.CacheHit {
		t.Fatalf("first compile hit an empty cache")
	}
	second := build("println(1 + 2);\n")
	if !second.CacheHit || second.Digest != first.Digest {
		t.Fatalf("second compile: hit=%v digest equal=%v", second.CacheHit, second.Digest == first.Digest)
	}
	progs, ok, err := cache.Programs(first.Digest)
	if err != nil || !ok || len(progs) != len(first.Output.Programs()) {
		t.Fatalf("got %d programs ok=%v err=%v", len(progs), ok, err)
	}

	broken := build("println(;\n")
	if _, ok, _ := cache.Programs(broken.Digest); ok {
		t.Fatalf("compile with errors was cached")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Programs(first.Digest); ok {
		t.Fatalf("entry survived DropAll")
	}
}

func TestTokenizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "T.jst")
	if err := os.WriteFile(path, []byte("int x = 1;"), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := driver.Tokenize(path, 10)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("got %d diagnostics", res.Bag.Len())
	}
	// int x = 1 ; EOF
	if len(res.Tokens) != 6 {
		t.Fatalf("got %d tokens, want 6", len(res.Tokens))
	}
}
