package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	if LevelPhase.Admits(ScopeStep) {
		t.Fatalf("phase level must drop step events")
	}
	if !LevelPhase.Admits(ScopePass) || !LevelDetail.Admits(ScopeStep) {
		t.Fatalf("unexpected filtering")
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	sp := Begin(tr, ScopePass, "parse", 0)
	sp.WithExtra("units", "2").End("")
	Point(tr, ScopeStep, "[depth=1] Main.main pc=3 add", "")
	out := buf.String()
	for _, want := range []string{"→ parse", "← parse {units=2}", "[depth=1] Main.main pc=3 add"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(2, LevelDetail)
	for _, n := range []string{"a", "b", "c"} {
		Point(r, ScopeUnit, n, "")
	}
	got := r.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestErrorLevelRingKeepsStepsForDump(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeRing, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeStep, "main", "[depth=1] Main.<script> 0002 call")
	ring := RingOf(tr)
	if ring == nil {
		t.Fatalf("no ring behind %T", tr)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "• main ([depth=1] Main.<script> 0002 call)\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBothModeFindsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "compile", 0).End("")
	if RingOf(tr) == nil || len(RingOf(tr).Snapshot()) != 2 {
		t.Fatalf("ring did not receive both span events")
	}
	if !strings.Contains(buf.String(), "← compile") {
		t.Fatalf("stream got:\n%s", buf.String())
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
