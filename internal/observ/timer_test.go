package observ

import (
	"strings"
	"testing"
	"time"
)

func TestNestedPhasesNotCountedTwice(t *testing.T) {
	tm := NewTimer()
	outer := tm.Begin("parse")
	tm.Add("Main.jst", 5*time.Millisecond, "")
	tm.End(outer, "1 unit")
	tm.phases[outer].Dur = 10 * time.Millisecond
	r := tm.Report()
	if r.TotalMS != 10 {
		t.Fatalf("total = %v, want 10", r.TotalMS)
	}
	var sb strings.Builder
	if err := tm.WriteSummary(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "    Main.jst") || !strings.Contains(sb.String(), "// 1 unit") {
		t.Fatalf("summary:\n%s", sb.String())
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer reported phases")
	}
}
