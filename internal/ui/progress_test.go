package ui

import (
	"strings"
	"testing"

	"jstep/internal/driver"
)

func TestProgressTracksUnits(t *testing.T) {
	m := NewProgressModel("compile", []string{"A.jst", "B.jst"}, nil).(*progressModel)

	m.Update(eventMsg{Path: "A.jst", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.Update(eventMsg{Path: "", Stage: driver.StageResolve, Status: driver.StatusWorking})
	if m.units[0].status != "parsing" || m.units[1].status != "queued" {
		t.Fatalf("got statuses %q %q", m.units[0].status, m.units[1].status)
	}
	if m.stageLabel != "resolving" {
		t.Fatalf("got stage %q, want resolving", m.stageLabel)
	}

	m.Update(eventMsg{Path: "A.jst", Status: driver.StatusDone})
	m.Update(eventMsg{Path: "B.jst", Status: driver.StatusError})
	if got := m.percent(); got != 1 {
		t.Fatalf("got percent %v, want 1", got)
	}
	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: compile (resolving)") || !strings.Contains(view, "error") {
		t.Fatalf("got view:\n%s", view)
	}
}
