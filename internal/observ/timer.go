// Package observ collects wall-clock timings of compile phases for the
// --timings flag.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one timed section: lex, parse, resolve, gen, or a single unit.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Depth int
}

// Timer is not goroutine-safe: per-unit phases that run in parallel are
// recorded afterwards with Add.
type Timer struct {
	phases []Phase
	open   int
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now(), Depth: t.open})
	t.open++
	return len(t.phases) - 1
}

func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
	if t.open > 0 {
		t.open--
	}
}

// Add records an already measured nested phase.
func (t *Timer) Add(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note, Depth: t.open})
}

type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Depth      int     `json:"depth,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report sums top-level phases only; nested ones are already included.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		if p.Depth == 0 {
			total += p.Dur
		}
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note, Depth: p.Depth}
	}
	report.TotalMS = millis(total)
	return report
}

// WriteSummary prints the report as an indented table.
func (t *Timer) WriteSummary(w io.Writer) error {
	return t.Report().Write(w)
}

func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range r.Phases {
		name := p.Name
		for range p.Depth {
			name = "  " + name
		}
		line := fmt.Sprintf("  %-24s %8.2f ms", name, p.DurationMS)
		if p.Note != "" {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-24s %8.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
