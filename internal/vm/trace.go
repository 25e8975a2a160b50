package vm

import (
	"fmt"
	"strings"

	"jstep/internal/trace"
)

// traceStep emits one detail event per executed step.
// Format: [depth=N] <program> <pc> <op> @ <file>:<line>:<col>
func (p *ThreadPool) traceStep(t *Thread, f *Frame) {
	if !trace.Accepts(p.tracer, trace.ScopeStep) {
		return
	}
	s := f.Prog.Steps[f.PC]
	var sb strings.Builder
	fmt.Fprintf(&sb, "[depth=%d] %s %04d %s", len(t.frames), f.Prog.Name, f.PC, s.Op)
	if p.files != nil && !s.Span.Empty() {
		sb.WriteString(" @ ")
		sb.WriteString(formatSpan(s.Span, p.files))
	}
	trace.Point(p.tracer, trace.ScopeStep, t.Name, sb.String())
}
