package vm

import (
	"fmt"
	"strings"

	"jstep/internal/source"
)

// MessageAttr is the hidden attribute holding an exception's message.
const MessageAttr = "$message"

// BacktraceFrame represents one frame of an exception backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// ThrowSite is attached to exception objects when they are first thrown.
type ThrowSite struct {
	Span      source.Span
	Backtrace []BacktraceFrame
}

// Uncaught describes an exception that left the last frame of a thread,
// or an internal fault of the interpreter (Fault set).
type Uncaught struct {
	Thread    string
	Class     string
	Message   string
	Span      source.Span
	Backtrace []BacktraceFrame
	Value     Value
	Fault     bool
}

func (u *Uncaught) Error() string {
	if u.Message == "" {
		return fmt.Sprintf("Exception in thread %q %s", u.Thread, u.Class)
	}
	return fmt.Sprintf("Exception in thread %q %s: %s", u.Thread, u.Class, u.Message)
}

// FormatWithFiles formats the exception with resolved file:line:col information.
func (u *Uncaught) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder
	sb.WriteString(u.Error())
	sb.WriteString("\n")
	if len(u.Backtrace) == 0 {
		sb.WriteString("\tat ")
		sb.WriteString(formatSpan(u.Span, files))
		sb.WriteString("\n")
	}
	for _, f := range u.Backtrace {
		fmt.Fprintf(&sb, "\tat %s (%s)\n", f.FuncName, formatSpan(f.Span, files))
	}
	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>" if empty.
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

// backtrace lists the frames of t from top to bottom.
func (t *Thread) backtrace() []BacktraceFrame {
	out := make([]BacktraceFrame, 0, len(t.frames))
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		out = append(out, BacktraceFrame{FuncName: f.Prog.Name, Span: f.span()})
	}
	return out
}
