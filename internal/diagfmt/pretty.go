// Package diagfmt renders diagnostics, tokens and uncaught exceptions for
// the terminal and for tools.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jstep/internal/diag"
	"jstep/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, gutter, caret, note, fix, plus, minus *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
		fix:    mk(color.FgGreen),
		plus:   mk(color.FgGreen),
		minus:  mk(color.FgRed),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc := location(fs, d.Primary, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc,
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()), d.Message)
		writeSnippet(w, fs, d.Primary, int(opts.Context), pal)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"),
					location(fs, n.Span, opts.PathMode, opts.BaseDir), n.Msg)
			}
		}
		if opts.ShowFixes {
			for k, f := range d.Fixes {
				fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprintf("fix #%d:", k+1), f.Title)
				for _, e := range f.Edits {
					fmt.Fprintf(w, "    at %s apply=%q\n", location(fs, e.Span, opts.PathMode, opts.BaseDir), e.NewText)
					if !opts.ShowPreview {
						continue
					}
					pv, err := buildFixEditPreview(fs, e)
					if err != nil {
						continue
					}
					fmt.Fprintln(w, "    preview:")
					for _, l := range pv.before {
						fmt.Fprintf(w, "      %s\n", pal.minus.Sprint("- "+l))
					}
					for _, l := range pv.after {
						fmt.Fprintf(w, "      %s\n", pal.plus.Sprint("+ "+l))
					}
				}
			}
		}
	}
}

// Short prints one line per diagnostic.
func Short(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, mode PathMode, base string) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s %s: %s\n", location(fs, d.Primary, mode, base),
			strings.ToLower(d.Severity.String()), d.Code.ID(), d.Message)
	}
}

func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, context int, pal palette) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	first := max(1, int(start.Line)-context)
	last := int(start.Line) + context
	width := len(fmt.Sprint(last))

	for line := first; line <= last; line++ {
		lsp, ok := f.LineSpan(uint32(line)) // #nosec G115 -- line numbers come from uint32
		if !ok {
			break
		}
		text := string(f.Content[lsp.Start:lsp.End])
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", width, line), expandTabs(text))
		if line != int(start.Line) {
			continue
		}
		col := int(start.Col) - 1
		col = min(col, len(text))
		stop := len(text)
		if end.Line == start.Line {
			stop = min(int(end.Col)-1, len(text))
		}
		pad := runewidth.StringWidth(expandTabs(text[:col]))
		n := 1
		if stop > col {
			n = max(1, runewidth.StringWidth(expandTabs(text[col:stop])))
		}
		marks := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marks))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
