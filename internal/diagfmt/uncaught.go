package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/vm"
)

// UncaughtDiagnostic turns a runtime failure into a diagnostic anchored at
// the throw site, one note per backtrace frame.
func UncaughtDiagnostic(u *vm.Uncaught) diag.Diagnostic {
	code := diag.RunUncaughtException
	if u.Fault {
		code = diag.RunInternalFault
	}
	d := diag.NewError(code, u.Span, u.Error())
	for _, f := range u.Backtrace {
		d = d.WithNote(f.Span, "at "+f.FuncName)
	}
	return d
}

// Uncaught prints the Java-style report of u.
func Uncaught(w io.Writer, u *vm.Uncaught, fs *source.FileSet, useColor bool) {
	head := color.New(color.FgRed, color.Bold)
	if useColor {
		head.EnableColor()
	} else {
		head.DisableColor()
	}
	fmt.Fprintln(w, head.Sprint(u.Error()))
	if len(u.Backtrace) == 0 {
		fmt.Fprintf(w, "\tat %s\n", location(fs, u.Span, PathModeAuto, ""))
		return
	}
	for _, f := range u.Backtrace {
		fmt.Fprintf(w, "\tat %s (%s)\n", f.FuncName, location(fs, f.Span, PathModeAuto, ""))
	}
}
