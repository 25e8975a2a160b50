package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/vm"
)

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Main.jst", []byte("int x = 42\nprintln(x);\n"))
	sp := source.Span{File: fileID, Start: 8, End: 10}
	diags := []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.SynHealedSemicolon, sp, "missing ';'").
			WithFix("insert semicolon", diag.InsertText(sp.AtEnd(), ";")),
		diag.NewError(diag.SemaUnknownName, source.Span{File: fileID, Start: 19, End: 20}, "cannot find symbol y"),
	}

	var buf bytes.Buffer
	err := JSON(&buf, diags, fs, JSONOpts{IncludePositions: true, IncludeFixes: true, IncludePreviews: true, Max: 1})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 || out.Errors != 1 {
		t.Fatalf("got count %d errors %d, want 1 and 1", out.Count, out.Errors)
	}
	d := out.Diagnostics[0]
	if d.Code != diag.SynHealedSemicolon.ID() || d.Location.StartLine != 1 || d.Location.StartCol != 9 {
		t.Fatalf("got %+v", d)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("got fixes %+v", d.Fixes)
	}
	if e := d.Fixes[0].Edits[0]; e.NewText != ";" || len(e.AfterLines) != 1 || e.AfterLines[0] != "int x = 42;" {
		t.Fatalf("got edit %+v", e)
	}
}

func TestUncaughtDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Main.jst", []byte("println(1 / 0);\n"))
	sp := source.Span{File: fileID, Start: 8, End: 13}
	u := &vm.Uncaught{Thread: "main", Class: "ArithmeticException", Message: "/ by zero", Span: sp,
		Backtrace: []vm.BacktraceFrame{{FuncName: "Main", Span: sp}}}

	d := UncaughtDiagnostic(u)
	if d.Code != diag.RunUncaughtException || len(d.Notes) != 1 {
		t.Fatalf("got %+v", d)
	}
	var buf bytes.Buffer
	Uncaught(&buf, u, fs, false)
	want := "Exception in thread \"main\" ArithmeticException: / by zero\n\tat Main (Main.jst:1:9)\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
