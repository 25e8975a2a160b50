package fix_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/fix"
	"jstep/internal/source"
	"jstep/internal/testkit"
)

const healed = "int x = 1\nint y = 2\nSystem.out.println(x + y);\n"

func TestApplyAllInsertsSemicolons(t *testing.T) {
	res, _ := testkit.Compile(t, testkit.Source{Path: testkit.Main, Text: healed})
	out, err := fix.Apply(res.Files, res.Diagnostics(), fix.Options{Mode: fix.ModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Applied) != 2 {
		t.Fatalf("got %d applied fixes, want 2", len(out.Applied))
	}
	want := "int x = 1;\nint y = 2;\nSystem.out.println(x + y);\n"
	if got := string(out.Files[testkit.Main]); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestApplyFirstAndCodeFilter(t *testing.T) {
	res, _ := testkit.Compile(t, testkit.Source{Path: testkit.Main, Text: healed})
	out, err := fix.Apply(res.Files, res.Diagnostics(), fix.Options{Mode: fix.ModeFirst})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "int x = 1;\nint y = 2\nSystem.out.println(x + y);\n"
	if got := string(out.Files[testkit.Main]); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	_, err = fix.Apply(res.Files, res.Diagnostics(), fix.Options{Codes: []diag.Code{diag.SemaTypeMismatch}})
	if !errors.Is(err, fix.ErrNoFixes) {
		t.Fatalf("got %v, want ErrNoFixes", err)
	}
}

func TestConflictsAndGuards(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("A.jst", []byte("abcdef"))
	sp := func(a, b uint32) source.Span { return source.Span{File: id, Start: a, End: b} }
	diags := []diag.Diagnostic{
		diag.NewError(diag.SynUnexpectedToken, sp(0, 3), "one").
			WithFix("replace abc", diag.FixEdit{Span: sp(0, 3), NewText: "X", OldText: "abc"}),
		diag.NewError(diag.SynUnexpectedToken, sp(1, 2), "two").
			WithFix("replace b", diag.FixEdit{Span: sp(1, 2), NewText: "Y"}),
		diag.NewError(diag.SynUnexpectedToken, sp(4, 5), "three").
			WithFix("stale", diag.FixEdit{Span: sp(4, 5), NewText: "Z", OldText: "q"}),
		diag.NewError(diag.SynUnexpectedToken, sp(6, 6), "four").
			WithFix("append", diag.InsertText(sp(6, 6), "!")),
	}
	out, err := fix.Apply(fs, diags, fix.Options{Mode: fix.ModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := string(out.Files["A.jst"]); got != "Xdef!" {
		t.Fatalf("got %q, want %q", got, "Xdef!")
	}
	if len(out.Skipped) != 2 {
		t.Fatalf("got skipped %+v, want the overlap and the stale guard", out.Skipped)
	}
}

func TestWriteFilesKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Main.jst")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	res := &fix.Result{Files: map[string][]byte{path: []byte("new")}}
	if err := fix.WriteFiles(res, true); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	got, _ := os.ReadFile(path)
	bak, _ := os.ReadFile(path + ".bak")
	if string(got) != "new" || string(bak) != "old" {
		t.Fatalf("got %q and backup %q", got, bak)
	}
}
