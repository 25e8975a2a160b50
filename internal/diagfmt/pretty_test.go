package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("String s = \"unterminated;\n")
	fileID := fs.AddVirtual("/home/user/project/src/Main.jst", content)
	diags := []diag.Diagnostic{diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 11, End: 25}, "unterminated string literal")}

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/Main.jst"},
		{"relative", PathModeRelative, "src/Main.jst:1:12"},
		{"basename", PathModeBasename, "Main.jst:1:12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, diags, fs, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR", diag.LexUnterminatedString.ID(), "unterminated string"} {
				if !strings.Contains(out, want) {
					t.Fatalf("got:\n%s\nwant %q", out, want)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	short := fs.AddVirtual("Main.jst", []byte("int x = 42;\n"))
	long := fs.AddVirtual("/very/long/absolute/path/to/some/nested/directory/Other.jst", []byte("int x = 42;\n"))
	var buf bytes.Buffer
	Short(&buf, []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: short, Start: 8, End: 10}, "w1"),
		diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: long, Start: 8, End: 10}, "w2"),
	}, fs, PathModeAuto, "")
	want := "Main.jst:1:9: warning " + diag.LexUnknownChar.ID() + ": w1\n" +
		"Other.jst:1:9: warning " + diag.LexUnknownChar.ID() + ": w2\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestCaretUnderlinesSpan(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Main.jst", []byte("int a = 1;\n\tint b = \"x\";\n"))
	// "x" вместе с кавычками: 20..23
	d := diag.NewError(diag.SemaTypeMismatch, source.Span{File: fileID, Start: 20, End: 23}, "incompatible types")
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("got:\n%s", buf.String())
	}
	if lines[1] != "1 | int a = 1;" || lines[2] != "2 |     int b = \"x\";" {
		t.Fatalf("got context lines %q and %q", lines[1], lines[2])
	}
	if want := "  |             ^~~"; lines[3] != want {
		t.Fatalf("got caret line %q, want %q", lines[3], want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("int x = 42\nprintln(x);\n")
	fileID := fs.AddVirtual("Main.jst", content)

	primary := source.Span{File: fileID, Start: 8, End: 10}
	d := diag.New(diag.SevWarning, diag.SynHealedSemicolon, primary, "missing ';'")
	d = d.WithNote(source.Span{File: fileID, Start: 11, End: 18}, "next statement starts here")
	d = d.WithFix("insert semicolon", diag.InsertText(primary.AtEnd(), ";"))

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: true,
	})
	out := buf.String()
	for _, want := range []string{
		"note: Main.jst:2:1: next statement starts here",
		"fix #1: insert semicolon",
		`apply=";"`,
		"preview:",
		"- int x = 42",
		"+ int x = 42;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("got:\n%s\nwant %q", out, want)
		}
	}
}
