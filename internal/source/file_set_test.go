package source

import "testing"

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("Main.jst", []byte("int a;"), 0)
	id2 := fs.Add("Main.jst", []byte("int b;"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID per Add")
	}
	latest, ok := fs.Latest("./Main.jst")
	if !ok || latest != id2 {
		t.Fatalf("Latest = %d,%v, want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "int a;" {
		t.Fatalf("old version content = %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.jst", []byte("ab\ncd\n\nx"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит первой строке
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tc := range cases {
		got, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if got != tc.want {
			t.Fatalf("Resolve(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}
}

func TestAddVirtualNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("w.jst", []byte("\xEF\xBB\xBFa\r\nb"))
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.Flags&FileVirtual == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if got := f.GetLine(2); got != "b" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "" {
		t.Fatalf("GetLine(3) = %q, want empty", got)
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("café")
	decomposed := in.Intern("café")
	if composed != decomposed {
		t.Fatalf("NFC-equal identifiers got different IDs: %d vs %d", composed, decomposed)
	}
	if s := in.MustLookup(composed); s != "café" {
		t.Fatalf("lookup = %q", s)
	}
	if in.Intern("") != NoStringID {
		t.Fatalf("empty string must map to NoStringID")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 1, End: 5}
	if got := a.Cover(b); got.Start != 1 || got.End != 6 {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 9}); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
}
