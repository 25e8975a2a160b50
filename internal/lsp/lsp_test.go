package lsp

import (
	"context"
	"testing"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/driver"
	"jstep/internal/source"
)

const mainURI = "file:///ws/Main.jst"

type notification struct {
	method string
	params any
}

func compile(t *testing.T, text string) (*driver.Result, string) {
	t.Helper()
	path := uriToPath(mainURI)
	ws := driver.NewWorkspace(driver.Options{})
	ws.Set(path, []byte(text))
	res, err := ws.Compile(context.Background())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res, path
}

// open registers a document and runs the analysis synchronously.
func open(t *testing.T, s *Server, uri protocol.DocumentUri, text string) []notification {
	t.Helper()
	var got []notification
	s.setDocument(func(method string, params any) {
		got = append(got, notification{method, params})
	}, uri, text)
	s.analyze(s.seq)
	return got
}

func newTestServer(t *testing.T) *Server {
	s := NewServer(ServerOptions{Debounce: time.Hour})
	t.Cleanup(func() { _ = s.shutdown(nil) })
	return s
}

func TestPositionUsesUTF16Units(t *testing.T) {
	fs := source.NewFileSet()
	text := "int a = 1;\nString s = \"\U0001F642\"; x\n"
	file := fs.Get(fs.AddVirtual("Main.jst", []byte(text)))

	off := uint32(len(text) - 2)
	pos := positionForOffset(file, off)
	want := protocol.Position{Line: 1, Character: 17}
	if pos != want {
		t.Fatalf("got %+v, want %+v", pos, want)
	}
	if back := offsetForPosition(file, pos); back != off {
		t.Fatalf("got offset %d, want %d", back, off)
	}
	if back := offsetForPosition(file, protocol.Position{Line: 9}); back != uint32(len(text)) {
		t.Fatalf("past the end: got %d, want %d", back, len(text))
	}
}

func TestURIPaths(t *testing.T) {
	if got := pathToURI("/ws/My File.jst"); got != "file:///ws/My%20File.jst" {
		t.Fatalf("got %q", got)
	}
	if got := uriToPath("file:///ws/My%20File.jst"); got != "/ws/My File.jst" {
		t.Fatalf("got %q", got)
	}
	if got := uriToPath("untitled:Untitled-1"); got != "" {
		t.Fatalf("got %q for a non-file URI", got)
	}
}

func TestHealedSemicolonIsPublishedWithQuickFix(t *testing.T) {
	s := newTestServer(t)
	got := open(t, s, mainURI, "int x = 1\nprintln(x);\n")
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	pub, ok := got[0].params.(protocol.PublishDiagnosticsParams)
	if !ok || got[0].method != protocol.ServerTextDocumentPublishDiagnostics {
		t.Fatalf("got %s %T", got[0].method, got[0].params)
	}
	if len(pub.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(pub.Diagnostics))
	}
	d := pub.Diagnostics[0]
	if d.Code.Value != "SYN2007" || *d.Severity != protocol.DiagnosticSeverityWarning {
		t.Fatalf("got %v %v", d.Code.Value, *d.Severity)
	}
	if d.Range.Start != (protocol.Position{Line: 0, Character: 8}) {
		t.Fatalf("got range %+v", d.Range)
	}
	st, ok := got[1].params.(StartableParams)
	if !ok || got[1].method != MethodStartable || !st.Startable {
		t.Fatalf("got %s %+v", got[1].method, got[1].params)
	}

	doc, res := s.document(mainURI)
	actions := buildCodeActions(res, doc.path, protocol.Range{End: protocol.Position{Line: 1}})
	if len(actions) != 1 || actions[0].Title != "insert ';'" {
		t.Fatalf("got actions %+v", actions)
	}
	edits := actions[0].Edit.Changes[mainURI]
	if len(edits) != 1 || edits[0].NewText != ";" || edits[0].Range.Start != (protocol.Position{Line: 0, Character: 9}) {
		t.Fatalf("got edits %+v", edits)
	}
	if none := buildCodeActions(res, doc.path, protocol.Range{Start: protocol.Position{Line: 1}, End: protocol.Position{Line: 1, Character: 3}}); len(none) != 0 {
		t.Fatalf("got %d actions away from the diagnostic", len(none))
	}
}

func TestErrorsMakeUnitNotStartable(t *testing.T) {
	s := newTestServer(t)
	got := open(t, s, mainURI, "int x = \"a\";\n")
	st := got[1].params.(StartableParams)
	if st.Startable || st.Reason == "" {
		t.Fatalf("got %+v", st)
	}
}

func TestClosedDocumentIsCleared(t *testing.T) {
	s := newTestServer(t)
	open(t, s, mainURI, "int x = \"a\";\n")

	var got []notification
	s.mu.Lock()
	delete(s.docs, mainURI)
	s.notify = func(method string, params any) { got = append(got, notification{method, params}) }
	s.mu.Unlock()
	s.schedule()
	s.analyze(s.seq)

	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	pub := got[0].params.(protocol.PublishDiagnosticsParams)
	if pub.URI != mainURI || len(pub.Diagnostics) != 0 {
		t.Fatalf("got %+v", pub)
	}
}

func TestSemanticTokens(t *testing.T) {
	res, path := compile(t, "int x = 1; // hi\n")
	u := res.Unit(path)
	got := encodeColors(res.Files.Get(u.File), u.Colors)
	want := []protocol.UInteger{
		0, 0, 3, 1, 0, // int
		0, 4, 1, 2, 0, // x
		0, 2, 1, 6, 0, // =
		0, 2, 1, 3, 0, // 1
		0, 1, 1, 6, 0, // ;
		0, 2, 5, 5, 0, // comment
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSemanticTokensSplitMultilineComments(t *testing.T) {
	res, path := compile(t, "/* a\n bc */\nint x = 1;\n")
	u := res.Unit(path)
	got := encodeColors(res.Files.Get(u.File), u.Colors)
	if len(got) < 10 {
		t.Fatalf("got %v", got)
	}
	first, second := got[:5], got[5:10]
	if first[0] != 0 || first[1] != 0 || first[2] != 4 || first[3] != 5 {
		t.Fatalf("got first line %v", first)
	}
	if second[0] != 1 || second[1] != 0 || second[2] != 6 || second[3] != 5 {
		t.Fatalf("got second line %v", second)
	}
}

func TestFoldingRanges(t *testing.T) {
	res, path := compile(t, `class A {
    void f() {
        println(1);
    }
}
/* a
 b */
int x = 1;
`)
	u := res.Unit(path)
	ranges := buildFoldingRanges(res.Files.Get(u.File), u.Tokens)
	want := [][2]uint32{{0, 4}, {1, 3}, {5, 6}}
	if len(ranges) != len(want) {
		t.Fatalf("got %+v", ranges)
	}
	for i, w := range want {
		if ranges[i].StartLine != w[0] || ranges[i].EndLine != w[1] {
			t.Fatalf("range %d: got %d..%d, want %d..%d", i, ranges[i].StartLine, ranges[i].EndLine, w[0], w[1])
		}
	}
	if ranges[2].Kind == nil || *ranges[2].Kind != "comment" {
		t.Fatalf("block comment range has no comment kind")
	}
}
