package lexer_test

import (
	"testing"

	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/source"
	"jstep/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.jst", []byte(src))
	bag := diag.NewBag(0)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestBasicTokens(t *testing.T) {
	toks, bag := lex(t, `class A<T> { int x = 0x1F + 2.5e1; String s = "a\tb"; char c = '\n'; }`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []token.Kind{
		token.KwClass, token.Ident, token.Lt, token.Ident, token.Gt, token.LBrace,
		token.KwInt, token.Ident, token.Assign, token.IntLit, token.Plus, token.DoubleLit, token.Semicolon,
		token.Ident, token.Ident, token.Assign, token.StringLit, token.Semicolon,
		token.KwChar, token.Ident, token.Assign, token.CharLit, token.Semicolon,
		token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestShiftIsTwoGreater(t *testing.T) {
	toks, _ := lex(t, "a >> b >>= c")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Gt, token.Gt, token.Ident, token.ShrAssign, token.Ident, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRoundTripLossless(t *testing.T) {
	srcs := []string{
		"int x = 1;\n",
		"/** doc */\nclass A {\n  // c\n  void m() { x += 2; /* x */ }\n}\n   ",
		"String s = \"caf\u00e9 \\u0041\";\tchar c='\\'';",
		"",
	}
	for _, src := range srcs {
		toks, _ := lex(t, src)
		rebuilt := lexer.Reconstruct(toks)
		if rebuilt != src {
			t.Fatalf("Reconstruct = %q, want %q", rebuilt, src)
		}
		again, _ := lex(t, rebuilt)
		if len(again) != len(toks) {
			t.Fatalf("re-lex produced %d tokens, want %d", len(again), len(toks))
		}
		for i := range toks {
			if again[i].Kind != toks[i].Kind || again[i].Text != toks[i].Text {
				t.Fatalf("token %d differs after re-lex: %v %q vs %v %q", i, again[i].Kind, again[i].Text, toks[i].Kind, toks[i].Text)
			}
		}
	}
}

func TestUnterminatedStringReportedAtStart(t *testing.T) {
	src := "int a;\nString s = \"abc\nint b;"
	toks, bag := lex(t, src)
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.LexUnterminatedString || d.Primary.Start != 18 {
		t.Fatalf("got %v at %d, want unterminated string at 18", d.Code, d.Primary.Start)
	}
	// сканирование продолжается на следующей строке
	last := toks[len(toks)-2]
	if last.Kind != token.Semicolon {
		t.Fatalf("scanning did not continue, last token %v", last.Kind)
	}
}

func TestUnterminatedCommentReportedAtStart(t *testing.T) {
	_, bag := lex(t, "int a; /* never closed\n\n")
	if bag.Len() != 1 || bag.Items()[0].Primary.Start != 7 {
		t.Fatalf("want one diagnostic at offset 7, got %+v", bag.Items())
	}
}

func TestUnknownCharProducesInvalidToken(t *testing.T) {
	toks, bag := lex(t, "int # x;")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnknownChar {
		t.Fatalf("want one LexUnknownChar, got %+v", bag.Items())
	}
	if toks[1].Kind != token.Invalid || toks[2].Kind != token.Ident {
		t.Fatalf("kinds = %v", kinds(toks))
	}
}

func TestBracketDiagnostics(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"f(a]", diag.LexMismatchedBracket},
		{"x)", diag.LexUnmatchedBracket},
		{"{ {", diag.LexUnclosedBracket},
	}
	for _, tc := range cases {
		_, bag := lex(t, tc.src)
		found := false
		for _, d := range bag.Items() {
			if d.Code == tc.code {
				found = true
			}
		}
		if !found {
			t.Fatalf("%q: missing %v in %+v", tc.src, tc.code, bag.Items())
		}
	}
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`"plain"`:        "plain",
		`"a\nb"`:         "a\nb",
		`"\u0041\101"`:   "AA",
		`"q\"\\"`:        `q"\`,
		`"unterminated`:  "unterminated",
	}
	for in, want := range cases {
		if got := lexer.Unquote(in); got != want {
			t.Fatalf("Unquote(%s) = %q, want %q", in, got, want)
		}
	}
	if r := lexer.UnquoteChar(`'\t'`); r != '\t' {
		t.Fatalf("UnquoteChar = %q", r)
	}
}

func TestHighlight(t *testing.T) {
	toks, _ := lex(t, "// hi\nString s = null;")
	spans := lexer.Highlight(toks)
	want := []lexer.ColorClass{lexer.ColorComment, lexer.ColorType, lexer.ColorIdent, lexer.ColorOperator, lexer.ColorLiteral, lexer.ColorOperator}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d", len(spans), len(want))
	}
	for i := range want {
		if spans[i].Class != want[i] {
			t.Fatalf("span %d = %v, want %v", i, spans[i].Class, want[i])
		}
	}
}

func TestBadNumbers(t *testing.T) {
	for _, src := range []string{"12L", "0x", "1e+", "12ab"} {
		_, bag := lex(t, src)
		if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
			t.Fatalf("%q: want one LexBadNumber, got %+v", src, bag.Items())
		}
	}
}
