package parser_test

import (
	"testing"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/parser"
	"jstep/internal/source"
)

func parse(t *testing.T, src string) (parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.jst", []byte(src))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.NopReporter{}})
	bag := diag.NewBag(0)
	res := parser.ParseFile(toks, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return res, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func stmtKinds(res parser.Result) []ast.StmtKind {
	var out []ast.StmtKind
	for _, id := range res.Builder.File(res.File).Stmts {
		out = append(out, res.Builder.Stmts.Get(id).Kind)
	}
	return out
}

func TestParseClassDeclaration(t *testing.T) {
	res, bag := parse(t, `
class A<T extends Comparable<T>> extends B implements I, J {
    private int x = 1, y;
    A(int x) { this.x = x; }
    public int get() { return x; }
    abstract void f();
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	items := res.Builder.File(res.File).Items
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := res.Builder.Item(items[0])
	if got := res.Builder.Name(it.Name); got != "A" {
		t.Fatalf("class name %q", got)
	}
	if len(it.TypeParams) != 1 || !it.TypeParams[0].Bound.IsValid() {
		t.Fatalf("type params: %+v", it.TypeParams)
	}
	if len(it.Extends) != 1 || len(it.Implements) != 2 {
		t.Fatalf("extends=%d implements=%d", len(it.Extends), len(it.Implements))
	}
	if len(it.Members) != 5 {
		t.Fatalf("got %d members, want 5", len(it.Members))
	}
	wantKinds := []ast.MemberKind{ast.MemberField, ast.MemberField, ast.MemberCtor, ast.MemberMethod, ast.MemberMethod}
	for i, id := range it.Members {
		if k := res.Builder.Member(id).Kind; k != wantKinds[i] {
			t.Fatalf("member %d kind %v, want %v", i, k, wantKinds[i])
		}
	}
	f := res.Builder.Member(it.Members[4])
	if !f.Mods.Has(ast.ModAbstract) || f.Body.IsValid() {
		t.Fatalf("abstract method parsed with mods=%v body=%v", f.Mods, f.Body)
	}
}

func TestInterfaceMethodsAreAbstract(t *testing.T) {
	res, bag := parse(t, `interface Shape extends Named { double area(); }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	it := res.Builder.Item(res.Builder.File(res.File).Items[0])
	if it.Kind != ast.ClassInterface || len(it.Extends) != 1 {
		t.Fatalf("interface parsed as %+v", it)
	}
	m := res.Builder.Member(it.Members[0])
	if !m.Mods.Has(ast.ModAbstract) || !m.Mods.Has(ast.ModPublic) {
		t.Fatalf("interface method mods %v", m.Mods)
	}
}

func TestParseEnum(t *testing.T) {
	res, bag := parse(t, `enum Color { RED(1), GREEN(2), BLUE(3); int code; Color(int c) { code = c; } }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	it := res.Builder.Item(res.Builder.File(res.File).Items[0])
	if it.Kind != ast.ClassEnum || len(it.EnumConsts) != 3 || len(it.Members) != 2 {
		t.Fatalf("enum: consts=%d members=%d", len(it.EnumConsts), len(it.Members))
	}
	if len(it.EnumConsts[2].Args) != 1 {
		t.Fatalf("BLUE args %v", it.EnumConsts[2].Args)
	}
}

func TestScriptStatements(t *testing.T) {
	res, bag := parse(t, "int x = 1;\nfor (int i = 0; i < 10; i++) { x += i; }\nSystem.out.println(x);\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	want := []ast.StmtKind{ast.StmtLocal, ast.StmtFor, ast.StmtExpr}
	got := stmtKinds(res)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestShiftAndNestedGenerics(t *testing.T) {
	res, bag := parse(t, "int a = 8 >> 1;\nArrayList<ArrayList<int>> xs = new ArrayList<>();\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	b := res.Builder
	stmts := b.File(res.File).Stmts
	first, _ := b.Stmts.Local(stmts[0])
	bin, ok := b.Exprs.Binary(first.Decls[0].Init)
	if !ok || bin.Op != ast.BinShr {
		t.Fatalf("want >> binary, got %+v", b.Exprs.Get(first.Decls[0].Init))
	}
	second, _ := b.Stmts.Local(stmts[1])
	outer := b.Type(second.Type)
	if outer.Kind != ast.TypeNamed || len(outer.Args) != 1 {
		t.Fatalf("outer type %+v", outer)
	}
	inner := b.Type(outer.Args[0])
	if len(inner.Args) != 1 || b.Type(inner.Args[0]).Kind != ast.TypeInt {
		t.Fatalf("inner type %+v", inner)
	}
}

func TestSemicolonHealing(t *testing.T) {
	src := "int x = 1\nint y = 2\nSystem.out.println(x + y);\n"
	res, bag := parse(t, src)
	if bag.HasErrors() {
		t.Fatalf("healed parse still has errors: %v", codes(bag))
	}
	if len(res.Healed) != 2 {
		t.Fatalf("got %d healed positions, want 2", len(res.Healed))
	}
	warnings := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SynHealedSemicolon {
			warnings++
			if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != ";" {
				t.Fatalf("healed warning without ';' fix: %+v", d)
			}
		}
	}
	if warnings != 2 {
		t.Fatalf("got %d healing warnings, want 2", warnings)
	}
	if got := lexer.Reconstruct(res.Tokens); got != src {
		t.Fatalf("virtual tokens leaked into reconstruction: %q", got)
	}
	if n := len(stmtKinds(res)); n != 3 {
		t.Fatalf("got %d statements, want 3", n)
	}
}

func TestNoHealingInsideLine(t *testing.T) {
	res, bag := parse(t, "int x = 1 int y = 2;\n")
	if !bag.HasErrors() {
		t.Fatalf("expected a syntax error")
	}
	if len(res.Healed) != 0 {
		t.Fatalf("mid-line terminator must not be healed")
	}
}

func TestCastVersusParen(t *testing.T) {
	res, bag := parse(t, "Object o = (String) s;\nint z = (a) + b;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	b := res.Builder
	stmts := b.File(res.File).Stmts
	l0, _ := b.Stmts.Local(stmts[0])
	if k := b.Exprs.Get(l0.Decls[0].Init).Kind; k != ast.ExprCast {
		t.Fatalf("got %v, want cast", k)
	}
	l1, _ := b.Stmts.Local(stmts[1])
	bin, ok := b.Exprs.Binary(l1.Decls[0].Init)
	if !ok || b.Exprs.Get(bin.Left).Kind != ast.ExprGroup {
		t.Fatalf("(a) + b parsed as %+v", b.Exprs.Get(l1.Decls[0].Init))
	}
}

func TestRecoveryKeepsFollowingStatements(t *testing.T) {
	res, bag := parse(t, "int a = ;\nint b = 2;\n")
	if n := bag.ErrorCount(); n != 1 {
		t.Fatalf("got %d errors (%v), want 1", n, codes(bag))
	}
	if n := len(stmtKinds(res)); n != 2 {
		t.Fatalf("got %d statements, want 2", n)
	}
}

func TestMissingParenHasQuickFix(t *testing.T) {
	_, bag := parse(t, "foo(1;\n")
	for _, d := range bag.Items() {
		if d.Code != diag.SynExpectToken {
			continue
		}
		if len(d.Fixes) == 0 || d.Fixes[0].Edits[0].NewText != ")" {
			t.Fatalf("missing ')' fix: %+v", d)
		}
		return
	}
	t.Fatalf("no expected-token diagnostic in %v", codes(bag))
}

func TestFinallyUnsupported(t *testing.T) {
	_, bag := parse(t, "try { } catch (Exception e) { } finally { }\n")
	found := false
	for _, c := range codes(bag) {
		if c == diag.SynUnsupported {
			found = true
		}
	}
	if !found {
		t.Fatalf("finally accepted: %v", codes(bag))
	}
}

func TestIntLiteralRange(t *testing.T) {
	_, bag := parse(t, "int m = -2147483648;\nint n = 2147483648;\nint h = 0xFFFFFFFF;\n")
	got := codes(bag)
	if len(got) != 1 || got[0] != diag.SynBadLiteral {
		t.Fatalf("got %v, want one SynBadLiteral", got)
	}
}

func TestSwitchAndForEach(t *testing.T) {
	res, bag := parse(t, `
switch (x) { case 1: case 2: y = 1; break; default: y = 2; }
for (int v : arr) { y += v; }
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	b := res.Builder
	stmts := b.File(res.File).Stmts
	sw, ok := b.Stmts.Switch(stmts[0])
	if !ok || len(sw.Cases) != 3 || len(sw.Cases[0].Body) != 0 || len(sw.Cases[2].Labels) != 0 {
		t.Fatalf("switch parsed as %+v", sw)
	}
	if b.Stmts.Get(stmts[1]).Kind != ast.StmtForEach {
		t.Fatalf("want for-each, got %v", b.Stmts.Get(stmts[1]).Kind)
	}
}

func TestNotAStatement(t *testing.T) {
	_, bag := parse(t, "x + 1;\n")
	if bag.ErrorCount() != 1 {
		t.Fatalf("got %v", codes(bag))
	}
}

func parseExpr(src string) (parser.ExprResult, *diag.Bag) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<eval>", []byte(src))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.NopReporter{}})
	bag := diag.NewBag(0)
	return parser.ParseExpr(toks, parser.Options{Reporter: diag.BagReporter{Bag: bag}, NoHeal: true}), bag
}

func TestParseExprAcceptsAnyExpression(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.ExprKind
	}{
		{"i * 10", ast.ExprBinary},
		{"sum + i;", ast.ExprBinary},
		{"y = 5", ast.ExprAssign},
	}
	for _, tc := range cases {
		res, bag := parseExpr(tc.src)
		if bag.HasErrors() {
			t.Fatalf("%q: unexpected diagnostics %v", tc.src, codes(bag))
		}
		if got := res.Builder.Exprs.Get(res.Expr).Kind; got != tc.kind {
			t.Fatalf("%q: got kind %v, want %v", tc.src, got, tc.kind)
		}
	}
}

func TestParseExprRejectsTrailingTokens(t *testing.T) {
	_, bag := parseExpr("a b")
	if got := codes(bag); len(got) != 1 || got[0] != diag.SynUnexpectedToken {
		t.Fatalf("got %v, want [%v]", got, diag.SynUnexpectedToken)
	}
}
