package diag

import (
	"testing"

	"jstep/internal/source"
)

func TestBagSortAndErrors(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, SynHealedSemicolon, source.Span{File: 0, Start: 10, End: 10}, "w"))
	b.Add(NewError(SemaTypeMismatch, source.Span{File: 0, Start: 2, End: 4}, "e"))
	b.Add(New(SevInfo, SemaInfo, source.Span{File: 0, Start: 2, End: 4}, "i"))
	b.Sort()
	items := b.Items()
	if items[0].Severity != SevError || items[1].Severity != SevInfo || items[2].Code != SynHealedSemicolon {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !b.HasErrors() || b.ErrorCount() != 1 {
		t.Fatalf("HasErrors/ErrorCount mismatch")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(NewError(LexUnknownChar, source.Span{}, "a")) {
		t.Fatalf("first Add must succeed")
	}
	if b.Add(NewError(LexUnknownChar, source.Span{Start: 1}, "b")) {
		t.Fatalf("Add beyond limit must fail")
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	sp := source.Span{Start: 1, End: 2}
	r.Report(SemaUnknownName, SevError, sp, "x", nil, nil)
	r.Report(SemaUnknownName, SevError, sp, "x", nil, nil)
	r.Report(SemaUnknownName, SevError, sp, "y", nil, nil)
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexBadEscape:          "LEX1006",
		SynExpectSemicolon:    "SYN2002",
		SemaCyclicInheritance: "SEM3002",
		GenInternal:           "GEN4001",
		RunUncaughtException:  "RUN5001",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Fatalf("%d.ID() = %s, want %s", c, got, want)
		}
		if c.Title() == codeDescription[UnknownCode] {
			t.Fatalf("%s has no title", want)
		}
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, SynExpectSemicolon, source.Span{Start: 3, End: 3}, "expected ';'").
		WithFix("insert ';'", InsertText(source.Span{Start: 3, End: 3}, ";"))
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 || len(b.Items()[0].Fixes) != 1 {
		t.Fatalf("builder emitted %d items", b.Len())
	}
}

func TestParseCode(t *testing.T) {
	if c, ok := ParseCode("syn2007"); !ok || c != SynHealedSemicolon {
		t.Fatalf("got %v %v, want SynHealedSemicolon", c, ok)
	}
	if _, ok := ParseCode("XYZ0001"); ok {
		t.Fatalf("unknown id accepted")
	}
}

func TestParseSeverity(t *testing.T) {
	for name, want := range map[string]Severity{"info": SevInfo, "WARN": SevWarning, "Error": SevError} {
		got, ok := ParseSeverity(name)
		if !ok || got != want {
			t.Fatalf("ParseSeverity(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := ParseSeverity("fatal"); ok {
		t.Fatalf("unknown severity accepted")
	}
	if SevWarning.Blocking() || !SevError.Blocking() {
		t.Fatalf("only errors should block")
	}
}
