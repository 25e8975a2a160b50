package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	for _, kw := range []string{"class", "interface", "instanceof", "boolean", "null", "var"} {
		k, ok := LookupKeyword(kw)
		if !ok {
			t.Fatalf("%q is not a keyword", kw)
		}
		if k.String() != kw {
			t.Fatalf("Kind(%q).String() = %q", kw, k.String())
		}
	}
	for _, id := range []string{"Class", "String", "println", "x"} {
		if _, ok := LookupKeyword(id); ok {
			t.Fatalf("%q must not be a keyword", id)
		}
	}
}

func TestKindNamesComplete(t *testing.T) {
	for _, k := range Kinds() {
		if k.String() == "" {
			t.Fatalf("kind %d has no name", k)
		}
	}
}

func TestClassifiers(t *testing.T) {
	if !(Token{Kind: KwNull}).IsLiteral() || (Token{Kind: Ident}).IsLiteral() {
		t.Fatalf("IsLiteral misclassifies")
	}
	if !(Token{Kind: ShrAssign}).IsAssignOp() || (Token{Kind: EqEq}).IsAssignOp() {
		t.Fatalf("IsAssignOp misclassifies")
	}
	if !(Token{Kind: KwVoid}).IsPrimitiveType() || (Token{Kind: KwVar}).IsPrimitiveType() {
		t.Fatalf("IsPrimitiveType misclassifies")
	}
}

func TestHasNewline(t *testing.T) {
	if HasNewline([]Trivia{{Kind: TriviaSpace, Text: " "}}) {
		t.Fatalf("space is not a newline")
	}
	if !HasNewline([]Trivia{{Kind: TriviaBlockComment, Text: "/* a\nb */"}}) {
		t.Fatalf("multi-line block comment breaks the line")
	}
}
