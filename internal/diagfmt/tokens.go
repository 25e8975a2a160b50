package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"jstep/internal/source"
	"jstep/internal/token"
)

type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Leading []string    `json:"leading,omitempty"`
	Virtual bool        `json:"virtual,omitempty"`
}

func leadingKinds(tok token.Token) []string {
	var out []string
	for _, tr := range tok.Leading {
		out = append(out, triviaName(tr.Kind))
	}
	return out
}

func triviaName(k token.TriviaKind) string {
	switch k {
	case token.TriviaSpace:
		return "space"
	case token.TriviaNewline:
		return "newline"
	case token.TriviaLineComment:
		return "line_comment"
	case token.TriviaBlockComment:
		return "block_comment"
	case token.TriviaDocBlock:
		return "doc"
	}
	return "unknown"
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%3d: %-15s", i+1, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d", startPos.Line, startPos.Col, endPos.Line, endPos.Col)
		if leading := leadingKinds(tok); len(leading) > 0 {
			fmt.Fprintf(w, " (leading: %s)", strings.Join(leading, ", "))
		}
		fmt.Fprintln(w)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	out := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TokenOutput{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Span:    tok.Span,
			Leading: leadingKinds(tok),
			Virtual: tok.Virtual,
		})
		if tok.Kind == token.EOF {
			break
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
