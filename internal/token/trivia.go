package token

import "jstep/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaDocBlock // /** ... */
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// HasNewline reports whether any trivia item breaks the line.
// Block comments spanning lines count too.
func HasNewline(trivia []Trivia) bool {
	for _, tr := range trivia {
		switch tr.Kind {
		case TriviaNewline:
			return true
		case TriviaBlockComment, TriviaDocBlock:
			for i := 0; i < len(tr.Text); i++ {
				if tr.Text[i] == '\n' {
					return true
				}
			}
		}
	}
	return false
}
