// Package token defines lexical token kinds and trivia for jstep sources.
// Invariants:
//   - Token.Text is the exact lexeme; Token.Span matches it byte for byte.
//   - Whitespace and comments travel as leading Trivia of the next token,
//     so concatenating trivia and lexemes reproduces the source.
//   - Virtual tokens are inserted by the parser's semicolon healing and have
//     an empty span; they never come from the lexer.
//   - Primitive type names (int, double, boolean, char, void) are keywords.
package token
