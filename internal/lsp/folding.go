package lsp

import (
	"slices"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/source"
	"jstep/internal/token"
)

func (s *Server) foldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc, res := s.document(params.TextDocument.URI)
	if doc == nil || res == nil {
		return []protocol.FoldingRange{}, nil
	}
	u := res.Unit(doc.path)
	if u == nil {
		return []protocol.FoldingRange{}, nil
	}
	return buildFoldingRanges(res.Files.Get(u.File), u.Tokens), nil
}

// buildFoldingRanges folds brace pairs and block comments spanning more
// than one line. Virtual tokens from healing are ignored.
func buildFoldingRanges(file *source.File, toks []token.Token) []protocol.FoldingRange {
	ranges := []protocol.FoldingRange{}
	var stack []uint32
	comment := string(protocol.FoldingRangeKindComment)
	for _, tok := range toks {
		for _, tr := range tok.Leading {
			if tr.Kind != token.TriviaBlockComment && tr.Kind != token.TriviaDocBlock {
				continue
			}
			start := positionForOffset(file, tr.Span.Start).Line
			end := positionForOffset(file, tr.Span.End).Line
			if start < end {
				ranges = append(ranges, protocol.FoldingRange{StartLine: start, EndLine: end, Kind: &comment})
			}
		}
		if tok.Virtual {
			continue
		}
		switch tok.Kind {
		case token.LBrace:
			stack = append(stack, positionForOffset(file, tok.Span.Start).Line)
		case token.RBrace:
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if end := positionForOffset(file, tok.Span.Start).Line; open < end {
				ranges = append(ranges, protocol.FoldingRange{StartLine: open, EndLine: end})
			}
		}
	}
	slices.SortFunc(ranges, func(a, b protocol.FoldingRange) int {
		if a.StartLine != b.StartLine {
			return int(a.StartLine) - int(b.StartLine)
		}
		return int(a.EndLine) - int(b.EndLine)
	})
	return ranges
}
