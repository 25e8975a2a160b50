package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/lexer"
	"jstep/internal/source"
)

// tokenTypes is the legend; indexes are sent on the wire.
var tokenTypes = []string{
	string(protocol.SemanticTokenTypeKeyword),
	string(protocol.SemanticTokenTypeType),
	string(protocol.SemanticTokenTypeVariable),
	string(protocol.SemanticTokenTypeNumber),
	string(protocol.SemanticTokenTypeString),
	string(protocol.SemanticTokenTypeComment),
	string(protocol.SemanticTokenTypeOperator),
}

var classToken = map[lexer.ColorClass]uint32{
	lexer.ColorKeyword:  0,
	lexer.ColorLiteral:  0,
	lexer.ColorType:     1,
	lexer.ColorIdent:    2,
	lexer.ColorNumber:   3,
	lexer.ColorString:   4,
	lexer.ColorChar:     4,
	lexer.ColorComment:  5,
	lexer.ColorOperator: 6,
}

func (s *Server) semanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, res := s.document(params.TextDocument.URI)
	if doc == nil || res == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	u := res.Unit(doc.path)
	if u == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	return &protocol.SemanticTokens{Data: encodeColors(res.Files.Get(u.File), u.Colors)}, nil
}

// encodeColors emits the relative five-integer encoding. Spans crossing
// a line break are split per line.
func encodeColors(file *source.File, colors []lexer.ColorSpan) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(colors)*5)
	var prevLine, prevChar uint32
	emit := func(start, end protocol.Position, typ uint32) {
		if end.Character <= start.Character {
			return
		}
		delta := start.Character
		if start.Line == prevLine {
			delta -= prevChar
		}
		data = append(data, start.Line-prevLine, delta, end.Character-start.Character, typ, 0)
		prevLine, prevChar = start.Line, start.Character
	}
	for _, c := range colors {
		typ, ok := classToken[c.Class]
		if !ok || c.Span.File != file.ID {
			continue
		}
		start := positionForOffset(file, c.Span.Start)
		end := positionForOffset(file, c.Span.End)
		for start.Line < end.Line && int(start.Line) < len(file.LineIdx) {
			emit(start, positionForOffset(file, file.LineIdx[start.Line]), typ)
			start = protocol.Position{Line: start.Line + 1}
		}
		emit(start, end, typ)
	}
	return data
}
