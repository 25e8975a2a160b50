package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/driver"
)

func (s *Server) codeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc, res := s.document(params.TextDocument.URI)
	if doc == nil || res == nil {
		return []protocol.CodeAction{}, nil
	}
	return buildCodeActions(res, doc.path, params.Range), nil
}

// buildCodeActions turns the fixes of diagnostics touching rng into quick
// fixes. Edits of a fix may reach into other units.
func buildCodeActions(res *driver.Result, path string, rng protocol.Range) []protocol.CodeAction {
	out := []protocol.CodeAction{}
	u := res.Unit(path)
	if u == nil {
		return out
	}
	kind := protocol.CodeActionKindQuickFix
	for _, d := range u.Diagnostics() {
		if len(d.Fixes) == 0 {
			continue
		}
		pd := convertDiagnostic(res, d)
		if !overlaps(pd.Range, rng) {
			continue
		}
		for i, fx := range d.Fixes {
			changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
			for _, e := range fx.Edits {
				f := res.Files.Get(e.Span.File)
				uri := pathToURI(f.Path)
				changes[uri] = append(changes[uri], protocol.TextEdit{
					Range:   rangeForSpan(f, e.Span),
					NewText: e.NewText,
				})
			}
			out = append(out, protocol.CodeAction{
				Title:       fx.Title,
				Kind:        &kind,
				Diagnostics: []protocol.Diagnostic{pd},
				IsPreferred: boolPtr(i == 0),
				Edit:        &protocol.WorkspaceEdit{Changes: changes},
			})
		}
	}
	return out
}
