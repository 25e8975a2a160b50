package lsp

import (
	"context"
	"errors"
	"slices"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/diag"
	"jstep/internal/driver"
)

// analyze compiles the open documents and publishes the outcome unless a
// newer run was scheduled meanwhile.
func (s *Server) analyze(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	docs := make(map[protocol.DocumentUri]document, len(s.docs))
	for uri, d := range s.docs {
		docs[uri] = *d
	}
	notify := s.notify
	s.mu.Unlock()
	defer cancel()

	res, err := s.compile(ctx, docs)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil && !errors.Is(err, driver.ErrEmptyWorkspace):
		s.log.Errorf("analysis failed: %v", err)
		if res == nil {
			return
		}
	}
	s.publishAll(seq, notify, docs, res)
}

// compile brings the workspace in line with docs and compiles it.
func (s *Server) compile(ctx context.Context, docs map[protocol.DocumentUri]document) (*driver.Result, error) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	open := make(map[string]bool, len(docs))
	for _, d := range docs {
		open[d.path] = true
		s.ws.Set(d.path, []byte(d.text))
	}
	for _, p := range s.ws.Paths() {
		if !open[p] {
			s.ws.Remove(p)
		}
	}
	return s.ws.Compile(ctx)
}

func (s *Server) publishAll(seq uint64, notify func(string, any), docs map[protocol.DocumentUri]document, res *driver.Result) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.result = res
	prev := s.published
	s.published = make(map[protocol.DocumentUri]struct{}, len(docs))
	for uri := range docs {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()
	if notify == nil {
		return
	}

	uris := make([]protocol.DocumentUri, 0, len(docs))
	for uri := range docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	for _, uri := range uris {
		d := docs[uri]
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: buildDiagnostics(res, d.path),
		})
		if res != nil {
			notify(MethodStartable, startable(res, uri, d.path))
		}
	}
	for uri := range prev {
		if _, ok := docs[uri]; ok {
			continue
		}
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
}

func startable(res *driver.Result, uri protocol.DocumentUri, path string) StartableParams {
	out := StartableParams{URI: uri, Startable: res.Startable(path)}
	u := res.Unit(path)
	switch {
	case u == nil || out.Startable:
	case u.FirstError() != nil:
		out.Reason = u.FirstError().Message
	case u.DependsOnModulesWithErrors:
		out.Reason = "a used unit has errors"
	}
	return out
}

// buildDiagnostics converts the diagnostics of the unit at path.
func buildDiagnostics(res *driver.Result, path string) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	if res == nil {
		return out
	}
	u := res.Unit(path)
	if u == nil {
		return out
	}
	for _, d := range u.Diagnostics() {
		out = append(out, convertDiagnostic(res, d))
	}
	return out
}

func convertDiagnostic(res *driver.Result, d diag.Diagnostic) protocol.Diagnostic {
	sev := severity(d.Severity)
	src := "jstep"
	out := protocol.Diagnostic{
		Range:    rangeForSpan(res.Files.Get(d.Primary.File), d.Primary),
		Severity: &sev,
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   &src,
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		f := res.Files.Get(n.Span.File)
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: pathToURI(f.Path), Range: rangeForSpan(f, n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}

func severity(s diag.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityInformation
}
