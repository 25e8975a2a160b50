// Package lsp serves diagnostics, quick fixes, semantic tokens and folding
// ranges over the Language Server Protocol.
package lsp

import (
	"context"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"jstep/internal/driver"
	"jstep/internal/version"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "jstep-lsp"

// MethodStartable is the server notification sent after each analysis
// with the launch state of every open unit.
const MethodStartable = "jstep/startable"

// StartableParams is the payload of MethodStartable.
type StartableParams struct {
	URI       protocol.DocumentUri `json:"uri"`
	Startable bool                 `json:"startable"`
	// Reason is the first error of the unit, or a note that a used unit
	// has errors.
	Reason string `json:"reason,omitempty"`
}

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce       time.Duration
	MaxDiagnostics int
}

type document struct {
	path string
	text string
}

// Server analyzes open documents in one workspace. Analysis runs on a
// debounce timer; only the newest run publishes.
type Server struct {
	handler protocol.Handler
	server  *glspserver.Server
	log     commonlog.Logger
	version string

	mu        sync.Mutex
	docs      map[protocol.DocumentUri]*document
	notify    glsp.NotifyFunc
	debounce  time.Duration
	timer     *time.Timer
	seq       uint64
	cancel    context.CancelFunc
	result    *driver.Result
	published map[protocol.DocumentUri]struct{}

	// wsMu serializes use of ws, which is not safe for concurrent use.
	wsMu sync.Mutex
	ws   *driver.Workspace
}

func NewServer(opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	s := &Server{
		log:       commonlog.GetLogger("jstep.lsp"),
		version:   version.Version,
		docs:      make(map[protocol.DocumentUri]*document),
		debounce:  debounce,
		published: make(map[protocol.DocumentUri]struct{}),
		ws:        driver.NewWorkspace(driver.Options{MaxDiagnostics: opts.MaxDiagnostics}),
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,

		TextDocumentCodeAction:         s.codeAction,
		TextDocumentSemanticTokensFull: s.semanticTokensFull,
		TextDocumentFoldingRange:       s.foldingRange,
	}
	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// RunStdio serves on stdin and stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Infof("initializing %s %s", lspName, s.version)
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokenTypes,
			TokenModifiers: []string{},
		},
		Full: true,
	}
	capabilities.FoldingRangeProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	s.setDocument(ctx.Notify, doc.URI, doc.Text)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// полная синхронизация: последний элемент содержит весь текст
	last := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.setDocument(ctx.Notify, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.notify = ctx.Notify
	s.mu.Unlock()
	s.schedule()
	return nil
}

func (s *Server) setDocument(notify glsp.NotifyFunc, uri protocol.DocumentUri, text string) {
	path := uriToPath(uri)
	if path == "" {
		s.log.Warningf("ignoring %s: not a file URI", uri)
		return
	}
	s.mu.Lock()
	s.docs[uri] = &document{path: path, text: text}
	s.notify = notify
	s.mu.Unlock()
	s.schedule()
}

func (s *Server) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.analyze(seq) })
}

func (s *Server) latest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

// document returns the open document and the last result, if any.
func (s *Server) document(uri protocol.DocumentUri) (*document, *driver.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri], s.result
}

func boolPtr(b bool) *bool { return &b }
