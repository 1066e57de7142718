package lsp

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"dtl/internal/config"
	"dtl/internal/driver"
)

const lsName = "dtl"

var logger = commonlog.GetLogger("dtl.lsp")

// Options configures the language server.
type Options struct {
	Version string
	Parse   driver.ParseOptions
	// DiscoverConfig ищет dtl.toml/dtl.yaml от корня workspace при initialize
	DiscoverConfig bool
}

// Server publishes template diagnostics for open documents.
type Server struct {
	version  string
	discover bool
	handler  protocol.Handler
	server   *server.Server
	docs     *documents

	mu    sync.Mutex
	parse driver.ParseOptions
}

// NewServer wires the protocol handlers. Run starts serving.
func NewServer(opts Options) *Server {
	s := &Server{
		version:  opts.Version,
		discover: opts.DiscoverConfig,
		docs:     newDocuments(),
		parse:    opts.Parse,
	}
	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}
	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

// RunStdio serves the protocol over stdin/stdout until the client exits.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) parseOptions() driver.ParseOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parse
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if s.discover {
		if root := workspaceRoot(params); root != "" {
			s.loadWorkspaceConfig(root)
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) loadWorkspaceConfig(root string) {
	cfg, err := config.Discover(root)
	if err != nil {
		logger.Warningf("workspace config in %s: %v", root, err)
		return
	}
	if cfg.Path == "" {
		return
	}
	logger.Infof("using %s", cfg.Path)
	s.mu.Lock()
	s.parse = driver.ParseOptions{
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
		KnownFilters:   cfg.Filters.Known,
	}
	s.mu.Unlock()
}

func workspaceRoot(params *protocol.InitializeParams) string {
	if params.RootURI != nil && *params.RootURI != "" {
		if path := uriToPath(*params.RootURI); path != "" {
			return path
		}
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	logger.Info("client initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.set(params.TextDocument.URI, params.TextDocument.Text)
	s.publish(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// full sync: последнее изменение содержит весь текст
	change := params.ContentChanges[len(params.ContentChanges)-1]
	textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		logger.Warningf("ignoring incremental change for %s", params.TextDocument.URI)
		return nil
	}
	s.docs.set(params.TextDocument.URI, textChange.Text)
	s.publish(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(params.TextDocument.URI)
	// убираем маркеры закрытого документа
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.docs.set(params.TextDocument.URI, *params.Text)
	}
	s.publish(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) publish(ctx *glsp.Context, uri string) {
	text, ok := s.docs.get(uri)
	if !ok {
		return
	}
	diagnostics := buildDiagnostics(uri, text, s.parseOptions())
	logger.Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
