package lsp

import (
	"context"
	"runtime/debug"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/completion"
	"github.com/tavernworks/macrols/pkg/config"
	"github.com/tavernworks/macrols/pkg/diagnostic"
	"github.com/tavernworks/macrols/pkg/lsp/protocol"
	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/semtok"
)

// Server represents an LSP server instance. One instance serves one
// client connection.
type Server struct {
	// Document management
	documents *DocumentManager

	// Workspace management
	workspace   string
	packWatcher *packWatcher

	// cfg is replaced only during Initialize, before the pack watcher
	// starts.
	cfg *config.Config
	fs  afero.Fs

	registry *macro.Registry
	provider *completion.Provider

	// Server state
	initialized bool
	shutdown    bool

	// Server identification
	id string

	// LSP capabilities
	clientCapabilities protocol.ClientCapabilities
	serverCapabilities protocol.ServerCapabilities

	// LSP client for notifications
	callbackClient protocol.Client
}

var _ protocol.Server = (*Server)(nil)
var _ protocol.CallbackAware = (*Server)(nil)

func NewServer(ctx context.Context, cfg *config.Config) *Server {
	registry := macro.NewBuiltinRegistry()
	fs := afero.NewOsFs()
	return &Server{
		id:        xid.New().String(),
		documents: NewDocumentManager(fs),
		workspace: cfg.Root,
		cfg:       cfg,
		fs:        fs,
		registry:  registry,
		provider:  completion.NewProvider(registry),
	}
}

func (me *Server) SetCallbackClient(client protocol.Client) {
	me.callbackClient = client
}

func (me *Server) Documents() *DocumentManager {
	return me.documents
}

func (me *Server) Registry() *macro.Registry {
	return me.registry
}

// BuildServerInstance wraps the server in a jrpc2 instance ready to
// serve a single connection.
func (me *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions) *protocol.ServerInstance {
	return protocol.NewServerInstance(ctx, me, opts)
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("initializing server")

	// Store client capabilities
	s.clientCapabilities = params.Capabilities
	logger.Debug().
		Interface("semantic_tokens", s.clientCapabilities.TextDocument.SemanticTokens).
		Interface("workspace_semantic_tokens", s.clientCapabilities.Workspace.SemanticTokens).
		Msg("received client capabilities")

	workspace := params.RootURI.Path()
	if workspace == "" {
		workspace = params.RootPath
	}
	if workspace == "" {
		workspace = s.cfg.Root
	}
	s.workspace = workspace

	if workspace != s.cfg.Root {
		// Command line flags were layered into the startup config; a
		// workspace reload cannot reapply them.
		cfg, err := config.Load(workspace, nil)
		if err != nil {
			logger.Warn().Err(err).Str("workspace", workspace).Msg("workspace config not loadable, keeping startup config")
		} else {
			s.cfg = cfg
		}
	}

	if err := s.loadPacks(ctx); err != nil {
		logger.Warn().Err(err).Msg("loading macro packs")
	}

	// Store server capabilities
	s.serverCapabilities = protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.SyncIncremental,
			Save:      &protocol.SaveOptions{IncludeText: true},
		},
		HoverProvider: true,
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"{", "!", ":", "/", " "},
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     semtok.TokenTypesLegend(),
				TokenModifiers: semtok.TokenModifiersLegend(),
			},
			Full:  true,
			Range: true,
		},
	}

	s.initialized = true

	return &protocol.InitializeResult{
		Capabilities: s.serverCapabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "macrols",
			Version: buildVersion(),
		},
	}, nil
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return info.Main.Version
}

// loadPacks reloads every user and extension pack from the workspace
// into the registry. Built-in macros are unaffected.
func (s *Server) loadPacks(ctx context.Context) error {
	loader := macro.NewLoader(afero.NewBasePathFs(s.fs, s.workspace))

	userPacks, err := loader.LoadGlobs(ctx, macro.SourceUser, s.cfg.Packs.User)
	if err != nil {
		return errors.Errorf("loading user packs: %w", err)
	}
	if err := s.registry.Replace(macro.SourceUser, macro.Merge(userPacks)); err != nil {
		return errors.Errorf("replacing user macros: %w", err)
	}

	extPacks, err := loader.LoadGlobs(ctx, macro.SourceExtension, s.cfg.Packs.Extension)
	if err != nil {
		return errors.Errorf("loading extension packs: %w", err)
	}
	if err := s.registry.Replace(macro.SourceExtension, macro.Merge(extPacks)); err != nil {
		return errors.Errorf("replacing extension macros: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("user_packs", len(userPacks)).
		Int("extension_packs", len(extPacks)).
		Int("macros", s.registry.Len()).
		Msg("macro packs loaded")

	return nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("server initialized")

	watcher, err := newPackWatcher(ctx, s)
	if err != nil {
		// Don't fail - continue without watching
		logger.Warn().Err(err).Msg("pack watcher unavailable")
		return nil
	}
	s.packWatcher = watcher

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("shutting down server")
	s.shutdown = true
	if s.packWatcher != nil {
		s.packWatcher.close()
		s.packWatcher = nil
	}
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	return nil
}

func (s *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	return nil // trace level is fixed by the logger configuration
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("document opened")

	doc := &Document{
		URI:        string(params.TextDocument.URI),
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	}

	s.documents.Store(params.TextDocument.URI, doc)

	// Request semantic token refresh
	if s.callbackClient != nil {
		err := s.callbackClient.SemanticTokensRefresh(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to refresh semantic tokens")
		}
	} else {
		logger.Warn().Msg("no callback client available for semantic token refresh")
	}

	return s.publishDiagnostics(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("document changed")

	if len(params.ContentChanges) == 0 {
		return nil
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	doc.Version = params.TextDocument.Version
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			doc.Content = change.Text
		} else {
			doc.Content = replaceContentFromRange(ctx, doc.Content, change.Range, change.Text)
		}
	}

	s.documents.Store(params.TextDocument.URI, doc)

	return s.publishDiagnostics(ctx, params.TextDocument.URI, doc.Content)
}

func replaceContentFromRange(ctx context.Context, content string, rangez *protocol.Range, text string) string {
	startPos := position.NewRawPositionFromLineAndColumn(int(rangez.Start.Line), int(rangez.Start.Character), "", content)
	endPos := position.NewRawPositionFromLineAndColumn(int(rangez.End.Line), int(rangez.End.Character), "", content)
	zerolog.Ctx(ctx).Debug().Msgf(`replacing content from %s to %s with %s`, startPos.ID(), endPos.ID(), text)
	return content[:startPos.Offset] + text + content[endPos.Offset:]
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("document saved")

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	if params.Text != nil {
		doc.Content = *params.Text
		s.documents.Store(params.TextDocument.URI, doc)
	}

	return s.publishDiagnostics(ctx, params.TextDocument.URI, doc.Content)
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("document closed")

	s.documents.Delete(string(params.TextDocument.URI))

	// Clear stale findings on the client side.
	if s.callbackClient != nil {
		return s.callbackClient.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	logger := zerolog.Ctx(ctx)

	reload := false
	for _, change := range params.Changes {
		if s.isPackFile(change.URI.Path()) {
			logger.Debug().Str("uri", string(change.URI)).Uint32("type", uint32(change.Type)).Msg("pack file changed")
			reload = true
		}
	}
	if !reload {
		return nil
	}

	return s.reloadPacksAndRepublish(ctx)
}

// reloadPacksAndRepublish rebuilds the registry from disk and refreshes
// every open document's diagnostics against the new macro set.
func (s *Server) reloadPacksAndRepublish(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if err := s.loadPacks(ctx); err != nil {
		return errors.Errorf("reloading packs: %w", err)
	}

	if s.callbackClient != nil {
		if err := s.callbackClient.SemanticTokensRefresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to refresh semantic tokens")
		}
	}

	var publishErr error
	s.documents.Range(func(doc *Document) bool {
		if err := s.publishDiagnostics(ctx, protocol.DocumentURI(doc.URI), doc.Content); err != nil {
			publishErr = err
			return false
		}
		return true
	})
	return publishErr
}

func (s *Server) identifyDiagnosticsForFile(ctx context.Context, urid protocol.DocumentURI, content string) ([]protocol.Diagnostic, error) {
	logger := zerolog.Ctx(ctx)
	uri := normalizeURI(string(urid))
	logger.Debug().Str("uri", uri).Msg("validating document")

	diagnostics := diagnostic.ForDocument(ctx, content, s.registry)
	diagnostics = diagnostic.Filter(diagnostics, s.cfg.Diagnostics.Disabled)

	var result []protocol.Diagnostic = make([]protocol.Diagnostic, len(diagnostics))

	for i, d := range diagnostics {
		result[i] = protocol.Diagnostic{
			Range:    wireRange(d.Pos.GetUTF16Range(content)),
			Severity: wireSeverity(d.Severity),
			Code:     string(d.Kind),
			Source:   "macrols",
			Message:  d.Message,
		}
	}

	return result, nil
}

func wireRange(r position.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(r.Start.Line),
			Character: uint32(r.Start.Character),
		},
		End: protocol.Position{
			Line:      uint32(r.End.Line),
			Character: uint32(r.End.Character),
		},
	}
}

func wireSeverity(sev diagnostic.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityError:
		return protocol.SeverityError
	case diagnostic.SeverityWarning:
		return protocol.SeverityWarning
	case diagnostic.SeverityHint:
		return protocol.SeverityHint
	default:
		return protocol.SeverityInformation
	}
}

func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, content string) error {
	diagnostics, err := s.identifyDiagnosticsForFile(ctx, uri, content)
	if err != nil {
		return errors.Errorf("identifying diagnostics: %w", err)
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}

	zerolog.Ctx(ctx).Debug().Int("count", len(diagnostics)).Str("uri", string(uri)).Msg("publishing diagnostics")

	if s.callbackClient != nil {
		return s.callbackClient.PublishDiagnostics(ctx, params)
	}
	zerolog.Ctx(ctx).Warn().Msg("no callback client, skipping publish diagnostics")

	return nil
}
