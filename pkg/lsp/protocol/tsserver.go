package protocol

import (
	"context"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
)

// Server is the subset of the LSP server surface this implementation
// serves. Anything not listed here is rejected by jrpc2 as an unknown
// method, which the protocol permits for optional capabilities.
type Server interface {
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialize
	Initialize(context.Context, *InitializeParams) (*InitializeResult, error)
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialized
	Initialized(context.Context, *InitializedParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#shutdown
	Shutdown(context.Context) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#exit
	Exit(context.Context) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#setTrace
	SetTrace(context.Context, *SetTraceParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didOpen
	DidOpen(context.Context, *DidOpenTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didChange
	DidChange(context.Context, *DidChangeTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didSave
	DidSave(context.Context, *DidSaveTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didClose
	DidClose(context.Context, *DidCloseTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#workspace_didChangeWatchedFiles
	DidChangeWatchedFiles(context.Context, *DidChangeWatchedFilesParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_completion
	Completion(context.Context, *CompletionParams) (*CompletionList, error)
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_hover
	Hover(context.Context, *HoverParams) (*Hover, error)
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_semanticTokens_full
	SemanticTokensFull(context.Context, *SemanticTokensParams) (*SemanticTokens, error)
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_semanticTokens_range
	SemanticTokensRange(context.Context, *SemanticTokensRangeParams) (*SemanticTokens, error)
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"$/cancelRequest":                   createCancelHandler(),
		"$/setTrace":                        createEmptyResultHandler(server.SetTrace),
		"exit":                              createEmptyHandler(server.Exit),
		"initialize":                        createHandler(server.Initialize),
		"initialized":                       createEmptyResultHandler(server.Initialized),
		"shutdown":                          createEmptyHandler(server.Shutdown),
		"textDocument/completion":           createHandler(server.Completion),
		"textDocument/didChange":            createEmptyResultHandler(server.DidChange),
		"textDocument/didClose":             createEmptyResultHandler(server.DidClose),
		"textDocument/didOpen":              createEmptyResultHandler(server.DidOpen),
		"textDocument/didSave":              createEmptyResultHandler(server.DidSave),
		"textDocument/hover":                createHandler(server.Hover),
		"textDocument/semanticTokens/full":  createHandler(server.SemanticTokensFull),
		"textDocument/semanticTokens/range": createHandler(server.SemanticTokensRange),
		"workspace/didChangeWatchedFiles":   createEmptyResultHandler(server.DidChangeWatchedFiles),
	}
}

// createCancelHandler forwards $/cancelRequest to jrpc2's own request
// cancellation, which in turn cancels the context of the in-flight
// handler.
func createCancelHandler() handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (any, error) {
		var params CancelParams
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}
		if srv := jrpc2.ServerFromContext(ctx); srv != nil {
			srv.CancelRequest(fmt.Sprint(params.ID))
		}
		return nil, nil
	})
}
