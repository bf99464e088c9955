package protocol

import (
	"context"
)

// Client is the server-to-client surface the server uses. All of these
// travel back over the same connection the server is answering on.
type Client interface {
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#telemetry_event
	Event(context.Context, *any) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_publishDiagnostics
	PublishDiagnostics(context.Context, *PublishDiagnosticsParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#window_logMessage
	LogMessage(context.Context, *LogMessageParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#window_showMessage
	ShowMessage(context.Context, *ShowMessageParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#workspace_semanticTokens_refresh
	SemanticTokensRefresh(context.Context) error
}

func (s *CallbackClient) Event(ctx context.Context, params *any) error {
	return createNotify(ctx, s, "telemetry/event", params)
}

func (s *CallbackClient) PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error {
	return createNotify(ctx, s, "textDocument/publishDiagnostics", params)
}

func (s *CallbackClient) LogMessage(ctx context.Context, params *LogMessageParams) error {
	return createNotify(ctx, s, "window/logMessage", params)
}

func (s *CallbackClient) ShowMessage(ctx context.Context, params *ShowMessageParams) error {
	return createNotify(ctx, s, "window/showMessage", params)
}

func (s *CallbackClient) SemanticTokensRefresh(ctx context.Context) error {
	return createEmptyCallback(ctx, s, "workspace/semanticTokens/refresh")
}
