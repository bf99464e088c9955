package lsp_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernworks/macrols/pkg/config"
	"github.com/tavernworks/macrols/pkg/lsp"
	"github.com/tavernworks/macrols/pkg/lsp/protocol"
)

// captureClient records every notification the server pushes, standing in
// for the editor side of the connection.
type captureClient struct {
	mu        sync.Mutex
	published []*protocol.PublishDiagnosticsParams
	refreshes int
}

var _ protocol.Client = (*captureClient)(nil)

func (c *captureClient) Event(ctx context.Context, params *any) error { return nil }

func (c *captureClient) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, params)
	return nil
}

func (c *captureClient) LogMessage(ctx context.Context, params *protocol.LogMessageParams) error {
	return nil
}

func (c *captureClient) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error {
	return nil
}

func (c *captureClient) SemanticTokensRefresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshes++
	return nil
}

func (c *captureClient) lastPublished(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.published, "no diagnostics were published")
	return c.published[len(c.published)-1]
}

const extrasPack = `
macros:
  - name: fanfare
    description: play a triumphant sound
`

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macrols.yaml"), []byte("log:\n  level: debug\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "macros"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macros", "extras.yaml"), []byte(extrasPack), 0o644))
	return dir
}

func newTestServer(t *testing.T) (*lsp.Server, *captureClient, string) {
	t.Helper()
	dir := newTestWorkspace(t)

	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)

	ctx := context.Background()
	server := lsp.NewServer(ctx, cfg)
	client := &captureClient{}
	server.SetCallbackClient(client)

	result, err := server.Initialize(ctx, &protocol.InitializeParams{
		RootURI: protocol.DocumentURI("file://" + dir),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	t.Cleanup(func() {
		require.NoError(t, server.Shutdown(context.Background()))
	})

	return server, client, dir
}

func openDocument(t *testing.T, server *lsp.Server, uri string, text string) {
	t.Helper()
	err := server.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: protocol.MacroLanguage,
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

func findItem(items []protocol.CompletionItem, label string) (protocol.CompletionItem, bool) {
	for _, item := range items {
		if item.Label == label {
			return item, true
		}
	}
	return protocol.CompletionItem{}, false
}

func TestInitializeCapabilities(t *testing.T) {
	dir := newTestWorkspace(t)
	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)

	ctx := context.Background()
	server := lsp.NewServer(ctx, cfg)

	result, err := server.Initialize(ctx, &protocol.InitializeParams{
		RootURI: protocol.DocumentURI("file://" + dir),
	})
	require.NoError(t, err)

	caps := result.Capabilities
	require.NotNil(t, caps.TextDocumentSync)
	assert.True(t, caps.TextDocumentSync.OpenClose)
	assert.Equal(t, protocol.SyncIncremental, caps.TextDocumentSync.Change)
	require.NotNil(t, caps.TextDocumentSync.Save)
	assert.True(t, caps.TextDocumentSync.Save.IncludeText)

	assert.True(t, caps.HoverProvider)
	require.NotNil(t, caps.CompletionProvider)
	assert.Contains(t, caps.CompletionProvider.TriggerCharacters, "{")
	assert.Contains(t, caps.CompletionProvider.TriggerCharacters, ":")

	require.NotNil(t, caps.SemanticTokensProvider)
	assert.True(t, caps.SemanticTokensProvider.Full)
	assert.True(t, caps.SemanticTokensProvider.Range)
	assert.NotEmpty(t, caps.SemanticTokensProvider.Legend.TokenTypes)

	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "macrols", result.ServerInfo.Name)
}

func TestInitializeLoadsWorkspacePacks(t *testing.T) {
	server, _, _ := newTestServer(t)

	def, ok := server.Registry().Lookup("fanfare")
	require.True(t, ok, "workspace pack macro should be registered")
	assert.Equal(t, "play a triumphant sound", def.Description)

	// built-ins survive the pack load
	_, ok = server.Registry().Lookup("roll")
	assert.True(t, ok)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "hello {{bogus}} world")

	published := client.lastPublished(t)
	assert.Equal(t, protocol.DocumentURI(uri), published.URI)
	require.Len(t, published.Diagnostics, 1)

	diag := published.Diagnostics[0]
	assert.Equal(t, `unknown macro "bogus"`, diag.Message)
	assert.Equal(t, protocol.SeverityInformation, diag.Severity)
	assert.Equal(t, "unknown-macro", diag.Code)
	assert.Equal(t, "macrols", diag.Source)
	assert.Equal(t, uint32(8), diag.Range.Start.Character)
	assert.Equal(t, uint32(13), diag.Range.End.Character)

	client.mu.Lock()
	refreshes := client.refreshes
	client.mu.Unlock()
	assert.Equal(t, 1, refreshes, "open should request a semantic token refresh")
}

func TestDidChangeAppliesIncrementalEdit(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{rol")

	published := client.lastPublished(t)
	require.Len(t, published.Diagnostics, 2, "unterminated + unknown macro")

	// append the rest of the token at the end of line 0
	err := server.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 5},
					End:   protocol.Position{Line: 0, Character: 5},
				},
				Text: "l::1d6}}",
			},
		},
	})
	require.NoError(t, err)

	doc, ok := server.Documents().Get(protocol.DocumentURI(uri))
	require.True(t, ok)
	assert.Equal(t, "{{roll::1d6}}", doc.Content)
	assert.Equal(t, int32(2), doc.Version)

	published = client.lastPublished(t)
	assert.Empty(t, published.Diagnostics, "completed token should be clean")
}

func TestDidChangeFullReplacement(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{bogus}}")

	err := server.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: "{{user}}"},
		},
	})
	require.NoError(t, err)

	doc, ok := server.Documents().Get(protocol.DocumentURI(uri))
	require.True(t, ok)
	assert.Equal(t, "{{user}}", doc.Content)
	assert.Empty(t, client.lastPublished(t).Diagnostics)
}

func TestDidSaveUsesIncludedText(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{user}}")

	saved := "{{mystery}}"
	err := server.DidSave(context.Background(), &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Text:         &saved,
	})
	require.NoError(t, err)

	doc, ok := server.Documents().Get(protocol.DocumentURI(uri))
	require.True(t, ok)
	assert.Equal(t, saved, doc.Content)

	published := client.lastPublished(t)
	require.Len(t, published.Diagnostics, 1)
	assert.Equal(t, `unknown macro "mystery"`, published.Diagnostics[0].Message)
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{bogus}}")
	require.Len(t, client.lastPublished(t).Diagnostics, 1)

	err := server.DidClose(context.Background(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	require.NoError(t, err)

	published := client.lastPublished(t)
	assert.Equal(t, protocol.DocumentURI(uri), published.URI)
	assert.Empty(t, published.Diagnostics, "close should clear stale findings")
}

func TestCompletionMacroItems(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{us")

	list, err := server.Completion(context.Background(), protocol.NewCompletionParams(uri, protocol.Position{Line: 0, Character: 4}))
	require.NoError(t, err)
	require.NotNil(t, list)

	// the engine offers the whole catalog, clients filter by typed prefix
	user, ok := findItem(list.Items, "user")
	require.True(t, ok)
	assert.Equal(t, protocol.CompletionItemFunction, user.Kind)
	assert.Equal(t, "100-user", user.SortText)
	assert.Equal(t, "user", user.FilterText)
	require.NotNil(t, user.Documentation)
	assert.Equal(t, protocol.Markdown, user.Documentation.Kind)

	// user takes no arguments, committing it closes the token in one go
	require.NotNil(t, user.TextEdit)
	assert.Equal(t, "user}}", user.TextEdit.NewText)
	assert.Equal(t, uint32(2), user.TextEdit.Range.Start.Character)
	assert.Equal(t, uint32(4), user.TextEdit.Range.End.Character)

	// roll still needs its formula, so only the name is inserted
	roll, ok := findItem(list.Items, "roll")
	require.True(t, ok)
	assert.Nil(t, roll.TextEdit)
	assert.Equal(t, "roll", roll.InsertText)
	assert.Contains(t, roll.Detail, "roll")

	// workspace pack macros appear alongside built-ins
	_, ok = findItem(list.Items, "fanfare")
	assert.True(t, ok)
}

func TestCompletionClosedRegionKeepsBraces(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{us}}")

	list, err := server.Completion(context.Background(), protocol.NewCompletionParams(uri, protocol.Position{Line: 0, Character: 4}))
	require.NoError(t, err)

	user, ok := findItem(list.Items, "user")
	require.True(t, ok)
	require.NotNil(t, user.TextEdit)
	assert.Equal(t, "user", user.TextEdit.NewText, "existing braces must not be doubled")
}

func TestCompletionFlagItems(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{")

	list, err := server.Completion(context.Background(), protocol.NewCompletionParams(uri, protocol.Position{Line: 0, Character: 2}))
	require.NoError(t, err)

	immediate, ok := findItem(list.Items, "!")
	require.True(t, ok)
	assert.Equal(t, protocol.CompletionItemOperator, immediate.Kind)
	assert.Equal(t, "immediate", immediate.Detail)
	assert.False(t, immediate.Deprecated)
	assert.Equal(t, "!", immediate.InsertText)

	deferred, ok := findItem(list.Items, "?")
	require.True(t, ok)
	assert.True(t, deferred.Deprecated, "unimplemented flags are flagged as such")
}

func TestCompletionClosingTagPreselected(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{upper}}shout {{")

	list, err := server.Completion(context.Background(), protocol.NewCompletionParams(uri, protocol.Position{Line: 0, Character: 17}))
	require.NoError(t, err)

	closing, ok := findItem(list.Items, "/upper")
	require.True(t, ok)
	assert.Equal(t, protocol.CompletionItemKeyword, closing.Kind)
	assert.True(t, closing.Preselect)
	assert.Equal(t, "001-/upper", closing.SortText, "closing tag sorts before every macro")
	require.NotNil(t, closing.TextEdit)
	assert.Equal(t, "/upper}}", closing.TextEdit.NewText)
}

func TestCompletionOutsideMacroIsEmpty(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "plain text only")

	list, err := server.Completion(context.Background(), protocol.NewCompletionParams(uri, protocol.Position{Line: 0, Character: 5}))
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list.Items)
}

func TestHoverOnMacroName(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{roll::1d20}}")

	hover, err := server.Hover(context.Background(), protocol.NewHoverParams(uri, protocol.Position{Line: 0, Character: 3}))
	require.NoError(t, err)
	require.NotNil(t, hover)

	assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "roll")

	require.NotNil(t, hover.Range)
	assert.Equal(t, uint32(2), hover.Range.Start.Character)
	assert.Equal(t, uint32(6), hover.Range.End.Character)
}

func TestHoverOutsideMacroIsNil(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "nothing here {{roll::1d20}}")

	hover, err := server.Hover(context.Background(), protocol.NewHoverParams(uri, protocol.Position{Line: 0, Character: 3}))
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestSemanticTokensFull(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{!roll::1d20}}")

	tokens, err := server.SemanticTokensFull(context.Background(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)

	require.NotEmpty(t, tokens.Data)
	assert.Zero(t, len(tokens.Data)%5, "token data is encoded in quintuples")
}

func TestSemanticTokensRange(t *testing.T) {
	server, _, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{roll::1d20}}\n{{user}}\n")

	full, err := server.SemanticTokensFull(context.Background(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	require.NoError(t, err)

	ranged, err := server.SemanticTokensRange(context.Background(), &protocol.SemanticTokensRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 14},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, ranged)

	require.NotEmpty(t, ranged.Data)
	assert.Less(t, len(ranged.Data), len(full.Data), "second line tokens are excluded")
}

func TestDidChangeWatchedFilesReloadsPacks(t *testing.T) {
	server, client, dir := newTestServer(t)
	uri := "file://" + filepath.Join(dir, "chat.txt")

	openDocument(t, server, uri, "{{trumpet}}")
	require.Len(t, client.lastPublished(t).Diagnostics, 1, "trumpet is not known yet")

	// a change outside the pack globs is ignored
	err := server.DidChangeWatchedFiles(context.Background(), &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{
			{URI: protocol.DocumentURI("file://" + filepath.Join(dir, "notes.txt")), Type: protocol.FileChanged},
		},
	})
	require.NoError(t, err)
	_, ok := server.Registry().Lookup("trumpet")
	require.False(t, ok)

	packPath := filepath.Join(dir, "macros", "brass.yaml")
	pack := "macros:\n  - name: trumpet\n    description: a brass fanfare\n"
	require.NoError(t, os.WriteFile(packPath, []byte(pack), 0o644))

	err = server.DidChangeWatchedFiles(context.Background(), &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{
			{URI: protocol.DocumentURI("file://" + packPath), Type: protocol.FileCreated},
		},
	})
	require.NoError(t, err)

	_, ok = server.Registry().Lookup("trumpet")
	require.True(t, ok, "new pack should be loaded")

	published := client.lastPublished(t)
	assert.Equal(t, protocol.DocumentURI(uri), published.URI)
	assert.Empty(t, published.Diagnostics, "open documents are re-swept against the new packs")
}

func TestDocumentFallbackForUnopenedFile(t *testing.T) {
	server, _, dir := newTestServer(t)

	path := filepath.Join(dir, "unopened.txt")
	require.NoError(t, os.WriteFile(path, []byte("{{roll::1d20}}"), 0o644))

	hover, err := server.Hover(context.Background(), protocol.NewHoverParams("file://"+path, protocol.Position{Line: 0, Character: 3}))
	require.NoError(t, err)
	require.NotNil(t, hover, "unopened files fall back to disk content")
	assert.Contains(t, hover.Contents.Value, "roll")
}

func TestManyDocumentsIndependentDiagnostics(t *testing.T) {
	server, client, dir := newTestServer(t)

	for i := 0; i < 3; i++ {
		uri := fmt.Sprintf("file://%s/doc-%d.txt", dir, i)
		openDocument(t, server, uri, fmt.Sprintf("{{unknown%d}}", i))
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.published, 3)
	for i, published := range client.published {
		require.Len(t, published.Diagnostics, 1)
		assert.Equal(t, fmt.Sprintf("unknown macro %q", fmt.Sprintf("unknown%d", i)), published.Diagnostics[0].Message)
	}
}
