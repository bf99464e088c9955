package lsp

import (
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/tavernworks/macrols/pkg/lsp/protocol"
)

// Document represents a text document with its metadata
type Document struct {
	URI        string
	LanguageID protocol.LanguageKind
	Version    int32
	Content    string
}

// DocumentManager handles document operations
type DocumentManager struct {
	store *sync.Map // map[string]*Document
	fs    afero.Fs
}

func NewDocumentManager(fs afero.Fs) *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
		fs:    fs,
	}
}

// normalizeURI ensures consistent URI handling by removing the file://
// prefix if present and converting to a clean path
func normalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

func (m *DocumentManager) GetNoFallback(uri protocol.DocumentURI) (*Document, bool) {
	normalizedURI := normalizeURI(string(uri))
	content, ok := m.store.Load(normalizedURI)
	if content == nil {
		return nil, ok
	}
	return content.(*Document), ok
}

// Get returns the tracked document for uri. Documents the client never
// opened fall back to the filesystem, so one-shot CLI calls work
// against unopened files.
func (m *DocumentManager) Get(uri protocol.DocumentURI) (*Document, bool) {
	normalizedURI := normalizeURI(string(uri))
	content, ok := m.store.Load(normalizedURI)
	if !ok {
		content, ok = m.store.Load("file://" + string(uri))
	}
	if !ok {
		contentz, err := afero.ReadFile(m.fs, normalizedURI)
		if err != nil {
			return nil, false
		}
		doc := &Document{
			URI:     normalizedURI,
			Content: string(contentz),
		}
		m.store.Store(normalizedURI, doc)
		return doc, true
	}

	doc, ok := content.(*Document)
	return doc, ok
}

func (m *DocumentManager) Store(uri protocol.DocumentURI, doc *Document) {
	normalizedURI := normalizeURI(string(uri))
	m.store.Store(normalizedURI, doc)
}

func (m *DocumentManager) Delete(uri string) {
	normalizedURI := normalizeURI(uri)
	m.store.Delete(normalizedURI)
}

// Range calls fn for every tracked document, stopping when fn returns
// false.
func (m *DocumentManager) Range(fn func(doc *Document) bool) {
	m.store.Range(func(_, value any) bool {
		doc, ok := value.(*Document)
		if !ok {
			return true
		}
		return fn(doc)
	})
}
