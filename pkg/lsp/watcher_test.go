package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernworks/macrols/pkg/config"
)

func watcherTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "macros"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extensions", "dice"), 0o755))

	cfg := &config.Config{
		Root: dir,
		Packs: config.PackGlobs{
			User:      []string{"macros/*.yaml", "macros/*.hcl"},
			Extension: []string{"extensions/**/*.yaml"},
		},
	}
	return &Server{workspace: dir, cfg: cfg}, dir
}

func TestIsPackFile(t *testing.T) {
	s, dir := watcherTestServer(t)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"relative yaml pack", "macros/dice.yaml", true},
		{"relative hcl pack", "macros/dice.hcl", true},
		{"absolute yaml pack", filepath.Join(dir, "macros", "dice.yaml"), true},
		{"nested extension pack", filepath.Join(dir, "extensions", "dice", "extra.yaml"), true},
		{"wrong extension", "macros/readme.md", false},
		{"outside pack dirs", "chat.txt", false},
		{"nested under user dir", "macros/sub/dice.yaml", false},
		{"outside the workspace", filepath.Join(os.TempDir(), "elsewhere.yaml"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.isPackFile(tt.path))
		})
	}
}

func TestPackBaseDirs(t *testing.T) {
	s, dir := watcherTestServer(t)

	dirs := s.packBaseDirs()
	assert.Contains(t, dirs, filepath.Join(dir, "macros"))
	assert.Contains(t, dirs, filepath.Join(dir, "extensions"))
	assert.NotContains(t, dirs, dir, "the flat root watch is added separately")
}

func TestPackBaseDirsSkipsMissing(t *testing.T) {
	s, dir := watcherTestServer(t)
	s.cfg.Packs.User = append(s.cfg.Packs.User, "missing/*.yaml")

	dirs := s.packBaseDirs()
	assert.NotContains(t, dirs, filepath.Join(dir, "missing"))
}
