package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernworks/macrols/pkg/config"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.Packs.User, "macros/*.yaml")
	assert.Contains(t, cfg.Packs.Extension, "extensions/**/*.hcl")
	assert.Empty(t, cfg.Diagnostics.Disabled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
packs:
  user:
    - custom/*.yaml
diagnostics:
  disabled:
    - space-syntax-limit
log:
  level: debug
`)

	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom/*.yaml"}, cfg.Packs.User)
	assert.Equal(t, []string{"space-syntax-limit"}, cfg.Diagnostics.Disabled)

	level, err := cfg.ZerologLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log:\n  level: debug\n")
	t.Setenv("MACROLS_LOG_LEVEL", "warn")

	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MACROLS_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level=error"}))

	cfg, err := config.Load(dir, flags)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadUnsetFlagDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log:\n  level: debug\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(dir, flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log:\n  level: shouty\n")

	_, err := config.Load(dir, nil)
	require.Error(t, err)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "log:\n  level: info\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	assert.Equal(t, root, config.FindProjectRoot(nested))

	plain := t.TempDir()
	assert.Equal(t, plain, config.FindProjectRoot(plain))
}
