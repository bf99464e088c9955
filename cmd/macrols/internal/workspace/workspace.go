// Package workspace assembles the pieces a one-shot command needs: the
// resolved configuration and a registry holding built-ins plus every
// pack the workspace provides.
package workspace

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/config"
	"github.com/tavernworks/macrols/pkg/macro"
)

// Resolve loads configuration and builds the full macro registry.
// explicitRoot wins when given; otherwise the project root is searched
// upward from startDir. Pack files that fail to parse are logged and
// skipped, never fatal.
func Resolve(ctx context.Context, explicitRoot string, flags *pflag.FlagSet, startDir string) (*config.Config, *macro.Registry, error) {
	root := explicitRoot
	if root == "" {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return nil, nil, errors.Errorf("resolving %s: %w", startDir, err)
		}
		root = config.FindProjectRoot(abs)
	}

	cfg, err := config.Load(root, flags)
	if err != nil {
		return nil, nil, errors.Errorf("loading configuration: %w", err)
	}

	registry, err := BuildRegistry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, registry, nil
}

// BuildRegistry loads every configured pack on top of the built-in
// macro catalog.
func BuildRegistry(ctx context.Context, cfg *config.Config) (*macro.Registry, error) {
	registry := macro.NewBuiltinRegistry()
	loader := macro.NewLoader(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root))

	userPacks, err := loader.LoadGlobs(ctx, macro.SourceUser, cfg.Packs.User)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some user packs failed to load")
	}
	if err := registry.Replace(macro.SourceUser, macro.Merge(userPacks)); err != nil {
		return nil, errors.Errorf("registering user macros: %w", err)
	}

	extPacks, err := loader.LoadGlobs(ctx, macro.SourceExtension, cfg.Packs.Extension)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some extension packs failed to load")
	}
	if err := registry.Replace(macro.SourceExtension, macro.Merge(extPacks)); err != nil {
		return nil, errors.Errorf("registering extension macros: %w", err)
	}

	return registry, nil
}
