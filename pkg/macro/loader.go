package macro

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Pack is one loaded macro pack file.
type Pack struct {
	// ID is a fresh instance id per load, carried through logs so reloads
	// of the same path can be told apart.
	ID     string
	Path   string
	Source Source
	Macros []Definition
}

type packFile struct {
	Macros []Definition `hcl:"macro,block" yaml:"macros"`
}

// Loader reads macro packs from a filesystem. Paths and glob patterns are
// relative to the filesystem root, so callers anchor it at the workspace.
type Loader struct {
	fs afero.Fs
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// LoadGlobs resolves doublestar patterns and parses every match in path
// order. Per-file failures are accumulated and returned alongside the packs
// that did load; one broken file never hides the rest.
func (l *Loader) LoadGlobs(ctx context.Context, source Source, patterns []string) ([]Pack, error) {
	logger := zerolog.Ctx(ctx)

	fsys := afero.NewIOFS(l.fs)
	seen := map[string]bool{}
	var paths []string
	var errs error
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("glob %q: %w", pattern, err))
			continue
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)

	packs := make([]Pack, 0, len(paths))
	for _, path := range paths {
		pack, err := l.LoadFile(ctx, source, path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		logger.Debug().
			Str("path", path).
			Str("pack_id", pack.ID).
			Int("macros", len(pack.Macros)).
			Msg("loaded macro pack")
		packs = append(packs, *pack)
	}

	return packs, errs
}

// LoadFile parses a single pack file, YAML or HCL selected by extension.
func (l *Loader) LoadFile(ctx context.Context, source Source, path string) (*Pack, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading macro pack %s: %w", path, err)
	}

	var file packFile
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("parsing YAML pack %s: %w", path, err)
		}
	} else {
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL pack %s: %s", path, diags.Error())
		}

		evalCtx := &hcl.EvalContext{
			Variables: map[string]cty.Value{},
		}
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &file); diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL pack %s: %s", path, diags.Error())
		}
	}

	// packs cannot claim a different source than the one they load under
	for i := range file.Macros {
		file.Macros[i].Source = source
	}

	return &Pack{
		ID:     uuid.NewString(),
		Path:   path,
		Source: source,
		Macros: file.Macros,
	}, nil
}

// Merge flattens the macro lists of several packs in load order.
func Merge(packs []Pack) []Definition {
	var defs []Definition
	for _, pack := range packs {
		defs = append(defs, pack.Macros...)
	}
	return defs
}
