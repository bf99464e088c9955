// Package config loads workspace configuration for macro tooling.
//
// Settings layer in the usual order: built-in defaults, then a macrols.yaml
// in the workspace root, then MACROLS_* environment variables, then any
// command line flags that were explicitly set.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "macrols.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "macrols.yml"

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "MACROLS_"

// maxUpwardSearchLevels limits how far up the directory tree the project
// root search goes.
const maxUpwardSearchLevels = 10

// PackGlobs lists the glob patterns macro packs are loaded from, relative
// to the workspace root.
type PackGlobs struct {
	User      []string `koanf:"user"`
	Extension []string `koanf:"extension"`
}

// Diagnostics tunes the document sweep.
type Diagnostics struct {
	// Disabled lists diagnostic kinds that are never published.
	Disabled []string `koanf:"disabled"`
}

// Log configures the structured logger.
type Log struct {
	Level string `koanf:"level"`
}

// Config is the resolved workspace configuration.
type Config struct {
	// Root is the workspace directory every relative pack glob resolves
	// against. It is derived, never read from the file itself.
	Root string `koanf:"-"`

	Packs       PackGlobs   `koanf:"packs"`
	Diagnostics Diagnostics `koanf:"diagnostics"`
	Log         Log         `koanf:"log"`
}

// ZerologLevel parses the configured log level.
func (c *Config) ZerologLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel, errors.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"packs.user":           []string{"macros/*.yaml", "macros/*.yml", "macros/*.hcl"},
		"packs.extension":      []string{"extensions/**/*.yaml", "extensions/**/*.hcl"},
		"diagnostics.disabled": []string{},
		"log.level":            "info",
	}
}

// findConfigFile finds the config file in the given directory. Returns an
// empty string if not found.
func findConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}

	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}

	return ""
}

// FindProjectRoot walks up from the given directory to find a directory
// containing macrols.yaml or macrols.yml. Returns startDir when nothing
// is found, so callers always get a usable root.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if findConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// reached the filesystem root
			break
		}
		dir = parent
	}
	return startDir
}

// Load resolves the configuration for a workspace root. flags may be nil;
// when given, flags that were explicitly set win over everything else.
func Load(root string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(root); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Errorf("reading config file %s: %w", path, err)
		}
	}

	// MACROLS_LOG_LEVEL becomes log.level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", ".")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Errorf("decoding config: %w", err)
	}

	cfg.Root = root
	if _, err := cfg.ZerologLevel(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromCwd locates the project root from the current directory and
// loads its configuration.
func LoadFromCwd(flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("resolving working directory: %w", err)
	}
	return Load(FindProjectRoot(cwd), flags)
}
