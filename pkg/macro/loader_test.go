package macro_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernworks/macrols/pkg/macro"
)

const hclPack = `
macro "shrug" {
  description = "a shrug kaomoji"
  max_args    = 1

  arg "mood" {
    optional    = true
    description = "variant to use"
  }
}

macro "ooc" {
  description = "out of character note"
  scoped      = true
  min_args    = 1
  max_args    = 1

  arg "text" {
    description = "note text"
  }
}
`

const yamlPack = `
macros:
  - name: greet
    description: a random greeting
    min_args: 1
    max_args: 1
    list:
      name: greetings
      description: more greetings to choose from
    args:
      - name: greeting
        description: first greeting
        sample: hello
`

func TestLoadFileHCL(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "packs/extras.hcl", []byte(hclPack), 0o644))

	loader := macro.NewLoader(fs)
	pack, err := loader.LoadFile(context.Background(), macro.SourceUser, "packs/extras.hcl")
	require.NoError(t, err)

	require.Len(t, pack.Macros, 2)
	assert.NotEmpty(t, pack.ID)
	assert.Equal(t, "packs/extras.hcl", pack.Path)

	shrug := pack.Macros[0]
	assert.Equal(t, "shrug", shrug.Name)
	assert.Equal(t, 1, shrug.MaxArgs)
	assert.Equal(t, macro.SourceUser, shrug.Source)
	require.Len(t, shrug.Args, 1)
	assert.Equal(t, "mood", shrug.Args[0].Name)
	assert.True(t, shrug.Args[0].Optional)

	ooc := pack.Macros[1]
	assert.Equal(t, "ooc", ooc.Name)
	assert.True(t, ooc.Scoped)
}

func TestLoadFileYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "packs/greet.yaml", []byte(yamlPack), 0o644))

	loader := macro.NewLoader(fs)
	pack, err := loader.LoadFile(context.Background(), macro.SourceExtension, "packs/greet.yaml")
	require.NoError(t, err)

	require.Len(t, pack.Macros, 1)
	greet := pack.Macros[0]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, macro.SourceExtension, greet.Source)
	require.NotNil(t, greet.List)
	assert.Equal(t, "greetings", greet.List.Name)
	require.Len(t, greet.Args, 1)
	assert.Equal(t, "hello", greet.Args[0].Sample)
}

func TestLoadGlobs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "packs/extras.hcl", []byte(hclPack), 0o644))
	require.NoError(t, afero.WriteFile(fs, "packs/nested/greet.yaml", []byte(yamlPack), 0o644))
	require.NoError(t, afero.WriteFile(fs, "packs/broken.hcl", []byte("macro {"), 0o644))

	loader := macro.NewLoader(fs)
	packs, err := loader.LoadGlobs(context.Background(), macro.SourceUser, []string{
		"packs/**/*.hcl",
		"packs/**/*.yaml",
	})

	// the broken file reports an error without hiding the others
	require.Error(t, err)
	require.Len(t, packs, 2)

	defs := macro.Merge(packs)
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	assert.ElementsMatch(t, []string{"shrug", "ooc", "greet"}, names)
}

func TestLoadGlobsIntoRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "packs/extras.hcl", []byte(hclPack), 0o644))

	loader := macro.NewLoader(fs)
	packs, err := loader.LoadGlobs(context.Background(), macro.SourceUser, []string{"packs/*.hcl"})
	require.NoError(t, err)

	reg := macro.NewBuiltinRegistry()
	require.NoError(t, reg.Replace(macro.SourceUser, macro.Merge(packs)))

	def, ok := reg.Lookup("shrug")
	require.True(t, ok)
	assert.Equal(t, macro.SourceUser, def.Source)

	// builtins are still present
	_, ok = reg.Lookup("roll")
	assert.True(t, ok)
}
