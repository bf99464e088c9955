package macro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernworks/macrols/pkg/macro"
)

func TestLookup(t *testing.T) {
	reg := macro.NewBuiltinRegistry()

	tests := []struct {
		name      string
		query     string
		wantMacro string
		wantOK    bool
	}{
		{
			name:      "primary name",
			query:     "roll",
			wantMacro: "roll",
			wantOK:    true,
		},
		{
			name:      "alias",
			query:     "dice",
			wantMacro: "roll",
			wantOK:    true,
		},
		{
			name:      "case insensitive",
			query:     "GetVar",
			wantMacro: "getvar",
			wantOK:    true,
		},
		{
			name:   "unknown",
			query:  "doesnotexist",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := reg.Lookup(tt.query)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantMacro, def.Name)
			}
		})
	}
}

func TestReplaceShadowsBuiltins(t *testing.T) {
	reg := macro.NewBuiltinRegistry()

	before, ok := reg.Lookup("roll")
	require.True(t, ok)
	require.Equal(t, macro.SourceBuiltin, before.Source)

	err := reg.Replace(macro.SourceUser, []macro.Definition{
		{
			Name:        "roll",
			MinArgs:     1,
			MaxArgs:     1,
			Description: "house rules dice",
		},
	})
	require.NoError(t, err)

	after, ok := reg.Lookup("roll")
	require.True(t, ok)
	assert.Equal(t, macro.SourceUser, after.Source)
	assert.Equal(t, "house rules dice", after.Description)

	// dropping the user pack restores the builtin
	err = reg.Replace(macro.SourceUser, nil)
	require.NoError(t, err)

	restored, ok := reg.Lookup("roll")
	require.True(t, ok)
	assert.Equal(t, macro.SourceBuiltin, restored.Source)
}

func TestReplaceKeepsValidDefinitions(t *testing.T) {
	reg := macro.NewRegistry()

	err := reg.Replace(macro.SourceUser, []macro.Definition{
		{Name: "good", MaxArgs: 1},
		{Name: "bad", MinArgs: 3, MaxArgs: 1},
		{Name: ""},
	})
	require.Error(t, err)

	_, ok := reg.Lookup("good")
	assert.True(t, ok, "valid macro should survive a partially bad pack")
	_, ok = reg.Lookup("bad")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestAllSorted(t *testing.T) {
	reg := macro.NewBuiltinRegistry()

	all := reg.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestAliasNeverShadowsPrimaryName(t *testing.T) {
	reg := macro.NewRegistry()

	err := reg.Replace(macro.SourceUser, []macro.Definition{
		{Name: "pick", Description: "primary"},
		{Name: "chooser", Aliases: []string{"pick"}, Description: "aliased"},
	})
	require.NoError(t, err)

	def, ok := reg.Lookup("pick")
	require.True(t, ok)
	assert.Equal(t, "primary", def.Description)
}

func TestFlagTable(t *testing.T) {
	flags := macro.Flags()
	require.NotEmpty(t, flags)

	immediate, ok := macro.FlagBySymbol('!')
	require.True(t, ok)
	assert.True(t, immediate.Implemented)
	assert.False(t, immediate.AffectsParser)

	closeFlag, ok := macro.FlagBySymbol('/')
	require.True(t, ok)
	assert.True(t, closeFlag.AffectsParser)

	assert.True(t, macro.IsFlagSymbol('~'))
	assert.False(t, macro.IsFlagSymbol('x'))
}
