package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/render"
)

func TestChars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "ascii",
			text: "roll",
			want: []string{"r", "o", "l", "l"},
		},
		{
			name: "combining mark stays with its base",
			text: "éx",
			want: []string{"é", "x"},
		},
		{
			name: "emoji is one cell",
			text: "🎲ok",
			want: []string{"🎲", "o", "k"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := render.Chars(tt.text)
			got := make([]string, 0, len(cells))
			for _, cell := range cells {
				require.Equal(t, render.KindChar, cell.Kind)
				got = append(got, cell.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainText(t *testing.T) {
	row := render.Row(
		render.Badge(render.ClassGlyph, "{}"),
		render.Node{Kind: render.KindChar, Text: "r"},
		render.Node{Kind: render.KindChar, Text: "o"},
		render.Spacer(),
		render.Span(render.ClassMuted, "rolls dice"),
	)
	assert.Equal(t, "{} ro rolls dice", render.PlainText(row))

	panel := render.Panel(
		render.Row(render.Span(render.ClassNone, "first")),
		render.Row(render.Span(render.ClassNone, "second")),
	)
	assert.Equal(t, "first\nsecond", render.PlainText(panel))
}

func TestMarkdown(t *testing.T) {
	panel := render.Panel(
		render.Code("roll::formula"),
		render.Banner(render.ClassWarning,
			render.Row(render.Span(render.ClassWarning, "warning: too many arguments")),
		),
		render.Row(render.Span(render.ClassNone, "rolls dice")),
	)

	want := "```\nroll::formula\n```\n\n> warning: too many arguments\n\nrolls dice"
	assert.Equal(t, want, render.Markdown(panel))
}

func TestFormatSignature(t *testing.T) {
	reg := macro.NewBuiltinRegistry()

	tests := []struct {
		macroName string
		want      string
	}{
		{macroName: "user", want: "user"},
		{macroName: "roll", want: "roll::formula"},
		{macroName: "time", want: "time[::format]"},
		{macroName: "setvar", want: "setvar::name::value"},
		{macroName: "random", want: "random::item::…"},
	}

	for _, tt := range tests {
		t.Run(tt.macroName, func(t *testing.T) {
			def, ok := reg.Lookup(tt.macroName)
			require.True(t, ok)
			assert.Equal(t, tt.want, render.FormatSignature(def))
		})
	}
}

func TestArgAnnotation(t *testing.T) {
	assert.Equal(t, "required, string",
		render.ArgAnnotation(&macro.ArgDef{Name: "formula", Types: []string{"string"}}))
	assert.Equal(t, "optional, default HH:mm, string",
		render.ArgAnnotation(&macro.ArgDef{Name: "format", Optional: true, Default: "HH:mm", Types: []string{"string"}}))
	assert.Equal(t, "optional",
		render.ArgAnnotation(&macro.ArgDef{Name: "x", Optional: true}))
	assert.Equal(t, "required, string or number",
		render.ArgAnnotation(&macro.ArgDef{Name: "value", Types: []string{"string", "number"}}))
}

func TestDetailPanel(t *testing.T) {
	reg := macro.NewBuiltinRegistry()
	def, ok := reg.Lookup("setvar")
	require.True(t, ok)

	panel := render.DetailPanel(def, 1)
	require.Equal(t, render.KindPanel, panel.Kind)

	text := render.PlainText(panel)
	assert.Contains(t, text, "setvar::name::value")
	assert.Contains(t, text, "sets a local variable")
	assert.Contains(t, text, "value")
	assert.Contains(t, text, "builtin")

	// the active slot is marked, the others muted
	var activeNames []string
	for _, child := range panel.Nodes {
		if child.Kind != render.KindRow {
			continue
		}
		for _, cell := range child.Nodes {
			if cell.Class == render.ClassActive {
				activeNames = append(activeNames, cell.Text)
			}
		}
	}
	assert.Equal(t, []string{"value"}, activeNames)
}

func TestDetailPanelAliases(t *testing.T) {
	reg := macro.NewBuiltinRegistry()
	def, ok := reg.Lookup("roll")
	require.True(t, ok)

	text := render.PlainText(render.DetailPanel(def, -1))
	assert.Contains(t, text, "aliases: dice")

	_, hasAlias := render.AliasIndicator(def)
	assert.True(t, hasAlias)

	user, ok := reg.Lookup("user")
	require.True(t, ok)
	_, hasAlias = render.AliasIndicator(user)
	assert.False(t, hasAlias)
}
