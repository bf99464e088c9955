package semtok_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/semtok"
)

func tok(typ semtok.TokenType, mod semtok.TokenModifier, text string, offset int) semtok.Token {
	return semtok.Token{Type: typ, Modifier: mod, Range: position.NewBasicPosition(text, offset)}
}

func TestGetTokensForText(t *testing.T) {
	reg := macro.NewBuiltinRegistry()
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want []semtok.Token
	}{
		{
			name: "macro with a separator argument",
			text: "{{roll::1d20}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "roll", 2),
				tok(semtok.TokenOperator, semtok.ModifierNone, "::", 6),
				tok(semtok.TokenParameter, semtok.ModifierNone, "1d20", 8),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 12),
			},
		},
		{
			name: "implemented flag",
			text: "{{!user}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenKeyword, semtok.ModifierNone, "!", 2),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "user", 3),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 7),
			},
		},
		{
			name: "unimplemented flag and numeric argument",
			text: "{{?roll::5}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenKeyword, semtok.ModifierDeprecated, "?", 2),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "roll", 3),
				tok(semtok.TokenOperator, semtok.ModifierNone, "::", 7),
				tok(semtok.TokenNumber, semtok.ModifierNone, "5", 9),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 10),
			},
		},
		{
			name: "closing tag",
			text: "{{/upper}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenOperator, semtok.ModifierNone, "/", 2),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "upper", 3),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 8),
			},
		},
		{
			name: "unknown macro has no modifier",
			text: "{{shrug}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenMacro, semtok.ModifierNone, "shrug", 2),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 7),
			},
		},
		{
			name: "unterminated macro has no closing operator",
			text: "text {{ro",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 5),
				tok(semtok.TokenMacro, semtok.ModifierNone, "ro", 7),
			},
		},
		{
			name: "space argument",
			text: "{{roll 2d6}}",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "roll", 2),
				tok(semtok.TokenParameter, semtok.ModifierNone, "2d6", 7),
				tok(semtok.TokenOperator, semtok.ModifierNone, "}}", 10),
			},
		},
		{
			name: "half typed separator",
			text: "{{roll:",
			want: []semtok.Token{
				tok(semtok.TokenOperator, semtok.ModifierNone, "{{", 0),
				tok(semtok.TokenMacro, semtok.ModifierDefaultLibrary, "roll", 2),
				tok(semtok.TokenOperator, semtok.ModifierNone, ":", 6),
			},
		},
		{
			name: "plain text has no tokens",
			text: "no macros here",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := semtok.GetTokensForText(ctx, reg, []byte(tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTokensForRange(t *testing.T) {
	reg := macro.NewBuiltinRegistry()
	text := "{{user}} and {{roll::3}}"

	ranged := position.NewBasicPosition("{{roll::3}}", 13)
	tokens, err := semtok.GetTokensForRange(context.Background(), reg, []byte(text), ranged)
	require.NoError(t, err)

	require.NotEmpty(t, tokens)
	for _, tok := range tokens {
		assert.GreaterOrEqual(t, tok.Range.Offset, 13, "token %s leaked out of range", tok.Range)
	}
}

func TestEncode(t *testing.T) {
	reg := macro.NewBuiltinRegistry()
	ctx := context.Background()

	t.Run("relative encoding across lines", func(t *testing.T) {
		text := "{{user}}\n{{roll::3}}"
		tokens, err := semtok.GetTokensForText(ctx, reg, []byte(text))
		require.NoError(t, err)

		want := []uint32{
			0, 0, 2, 2, 0, // {{
			0, 2, 4, 0, 1, // user
			0, 4, 2, 2, 0, // }}
			1, 0, 2, 2, 0, // {{ on the next line
			0, 2, 4, 0, 1, // roll
			0, 4, 2, 2, 0, // ::
			0, 2, 1, 4, 0, // 3
			0, 1, 2, 2, 0, // }}
		}
		assert.Equal(t, want, semtok.Encode(text, tokens))
	})

	t.Run("characters count utf16 units", func(t *testing.T) {
		text := "🎲 {{user}}"
		tokens, err := semtok.GetTokensForText(ctx, reg, []byte(text))
		require.NoError(t, err)

		want := []uint32{
			0, 3, 2, 2, 0, // {{ after an astral rune and a space
			0, 2, 4, 0, 1, // user
			0, 4, 2, 2, 0, // }}
		}
		assert.Equal(t, want, semtok.Encode(text, tokens))
	})
}
