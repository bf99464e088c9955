package semtok

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
	"github.com/tavernworks/macrols/pkg/position"
)

// GetTokensForText returns semantic tokens for the given document text,
// in document order. This is the main entry point for token generation.
//
//	Example:
//	   tokens, err := GetTokensForText(ctx, reg, []byte("{{roll::1d20}}"))
//	   if err != nil {
//	       return err
//	   }
//	   // Use tokens...
func GetTokensForText(ctx context.Context, reg *macro.Registry, content []byte) ([]Token, error) {
	text := string(content)

	lexer := &regionLexer{reg: reg}
	for _, region := range parser.ScanRegions(text) {
		lexer.lexRegion(region)
	}

	zerolog.Ctx(ctx).Debug().
		Int("tokens", len(lexer.tokens)).
		Msg("lexed semantic tokens")

	return lexer.tokens, nil
}

// GetTokensForRange returns the subset of tokens overlapping a specific
// range, for clients that request tokens incrementally.
func GetTokensForRange(ctx context.Context, reg *macro.Registry, content []byte, ranged position.RawPosition) ([]Token, error) {
	tokens, err := GetTokensForText(ctx, reg, content)
	if err != nil {
		return nil, err
	}

	var inRange []Token
	for _, tok := range tokens {
		if ranged.HasRangeOverlapWith(tok.Range) {
			inRange = append(inRange, tok)
		}
	}
	return inRange, nil
}

// Encode packs tokens into the relative quintuple layout used on the
// wire: delta line, delta start character, length, type index, modifier
// bits. Characters and lengths are UTF-16 code units. Tokens spanning a
// line break are split per line first.
func Encode(content string, tokens []Token) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevChar := 0, 0

	for _, tok := range tokens {
		for _, piece := range splitLines(tok.Range) {
			rng := piece.GetUTF16Range(content)
			line := rng.Start.Line
			char := rng.Start.Character
			length := rng.End.Character - rng.Start.Character

			deltaLine := line - prevLine
			deltaChar := char
			if deltaLine == 0 {
				deltaChar = char - prevChar
			}

			data = append(data,
				uint32(deltaLine),
				uint32(deltaChar),
				uint32(length),
				tok.Type.LegendIndex(),
				uint32(tok.Modifier),
			)
			prevLine, prevChar = line, char
		}
	}

	return data
}

// splitLines cuts a position at line breaks, dropping the empty pieces.
func splitLines(pos position.RawPosition) []position.RawPosition {
	if !strings.Contains(pos.Text, "\n") {
		return []position.RawPosition{pos}
	}

	var out []position.RawPosition
	offset := pos.Offset
	for _, line := range strings.Split(pos.Text, "\n") {
		if line != "" {
			out = append(out, position.NewBasicPosition(line, offset))
		}
		offset += len(line) + 1
	}
	return out
}
