package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// utf16RuneLen returns the number of 16-bit words in the UTF-16 encoding
// of the rune, or -1 if the rune cannot be encoded in UTF-16. It matches
// utf16.RuneLen, which is only available from go1.23.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= utf8.MaxRune:
		return 2
	default:
		return -1
	}
}

type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// ID returns a unique identifier for this position based on offset and text
func (p *RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// GetLength returns the length of the text at this position
func (p *RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

func NewRawPositionFromLineAndColumn(line, col int, text, fileText string) RawPosition {
	split := strings.Split(fileText, "\n")
	offset := 0
	for i := 0; i < line; i++ {
		offset += len(split[i]) + 1
	}
	offset += col
	return RawPosition{Text: text, Offset: offset}
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	// Calculate the bounds for both ranges
	startOffset := start.Offset
	endOffset := startOffset + start.Length()

	posOffset := p.Offset
	posEndOffset := posOffset + p.Length()

	// Handle zero-length ranges
	if p.Length() == 0 {
		// A zero-length position overlaps if it falls within the other range
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		// A zero-length position overlaps if it falls within our range
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	// Two ranges overlap if one range's start position is before the other range's end position
	// AND its end position is after the other range's start position
	return startOffset < posEndOffset && endOffset > posOffset
}

// GetLineAndColumn calculates the line and column number for a given position in the text
// Returns zero-based line and column numbers
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	if p.Offset == 0 {
		return 0, 0
	}

	// Count newlines up to pos to get line number
	line = 0 // Start at line 0
	lastNewline := -1
	for i := 0; i < p.Offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}

	// Column is just the distance from the last newline
	col = p.Offset - lastNewline - 1

	return line, col
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetRange calculates the line/column range covered by this position.
// Columns are byte based; use GetUTF16Range at the protocol boundary.
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := p.GetEndPosition().GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

// GetUTF16Range is GetRange with characters counted in UTF-16 code units,
// which is what language clients expect on the wire.
func (p RawPosition) GetUTF16Range(fileText string) Range {
	return Range{
		Start: OffsetToPlace(fileText, p.Offset),
		End:   OffsetToPlace(fileText, p.Offset+p.Length()),
	}
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

type RawPositionArray []RawPosition

func (me RawPositionArray) ToStrings() []string {
	var texts []string
	for _, pos := range me {
		texts = append(texts, pos.String())
	}
	return texts
}

// OffsetToPlace converts a byte offset in text to a zero-based line and
// UTF-16 character pair. Offsets outside the text are clamped.
func OffsetToPlace(text string, offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := 0
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	char := 0
	for _, r := range text[lineStart:offset] {
		char += utf16RuneLen(r)
	}

	return Place{Line: line, Character: char}
}

// PlaceToOffset converts a zero-based line and UTF-16 character pair to a
// byte offset in text. Characters past the end of the line stop at the line
// boundary, matching how clients clamp positions.
func PlaceToOffset(text string, place Place) int {
	offset := 0
	line := 0
	for line < place.Line && offset < len(text) {
		if text[offset] == '\n' {
			line++
		}
		offset++
	}

	remaining := place.Character
	for remaining > 0 && offset < len(text) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		units := utf16RuneLen(r)
		if units < 0 {
			units = 1
		}
		remaining -= units
		offset += size
	}

	return offset
}
