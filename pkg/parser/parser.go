package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/tavernworks/macrols/pkg/macro"
)

// ParseContext is the semantic position of the caret inside one macro
// token: which flag it is on, which identifier, which argument slot,
// whether a separator is mid-typing. A fresh value is produced per
// keystroke and never mutated afterwards.
type ParseContext struct {
	// FullText and CursorOffset echo the inputs. FullText is everything
	// between one pair of macro delimiters, exclusive; CursorOffset is a
	// byte offset into it, clamped to [0, len(FullText)].
	FullText     string
	CursorOffset int

	// PaddingBefore is the run of leading whitespace before the first flag
	// or identifier character.
	PaddingBefore string

	// Flags holds every flag symbol typed before the identifier, in order.
	// CurrentFlag is the flag the caret is logically on, only ever the most
	// recently typed one; 0 when the caret is elsewhere.
	Flags       []rune
	CurrentFlag rune

	// IsInFlagsArea is true while the caret sits at or before the
	// identifier's start offset.
	IsInFlagsArea bool

	// Identifier is the macro name token, stripped of flags, surrounding
	// whitespace and trailing colons. IdentifierStart is its offset in
	// FullText.
	Identifier      string
	IdentifierStart int

	// Args holds every positional argument collected so far, trimmed. A
	// space-syntax argument, when present, is always index 0.
	Args []string

	// CurrentArgIndex is the 0-based argument slot the caret occupies, or
	// -1 while the caret is on flags, the identifier, or a half-typed
	// separator.
	CurrentArgIndex int

	// IsTypingSeparator is true when the caret sits directly after a single
	// colon that is not part of a completed "::" pair.
	IsTypingSeparator bool

	HasSpaceAfterIdentifier bool
	HasSpaceArgContent      bool

	// SeparatorCount is the number of "::" tokens in the full text,
	// independent of the caret.
	SeparatorCount int

	// IsInScopedContent and ScopedMacroName are supplied by the scope
	// tracker and threaded through untouched.
	IsInScopedContent bool
	ScopedMacroName   string
}

// Parse reconstructs the caret's semantic position within macroText. It is
// total over every string and offset; there is no error path.
func Parse(macroText string, cursorOffset int) *ParseContext {
	return parse(macroText, cursorOffset, false, "")
}

// ParseScoped is Parse for a token typed inside an open scoped macro block.
// Scope detection happens outside the per-token parse; its findings are
// only threaded through.
func ParseScoped(macroText string, cursorOffset int, scopedMacroName string) *ParseContext {
	return parse(macroText, cursorOffset, true, scopedMacroName)
}

type span struct {
	start int
	end   int
}

func parse(macroText string, cursorOffset int, inScope bool, scopedMacroName string) *ParseContext {
	if cursorOffset < 0 {
		cursorOffset = 0
	}
	if cursorOffset > len(macroText) {
		cursorOffset = len(macroText)
	}

	ctx := &ParseContext{
		FullText:          macroText,
		CursorOffset:      cursorOffset,
		CurrentArgIndex:   -1,
		IsInScopedContent: inScope,
		ScopedMacroName:   scopedMacroName,
	}

	// leading whitespace
	i := 0
	for i < len(macroText) && isSpace(macroText[i]) {
		i++
	}
	ctx.PaddingBefore = macroText[:i]

	// flag recognition; a '/' directly followed by an identifier character
	// opens a closing tag and must never be consumed as a flag
	lastFlagEnd := -1
	for i < len(macroText) {
		r := rune(macroText[i])
		if !macro.IsFlagSymbol(r) {
			break
		}
		if r == '/' && i+1 < len(macroText) && isIdentByte(macroText[i+1]) {
			break
		}
		ctx.Flags = append(ctx.Flags, r)
		i++
		lastFlagEnd = i
		for i < len(macroText) && isSpace(macroText[i]) {
			i++
		}
	}

	// the active flag is the most recently typed one, and only while the
	// caret has not moved past it
	if len(ctx.Flags) > 0 && (cursorOffset == lastFlagEnd || cursorOffset == lastFlagEnd-1) {
		ctx.CurrentFlag = ctx.Flags[len(ctx.Flags)-1]
	}

	ctx.IdentifierStart = i

	// segmentation by "::", absolute [start, end) spans
	var separators []span
	for j := i; j+1 < len(macroText); {
		if macroText[j] == ':' && macroText[j+1] == ':' {
			separators = append(separators, span{start: j, end: j + 2})
			j += 2
			continue
		}
		j++
	}
	ctx.SeparatorCount = len(separators)

	firstSegEnd := len(macroText)
	if len(separators) > 0 {
		firstSegEnd = separators[0].start
	}
	firstSeg := macroText[i:firstSegEnd]

	// identifier / space-argument split; space syntax and "::" syntax for
	// the first argument are mutually exclusive, so the split only happens
	// when the text has no separator at all
	identifier := firstSeg
	spaceArgStart := -1
	if len(separators) == 0 {
		if wsIdx := indexSpace(firstSeg); wsIdx >= 0 {
			identifier = firstSeg[:wsIdx]
			ctx.HasSpaceAfterIdentifier = true
			spaceArgStart = i + wsIdx + 1

			arg := strings.TrimSpace(firstSeg[wsIdx+1:])
			if arg != "" && arg[0] != ':' {
				ctx.HasSpaceArgContent = true
				ctx.Args = append(ctx.Args, arg)
			}
		}
	}

	// trailing whitespace survives when the split is skipped, and trailing
	// colons show up while the user is mid-way through typing "::"
	ctx.Identifier = strings.TrimRight(identifier, ": \t\r\n")

	ctx.IsInFlagsArea = cursorOffset <= ctx.IdentifierStart

	ctx.IsTypingSeparator = cursorOffset > 0 &&
		macroText[cursorOffset-1] == ':' &&
		(cursorOffset >= len(macroText) || macroText[cursorOffset] != ':') &&
		(cursorOffset < 2 || macroText[cursorOffset-2] != ':')

	// caret past a separator's end puts it in the following argument
	if len(separators) > 0 {
		for idx, sep := range separators {
			if sep.end <= cursorOffset {
				ctx.CurrentArgIndex = idx
			}
		}
	} else if ctx.HasSpaceArgContent || (ctx.HasSpaceAfterIdentifier && cursorOffset >= spaceArgStart) {
		ctx.CurrentArgIndex = 0
	}

	// a half-typed separator is never inside an argument
	if ctx.IsTypingSeparator {
		ctx.CurrentArgIndex = -1
	}

	// every non-first segment is an argument, trimmed; the space argument
	// already sits at index 0
	for k := 0; k < len(separators); k++ {
		segEnd := len(macroText)
		if k+1 < len(separators) {
			segEnd = separators[k+1].start
		}
		ctx.Args = append(ctx.Args, strings.TrimSpace(macroText[separators[k].end:segEnd]))
	}

	return ctx
}

// IdentifierSpan returns the byte span of the typed identifier token,
// trailing colons included, which replacement edits overwrite.
func (c *ParseContext) IdentifierSpan() (start, end int) {
	end = c.IdentifierStart
	for end < len(c.FullText) {
		b := c.FullText[end]
		if isSpace(b) {
			break
		}
		if b == ':' && end+1 < len(c.FullText) && c.FullText[end+1] == ':' {
			break
		}
		end++
	}
	return c.IdentifierStart, end
}

// IsClosingTag reports whether the typed token is a scoped-macro closing
// tag rather than a macro invocation.
func (c *ParseContext) IsClosingTag() bool {
	return strings.HasPrefix(strings.TrimLeft(c.FullText[c.IdentifierStart:], " \t"), "/")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func indexSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return i
		}
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b >= utf8.RuneSelf
}
