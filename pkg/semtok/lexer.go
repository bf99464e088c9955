package semtok

import (
	"strconv"
	"strings"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
	"github.com/tavernworks/macrols/pkg/position"
)

// regionLexer collects the tokens of one document, region by region.
type regionLexer struct {
	// tokens collects the semantic tokens in document order
	tokens []Token

	// reg resolves identifiers so builtins can be marked, may be nil
	reg *macro.Registry
}

func (l *regionLexer) emit(typ TokenType, mod TokenModifier, text string, offset int) {
	l.tokens = append(l.tokens, Token{
		Type:     typ,
		Modifier: mod,
		Range:    position.NewBasicPosition(text, offset),
	})
}

func (l *regionLexer) lexRegion(region parser.Region) {
	l.emit(TokenOperator, ModifierNone, "{{", region.Start)

	inner := region.Inner
	base := region.InnerStart
	i := 0

	skipSpace := func() {
		for i < len(inner) && isSpace(inner[i]) {
			i++
		}
	}

	skipSpace()

	// flag symbols, one keyword token each; a '/' that opens a closing
	// tag is not a flag
	for i < len(inner) {
		r := rune(inner[i])
		if !macro.IsFlagSymbol(r) {
			break
		}
		if r == '/' && i+1 < len(inner) && isIdentByte(inner[i+1]) {
			break
		}
		mod := ModifierNone
		if flag, ok := macro.FlagBySymbol(r); ok && !flag.Implemented {
			mod = ModifierDeprecated
		}
		l.emit(TokenKeyword, mod, inner[i:i+1], base+i)
		i++
		skipSpace()
	}

	// the slash of a closing tag
	if i < len(inner) && inner[i] == '/' {
		l.emit(TokenOperator, ModifierNone, "/", base+i)
		i++
	}

	// identifier up to whitespace or the first colon
	idStart := i
	for i < len(inner) && !isSpace(inner[i]) && inner[i] != ':' {
		i++
	}
	if i > idStart {
		name := inner[idStart:i]
		mod := ModifierNone
		if l.reg != nil {
			if def, ok := l.reg.Lookup(name); ok && def.Source == macro.SourceBuiltin {
				mod = ModifierDefaultLibrary
			}
		}
		l.emit(TokenMacro, mod, name, base+idStart)
	}

	// separators and argument segments
	for i < len(inner) {
		switch {
		case inner[i] == ':' && i+1 < len(inner) && inner[i+1] == ':':
			l.emit(TokenOperator, ModifierNone, "::", base+i)
			i += 2
		case inner[i] == ':':
			// a half-typed separator
			l.emit(TokenOperator, ModifierNone, ":", base+i)
			i++
		case isSpace(inner[i]):
			i++
		default:
			segStart := i
			for i < len(inner) {
				if inner[i] == ':' && (i+1 >= len(inner) || inner[i+1] == ':') {
					break
				}
				i++
			}
			seg := strings.TrimRight(inner[segStart:i], " \t\r\n")
			if seg != "" {
				typ := TokenParameter
				if _, err := strconv.ParseFloat(seg, 64); err == nil {
					typ = TokenNumber
				}
				l.emit(typ, ModifierNone, seg, base+segStart)
			}
		}
	}

	if region.Closed {
		l.emit(TokenOperator, ModifierNone, "}}", region.End-2)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b >= 0x80
}
