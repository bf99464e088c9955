package semtok

import (
	"github.com/tavernworks/macrols/pkg/position"
)

// TokenType represents the semantic meaning of a token
type TokenType uint32

const (
	// TokenMacro represents a macro identifier (e.g. roll)
	TokenMacro TokenType = iota + 1

	// TokenKeyword represents a flag symbol (e.g. !)
	TokenKeyword

	// TokenOperator represents delimiters, separators and the closing slash
	TokenOperator

	// TokenParameter represents an argument segment
	TokenParameter

	// TokenNumber represents a purely numeric argument segment
	TokenNumber
)

// TokenModifier represents additional characteristics of a token
type TokenModifier uint32

const (
	// ModifierNone indicates no special characteristics
	ModifierNone TokenModifier = 0

	// ModifierDefaultLibrary marks the identifier of a builtin macro
	ModifierDefaultLibrary TokenModifier = 1 << 0

	// ModifierDeprecated marks flags that parse but do nothing yet
	ModifierDeprecated TokenModifier = 1 << 1
)

// Token represents a semantic token with its type, modifiers, and position
type Token struct {
	// Type indicates the semantic meaning of the token
	Type TokenType

	// Modifier indicates any special characteristics
	Modifier TokenModifier

	// Range indicates the token's position in the source
	Range position.RawPosition
}

// TokenTypesLegend is the token type legend announced to clients, in
// encoding order.
func TokenTypesLegend() []string {
	return []string{"macro", "keyword", "operator", "parameter", "number"}
}

// TokenModifiersLegend is the modifier legend announced to clients, in
// bit order.
func TokenModifiersLegend() []string {
	return []string{"defaultLibrary", "deprecated"}
}

// LegendIndex is the token type's index into the legend.
func (t TokenType) LegendIndex() uint32 {
	return uint32(t) - 1
}

// String returns a human-readable representation of the token type
func (t TokenType) String() string {
	switch t {
	case TokenMacro:
		return "macro"
	case TokenKeyword:
		return "keyword"
	case TokenOperator:
		return "operator"
	case TokenParameter:
		return "parameter"
	case TokenNumber:
		return "number"
	default:
		return "unknown"
	}
}
