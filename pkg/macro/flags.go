package macro

// FlagDefinition describes a single-character prefix that modifies how a
// macro token is parsed or evaluated.
type FlagDefinition struct {
	Symbol        rune
	Name          string
	Description   string
	Implemented   bool
	AffectsParser bool
}

var defaultFlags = []FlagDefinition{
	{
		Symbol:      '!',
		Name:        "immediate",
		Description: "evaluate the macro once, as soon as the text is committed",
		Implemented: true,
	},
	{
		Symbol:      '?',
		Name:        "deferred",
		Description: "re-evaluate the macro every time the text is rendered",
		Implemented: false,
	},
	{
		Symbol:      '~',
		Name:        "raw",
		Description: "insert the result without any post-processing",
		Implemented: false,
	},
	{
		Symbol:        '/',
		Name:          "close",
		Description:   "close the innermost open scoped macro",
		Implemented:   true,
		AffectsParser: true,
	},
}

// Flags returns the flag table in display order.
func Flags() []FlagDefinition {
	out := make([]FlagDefinition, len(defaultFlags))
	copy(out, defaultFlags)
	return out
}

// FlagBySymbol looks up a flag by its symbol character.
func FlagBySymbol(symbol rune) (FlagDefinition, bool) {
	for _, f := range defaultFlags {
		if f.Symbol == symbol {
			return f, true
		}
	}
	return FlagDefinition{}, false
}

// IsFlagSymbol reports whether r is a registered flag symbol. Callers are
// responsible for the closing-tag exception: a '/' directly followed by an
// identifier character opens a closing tag, not a flag.
func IsFlagSymbol(r rune) bool {
	_, ok := FlagBySymbol(r)
	return ok
}
