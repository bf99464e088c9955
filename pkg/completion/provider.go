package completion

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
)

// Provider assembles the option sequence for one keystroke. The list is
// rebuilt from the registry on every call so definition changes show up
// immediately.
type Provider struct {
	registry *macro.Registry
}

func NewProvider(registry *macro.Registry) *Provider {
	return &Provider{registry: registry}
}

// Options builds the ordered option list for a caret inside one macro
// token: the closing tag for the innermost open scope first, then every
// known macro, then the flag symbols while the caret is still in the
// flags area.
func (p *Provider) Options(pctx *parser.ParseContext) []Option {
	options := make([]Option, 0, p.registry.Len()+8)

	if pctx.IsInScopedContent && pctx.ScopedMacroName != "" {
		options = append(options, NewClosingTagOption(pctx.ScopedMacroName))
	}

	for _, def := range p.registry.All() {
		options = append(options, NewMacroOption(def, pctx))
	}

	if pctx.IsInFlagsArea {
		for _, flag := range p.registry.Flags() {
			options = append(options, NewFlagOption(flag))
		}
	}

	return options
}

// Result pairs the options for a caret with the parse that produced them.
type Result struct {
	Context *parser.ParseContext
	Region  parser.Region
	Options []Option
}

// OptionsAt parses the document around the caret and assembles options
// for it. The second return is false when the caret is not inside any
// macro token.
func (p *Provider) OptionsAt(ctx context.Context, text string, offset int) (*Result, bool) {
	pctx, region, ok := parser.ParseAt(text, offset, p.registry)
	if !ok {
		return nil, false
	}

	options := p.Options(pctx)

	zerolog.Ctx(ctx).Debug().
		Int("offset", offset).
		Str("identifier", pctx.Identifier).
		Int("options", len(options)).
		Msg("assembled completion options")

	return &Result{Context: pctx, Region: region, Options: options}, true
}

// StaticOptions lists every known macro without any typing context, for
// surfaces like documentation tables.
func (p *Provider) StaticOptions(style MacroStyle) []Option {
	defs := p.registry.All()
	options := make([]Option, 0, len(defs))
	for _, def := range defs {
		options = append(options, NewStaticMacroOption(def, style))
	}
	return options
}
