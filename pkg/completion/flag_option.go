package completion

import (
	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/render"
)

// FlagOption suggests a single flag symbol while the caret is still in the
// flags area of a macro token.
type FlagOption struct {
	flag macro.FlagDefinition
}

func NewFlagOption(flag macro.FlagDefinition) *FlagOption {
	return &FlagOption{flag: flag}
}

// Flag exposes the suggested flag.
func (o *FlagOption) Flag() macro.FlagDefinition { return o.flag }

func (o *FlagOption) Name() string { return string(o.flag.Symbol) }

func (o *FlagOption) SortPriority() int { return DefaultPriority }

func (o *FlagOption) Selectable() bool { return true }

func (o *FlagOption) Value() (string, bool) { return "", false }

// help is the muted list-row text, annotated for flags that parse today
// but do not change behavior yet.
func (o *FlagOption) help() string {
	help := o.flag.Description
	if !o.flag.Implemented {
		help += " (planned)"
	}
	return help
}

func (o *FlagOption) RenderItem() render.Node {
	display := string(o.flag.Symbol) + " " + o.flag.Name
	return optionRow(flagGlyph, display, o.help())
}

func (o *FlagOption) RenderDetails() render.Node {
	children := []render.Node{
		render.Code(string(o.flag.Symbol)),
		render.Row(render.Span(render.ClassNone, o.flag.Name)),
	}
	if o.flag.Description != "" {
		children = append(children, render.Row(render.Span(render.ClassNone, o.flag.Description)))
	}
	status := "implemented"
	if !o.flag.Implemented {
		status = "planned, not implemented yet"
	}
	children = append(children, render.Row(render.Span(render.ClassMuted, status)))
	if o.flag.AffectsParser {
		children = append(children, render.Banner(render.ClassInfo,
			render.Row(render.Span(render.ClassInfo, "this flag changes how the rest of the macro is parsed"))))
	}
	return render.Panel(children...)
}

func (o *FlagOption) isOption() {}
