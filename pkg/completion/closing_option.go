package completion

import (
	"github.com/tavernworks/macrols/pkg/render"
)

// ClosingTagPriority sorts closing tag options above every option that
// uses DefaultPriority.
const ClosingTagPriority = 1

// ClosingTagOption offers the closing tag for the innermost open scoped
// macro. Committing it emits the full closing token.
type ClosingTagOption struct {
	macroName string
}

func NewClosingTagOption(macroName string) *ClosingTagOption {
	return &ClosingTagOption{macroName: macroName}
}

// MacroName exposes the scoped macro being closed.
func (o *ClosingTagOption) MacroName() string { return o.macroName }

func (o *ClosingTagOption) Name() string { return "/" + o.macroName }

func (o *ClosingTagOption) SortPriority() int { return ClosingTagPriority }

func (o *ClosingTagOption) Selectable() bool { return true }

func (o *ClosingTagOption) Value() (string, bool) {
	return "/" + o.macroName + "}}", true
}

func (o *ClosingTagOption) RenderItem() render.Node {
	return optionRow(closingGlyph, "{{/"+o.macroName+"}}", "close the open "+o.macroName+" macro")
}

func (o *ClosingTagOption) RenderDetails() render.Node {
	return render.Panel(
		render.Code("{{"+o.macroName+"}} … {{/"+o.macroName+"}}"),
		render.Row(render.Span(render.ClassNone,
			"text between the opening and closing tags becomes the final argument of "+o.macroName)),
	)
}

func (o *ClosingTagOption) isOption() {}
