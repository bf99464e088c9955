package completion

import (
	"github.com/tavernworks/macrols/pkg/render"
)

// DefaultPriority is the neutral sort priority shared by macro and flag
// options. Options with a lower priority sort above them.
const DefaultPriority = 100

// Option is one suggestion in a completion list. The variants are closed:
// MacroOption, FlagOption and ClosingTagOption are the only implementations.
type Option interface {
	// Name is the match key the completion surface filters against.
	Name() string

	// RenderItem builds the list row shown for the option.
	RenderItem() render.Node

	// RenderDetails builds the detail panel shown beside the list.
	RenderDetails() render.Node

	// Value returns the replacement text committed instead of the plain
	// name. The second return is false when name insertion applies.
	Value() (string, bool)

	// SortPriority orders options before any fuzzy ranking kicks in.
	// Lower values sort first.
	SortPriority() int

	// Selectable reports whether the option can be committed directly.
	// It is always true for options that carry a Value.
	Selectable() bool

	isOption()
}

const (
	macroGlyph   = "{}"
	flagGlyph    = "⚑"
	closingGlyph = "/"
)

// optionRow is the generic list row shared by the simpler option kinds:
// a type glyph, the display text split into matchable cells, and muted
// help text at the end.
func optionRow(glyph string, display string, help string) render.Node {
	cells := []render.Node{render.Badge(render.ClassGlyph, glyph)}
	cells = append(cells, render.Chars(display)...)
	cells = append(cells, render.Spacer())
	if help != "" {
		cells = append(cells, render.Span(render.ClassMuted, help))
	}
	return render.Row(cells...)
}
