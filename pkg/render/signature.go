package render

import (
	"fmt"
	"strings"

	"github.com/tavernworks/macrols/pkg/macro"
)

// FormatSignature builds the display signature for a macro: required slots
// as ::name, optional slots bracketed, a trailing ellipsis for list tails.
func FormatSignature(def *macro.Definition) string {
	var sb strings.Builder
	sb.WriteString(def.Name)

	for i := 0; i < def.MaxArgs; i++ {
		name := fmt.Sprintf("arg%d", i+1)
		optional := i >= def.MinArgs
		if arg := def.ArgAt(i); arg != nil {
			name = arg.Name
			if arg.Optional {
				optional = true
			}
		}
		if optional {
			sb.WriteString("[::" + name + "]")
		} else {
			sb.WriteString("::" + name)
		}
	}

	if def.HasList() {
		sb.WriteString("::…")
	}

	return sb.String()
}

// ArgAnnotation describes one argument slot's requirement in words, for
// hint banners and the detail panel.
func ArgAnnotation(arg *macro.ArgDef) string {
	if arg == nil {
		return ""
	}

	var parts []string
	if arg.Optional {
		if arg.Default != "" {
			parts = append(parts, "optional, default "+arg.Default)
		} else {
			parts = append(parts, "optional")
		}
	} else {
		parts = append(parts, "required")
	}
	if len(arg.Types) > 0 {
		parts = append(parts, strings.Join(arg.Types, " or "))
	}
	return strings.Join(parts, ", ")
}

// SourceIndicator renders the badge naming where a definition came from.
func SourceIndicator(def *macro.Definition) Node {
	label := string(def.Source)
	if label == "" {
		label = string(macro.SourceBuiltin)
	}
	return Badge(ClassSource, label)
}

// AliasIndicator renders the alias badge, or false when the macro has no
// alternate names.
func AliasIndicator(def *macro.Definition) (Node, bool) {
	if !def.HasAliases() {
		return Node{}, false
	}
	return Badge(ClassGlyph, "aka"), true
}

// DetailPanel renders the shared definition panel: signature, description,
// the argument list with the active slot highlighted, aliases and source.
// Pass activeArgIndex -1 when no slot should be highlighted.
func DetailPanel(def *macro.Definition, activeArgIndex int) Node {
	children := []Node{
		Code(FormatSignature(def)),
	}

	if def.Description != "" {
		children = append(children, Row(Span(ClassNone, def.Description)))
	}

	for i := range def.Args {
		arg := &def.Args[i]
		class := ClassMuted
		if i == activeArgIndex {
			class = ClassActive
		}

		cells := []Node{Span(class, arg.Name)}
		if ann := ArgAnnotation(arg); ann != "" {
			cells = append(cells, Span(ClassMuted, "("+ann+")"))
		}
		if arg.Description != "" {
			cells = append(cells, Span(ClassNone, arg.Description))
		}
		children = append(children, Row(cells...))
	}

	if def.HasList() {
		name := def.List.Name
		if name == "" {
			name = "items"
		}
		cells := []Node{Span(ClassMuted, name + "…")}
		if def.List.Description != "" {
			cells = append(cells, Span(ClassNone, def.List.Description))
		}
		children = append(children, Row(cells...))
	}

	if def.HasAliases() {
		children = append(children, Row(
			Span(ClassMuted, "aliases:"),
			Span(ClassNone, strings.Join(def.Aliases, ", ")),
		))
	}

	children = append(children, Row(SourceIndicator(def)))

	return Panel(children...)
}
