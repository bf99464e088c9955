package render

import (
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Kind discriminates node shapes in a rendered tree.
type Kind string

const (
	// KindPanel stacks its children vertically.
	KindPanel Kind = "panel"
	// KindBanner stacks like a panel but is rendered set off from the rest.
	KindBanner Kind = "banner"
	// KindRow lays its children out on one line.
	KindRow Kind = "row"
	// KindSpan is a run of text.
	KindSpan Kind = "span"
	// KindChar is a single user-perceived character, emitted so consumers
	// can highlight fuzzy matches per character.
	KindChar Kind = "char"
	// KindBadge is a short standalone tag, such as a source indicator.
	KindBadge Kind = "badge"
	// KindCode is preformatted text.
	KindCode Kind = "code"
	// KindSpacer pushes following row content away from the preceding.
	KindSpacer Kind = "spacer"
)

// Class is a presentation hint the consuming surface maps to styling. The
// renderer attaches meaning, never colors.
type Class string

const (
	ClassNone    Class = ""
	ClassMuted   Class = "muted"
	ClassWarning Class = "warning"
	ClassInfo    Class = "info"
	ClassActive  Class = "active"
	ClassGlyph   Class = "glyph"
	ClassSource  Class = "source"
)

// Node is one element of a rendered tree. Nodes are plain immutable values;
// build them with the constructors below and never mutate them afterwards.
type Node struct {
	Kind  Kind
	Class Class
	Text  string
	Nodes []Node
}

func Panel(children ...Node) Node {
	return Node{Kind: KindPanel, Nodes: children}
}

func Banner(class Class, children ...Node) Node {
	return Node{Kind: KindBanner, Class: class, Nodes: children}
}

func Row(children ...Node) Node {
	return Node{Kind: KindRow, Nodes: children}
}

func Span(class Class, text string) Node {
	return Node{Kind: KindSpan, Class: class, Text: text}
}

func Badge(class Class, text string) Node {
	return Node{Kind: KindBadge, Class: class, Text: text}
}

func Code(text string) Node {
	return Node{Kind: KindCode, Text: text}
}

func Spacer() Node {
	return Node{Kind: KindSpacer}
}

// Chars splits text into one char cell per grapheme cluster, so combining
// marks and emoji stay whole when the consumer styles individual cells.
func Chars(text string) []Node {
	tokens, err := textseg.AllTokens([]byte(text), textseg.ScanGraphemeClusters)
	if err != nil {
		// the grapheme scanner cannot fail on valid UTF-8; fall back to a
		// single cell rather than dropping text
		return []Node{{Kind: KindChar, Text: text}}
	}

	cells := make([]Node, 0, len(tokens))
	for _, token := range tokens {
		cells = append(cells, Node{Kind: KindChar, Text: string(token)})
	}
	return cells
}

// CharsWithClass is Chars with a class applied to every cell.
func CharsWithClass(class Class, text string) []Node {
	cells := Chars(text)
	for i := range cells {
		cells[i].Class = class
	}
	return cells
}

// PlainText flattens a tree to plain text. Rows join their children with
// single spaces, except runs of char cells which concatenate directly;
// panels and banners join rows with newlines.
func PlainText(n Node) string {
	switch n.Kind {
	case KindPanel, KindBanner:
		var lines []string
		for _, child := range n.Nodes {
			if s := PlainText(child); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")

	case KindRow:
		var parts []string
		var chars strings.Builder
		flush := func() {
			if chars.Len() > 0 {
				parts = append(parts, chars.String())
				chars.Reset()
			}
		}
		for _, child := range n.Nodes {
			if child.Kind == KindChar {
				chars.WriteString(child.Text)
				continue
			}
			flush()
			if s := PlainText(child); s != "" {
				parts = append(parts, s)
			}
		}
		flush()
		return strings.Join(parts, " ")

	case KindSpacer:
		return ""

	default:
		return n.Text
	}
}

// Markdown flattens a tree to markdown: panels become paragraphs, banners
// blockquotes, code nodes fenced blocks. Everything else degrades to the
// plain text rendering.
func Markdown(n Node) string {
	switch n.Kind {
	case KindPanel:
		var blocks []string
		for _, child := range n.Nodes {
			if s := Markdown(child); s != "" {
				blocks = append(blocks, s)
			}
		}
		return strings.Join(blocks, "\n\n")

	case KindBanner:
		flat := PlainText(Node{Kind: KindPanel, Nodes: n.Nodes})
		if flat == "" {
			return ""
		}
		lines := strings.Split(flat, "\n")
		for i := range lines {
			lines[i] = "> " + lines[i]
		}
		return strings.Join(lines, "\n")

	case KindCode:
		return "```\n" + n.Text + "\n```"

	default:
		return PlainText(n)
	}
}
