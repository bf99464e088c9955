package parser

import (
	"strings"

	"github.com/tavernworks/macrols/pkg/macro"
)

// Region is one "{{ ... }}" token span within a document.
type Region struct {
	// Start is the offset of the opening delimiter, End the offset just
	// past the closing one. An unterminated region runs to the end of the
	// document and End equals len(text).
	Start int
	End   int

	// InnerStart is the offset of the first byte after the opening
	// delimiter; Inner is the text between the delimiters.
	InnerStart int
	Inner      string

	Closed bool
}

// InnerEnd returns the offset just past the inner text.
func (r Region) InnerEnd() int {
	return r.InnerStart + len(r.Inner)
}

// Contains reports whether a document offset falls inside the region's
// inner text. The position directly after the last inner character counts
// as inside, since that is where typing happens.
func (r Region) Contains(offset int) bool {
	return offset >= r.InnerStart && offset <= r.InnerEnd()
}

// ScanRegions locates every macro region in text, in document order.
func ScanRegions(text string) []Region {
	var regions []Region
	for i := 0; i+1 < len(text); {
		if text[i] != '{' || text[i+1] != '{' {
			i++
			continue
		}

		innerStart := i + 2
		closeIdx := strings.Index(text[innerStart:], "}}")
		if closeIdx < 0 {
			regions = append(regions, Region{
				Start:      i,
				End:        len(text),
				InnerStart: innerStart,
				Inner:      text[innerStart:],
			})
			break
		}

		innerEnd := innerStart + closeIdx
		regions = append(regions, Region{
			Start:      i,
			End:        innerEnd + 2,
			InnerStart: innerStart,
			Inner:      text[innerStart:innerEnd],
			Closed:     true,
		})
		i = innerEnd + 2
	}
	return regions
}

// RegionAt returns the region whose inner text contains the offset.
func RegionAt(regions []Region, offset int) (Region, bool) {
	for _, r := range regions {
		if r.Contains(offset) {
			return r, true
		}
	}
	return Region{}, false
}

// DefinitionSource resolves a typed name to its macro definition. It is
// satisfied by *macro.Registry.
type DefinitionSource interface {
	Lookup(name string) (*macro.Definition, bool)
}

type scopeSpan struct {
	name  string
	start int
	end   int
}

// OpenScope is a scoped macro that was never closed before the end of the
// document. Start is the offset where its content begins.
type OpenScope struct {
	Name  string
	Start int
}

// ScopeTracker answers which scoped macro's content a document offset falls
// into. Build one per document snapshot with TrackScopes.
type ScopeTracker struct {
	spans []scopeSpan
	open  []OpenScope
}

// TrackScopes walks regions in document order. A closed region invoking a
// scope-capable macro opens a scope; a "{{/name}}" region closes the
// innermost matching one, implicitly ending any scopes opened inside it.
// Scopes left open run to the end of the document.
func TrackScopes(text string, regions []Region, defs DefinitionSource) *ScopeTracker {
	type openScope struct {
		name  string
		start int
	}

	tracker := &ScopeTracker{}
	var stack []openScope

	for _, region := range regions {
		inner := strings.TrimSpace(region.Inner)

		if strings.HasPrefix(inner, "/") {
			name := strings.ToLower(strings.TrimSpace(inner[1:]))
			if def, ok := defs.Lookup(name); ok {
				name = strings.ToLower(def.Name)
			}
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].name != name {
					continue
				}
				for k := len(stack) - 1; k >= j; k-- {
					tracker.spans = append(tracker.spans, scopeSpan{
						name:  stack[k].name,
						start: stack[k].start,
						end:   region.Start,
					})
				}
				stack = stack[:j]
				break
			}
			continue
		}

		if !region.Closed {
			continue
		}

		pctx := Parse(region.Inner, len(region.Inner))
		if pctx.Identifier == "" {
			continue
		}
		def, ok := defs.Lookup(pctx.Identifier)
		if !ok || !def.Scoped {
			continue
		}
		stack = append(stack, openScope{
			name:  strings.ToLower(def.Name),
			start: region.End,
		})
	}

	for _, open := range stack {
		tracker.spans = append(tracker.spans, scopeSpan{
			name:  open.name,
			start: open.start,
			end:   len(text),
		})
		tracker.open = append(tracker.open, OpenScope{Name: open.name, Start: open.start})
	}

	return tracker
}

// OpenScopes returns the scopes still open at the end of the document, in
// the order they were opened.
func (t *ScopeTracker) OpenScopes() []OpenScope {
	out := make([]OpenScope, len(t.open))
	copy(out, t.open)
	return out
}

// ScopeAt returns the innermost scoped macro whose content covers offset.
// The span end is inclusive so a caret typing the closing tag itself still
// counts as inside the scope.
func (t *ScopeTracker) ScopeAt(offset int) (string, bool) {
	best := -1
	name := ""
	for _, span := range t.spans {
		if offset >= span.start && offset <= span.end && span.start > best {
			best = span.start
			name = span.name
		}
	}
	return name, best >= 0
}

// ParseAt is the document-level entry point: it finds the region containing
// the offset, reconstructs the caret position within it, and threads the
// scope state through. The second return is false when the offset is not
// inside any macro region.
func ParseAt(text string, offset int, defs DefinitionSource) (*ParseContext, Region, bool) {
	regions := ScanRegions(text)
	region, ok := RegionAt(regions, offset)
	if !ok {
		return nil, Region{}, false
	}

	inner := region.Inner
	cursor := offset - region.InnerStart

	tracker := TrackScopes(text, regions, defs)
	if name, inScope := tracker.ScopeAt(region.Start); inScope {
		return ParseScoped(inner, cursor, name), region, true
	}
	return Parse(inner, cursor), region, true
}
