// Package hover provides functionality for generating hover information.
package hover

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/render"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display
	Content []string
	// Position is the range in the document that this hover applies to
	Position position.RawPosition
}

// FormatHoverResponse formats a hover response for a macro definition.
// activeArg highlights the argument slot under the pointer, -1 for none.
func FormatHoverResponse(ctx context.Context, def *macro.Definition, activeArg int, highlight position.RawPosition) (*HoverInfo, error) {
	if def == nil {
		return nil, errors.New("definition cannot be nil")
	}

	content := []string{render.Markdown(render.DetailPanel(def, activeArg))}

	return &HoverInfo{
		Content:  content,
		Position: highlight,
	}, nil
}

// BuildHoverResponse resolves the macro under the given document offset and
// formats its documentation. A nil response with a nil error means there is
// nothing to show at that offset.
func BuildHoverResponse(ctx context.Context, text string, offset int, reg *macro.Registry) (*HoverInfo, error) {
	pctx, region, ok := parser.ParseAt(text, offset, reg)
	if !ok {
		return nil, nil
	}

	name := pctx.Identifier
	if pctx.IsClosingTag() {
		name = strings.TrimPrefix(name, "/")
	}
	if name == "" {
		return nil, nil
	}

	def, ok := reg.Lookup(name)
	if !ok {
		zerolog.Ctx(ctx).Debug().
			Str("identifier", name).
			Msg("no hover for unknown macro")
		return nil, nil
	}

	idStart, idEnd := pctx.IdentifierSpan()
	idPos := position.NewBasicPosition(pctx.FullText[idStart:idEnd], region.InnerStart+idStart)

	// hovering the identifier highlights just the name, hovering anywhere
	// else in the token highlights the whole macro body
	highlight := idPos
	pointer := position.NewBasicPosition("", offset)
	if !pointer.HasRangeOverlapWith(idPos) {
		highlight = position.NewBasicPosition(region.Inner, region.InnerStart)
	}

	zerolog.Ctx(ctx).Debug().
		Str("macro", def.Name).
		Int("offset", offset).
		Msg("resolved hover target")

	return FormatHoverResponse(ctx, def, pctx.CurrentArgIndex, highlight)
}
