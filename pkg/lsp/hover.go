package lsp

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/hover"
	"github.com/tavernworks/macrols/pkg/lsp/protocol"
	"github.com/tavernworks/macrols/pkg/position"
)

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	zerolog.Ctx(ctx).Trace().Msgf("hover request received: %+v", params)

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	offset := position.PlaceToOffset(doc.Content, position.Place{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})

	hoverInfo, err := hover.BuildHoverResponse(ctx, doc.Content, offset, s.registry)
	if err != nil {
		return nil, errors.Errorf("building hover response: %w", err)
	}

	if hoverInfo == nil {
		return nil, nil
	}

	hoverRange := wireRange(hoverInfo.Position.GetUTF16Range(doc.Content))

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: strings.Join(hoverInfo.Content, "\n"),
		},
		Range: &hoverRange,
	}, nil
}
