package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/lsp/protocol"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/semtok"
)

func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("uri", string(params.TextDocument.URI)).
		Str("method", "textDocument/semanticTokens/full").
		Msg("semantic tokens request received")

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		logger.Error().Str("uri", string(params.TextDocument.URI)).Msg("document not found")
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	tokens, err := semtok.GetTokensForText(ctx, s.registry, []byte(doc.Content))
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate semantic tokens")
		return nil, errors.Errorf("generating semantic tokens: %w", err)
	}

	logger.Debug().Int("token_count", len(tokens)).Msg("generated semantic tokens")

	return &protocol.SemanticTokens{
		Data: semtok.Encode(doc.Content, tokens),
	}, nil
}

func (s *Server) SemanticTokensRange(ctx context.Context, params *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("uri", string(params.TextDocument.URI)).
		Str("method", "textDocument/semanticTokens/range").
		Interface("range", params.Range).
		Msg("semantic tokens range request received")

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	start := position.PlaceToOffset(doc.Content, position.Place{
		Line:      int(params.Range.Start.Line),
		Character: int(params.Range.Start.Character),
	})
	end := position.PlaceToOffset(doc.Content, position.Place{
		Line:      int(params.Range.End.Line),
		Character: int(params.Range.End.Character),
	})
	if end < start {
		start, end = end, start
	}

	ranged := position.NewBasicPosition(doc.Content[start:end], start)

	tokens, err := semtok.GetTokensForRange(ctx, s.registry, []byte(doc.Content), ranged)
	if err != nil {
		return nil, errors.Errorf("generating semantic tokens: %w", err)
	}

	return &protocol.SemanticTokens{
		Data: semtok.Encode(doc.Content, tokens),
	}, nil
}
