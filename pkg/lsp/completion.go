package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/completion"
	"github.com/tavernworks/macrols/pkg/lsp/protocol"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/render"
)

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	logger := zerolog.Ctx(ctx)
	logger.Trace().Msgf("completion request received: %+v", params)

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	offset := position.PlaceToOffset(doc.Content, position.Place{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})

	res, ok := s.provider.OptionsAt(ctx, doc.Content, offset)
	if !ok {
		// Outside any macro token there is nothing to offer.
		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	items := make([]protocol.CompletionItem, 0, len(res.Options))
	for _, opt := range res.Options {
		items = append(items, s.completionItem(doc.Content, res, opt))
	}

	logger.Debug().
		Str("uri", string(params.TextDocument.URI)).
		Int("items", len(items)).
		Msg("assembled completion items")

	return &protocol.CompletionList{Items: items}, nil
}

// completionItem converts one engine option into its wire form.
func (s *Server) completionItem(content string, res *completion.Result, opt completion.Option) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      opt.Name(),
		SortText:   fmt.Sprintf("%03d-%s", opt.SortPriority(), opt.Name()),
		FilterText: opt.Name(),
		Documentation: &protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: render.Markdown(opt.RenderDetails()),
		},
		InsertTextFormat: protocol.InsertTextFormatPlainText,
	}

	switch o := opt.(type) {
	case *completion.MacroOption:
		item.Kind = protocol.CompletionItemFunction
		item.Detail = "{{" + render.FormatSignature(o.Definition()) + "}}"
	case *completion.FlagOption:
		item.Kind = protocol.CompletionItemOperator
		item.Detail = o.Flag().Name
		if !o.Flag().Implemented {
			item.Deprecated = true
		}
	case *completion.ClosingTagOption:
		item.Kind = protocol.CompletionItemKeyword
		item.Detail = "closes {{" + o.MacroName() + "}}"
		item.Preselect = true
	default:
		item.Kind = protocol.CompletionItemText
	}

	value, ok := opt.Value()
	if !ok {
		item.InsertText = opt.Name()
		return item
	}

	// Committing the value rewrites the identifier span in place. When
	// the region already has closing braces the value's own braces
	// would double them up, so they are stripped.
	if res.Region.Closed {
		value = strings.TrimSuffix(value, "}}")
	}

	identStart, identEnd := res.Context.IdentifierSpan()
	span := position.NewBasicPosition(
		content[res.Region.InnerStart+identStart:res.Region.InnerStart+identEnd],
		res.Region.InnerStart+identStart,
	)
	item.TextEdit = &protocol.TextEdit{
		Range:   wireRange(span.GetUTF16Range(content)),
		NewText: value,
	}

	return item
}
