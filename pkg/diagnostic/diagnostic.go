package diagnostic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tavernworks/macrols/pkg/parser"
	"github.com/tavernworks/macrols/pkg/position"
)

// Severity mirrors the levels language clients understand.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Diagnostic is one finding over a document. Pos carries the byte span the
// finding covers; the protocol layer turns it into a wire range.
type Diagnostic struct {
	Message  string
	Severity Severity
	Kind     WarningKind
	Pos      position.RawPosition
}

// ForDocument sweeps every macro region in text: arity warnings against the
// registry, unknown macro names, unterminated regions and never-closed
// scopes. Closing tags and empty identifiers are skipped, they are either
// handled by scope tracking or still being typed.
func ForDocument(ctx context.Context, text string, defs parser.DefinitionSource) []Diagnostic {
	logger := zerolog.Ctx(ctx)

	regions := parser.ScanRegions(text)
	var out []Diagnostic

	for _, region := range regions {
		if !region.Closed {
			out = append(out, Diagnostic{
				Message:  `macro is never terminated, expected "}}"`,
				Severity: SeverityHint,
				Kind:     WarnUnterminated,
				Pos:      position.NewBasicPosition(region.Inner, region.InnerStart),
			})
		}

		pctx := parser.Parse(region.Inner, len(region.Inner))
		if pctx.Identifier == "" || pctx.IsClosingTag() {
			continue
		}

		def, ok := defs.Lookup(pctx.Identifier)
		if !ok {
			start, end := pctx.IdentifierSpan()
			out = append(out, Diagnostic{
				Message:  fmt.Sprintf("unknown macro %q", pctx.Identifier),
				Severity: SeverityInfo,
				Kind:     WarnUnknownMacro,
				Pos:      position.NewBasicPosition(region.Inner[start:end], region.InnerStart+start),
			})
			continue
		}

		if warning := ArityWarning(def, pctx); warning != nil {
			out = append(out, Diagnostic{
				Message:  warning.Message,
				Severity: SeverityWarning,
				Kind:     warning.Kind,
				Pos:      position.NewBasicPosition(region.Inner, region.InnerStart),
			})
		}
	}

	tracker := parser.TrackScopes(text, regions, defs)
	for _, open := range tracker.OpenScopes() {
		out = append(out, Diagnostic{
			Message:  fmt.Sprintf("scoped macro is never closed, expected {{/%s}}", open.Name),
			Severity: SeverityInfo,
			Kind:     WarnUnclosedScope,
			Pos:      position.NewBasicPosition("", open.Start),
		})
	}

	logger.Debug().Int("count", len(out)).Msg("swept document diagnostics")
	return out
}

// Filter drops diagnostics whose kind has been switched off, keeping the
// document order of the rest.
func Filter(diags []Diagnostic, disabled []string) []Diagnostic {
	if len(disabled) == 0 {
		return diags
	}

	off := make(map[WarningKind]bool, len(disabled))
	for _, kind := range disabled {
		off[WarningKind(kind)] = true
	}

	var kept []Diagnostic
	for _, d := range diags {
		if off[d.Kind] {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
