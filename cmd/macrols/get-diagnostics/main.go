package get_diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/cmd/macrols/internal/workspace"
	"github.com/tavernworks/macrols/pkg/diagnostic"
)

type Handler struct {
	workspaceDir string
	format       string // text, json
}

func NewGetDiagnosticsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-diagnostics <glob>...",
		Short: "sweep macro documents for findings",
		Long: `Sweep every file matching the given glob patterns and report unknown
macros, arity problems and unterminated tokens. Text output is one
finding per line in file:line:column form (one based); JSON output
uses zero based wire positions. Findings never affect the exit code.`,
	}

	cmd.Flags().StringVar(&me.workspaceDir, "config", "", "workspace directory holding macrols.yaml (default: walk up from cwd)")
	cmd.Flags().StringVar(&me.format, "format", "text", "output format, text or json")

	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout(), args)
	}

	return cmd
}

type diagOut struct {
	File           string `json:"file"`
	StartLine      int    `json:"startLine"`
	StartCharacter int    `json:"startCharacter"`
	EndLine        int    `json:"endLine"`
	EndCharacter   int    `json:"endCharacter"`
	Severity       string `json:"severity"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer, patterns []string) error {
	cfg, registry, err := workspace.Resolve(ctx, me.workspaceDir, nil, ".")
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return errors.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)

	var findings []diagOut
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}
		text := string(content)

		diags := diagnostic.ForDocument(ctx, text, registry)
		diags = diagnostic.Filter(diags, cfg.Diagnostics.Disabled)

		for _, d := range diags {
			rng := d.Pos.GetUTF16Range(text)
			findings = append(findings, diagOut{
				File:           path,
				StartLine:      rng.Start.Line,
				StartCharacter: rng.Start.Character,
				EndLine:        rng.End.Line,
				EndCharacter:   rng.End.Character,
				Severity:       string(d.Severity),
				Kind:           string(d.Kind),
				Message:        d.Message,
			})
		}
	}

	switch me.format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if findings == nil {
			findings = []diagOut{}
		}
		if err := encoder.Encode(findings); err != nil {
			return errors.Errorf("encoding diagnostics: %w", err)
		}
	case "text":
		for _, f := range findings {
			fmt.Fprintf(out, "%s:%d:%d: %s: %s [%s]\n",
				f.File, f.StartLine+1, f.StartCharacter+1, f.Severity, f.Message, f.Kind)
		}
	default:
		return errors.Errorf("unknown format %q, expected text or json", me.format)
	}

	return nil
}
