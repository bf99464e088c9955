package get_completions

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/cmd/macrols/internal/workspace"
	"github.com/tavernworks/macrols/pkg/completion"
	"github.com/tavernworks/macrols/pkg/position"
	"github.com/tavernworks/macrols/pkg/render"
)

type Handler struct {
	workspaceDir string
	filePath     string
	line         int
	character    int
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-completions <file> <line> <character>",
		Short: "list completion options for a position in a macro document",
		Long: `List the completion options the language server would offer at a
document position, as JSON on stdout. Line and character are zero
based; the character counts UTF-16 code units, exactly as on the wire.`,
	}

	cmd.Flags().StringVar(&me.workspaceDir, "config", "", "workspace directory holding macrols.yaml (default: walk up from the file)")

	cmd.Args = cobra.ExactArgs(3)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.filePath = args[0]
		var err error
		me.line, err = strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

// optionOut is the JSON surface of one option.
type optionOut struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	Value         string `json:"value,omitempty"`
	Priority      int    `json:"priority"`
}

type resultOut struct {
	Identifier      string      `json:"identifier,omitempty"`
	CurrentArgIndex int         `json:"currentArgIndex"`
	InFlagsArea     bool        `json:"inFlagsArea,omitempty"`
	ScopedMacro     string      `json:"scopedMacro,omitempty"`
	Options         []optionOut `json:"options"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	_, registry, err := workspace.Resolve(ctx, me.workspaceDir, nil, filepath.Dir(me.filePath))
	if err != nil {
		return err
	}

	content, err := os.ReadFile(me.filePath)
	if err != nil {
		return errors.Errorf("reading %s: %w", me.filePath, err)
	}
	text := string(content)

	offset := position.PlaceToOffset(text, position.Place{Line: me.line, Character: me.character})

	provider := completion.NewProvider(registry)

	result := resultOut{CurrentArgIndex: -1, Options: []optionOut{}}
	if res, ok := provider.OptionsAt(ctx, text, offset); ok {
		result.Identifier = res.Context.Identifier
		result.CurrentArgIndex = res.Context.CurrentArgIndex
		result.InFlagsArea = res.Context.IsInFlagsArea
		result.ScopedMacro = res.Context.ScopedMacroName
		for _, opt := range res.Options {
			result.Options = append(result.Options, convertOption(opt))
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.Errorf("encoding completions: %w", err)
	}

	return nil
}

func convertOption(opt completion.Option) optionOut {
	converted := optionOut{
		Name:          opt.Name(),
		Documentation: render.Markdown(opt.RenderDetails()),
		Priority:      opt.SortPriority(),
	}
	if value, ok := opt.Value(); ok {
		converted.Value = value
	}

	switch o := opt.(type) {
	case *completion.MacroOption:
		converted.Kind = "macro"
		converted.Detail = "{{" + render.FormatSignature(o.Definition()) + "}}"
	case *completion.FlagOption:
		converted.Kind = "flag"
		converted.Detail = o.Flag().Name
	case *completion.ClosingTagOption:
		converted.Kind = "closing-tag"
		converted.Detail = "closes {{" + o.MacroName() + "}}"
	default:
		converted.Kind = "other"
	}

	return converted
}
