package macros

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/cmd/macrols/internal/workspace"
	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/render"
)

type Handler struct {
	workspaceDir string
	source       string
}

func NewMacrosCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "macros",
		Short: "list every macro known to the workspace",
	}

	cmd.Flags().StringVar(&me.workspaceDir, "config", "", "workspace directory holding macrols.yaml (default: walk up from cwd)")
	cmd.Flags().StringVar(&me.source, "source", "", "only list macros from one source: builtin, user or extension")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	if me.source != "" {
		switch macro.Source(me.source) {
		case macro.SourceBuiltin, macro.SourceUser, macro.SourceExtension:
		default:
			return errors.Errorf("unknown source %q, expected builtin, user or extension", me.source)
		}
	}

	_, registry, err := workspace.Resolve(ctx, me.workspaceDir, nil, ".")
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "ALIASES", "SIGNATURE", "ARGS", "SOURCE", "DESCRIPTION"})

	count := 0
	for _, def := range registry.All() {
		if me.source != "" && def.Source != macro.Source(me.source) {
			continue
		}
		t.AppendRow(table.Row{
			def.Name,
			strings.Join(def.Aliases, ", "),
			"{{" + render.FormatSignature(def) + "}}",
			arity(def),
			string(def.Source),
			def.Description,
		})
		count++
	}

	t.Render()
	fmt.Fprintf(out, "(%d macros)\n", count)
	return nil
}

// arity renders the numeric argument contract, list tail included.
func arity(def *macro.Definition) string {
	base := fmt.Sprintf("%d", def.MaxArgs)
	if def.MinArgs != def.MaxArgs {
		base = fmt.Sprintf("%d..%d", def.MinArgs, def.MaxArgs)
	}
	if def.HasList() {
		base += "+list"
	}
	return base
}
