package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	get_completions "github.com/tavernworks/macrols/cmd/macrols/get-completions"
	get_diagnostics "github.com/tavernworks/macrols/cmd/macrols/get-diagnostics"
	"github.com/tavernworks/macrols/cmd/macrols/macros"
	serve_lsp "github.com/tavernworks/macrols/cmd/macrols/serve-lsp"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "macrols",
		Short: "language tooling for chat macro templates",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand())
	rootCmd.AddCommand(get_completions.NewGetCompletionsCommand())
	rootCmd.AddCommand(get_diagnostics.NewGetDiagnosticsCommand())
	rootCmd.AddCommand(macros.NewMacrosCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
