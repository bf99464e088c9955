package serve_lsp

import (
	"context"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/tavernworks/macrols/pkg/config"
	"github.com/tavernworks/macrols/pkg/debug"
	"github.com/tavernworks/macrols/pkg/lsp"
)

type Handler struct {
	workspace string
}

func NewServeLSPCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().StringVar(&me.workspace, "config", "", "workspace directory holding macrols.yaml (default: walk up from cwd)")
	cmd.Flags().String("log-level", "", "override the configured log level")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.Flags())
	}

	return cmd
}

type RPCLogger struct {
}

func (me *RPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Info().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (me *RPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Info().Str("rpc_params", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func (me *Handler) Run(ctx context.Context, flags *pflag.FlagSet) error {
	var cfg *config.Config
	var err error
	if me.workspace != "" {
		cfg, err = config.Load(me.workspace, flags)
	} else {
		cfg, err = config.LoadFromCwd(flags)
	}
	if err != nil {
		return errors.Errorf("loading configuration: %w", err)
	}

	level, err := cfg.ZerologLevel()
	if err != nil {
		return err
	}

	// stdout carries the protocol, logs go to stderr until the client
	// connects and the telemetry bridge takes over per request
	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Str("component", "lsp-server").
		Logger().
		Hook(debug.CustomTimeHook{WithColor: true}).
		Hook(debug.CustomCallerHook{WithColor: true})
	ctx = logger.WithContext(ctx)

	server := lsp.NewServer(ctx, cfg)

	opts := &jrpc2.ServerOptions{
		RPCLog: &RPCLogger{},
	}

	instance := server.BuildServerInstance(ctx, opts)

	// Start the server using stdin/stdout
	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
