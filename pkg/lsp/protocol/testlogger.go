package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
)

// CallbackRPCLogger is an RPCLogger that also wants to see the
// server-initiated traffic, which jrpc2 does not route through the
// regular RPCLog hooks.
type CallbackRPCLogger interface {
	LogCallbackRequestRaw(ctx context.Context, method string, params any)
	LogCallbackResponse(ctx context.Context, res *jrpc2.Response)
}

func DebugAll() bool {
	return os.Getenv("DEBUG_LSP_ALL") == "1" || os.Getenv("DEBUG") == "1"
}

// rpcTestLogger mirrors the wire into the test log so a failing run
// shows the full conversation.
type rpcTestLogger struct {
	logger          zerolog.TestingLog
	enableTelemetry bool
	enableRPCLogs   bool
}

var _ jrpc2.RPCLogger = (*rpcTestLogger)(nil)
var _ CallbackRPCLogger = (*rpcTestLogger)(nil)

func NewTestLogger(t zerolog.TestingLog) jrpc2.RPCLogger {
	lgr := &rpcTestLogger{
		logger:          t,
		enableTelemetry: DebugAll(),
		enableRPCLogs:   DebugAll(),
	}

	if !DebugAll() {
		lgr.logger.Logf("FYI: rpc and telemetry logs will be suppressed. Set DEBUG=1 to see them")
	}

	return lgr
}

type fancyRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type fancyResponse struct {
	ID     string `json:"id"`
	Result any    `json:"result"`
	Error  any    `json:"error"`
}

func (l *rpcTestLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	l.namedRequestLog(ctx, "client", req)
}

func (l *rpcTestLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	l.namedResponseLog(ctx, "server", res)
}

func (l *rpcTestLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	if method == "telemetry/event" && !l.enableTelemetry {
		return
	}
	if !l.enableRPCLogs {
		return
	}
	parsed := fancyRequest{
		ID:     "callback",
		Method: method,
		Params: params,
	}
	l.logger.Logf("lsp server (callback) request:%s", l.formatJSON(parsed))
}

func (l *rpcTestLogger) LogCallbackResponse(ctx context.Context, res *jrpc2.Response) {
	l.namedResponseLog(ctx, "client (callback)", res)
}

func (l *rpcTestLogger) namedRequestLog(ctx context.Context, name string, req *jrpc2.Request) {
	if req.Method() == "telemetry/event" && !l.enableTelemetry {
		return
	}
	if !l.enableRPCLogs {
		return
	}

	var v any
	if err := req.UnmarshalParams(&v); err != nil {
		l.logger.Logf("lsp %s request:%s", name, l.formatJSON(req))
		return
	}

	parsed := fancyRequest{
		ID:     req.ID(),
		Method: req.Method(),
		Params: v,
	}
	if parsed.ID == "" {
		parsed.ID = "notification"
	}

	l.logger.Logf("lsp %s request:%s", name, l.formatJSON(parsed))
}

func (l *rpcTestLogger) namedResponseLog(ctx context.Context, name string, res *jrpc2.Response) {
	if !l.enableRPCLogs {
		return
	}

	var v any
	if err := res.UnmarshalResult(&v); err != nil {
		l.logger.Logf("lsp %s response:%s", name, l.formatJSON(res))
		return
	}

	parsed := fancyResponse{
		ID:     res.ID(),
		Result: v,
		Error:  res.Error(),
	}
	if parsed.ID == "" {
		parsed.ID = "notification"
	}

	l.logger.Logf("lsp %s response:%s", name, l.formatJSON(parsed))
}

func (l *rpcTestLogger) formatJSON(s any) string {
	buf := bytes.NewBuffer(nil)
	marshaller := json.NewEncoder(buf)
	if err := marshaller.Encode(s); err != nil {
		return " " + fmt.Sprintf("%+v", s)
	}
	return " " + buf.String()
}
