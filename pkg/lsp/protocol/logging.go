package protocol

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/tavernworks/macrols/pkg/debug"
)

// MultiRPCLogger fans RPC log calls out to several loggers.
type MultiRPCLogger struct {
	mu      sync.Mutex
	loggers []jrpc2.RPCLogger
}

func (m *MultiRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogRequest(ctx, req)
	}
}

func (m *MultiRPCLogger) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogResponse(ctx, resp)
	}
}

func (m *MultiRPCLogger) AddLogger(logger jrpc2.RPCLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, logger)
}

// myLoggerId distinguishes this process's own log lines from lines
// relayed on behalf of dependencies.
var myLoggerId = xid.New().String()

// ExtendedLogMessageParams extends LogMessageParams with the structured
// fields zerolog produced, so capable clients can render them.
type ExtendedLogMessageParams struct {
	Type         MessageType    `json:"type"`
	Message      string         `json:"message"`
	Extra        map[string]any `json:"extra,omitempty"`
	Time         string         `json:"time,omitempty"`
	Source       string         `json:"source,omitempty"`
	IsDependency bool           `json:"is_dependency,omitempty"`
}

// ApplyServerInstanceToZerolog redirects zerolog output into the LSP
// connection. A server must not write to its console, the editor owns
// stdout, so every log line becomes a telemetry/event notification.
func ApplyServerInstanceToZerolog(ctx context.Context, client Client) context.Context {
	writer := &logWriter{
		client: client,
		ctx:    ctx,
	}

	level := zerolog.Ctx(ctx).GetLevel()

	ctx = zerolog.New(writer).With().
		Str("id", myLoggerId).
		Str("lsp_role", "server").
		Logger().
		Level(level).
		Hook(debug.CustomTimeHook{WithColor: false}).
		Hook(debug.CustomCallerHook{WithColor: false}).
		WithContext(ctx)

	return ctx
}

func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	ctx = zerolog.Ctx(ctx).With().Str("rpc_method", req.Method()).Str("rpc_id", req.ID()).Logger().WithContext(ctx)
	return ctx
}

type logWriter struct {
	client Client
	mu     sync.Mutex
	ctx    context.Context
}

// Write implements io.Writer
func (w *logWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var logEntry map[string]any
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return len(p), nil
	}

	level := ParseMessageTypeFromZerolog(extractField(logEntry, "level", "info"))
	msg := extractField(logEntry, "message", "")
	id := extractField(logEntry, "id", "")
	logTime := extractField(logEntry, "time", "")
	source := extractField(logEntry, "caller", "")

	notification := &ExtendedLogMessageParams{
		Type:         level,
		Message:      msg,
		Extra:        logEntry,
		Time:         logTime,
		Source:       source,
		IsDependency: id != myLoggerId,
	}

	anyNotification := any(notification)

	if w.client != nil {
		err = w.client.Event(w.ctx, &anyNotification)
	}

	return len(p), err
}

// extractField pulls a string field out of the log entry, removing it
// from the remaining Extra payload.
func extractField(entry map[string]any, key, defaultValue string) string {
	if v, ok := entry[key].(string); ok {
		delete(entry, key)
		return v
	}
	return defaultValue
}

// ParseMessageTypeFromZerolog converts a zerolog level to an LSP MessageType.
func ParseMessageTypeFromZerolog(level string) MessageType {
	switch level {
	case "error":
		return Error
	case "warn":
		return Warning
	case "info":
		return Info
	case "debug":
		return Debug
	default:
		return Log
	}
}
