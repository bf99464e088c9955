package protocol

import (
	"context"
	"io"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// CallbackAware is implemented by server implementations that want the
// callback client handed to them once the connection is live.
type CallbackAware interface {
	SetCallbackClient(client Client)
}

// ServerInstance owns one LSP connection: the jrpc2 server, its
// options, and the callback client created when the connection starts.
type ServerInstance struct {
	ctx  context.Context
	impl Server
	opts *jrpc2.ServerOptions

	mu       sync.Mutex
	server   *jrpc2.Server
	callback *CallbackClient
}

func NewServerInstance(ctx context.Context, impl Server, opts *jrpc2.ServerOptions) *ServerInstance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	return &ServerInstance{
		ctx:  ctx,
		impl: impl,
		opts: opts,
	}
}

// SetRPCTracker attaches a tracker to the RPC log chain. An already
// configured RPCLog keeps receiving messages alongside the tracker.
func (inst *ServerInstance) SetRPCTracker(t *RPCTracker) {
	if inst.opts.RPCLog == nil {
		inst.opts.RPCLog = t
		return
	}
	multi := &MultiRPCLogger{}
	multi.AddLogger(inst.opts.RPCLog)
	multi.AddLogger(t)
	inst.opts.RPCLog = multi
}

// Callback returns the callback client for the running connection, nil
// before StartAndWait has been called.
func (inst *ServerInstance) Callback() *CallbackClient {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.callback
}

// StartAndWait serves LSP framing on the reader/writer pair and blocks
// until the connection is closed. The standard pairing is stdin/stdout
// when launched by an editor.
func (inst *ServerInstance) StartAndWait(reader io.Reader, writer io.Writer) error {
	server, callback := NewServerServer(inst.ctx, inst.impl, inst.opts)

	inst.mu.Lock()
	inst.server = server
	inst.callback = callback
	inst.mu.Unlock()

	if aware, ok := inst.impl.(CallbackAware); ok {
		aware.SetCallbackClient(callback)
	}

	wc, ok := writer.(io.WriteCloser)
	if !ok {
		wc = nopWriteCloser{writer}
	}
	server.Start(channel.LSP(reader, wc))
	return server.Wait()
}

// nopWriteCloser satisfies the io.WriteCloser the jrpc2 channel framing
// requires for writers that have no Close of their own.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Stop tears the connection down without waiting for the client to
// close its end.
func (inst *ServerInstance) Stop() {
	inst.mu.Lock()
	server := inst.server
	inst.mu.Unlock()
	if server != nil {
		server.Stop()
	}
}
