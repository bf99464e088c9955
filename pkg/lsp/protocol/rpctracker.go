package protocol

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
)

type rpcTrackerContextKey struct{}

// RPCMessage is one request or response seen on the wire, kept for
// test assertions against a live connection.
type RPCMessage struct {
	Method   string
	Request  *jrpc2.Request
	Response *jrpc2.Response
	Time     time.Time
}

// RPCTracker records RPC traffic. It plugs into jrpc2 as an RPCLogger
// and lets tests wait until expected messages have gone by.
type RPCTracker struct {
	mu sync.RWMutex

	messages     []RPCMessage
	subs         map[chan<- RPCMessage]struct{}
	knownMethods map[string]string
}

func NewRPCTracker() *RPCTracker {
	return &RPCTracker{
		messages:     make([]RPCMessage, 0),
		subs:         make(map[chan<- RPCMessage]struct{}),
		knownMethods: make(map[string]string),
	}
}

var _ jrpc2.RPCLogger = (*RPCTracker)(nil)

func (t *RPCTracker) LogRequest(ctx context.Context, req *jrpc2.Request) {
	t.rememberMethod(req.ID(), req.Method())
	t.Track(RPCMessage{
		Method:  req.Method(),
		Request: req,
	})
}

func (t *RPCTracker) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	t.Track(RPCMessage{
		Method:   t.methodForID(resp.ID()),
		Response: resp,
	})
}

// Responses carry no method name, so request IDs are remembered long
// enough to label the response.
func (t *RPCTracker) rememberMethod(id string, method string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.knownMethods[id] = method
}

func (t *RPCTracker) methodForID(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.knownMethods[id]
}

// Track adds a message to the tracker and notifies subscribers.
func (t *RPCTracker) Track(msg RPCMessage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Time = time.Now()
	t.messages = append(t.messages, msg)

	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
			// skip if the channel is full
		}
	}
}

// Subscribe creates a new subscription for messages. The returned
// function should be called to unsubscribe.
func (t *RPCTracker) Subscribe(bufSize int) (<-chan RPCMessage, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan RPCMessage, bufSize)
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
		close(ch)
	}
}

func (t *RPCTracker) Messages() []RPCMessage {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]RPCMessage{}, t.messages...)
}

func (t *RPCTracker) MessagesSince(since time.Time, predicate func(RPCMessage) bool) []RPCMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	copied := append([]RPCMessage{}, t.messages...)
	return slices.DeleteFunc(copied, func(msg RPCMessage) bool {
		return msg.Time.Before(since) || !predicate(msg)
	})
}

// WaitForMessages blocks until count messages matching the predicate
// have been seen since the given time, or the timeout lapses. The
// second return reports whether the count was reached.
func (t *RPCTracker) WaitForMessages(since time.Time, count int, timeout time.Duration, predicate func(RPCMessage) bool) ([]RPCMessage, bool) {
	result := t.MessagesSince(since, predicate)
	if len(result) >= count {
		return result, true
	}

	ch, unsub := t.Subscribe(16)
	defer unsub()

	// Messages may have raced in between the snapshot and the
	// subscription, so re-check the stored set on every wakeup.
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ch:
			result = t.MessagesSince(since, predicate)
			if len(result) >= count {
				return result, true
			}
		case <-timer.C:
			result = t.MessagesSince(since, predicate)
			return result, len(result) >= count
		}
	}
}

func GetRPCTrackerFromContext(ctx context.Context) *RPCTracker {
	if tracker, ok := ctx.Value(rpcTrackerContextKey{}).(*RPCTracker); ok {
		return tracker
	}
	return nil
}

func ContextWithRPCTracker(ctx context.Context, tracker *RPCTracker) context.Context {
	return context.WithValue(ctx, rpcTrackerContextKey{}, tracker)
}
