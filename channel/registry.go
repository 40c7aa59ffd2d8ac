package channel

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

// RootName is the name of the root channel.
const RootName = ""

// defaultRegistry is the process-wide registry used when no explicit
// registry is supplied.
var defaultRegistry = NewRegistry()

// Default returns the shared process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Registry maps channel names to channels. The zero value is not usable;
// create registries with NewRegistry.
//
// All registry operations are safe for concurrent use. Channels are created
// on first lookup and never removed, matching the behavior of hierarchical
// logging facilities where a name, once used, stays resolvable.
type Registry struct {
	mu       sync.Mutex
	channels map[string]*Channel
	disabled atomic.Bool
}

// NewRegistry creates an empty registry containing only the root channel.
// The root channel starts at Info level with no sinks.
func NewRegistry() *Registry {
	r := &Registry{channels: make(map[string]*Channel)}
	root := newChannel(RootName, r)
	root.propagate = false // the root has no ancestors
	r.channels[RootName] = root
	return r
}

// Get returns the channel with the given name, creating it if necessary.
// The empty name resolves to the root channel. Newly created channels
// propagate to their ancestors and accept Info and above.
func (r *Registry) Get(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.channels[name]; ok {
		return ch
	}
	ch := newChannel(name, r)
	r.channels[name] = ch
	return ch
}

// lookup returns an existing channel or nil. Unlike Get it never creates,
// so propagation only visits channels something has configured or named.
func (r *Registry) lookup(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channels[name]
}

// Disable stops all logging through this registry. Records emitted after
// Disable are dropped before reaching any sink. There is no way to
// re-enable; the intended use is silencing a finished program run.
func (r *Registry) Disable() {
	r.disabled.Store(true)
}

// ForTest returns a fresh registry whose root channel writes through the
// test's log output at Debug level. Log lines appear only when the test
// fails or when running with -v.
func ForTest(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	root := r.Get(RootName)
	root.SetLevel(slog.LevelDebug)
	root.AttachSink(NewWriterSink(&testWriter{t: t}, slog.LevelDebug))
	return r
}

// testWriter adapts testing.T to io.Writer.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.t.Log(msg)
	return len(p), nil
}
