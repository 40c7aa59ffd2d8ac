package channel

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Channel is a named logging destination with its own severity filter,
// sink list, and propagation flag. Channels are obtained from a
// [Registry]; the zero value is not usable.
type Channel struct {
	name     string
	registry *Registry

	mu        sync.Mutex
	sinks     []Sink
	propagate bool
	level     slog.Level
}

func newChannel(name string, r *Registry) *Channel {
	return &Channel{
		name:      name,
		registry:  r,
		propagate: true,
		level:     slog.LevelInfo,
	}
}

// Name returns the channel's registered name. The root channel's name is
// the empty string.
func (c *Channel) Name() string {
	return c.name
}

// Registry returns the registry this channel belongs to.
func (c *Channel) Registry() *Registry {
	return c.registry
}

// AttachSink adds a sink to the channel. The channel does not take
// ownership of the sink's resources; whoever attached it is responsible
// for closing it on detach.
func (c *Channel) AttachSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// DetachSink removes the first occurrence of s from the channel's sink
// list without closing it. It reports whether the sink was attached.
func (c *Channel) DetachSink(s Sink) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sink := range c.sinks {
		if sink == s {
			c.sinks = append(c.sinks[:i], c.sinks[i+1:]...)
			return true
		}
	}
	return false
}

// ClearSinks detaches every sink without closing any of them. Calling it
// on a channel with no sinks is a no-op.
func (c *Channel) ClearSinks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = nil
}

// Sinks returns a snapshot of the currently attached sinks.
func (c *Channel) Sinks() []Sink {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sink, len(c.sinks))
	copy(out, c.sinks)
	return out
}

// SetLevel sets the minimum severity the channel accepts. Records below
// this level are dropped before sink dispatch.
func (c *Channel) SetLevel(level slog.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

// Level returns the channel's minimum severity.
func (c *Channel) Level() slog.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// SetPropagate controls whether records emitted on this channel are also
// delivered to the sinks of its ancestor channels.
func (c *Channel) SetPropagate(propagate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.propagate = propagate
}

// Propagate reports whether the channel propagates to its ancestors.
func (c *Channel) Propagate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.propagate
}

// Debug logs a message at Debug level. args are alternating key/value
// pairs, as in slog.
func (c *Channel) Debug(msg string, args ...any) {
	c.log(0, slog.LevelDebug, msg, args...)
}

// Info logs a message at Info level.
func (c *Channel) Info(msg string, args ...any) {
	c.log(0, slog.LevelInfo, msg, args...)
}

// Warn logs a message at Warn level.
func (c *Channel) Warn(msg string, args ...any) {
	c.log(0, slog.LevelWarn, msg, args...)
}

// Error logs a message at Error level.
func (c *Channel) Error(msg string, args ...any) {
	c.log(0, slog.LevelError, msg, args...)
}

// Log logs a message at an arbitrary level.
func (c *Channel) Log(level slog.Level, msg string, args ...any) {
	c.log(0, level, msg, args...)
}

// LogDepth is like Log but skips depth additional stack frames when
// resolving the record's source location. Wrappers that forward to a
// channel pass the number of frames they add, so log lines attribute to
// the wrapper's caller.
func (c *Channel) LogDepth(depth int, level slog.Level, msg string, args ...any) {
	c.log(depth, level, msg, args...)
}

func (c *Channel) log(depth int, level slog.Level, msg string, args ...any) {
	if c.registry.disabled.Load() {
		return
	}
	if level < c.Level() {
		return
	}

	// Skip runtime.Callers, log, and the exported wrapper to reach the
	// actual call site, plus any frames a forwarding wrapper declared.
	var pcs [1]uintptr
	runtime.Callers(3+depth, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	c.dispatch(r)
}

// dispatch delivers a record to the channel's own sinks and, while
// propagation allows, to the sinks of each ancestor channel. Ancestors are
// resolved by trimming dotted name segments; only channels that already
// exist in the registry receive the record. Ancestor channel levels are
// not consulted during propagation, only sink levels.
func (c *Channel) dispatch(r slog.Record) {
	ctx := context.Background()
	c.deliver(ctx, r)

	if !c.Propagate() {
		return
	}
	name := c.name
	for name != RootName {
		name = parentName(name)
		ancestor := c.registry.lookup(name)
		if ancestor == nil {
			continue
		}
		ancestor.deliver(ctx, r)
		if !ancestor.Propagate() {
			return
		}
	}
}

// deliver hands the record to each attached sink that accepts its level.
func (c *Channel) deliver(ctx context.Context, r slog.Record) {
	for _, s := range c.Sinks() {
		if s.Enabled(ctx, r.Level) {
			_ = s.Handle(ctx, r.Clone())
		}
	}
}

// parentName returns the dotted-name parent of name, or RootName when
// there is no dot left.
func parentName(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return RootName
	}
	return name[:i]
}
