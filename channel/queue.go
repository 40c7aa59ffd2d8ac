package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
)

// queueBuffer is the number of records a QueueSink holds before Handle
// blocks.
const queueBuffer = 256

// ErrQueueClosed is returned by QueueSink.Handle after the sink was closed.
var ErrQueueClosed = errors.New("queue sink is closed")

// QueueSink serializes records from any number of goroutines through a
// single worker before handing them to the wrapped sink. It exists for
// sessions whose output file is shared by concurrent writers: every line
// reaches the underlying sink whole, in arrival order.
type QueueSink struct {
	inner   Sink
	records chan slog.Record
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewQueueSink wraps inner and starts the worker goroutine. The returned
// sink must be closed to stop the worker and release inner.
func NewQueueSink(inner Sink) *QueueSink {
	s := &QueueSink{
		inner:   inner,
		records: make(chan slog.Record, queueBuffer),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *QueueSink) run() {
	defer close(s.done)
	ctx := context.Background()
	for r := range s.records {
		_ = s.inner.Handle(ctx, r)
	}
}

// Enabled defers to the wrapped sink.
func (s *QueueSink) Enabled(ctx context.Context, level slog.Level) bool {
	return s.inner.Enabled(ctx, level)
}

// Handle enqueues the record for the worker. It blocks while the queue is
// full and fails once the sink is closed.
func (s *QueueSink) Handle(_ context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrQueueClosed
	}
	s.records <- r.Clone()
	return nil
}

// WithAttrs returns a queue sink over the wrapped sink with the given
// attributes applied.
func (s *QueueSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	inner, ok := s.inner.WithAttrs(attrs).(Sink)
	if !ok {
		return s
	}
	return NewQueueSink(inner)
}

// WithGroup returns the sink unchanged; the line format has no grouping.
func (s *QueueSink) WithGroup(string) slog.Handler {
	return s
}

// Close drains pending records, stops the worker, and closes the wrapped
// sink. Close is idempotent.
func (s *QueueSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.records)
	s.mu.Unlock()

	<-s.done
	return s.inner.Close()
}
