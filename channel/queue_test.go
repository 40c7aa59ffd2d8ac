package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
)

func TestQueueSink_DeliversInOrder(t *testing.T) {
	inner := newMemorySink(slog.LevelDebug)
	sink := NewQueueSink(inner)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := sink.Handle(ctx, record(slog.LevelInfo, fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := inner.Messages()
	if len(got) != 10 {
		t.Fatalf("got %d messages, want 10", len(got))
	}
	for i, msg := range got {
		if want := fmt.Sprintf("msg-%d", i); msg != want {
			t.Errorf("messages[%d] = %q, want %q", i, msg, want)
		}
	}
}

func TestQueueSink_CloseDrainsAndClosesInner(t *testing.T) {
	inner := newMemorySink(slog.LevelDebug)
	sink := NewQueueSink(inner)

	ctx := context.Background()
	for i := 0; i < queueBuffer/2; i++ {
		if err := sink.Handle(ctx, record(slog.LevelInfo, "queued")); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := len(inner.Messages()); got != queueBuffer/2 {
		t.Errorf("got %d messages after close, want %d", got, queueBuffer/2)
	}
	if !inner.closed {
		t.Error("Close should close the wrapped sink")
	}
}

func TestQueueSink_CloseIsIdempotent(t *testing.T) {
	sink := NewQueueSink(newMemorySink(slog.LevelDebug))

	if err := sink.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestQueueSink_HandleAfterClose(t *testing.T) {
	sink := NewQueueSink(newMemorySink(slog.LevelDebug))
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	err := sink.Handle(context.Background(), record(slog.LevelInfo, "late"))
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Handle after close = %v, want ErrQueueClosed", err)
	}
}

func TestQueueSink_EnabledDefersToInner(t *testing.T) {
	sink := NewQueueSink(newMemorySink(slog.LevelWarn))
	defer sink.Close()

	ctx := context.Background()
	if sink.Enabled(ctx, slog.LevelInfo) {
		t.Error("Info should be below the inner Warn sink")
	}
	if !sink.Enabled(ctx, slog.LevelError) {
		t.Error("Error should be accepted by the inner Warn sink")
	}
}

func TestQueueSink_ConcurrentHandle(t *testing.T) {
	inner := newMemorySink(slog.LevelDebug)
	sink := NewQueueSink(inner)

	const workers = 8
	const perWorker = 40

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for j := 0; j < perWorker; j++ {
				if err := sink.Handle(ctx, record(slog.LevelInfo, "tick")); err != nil {
					t.Errorf("Handle: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := len(inner.Messages()); got != workers*perWorker {
		t.Errorf("got %d messages, want %d", got, workers*perWorker)
	}
}
