package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

// ConsoleSink writes colorized log lines to a terminal. Colors are only
// used when the writer is a TTY that supports them. Close is a no-op:
// the sink never owns the process's standard streams.
type ConsoleSink struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	attrs []slog.Attr

	timeColor  *color.Color
	debugColor *color.Color
	infoColor  *color.Color
	warnColor  *color.Color
	errorColor *color.Color
	keyColor   *color.Color
}

// NewConsoleSink creates a console sink writing to out at the given
// minimum level.
func NewConsoleSink(out io.Writer, level slog.Level) *ConsoleSink {
	s := &ConsoleSink{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
	}

	// Only initialize colors if the writer supports them
	if SupportsColor(out) {
		s.timeColor = color.New(color.FgHiBlack)
		s.debugColor = color.New(color.FgMagenta)
		s.infoColor = color.New(color.FgGreen)
		s.warnColor = color.New(color.FgYellow)
		s.errorColor = color.New(color.FgRed, color.Bold)
		s.keyColor = color.New(color.FgCyan)
	}

	return s
}

// Enabled reports whether the sink accepts records at the given level.
func (s *ConsoleSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level
}

// Handle renders the record in the shared line layout, colorizing the
// timestamp, level, and attribute keys when the terminal allows it.
func (s *ConsoleSink) Handle(_ context.Context, r slog.Record) error {
	if s.timeColor == nil {
		// Plain writers get the exact file-line layout.
		var buf bytes.Buffer
		appendLine(&buf, r, s.attrs)
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.out.Write(buf.Bytes())
		return err
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s - ", s.timeColor.Sprint(r.Time.Format(timeLayout)))

	levelStr := r.Level.String()
	switch {
	case r.Level >= slog.LevelError:
		levelStr = s.errorColor.Sprint(levelStr)
	case r.Level >= slog.LevelWarn:
		levelStr = s.warnColor.Sprint(levelStr)
	case r.Level >= slog.LevelInfo:
		levelStr = s.infoColor.Sprint(levelStr)
	default:
		levelStr = s.debugColor.Sprint(levelStr)
	}
	fmt.Fprintf(&buf, "%s - %s %s - %s", levelStr, procName, source(r), r.Message)

	for _, a := range s.attrs {
		fmt.Fprintf(&buf, " %s=%v", s.keyColor.Sprint(a.Key), a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, " %s=%v", s.keyColor.Sprint(a.Key), a.Value.Any())
		return true
	})
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.out.Write(buf.Bytes())
	return err
}

// WithAttrs returns a sink that includes the given attributes on every line.
func (s *ConsoleSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	ns := *s
	ns.attrs = make([]slog.Attr, len(s.attrs)+len(attrs))
	copy(ns.attrs, s.attrs)
	copy(ns.attrs[len(s.attrs):], attrs)
	return &ns
}

// WithGroup returns the sink unchanged; the line format has no grouping.
func (s *ConsoleSink) WithGroup(string) slog.Handler {
	return s
}

// Close implements Sink as a no-op.
func (s *ConsoleSink) Close() error {
	return nil
}
