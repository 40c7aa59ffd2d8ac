package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
)

// Sink persists or displays log records for a channel. A sink is a
// [slog.Handler] that additionally owns an output resource and releases it
// on Close.
type Sink interface {
	slog.Handler
	Close() error
}

// timeLayout is the timestamp format used on every log line.
const timeLayout = "2006-01-02 03:04:05 PM"

// procName labels each log line with the emitting process. Resolved once
// at startup from the executable name.
var procName = func() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "unknown"
	}
	return filepath.Base(os.Args[0])
}()

// appendLine renders a record as
//
//	<timestamp> - <level> - <process> <file:line> - <message> [key=value...]
//
// and appends it, newline-terminated, to buf.
func appendLine(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr) {
	fmt.Fprintf(buf, "%s - %s - %s %s - %s",
		r.Time.Format(timeLayout), r.Level.String(), procName, source(r), r.Message)
	for _, a := range attrs {
		fmt.Fprintf(buf, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(buf, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	buf.WriteByte('\n')
}

// source resolves the record's program counter to "file.go:line".
func source(r slog.Record) string {
	if r.PC == 0 {
		return "???"
	}
	fs := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := fs.Next()
	if f.File == "" {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

// WriterSink writes formatted log lines to an arbitrary writer. Close is a
// no-op; the sink does not own the writer.
type WriterSink struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

// NewWriterSink creates a sink writing to w at the given minimum level.
func NewWriterSink(w io.Writer, level slog.Level) *WriterSink {
	return &WriterSink{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled reports whether the sink accepts records at the given level.
func (s *WriterSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level
}

// Handle formats the record and writes it as one line.
func (s *WriterSink) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	appendLine(&buf, r, s.attrs)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a sink that includes the given attributes on every line.
func (s *WriterSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	ns := *s
	ns.attrs = make([]slog.Attr, len(s.attrs)+len(attrs))
	copy(ns.attrs, s.attrs)
	copy(ns.attrs[len(s.attrs):], attrs)
	return &ns
}

// WithGroup returns the sink unchanged; the line format has no grouping.
func (s *WriterSink) WithGroup(string) slog.Handler {
	return s
}

// Close implements Sink. It does not close the underlying writer.
func (s *WriterSink) Close() error {
	return nil
}

// FileSink writes formatted log lines to a file it owns. Close closes the
// file handle.
type FileSink struct {
	*WriterSink
	file *os.File
	path string
}

// NewFileSink opens (or creates) the file at path for appending and
// returns a sink writing to it at the given minimum level.
func NewFileSink(path string, level slog.Level) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", path)
	}
	return &FileSink{
		WriterSink: NewWriterSink(f, level),
		file:       f,
		path:       path,
	}, nil
}

// Path returns the file path the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// Close releases the underlying file handle.
func (s *FileSink) Close() error {
	if err := s.file.Close(); err != nil {
		return errors.Wrapf(err, "closing log file %s", s.path)
	}
	return nil
}
