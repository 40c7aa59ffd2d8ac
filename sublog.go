package logbook

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/logbook/channel"
)

// subLogMarker roots the channel names of parentless sub-logs.
const subLogMarker = "logbook"

// SubLogConfig configures one sub-log. Name and OutputDir are required;
// the zero values of the remaining fields select the defaults: rooted
// under the root channel, Debug to file, no console echo, timestamped
// filename, shared registry.
type SubLogConfig struct {
	// Name labels the sub-log and its file. Names need not be unique
	// process-wide, but concurrently open sub-logs under one parent must
	// use distinct names (or keep timestamping on) since the derived
	// channel name is reused otherwise.
	Name string

	// OutputDir is the directory for the sub-log file.
	OutputDir string

	// Parent is the channel the breadcrumbs are written to. Empty means
	// the root channel.
	Parent string

	// FileLevel is the minimum severity written to the file. nil means
	// Debug.
	FileLevel slog.Leveler

	// Console also echoes the sub-log to the console.
	Console bool

	// NoTimestamp drops the timestamp from the sub-log filename.
	NoTimestamp bool

	// Registry holds the channels involved. nil means the shared
	// process-wide registry.
	Registry *channel.Registry
}

// SubLog is an isolated logging destination for one bounded unit of work.
// Its channel never propagates to the parent; the only trace in the
// parent log is one breadcrumb line at creation and one at close.
type SubLog struct {
	name     string
	filePath string
	ch       *channel.Channel
	parent   *channel.Channel

	mu     sync.Mutex
	closed bool
}

// SubLogChannelName returns the channel name a sub-log called name under
// the given parent resolves to.
func SubLogChannelName(parent, name string) string {
	if parent == "" {
		parent = subLogMarker
	}
	return parent + ".sublog." + name
}

// NewSubLog creates the sub-log's file and channel, isolates the channel
// from the parent's sinks, and writes the start breadcrumbs. File system
// failures propagate to the caller; nothing is retried.
func NewSubLog(cfg SubLogConfig) (*SubLog, error) {
	if cfg.Name == "" {
		return nil, errors.New("sub-log Name is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("sub-log OutputDir is required")
	}

	filePath := logFilePath(cfg.OutputDir, cfg.Name, !cfg.NoTimestamp)

	reg := cfg.Registry
	if reg == nil {
		reg = channel.Default()
	}

	fileLevel := levelOr(cfg.FileLevel, slog.LevelDebug)

	ch := reg.Get(SubLogChannelName(cfg.Parent, cfg.Name))
	// Isolation: no sinks carried over from a previous occupant of the
	// same channel name, and nothing bubbles to the parent's sinks.
	ch.ClearSinks()
	ch.SetPropagate(false)
	ch.SetLevel(fileLevel)

	fs, err := channel.NewFileSink(filePath, fileLevel)
	if err != nil {
		return nil, err
	}
	ch.AttachSink(fs)

	if cfg.Console {
		ch.AttachSink(channel.NewConsoleSink(os.Stderr, slog.LevelDebug))
		if fileLevel > slog.LevelDebug {
			ch.SetLevel(slog.LevelDebug)
		}
	}

	parent := reg.Get(cfg.Parent)

	sl := &SubLog{
		name:     cfg.Name,
		filePath: filePath,
		ch:       ch,
		parent:   parent,
	}

	parent.LogDepth(1, slog.LevelInfo,
		fmt.Sprintf("Starting sub-log '%s', see %s for details", cfg.Name, filePath))
	sl.ch.LogDepth(1, slog.LevelInfo, fmt.Sprintf("Sub-log '%s' started", cfg.Name))

	return sl, nil
}

// Name returns the sub-log's label.
func (s *SubLog) Name() string {
	return s.name
}

// FilePath returns the sub-log's file path.
func (s *SubLog) FilePath() string {
	return s.filePath
}

// Channel returns the sub-log's isolated channel.
func (s *SubLog) Channel() *channel.Channel {
	return s.ch
}

// Debug logs a message on the sub-log's channel at Debug level.
func (s *SubLog) Debug(msg string, args ...any) {
	s.ch.LogDepth(1, slog.LevelDebug, msg, args...)
}

// Info logs a message on the sub-log's channel at Info level.
func (s *SubLog) Info(msg string, args ...any) {
	s.ch.LogDepth(1, slog.LevelInfo, msg, args...)
}

// Warn logs a message on the sub-log's channel at Warn level.
func (s *SubLog) Warn(msg string, args ...any) {
	s.ch.LogDepth(1, slog.LevelWarn, msg, args...)
}

// Error logs a message on the sub-log's channel at Error level.
func (s *SubLog) Error(msg string, args ...any) {
	s.ch.LogDepth(1, slog.LevelError, msg, args...)
}

// Close writes the finish message, releases and detaches every sink, and
// leaves a finish breadcrumb in the parent log. Closing an already-closed
// sub-log is a no-op.
//
// Release is best-effort: a sink that fails to close does not stop the
// remaining sinks from being released, and the parent breadcrumb is
// written exactly once regardless. The aggregate of any release failures
// is returned.
func (s *SubLog) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// The finish message must land while the file sink is still attached.
	s.ch.LogDepth(1, slog.LevelInfo, fmt.Sprintf("Sub-log '%s' finished", s.name))

	var errs error
	for _, sink := range s.ch.Sinks() {
		if err := sink.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		s.ch.DetachSink(sink)
	}

	s.parent.LogDepth(1, slog.LevelInfo,
		fmt.Sprintf("Sub-log '%s' finished, log saved to %s", s.name, s.filePath))

	return errs
}

// CommandResult is the outcome of a captured subprocess run.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunCommand executes cmd, capturing standard output and standard error
// entirely, and writes them to the sub-log: one Info line per stdout line
// prefixed "[stdout]", one Warn line per stderr line prefixed "[stderr]",
// and a final line with the exit code. Any Stdout/Stderr the caller set
// on cmd are silently replaced; the helper always captures both.
//
// A non-zero exit is not an error: it is reported through
// CommandResult.ExitCode, and surfacing it is the caller's concern. The
// error return covers commands that could not start and closed sub-logs.
func (s *SubLog) RunCommand(cmd *exec.Cmd) (CommandResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return CommandResult{}, errors.Newf("sub-log '%s' is closed", s.name)
	}
	s.mu.Unlock()

	s.ch.LogDepth(1, slog.LevelInfo,
		fmt.Sprintf("Running command: %s", strings.Join(cmd.Args, " ")))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return CommandResult{ExitCode: -1}, errors.Wrapf(runErr, "running command %s", cmd.Path)
		}
		exitCode = exitErr.ExitCode()
	}

	for _, line := range splitOutputLines(stdout.String()) {
		s.ch.LogDepth(1, slog.LevelInfo, "[stdout] "+line)
	}
	for _, line := range splitOutputLines(stderr.String()) {
		s.ch.LogDepth(1, slog.LevelWarn, "[stderr] "+line)
	}
	s.ch.LogDepth(1, slog.LevelInfo,
		fmt.Sprintf("Command finished with return code %d", exitCode))

	return CommandResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// WithSubLog creates a sub-log, hands it to fn, and guarantees Close runs
// exactly once on every exit path: normal return, error return, or panic
// (which re-raises unchanged after the close). fn's error is returned
// unmodified; a close failure is only reported when fn itself succeeded.
func WithSubLog(cfg SubLogConfig, fn func(*SubLog) error) (err error) {
	sl, err := NewSubLog(cfg)
	if err != nil {
		return err
	}
	defer func() {
		cerr := sl.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(sl)
}

// splitOutputLines splits captured subprocess output into its non-empty
// trailing-trimmed lines.
func splitOutputLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
