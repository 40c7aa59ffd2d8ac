package logbook

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/logbook/channel"
	"github.com/thoreinstein/logbook/internal/paths"
)

// filenameTimeLayout is interpolated into log filenames when timestamping
// is on.
const filenameTimeLayout = "2006-01-02_15-04-05"

// App identifies the program that owns a logging session. Name is used
// for the default log filename, Version appears in the header's run
// section when set, and RepoPath points the header's git section at the
// program's source checkout.
type App struct {
	Name     string
	Version  string
	RepoPath string
}

// Config configures a logging session. The zero value of every optional
// field selects the default behavior: all header sections on, file and
// console output on, timestamped filename, Debug to file, Info to console,
// the root channel of the shared registry.
type Config struct {
	// OutputDir is the directory for the log file. Required unless NoFile
	// is set.
	OutputDir string

	// App identifies the owning program. App.Name names the log file when
	// Filename is empty.
	App App

	// Variables are dumped into the header's VARIABLES section.
	Variables []Describable

	// Verbose routes Debug and above to the console instead of Info and
	// above.
	Verbose bool

	// FileLevel is the minimum severity written to the file sink. nil
	// means Debug.
	FileLevel slog.Leveler

	// Filename overrides the log file base name (no extension).
	Filename string

	// HeaderTitle replaces "LOG" as the first section banner title.
	HeaderTitle string

	// Channel names the channel to configure. Empty means the root
	// channel. Named channels have their sinks cleared before the new
	// ones are attached; the root channel is never cleared, so repeated
	// root configuration is additive.
	Channel string

	// MultiprocessAware serializes file writes through a queue so that
	// concurrent writers sharing the file cannot interleave partial
	// lines. Incompatible with a named Channel.
	MultiprocessAware bool

	// Header section toggles. All sections are written by default.
	SkipHeader      bool
	SkipGit         bool
	SkipCLIArgs     bool
	SkipVersion     bool
	SkipEnvironment bool
	SkipVariables   bool

	// NoFile disables the log file entirely (console only).
	NoFile bool

	// NoConsole disables the console sink.
	NoConsole bool

	// NoTimestamp drops the timestamp from the log filename.
	NoTimestamp bool

	// Registry receives the configured channel. nil means the shared
	// process-wide registry.
	Registry *channel.Registry
}

// Session is the primary logging context for one program run.
type Session struct {
	filePath string
	ch       *channel.Channel
}

// FilePath returns the resolved log file path, or "" when file output was
// disabled.
func (s *Session) FilePath() string {
	return s.filePath
}

// Channel returns the configured live channel.
func (s *Session) Channel() *channel.Channel {
	return s.ch
}

// Start prepares the log file, writes its header, and configures the
// session's channel with the requested sinks. It returns the live session
// or a synchronous error for invalid configurations and file system
// failures.
func Start(cfg Config) (*Session, error) {
	if cfg.MultiprocessAware && cfg.Channel != "" {
		return nil, errors.Newf(
			"MultiprocessAware cannot be combined with a named channel (Channel=%q)",
			cfg.Channel)
	}

	var filePath string
	if !cfg.NoFile {
		if cfg.OutputDir == "" {
			return nil, errors.New("OutputDir is required when logging to a file")
		}
		base := cfg.Filename
		if base == "" {
			base = cfg.App.Name
		}
		if base == "" {
			return nil, errors.New("an owning App.Name or an explicit Filename is required to name the log file")
		}
		filePath = logFilePath(cfg.OutputDir, base, !cfg.NoTimestamp)

		if err := writeHeader(filePath, cfg); err != nil {
			return nil, err
		}
	}

	reg := cfg.Registry
	if reg == nil {
		reg = channel.Default()
	}
	ch := reg.Get(cfg.Channel)
	if cfg.Channel != channel.RootName {
		// Idempotent reconfiguration: a named channel holds exactly the
		// sinks of its latest configuration. The root channel keeps
		// whatever else was attached to it.
		ch.ClearSinks()
	}

	level := slog.LevelInfo
	attached := false

	if filePath != "" {
		fileLevel := levelOr(cfg.FileLevel, slog.LevelDebug)
		fs, err := channel.NewFileSink(filePath, fileLevel)
		if err != nil {
			return nil, err
		}
		var sink channel.Sink = fs
		if cfg.MultiprocessAware {
			sink = channel.NewQueueSink(fs)
		}
		ch.AttachSink(sink)
		level = fileLevel
		attached = true
	}

	if !cfg.NoConsole {
		consoleLevel := slog.LevelInfo
		if cfg.Verbose {
			consoleLevel = slog.LevelDebug
		}
		ch.AttachSink(channel.NewConsoleSink(os.Stderr, consoleLevel))
		if !attached || consoleLevel < level {
			level = consoleLevel
		}
	}
	ch.SetLevel(level)

	ch.Info("Starting logging")
	if cfg.MultiprocessAware {
		ch.Info("Multiprocess-aware logging enabled, queueing writes from all processes")
	} else {
		ch.Info("Not logging multiple processes")
	}

	return &Session{filePath: filePath, ch: ch}, nil
}

// Disable stops all logging through the shared registry. Useful at the
// end of a run when nothing more should reach the log files.
func Disable() {
	channel.Default().Disable()
}

// DefaultDir returns (creating it if needed) the conventional log
// directory for the named application under the XDG state home.
func DefaultDir(app string) (string, error) {
	return paths.DefaultLogDir(app)
}

// logFilePath joins dir and base into "<base>[_<timestamp>].log".
func logFilePath(dir, base string, timestamp bool) string {
	if timestamp {
		base += "_" + time.Now().Format(filenameTimeLayout)
	}
	return filepath.Join(dir, base+".log")
}

// levelOr resolves an optional Leveler to its level, or def when nil.
func levelOr(l slog.Leveler, def slog.Level) slog.Level {
	if l == nil {
		return def
	}
	return l.Level()
}
