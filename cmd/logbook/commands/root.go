// Package commands implements the CLI commands for logbook.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/logbook/internal/config"
	"github.com/thoreinstein/logbook/internal/errors"
	"github.com/thoreinstein/logbook/internal/paths"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// outputDir holds the value of the --output-dir flag.
var outputDir string

// noTimestamp holds the value of the --no-timestamp flag.
var noTimestamp bool

// cfg holds the loaded CLI configuration.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error console output")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory for log files (default: XDG state dir)")
	rootCmd.PersistentFlags().BoolVar(&noTimestamp, "no-timestamp", false,
		"omit the timestamp from log filenames")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("logbook version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	cfg, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Self-documenting log files for command runs",
	Long: `logbook wraps external commands in a self-documenting logging session.

Each run produces a primary log file with a descriptive header (run
metadata, git state, command line, runtime version, build dependencies)
and an isolated sub-log file capturing the wrapped command's output,
cross-referenced from the primary log.`,
	Example: `  # Run a tool with captured output
  logbook run -- make test

  # Name the sub-log and add variables from a file
  logbook run --name build --vars params.yaml -- make all

  # Show where logs go by default
  logbook dir`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet && verbosity > 0 {
			return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewUserError(configLoadErr, "Check your logbook config file")
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			return errors.NewUserError(
				errors.Wrapf(errors.ErrInvalidConfig, "%v", errs[0]),
				"Check your logbook config file")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveOutputDir returns the log directory: the --output-dir flag, the
// configured directory, or the XDG default, in that order.
func resolveOutputDir() (string, error) {
	if outputDir != "" {
		return outputDir, nil
	}
	if cfg != nil && cfg.OutputDir != "" {
		return cfg.OutputDir, nil
	}
	return paths.DefaultLogDir(config.AppName)
}

// resolveFileLevel returns the configured file severity.
func resolveFileLevel() (slog.Level, error) {
	if cfg == nil {
		return slog.LevelDebug, nil
	}
	level, err := config.ParseLevel(cfg.FileLevel)
	if err != nil {
		return 0, errors.NewUserError(err, "file_level must be one of: debug, info, warn, error")
	}
	return level, nil
}

// timestampEnabled resolves the filename timestamp toggle, flag over
// config.
func timestampEnabled() bool {
	if noTimestamp {
		return false
	}
	if cfg != nil {
		return cfg.Timestamp
	}
	return true
}
