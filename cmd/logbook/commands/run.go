package commands

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/logbook"
	"github.com/thoreinstein/logbook/internal/errors"
	"github.com/thoreinstein/logbook/internal/varsfile"
)

// runName holds the value of the --name flag.
var runName string

// varsPath holds the value of the --vars flag.
var varsPath string

func init() {
	runCmd.Flags().StringVarP(&runName, "name", "n", "",
		"sub-log name (default: the command's base name)")
	runCmd.Flags().StringVar(&varsPath, "vars", "",
		"YAML or TOML file of variables to record in the log header")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command inside a logging session",
	Long: `Run starts a logging session, executes the command under an isolated
sub-log, and captures its standard output and standard error into the
sub-log file. The session log records when the sub-log started and
finished and where its file lives.

The command's exit code becomes logbook's exit code.`,
	Example: `  logbook run -- make test
  logbook run --name preprocessing --vars params.yaml -- ./preprocess --fast`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.NewUserError(errors.ErrMissingCommand,
				"Pass the command to run after --")
		}
		return nil
	},
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	dir, err := resolveOutputDir()
	if err != nil {
		return errors.NewSystemError(err, "Pass --output-dir to choose a writable directory")
	}
	fileLevel, err := resolveFileLevel()
	if err != nil {
		return err
	}

	var vars []logbook.Describable
	if varsPath != "" {
		vars, err = varsfile.Load(varsPath)
		if err != nil {
			return errors.NewUserError(err, "Variables files must be .yaml, .yml, or .toml")
		}
	}

	session, err := logbook.Start(logbook.Config{
		OutputDir:   dir,
		App:         logbook.App{Name: "logbook", Version: version},
		Variables:   vars,
		Verbose:     verbosity > 0,
		FileLevel:   fileLevel,
		NoConsole:   quiet,
		NoTimestamp: !timestampEnabled(),
	})
	if err != nil {
		return errors.NewSystemError(err, "Could not start the logging session")
	}

	name := runName
	if name == "" {
		name = filepath.Base(args[0])
	}

	var result logbook.CommandResult
	var subLogPath string
	err = logbook.WithSubLog(logbook.SubLogConfig{
		Name:        name,
		OutputDir:   dir,
		FileLevel:   fileLevel,
		NoTimestamp: !timestampEnabled(),
	}, func(sl *logbook.SubLog) error {
		subLogPath = sl.FilePath()
		res, runErr := sl.RunCommand(exec.Command(args[0], args[1:]...))
		result = res
		return runErr
	})
	if err != nil {
		return errors.NewSystemError(err, "Could not run the command")
	}

	if session.FilePath() != "" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "session log: %s\n", session.FilePath())
		fmt.Fprintf(cmd.OutOrStdout(), "command log: %s\n", subLogPath)
	}

	if result.ExitCode != 0 {
		return errors.NewExitError(
			errors.Newf("command exited with code %d", result.ExitCode),
			result.ExitCode)
	}
	return nil
}
