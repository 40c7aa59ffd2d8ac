package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/logbook/internal/errors"
)

func init() {
	rootCmd.AddCommand(dirCmd)
}

var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the directory log files are written to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveOutputDir()
		if err != nil {
			return errors.NewSystemError(err, "Pass --output-dir to choose a writable directory")
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}
