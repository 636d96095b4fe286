package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/merge"
)

// NewMergeCommand returns the merge command.
func NewMergeCommand() *cobra.Command {
	var logs logFlags

	cmd := newCommand("merge <input_dir> <output_file>", "Merge per-region series files into one table")
	cmd.Long = `Merge every per-region series file in input_dir into a single table.

Columns are the sorted region codes, rows the sorted union of timestamps.
Cells with no value hold NA. Unreadable files are skipped and their region
left out.`
	cmd.Args = cobra.ExactArgs(2)

	logs.register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := startLogger(logs.config(), "merge")
		if err != nil {
			return err
		}
		defer closeLog()

		stats, err := merge.New(logger).Merge(args[0], args[1])
		if stats != nil {
			stats.LogSummary(logger)
		}
		if err != nil {
			logger.Error("merge failed", zap.Error(err))
			return err
		}
		return nil
	}

	return cmd
}
