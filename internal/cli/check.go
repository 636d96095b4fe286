package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/check"
)

// ErrInconsistent is returned by the check command when any file was skipped
// or disagreed with the reference.
var ErrInconsistent = errors.New("timestamps are not consistent across files")

// NewCheckCommand returns the check command.
func NewCheckCommand() *cobra.Command {
	var logs logFlags

	cmd := newCommand("check <input_dir>", "Verify all series files share the same timestamps")
	cmd.Long = `Compare the timestamp set of every series file in input_dir against the
first readable file. Exits non-zero if any file differs or cannot be read.`
	cmd.Args = cobra.ExactArgs(1)

	logs.register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := startLogger(logs.config(), "check")
		if err != nil {
			return err
		}
		defer closeLog()

		report, err := check.New(logger).Check(args[0])
		if report != nil {
			report.LogSummary(logger)
		}
		if err != nil {
			logger.Error("check failed", zap.Error(err))
			return err
		}

		if !report.Consistent {
			logger.Error("inconsistencies found")
			return ErrInconsistent
		}
		logger.Info("all files consistent")
		return nil
	}

	return cmd
}
