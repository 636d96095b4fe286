// Package cli builds the cobra commands behind the download, check and merge
// binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/logging"
	"github.com/rickgao/traffic-data/internal/version"
)

// logFlags are the logging options shared by every command.
type logFlags struct {
	level  string
	file   string
	format string
}

func (f *logFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.level, "log-level", "info", "log level (debug, info, warning, error)")
	cmd.Flags().StringVar(&f.file, "log-file", "", "also append logs to this file")
	cmd.Flags().StringVar(&f.format, "log-format", logging.FormatConsole, "log format (console, json)")
}

// apply copies explicitly set flags over cfg.
func (f *logFlags) apply(cmd *cobra.Command, cfg *logging.Config) {
	if cmd.Flags().Changed("log-level") {
		cfg.Level = f.level
	}
	if cmd.Flags().Changed("log-file") {
		cfg.File = f.file
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Format = f.format
	}
}

func (f *logFlags) config() logging.Config {
	return logging.Config{Level: f.level, File: f.file, Format: f.format}
}

// newCommand sets the options common to all three binaries.
func newCommand(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Version:      version.String(),
		SilenceUsage: true,
	}
}

// startLogger builds the logger and logs the command start. The returned func
// flushes and closes the log file.
func startLogger(cfg logging.Config, name string) (*zap.Logger, func(), error) {
	logger, closeFn, err := logging.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("starting "+name, version.Fields()...)
	return logger, closeFn, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs cmd with os.Args and returns the process exit code.
func Execute(cmd *cobra.Command) int {
	return run(cmd, os.Args[1:], os.Stderr)
}

func run(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
