// Package logging builds the zap logger handed to every component.
//
// There is no package-level logger. Commands call New once at startup and
// pass the result down explicitly.
package logging

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn (or warning), error.
	Level string `yaml:"level"`

	// Format is console or json.
	Format string `yaml:"format"`

	// File, when set, receives a copy of everything written to stderr.
	File string `yaml:"file"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatConsole,
	}
}

// ParseLevel accepts the level names used on the command line.
func ParseLevel(s string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		name = "warn"
	case "debug", "info", "warn", "error":
	default:
		return zapcore.InfoLevel, errors.Errorf("unknown log level %q", s)
	}
	return zapcore.ParseLevel(name)
}

// Validate checks level and format.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case "", FormatConsole, FormatJSON:
		return nil
	default:
		return errors.Errorf("unknown log format %q", c.Format)
	}
}

// New builds a logger writing to stderr and, if cfg.File is set, appending
// the same records to that file. The returned func flushes the logger and
// closes the file; call it once the logger is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg Config, console zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := ParseLevel(cfg.Level)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(cfg.Format, true), console, level),
	}

	var file *os.File
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder(cfg.Format, false), zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, closeFn, nil
}

func encoder(format string, color bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == FormatJSON {
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}
