package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{Format: FormatJSON}.Validate())
	require.Error(t, Config{Format: "xml"}.Validate())
	require.Error(t, Config{Level: "loud"}.Validate())
}

func TestBuildTeesToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	logger, closeFn, err := build(Config{Level: "warning", Format: FormatJSON, File: path}, zapcore.AddSync(&console))
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("skipping file", zap.String("file", "US.csv"))
	require.NoError(t, logger.Sync())

	require.NotContains(t, console.String(), "hidden")
	require.Contains(t, console.String(), "skipping file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "warn", rec["level"])
	require.Equal(t, "US.csv", rec["file"])
	require.Contains(t, rec, "timestamp")
}

func TestBuildConsoleFileHasNoColor(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	logger, closeFn, err := build(Config{Level: "info", File: path}, zapcore.AddSync(&console))
	require.NoError(t, err)
	defer closeFn()
	logger.Info("progress")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "INFO")
	require.NotContains(t, string(data), "\x1b[")
}

func TestCloseReleasesFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	logger, closeFn, err := build(Config{Level: "info", File: path}, zapcore.AddSync(&console))
	require.NoError(t, err)
	logger.Info("before close")
	require.NoError(t, logger.Sync())

	closeFn()

	// Syncing a closed file fails, so the handle is gone.
	require.Error(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "before close")
}

func TestCloseWithoutFile(t *testing.T) {
	logger, closeFn, err := build(Config{}, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	closeFn()
	require.NoError(t, logger.Sync())
}

func TestBuildBadFile(t *testing.T) {
	_, _, err := build(Config{File: filepath.Join(t.TempDir(), "missing", "x.log")}, zapcore.AddSync(&bytes.Buffer{}))
	require.Error(t, err)
}
