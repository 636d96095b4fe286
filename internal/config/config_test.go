package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/traffic-data/internal/logging"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: http://localhost:8080/fraction
  product_id: 7
  timeout: 5s
  max_retries: 4
  retry_backoff: 250ms
download:
  start_date: 2020-03-01
  end_date: 2020-05-31
  delay: 0s
  output_dir: out
  error_dir: errs
  regions: [US, ca]
logging:
  level: debug
  format: json
metrics:
  pushgateway_url: http://localhost:9091
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080/fraction" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.ProductID != 7 {
		t.Errorf("API.ProductID = %d, want 7", cfg.API.ProductID)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.API.RetryBackoff != 250*time.Millisecond {
		t.Errorf("API.RetryBackoff = %v, want 250ms", cfg.API.RetryBackoff)
	}
	if cfg.Download.StartDate != "2020-03-01" {
		t.Errorf("Download.StartDate = %q, want 2020-03-01", cfg.Download.StartDate)
	}
	if cfg.Download.Delay != 0 {
		t.Errorf("Download.Delay = %v, want 0", cfg.Download.Delay)
	}
	if len(cfg.Download.Regions) != 2 || cfg.Download.Regions[1] != "ca" {
		t.Errorf("Download.Regions = %v", cfg.Download.Regions)
	}
	if cfg.Logging.Format != logging.FormatJSON {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Metrics.PushgatewayURL != "http://localhost:9091" {
		t.Errorf("Metrics.PushgatewayURL = %q", cfg.Metrics.PushgatewayURL)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TRAFFIC_OUT", "/data/traffic")

	path := writeTempFile(t, "download:\n  output_dir: ${TRAFFIC_OUT}/monthly\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Download.OutputDir != "/data/traffic/monthly" {
		t.Errorf("Download.OutputDir = %q, want %q", cfg.Download.OutputDir, "/data/traffic/monthly")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}
	if _, err := Load(writeTempFile(t, "api: [unclosed\n")); err == nil {
		t.Error("Load of bad YAML should fail")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	path := writeTempFile(t, "logging:\n  level: warn\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.ProductID != DefaultProductID {
		t.Errorf("API.ProductID = %d, want default %d", cfg.API.ProductID, DefaultProductID)
	}
	if cfg.API.MaxRetries != DefaultMaxRetries {
		t.Errorf("API.MaxRetries = %d, want default %d", cfg.API.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Download.Delay != DefaultDelay {
		t.Errorf("Download.Delay = %v, want default %v", cfg.Download.Delay, DefaultDelay)
	}
	if cfg.Download.StartDate != DefaultStartDate {
		t.Errorf("Download.StartDate = %q, want default %q", cfg.Download.StartDate, DefaultStartDate)
	}
	if cfg.Download.EndDate != "2024-06-15" {
		t.Errorf("Download.EndDate = %q, want today", cfg.Download.EndDate)
	}
	if cfg.Download.OutputDir != DefaultOutputDir {
		t.Errorf("Download.OutputDir = %q, want default %q", cfg.Download.OutputDir, DefaultOutputDir)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Metrics.Job != DefaultMetricsJob {
		t.Errorf("Metrics.Job = %q, want default %q", cfg.Metrics.Job, DefaultMetricsJob)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "api:\n  max_retries: -1\n")
	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "api.max_retries must be >= 1") {
		t.Errorf("LoadAndValidate error = %v", err)
	}
}

func TestRange(t *testing.T) {
	d := DownloadConfig{StartDate: "2023-01-01", EndDate: "2023-01-31"}
	start, end, err := d.Range()
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2023, 1, 31, 23, 59, 59, 999000000, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	if _, _, err := (DownloadConfig{StartDate: "01/01/2023", EndDate: "2023-01-31"}).Range(); err == nil {
		t.Error("Range should reject a malformed start date")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := *Default()
		c.Download.StartDate = "2023-01-01"
		c.Download.EndDate = "2023-02-01"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout must be > 0"},
		{"zero retries", func(c *Config) { c.API.MaxRetries = 0 }, "api.max_retries must be >= 1"},
		{"negative delay", func(c *Config) { c.Download.Delay = -time.Second }, "download.delay must be >= 0"},
		{"missing output dir", func(c *Config) { c.Download.OutputDir = "" }, "download.output_dir is required"},
		{"bad start date", func(c *Config) { c.Download.StartDate = "2023/01/01" }, `download.start_date: invalid date "2023/01/01", want YYYY-MM-DD`},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.Download.EndDate = "2022-12-31" },
			wantErr: "download.end_date (2022-12-31) is before start_date (2023-01-01)",
		},
		{"bad region", func(c *Config) { c.Download.Regions = []string{"US", "USA"} }, `download.regions: invalid region code "USA"`},
		{"lowercase region ok", func(c *Config) { c.Download.Regions = []string{"us"} }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, `logging: unknown log level "loud"`},
		{
			name:    "push without job",
			mutate:  func(c *Config) { c.Metrics.PushgatewayURL = "http://pg:9091"; c.Metrics.Job = "" },
			wantErr: "metrics.job is required when metrics.pushgateway_url is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
