package config

import (
	"time"

	"github.com/rickgao/traffic-data/internal/api"
	"github.com/rickgao/traffic-data/internal/logging"
)

// Default values for optional configuration fields.
const (
	DefaultBaseURL      = api.DefaultBaseURL
	DefaultProductID    = api.DefaultProductID
	DefaultAPITimeout   = api.DefaultTimeout
	DefaultMaxRetries   = api.DefaultMaxAttempts
	DefaultRetryBackoff = api.DefaultRetryBackoff
	DefaultStartDate    = "2019-01-01"
	DefaultDelay        = 500 * time.Millisecond
	DefaultOutputDir    = "youtube_traffic_data_monthly"
	DefaultErrorDir     = "error_responses_monthly"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = logging.FormatConsole
	DefaultMetricsJob   = "traffic_download"
)

// now is replaced in tests.
var now = time.Now

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return now().UTC().Format(DateLayout)
}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.ProductID == 0 {
		c.API.ProductID = DefaultProductID
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Download defaults. Delay is seeded before decoding since zero is valid.
	if c.Download.StartDate == "" {
		c.Download.StartDate = DefaultStartDate
	}
	if c.Download.EndDate == "" {
		c.Download.EndDate = Today()
	}
	if c.Download.OutputDir == "" {
		c.Download.OutputDir = DefaultOutputDir
	}
	if c.Download.ErrorDir == "" {
		c.Download.ErrorDir = DefaultErrorDir
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}
}
