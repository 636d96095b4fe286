// Package config loads the YAML configuration for the download command.
package config

import (
	"time"

	"github.com/rickgao/traffic-data/internal/logging"
)

// DateLayout is the layout of start_date and end_date.
const DateLayout = "2006-01-02"

// Config is the download command configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Download DownloadConfig `yaml:"download"`
	Logging  logging.Config `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// APIConfig configures the traffic fraction client.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ProductID    int           `yaml:"product_id"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`   // total attempts per request
	RetryBackoff time.Duration `yaml:"retry_backoff"` // first backoff, doubles per retry
}

// DownloadConfig configures the date range, regions and output locations.
type DownloadConfig struct {
	StartDate   string        `yaml:"start_date"`
	EndDate     string        `yaml:"end_date"`
	Delay       time.Duration `yaml:"delay"`
	OutputDir   string        `yaml:"output_dir"`
	ErrorDir    string        `yaml:"error_dir"`
	RegionsFile string        `yaml:"regions_file"`
	Regions     []string      `yaml:"regions"`
}

// MetricsConfig configures the optional Pushgateway push.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// Range returns the first and last instant covered by the configured dates.
// The end date is inclusive: the range stops one millisecond before the
// following midnight UTC.
func (d DownloadConfig) Range() (start, end time.Time, err error) {
	start, err = ParseDate(d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := ParseDate(d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, last.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}
