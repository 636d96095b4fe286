package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rickgao/traffic-data/internal/region"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.ProductID < 1 {
		return errors.New("api.product_id is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	if c.API.MaxRetries < 1 {
		return errors.New("api.max_retries must be >= 1")
	}
	if c.API.RetryBackoff < 0 {
		return errors.New("api.retry_backoff must be >= 0")
	}

	if err := c.Download.validate(); err != nil {
		return err
	}

	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging")
	}

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return errors.New("metrics.job is required when metrics.pushgateway_url is set")
	}

	return nil
}

func (d *DownloadConfig) validate() error {
	if d.OutputDir == "" {
		return errors.New("download.output_dir is required")
	}
	if d.ErrorDir == "" {
		return errors.New("download.error_dir is required")
	}
	if d.Delay < 0 {
		return errors.New("download.delay must be >= 0")
	}

	start, err := ParseDate(d.StartDate)
	if err != nil {
		return errors.Wrap(err, "download.start_date")
	}
	end, err := ParseDate(d.EndDate)
	if err != nil {
		return errors.Wrap(err, "download.end_date")
	}
	if end.Before(start) {
		return errors.Errorf("download.end_date (%s) is before start_date (%s)", d.EndDate, d.StartDate)
	}

	for _, code := range d.Regions {
		if !region.Valid(strings.ToUpper(strings.TrimSpace(code))) {
			return errors.Errorf("download.regions: invalid region code %q", code)
		}
	}
	return nil
}
