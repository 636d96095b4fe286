package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/metrics"
	"github.com/rickgao/traffic-data/internal/model"
)

// SecurityPrefix guards responses against JSON hijacking.
const SecurityPrefix = ")]}'\n"

// ErrMalformedResponse means the body was not valid JSON. It is not retried.
var ErrMalformedResponse = errors.New("malformed response")

// GetTrafficFraction fetches the traffic fraction series for one region
// between startMS and endMS (epoch milliseconds).
//
// An empty body yields an empty series, not an error. Transport failures and
// 500-504 responses are retried with doubling backoff; anything else fails at once.
func (c *Client) GetTrafficFraction(ctx context.Context, region string, startMS, endMS int64) ([]model.DataPoint, error) {
	query := url.Values{}
	query.Set("start", strconv.FormatInt(startMS, 10))
	query.Set("end", strconv.FormatInt(endMS, 10))
	query.Set("region", region)
	query.Set("product", strconv.Itoa(c.productID))

	log := c.logger.With(zap.String("region", region), zap.Int64("start", startMS), zap.Int64("end", endMS))

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.metrics.ObserveRetry()
			log.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, query)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !IsRetryable(err) {
				c.metrics.ObserveRequest(outcomeOf(err))
				log.Error("request rejected", zap.Int("attempt", attempt), zap.Error(err))
				return nil, errors.Wrapf(err, "get traffic fraction %s", region)
			}

			c.metrics.ObserveRequest(outcomeOf(err))
			log.Warn("request failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Error(err),
			)
			continue
		}

		points, err := c.decode(log, region, startMS, attempt, body)
		if err != nil {
			c.metrics.ObserveRequest(metrics.OutcomeMalformed)
			return nil, err
		}

		c.metrics.ObserveRequest(metrics.OutcomeOK)
		c.metrics.ObservePoints(len(points))
		return points, nil
	}

	return nil, errors.Wrapf(lastErr, "get traffic fraction %s: max retries exceeded", region)
}

// decode strips the security prefix, parses JSON and extracts the points.
func (c *Client) decode(log *zap.Logger, region string, startMS int64, attempt int, body []byte) ([]model.DataPoint, error) {
	content := bytes.TrimPrefix(body, []byte(SecurityPrefix))
	if len(bytes.TrimSpace(content)) == 0 {
		log.Warn("empty response")
		return []model.DataPoint{}, nil
	}

	data, err := parseJSON(content)
	if err != nil {
		log.Error("json parse error", zap.Int("attempt", attempt), zap.Error(err))
		c.saveErrorResponse(log, region, startMS, attempt, body)
		return nil, errors.Wrapf(ErrMalformedResponse, "region %s: %v", region, err)
	}

	if !ValidResponseShape(data) {
		log.Warn("unexpected response structure")
		return []model.DataPoint{}, nil
	}

	points := ExtractDataPoints(data)
	if len(points) == 0 {
		log.Warn("no data points extracted")
	}
	return points, nil
}

// parseJSON decodes a single JSON value, keeping numbers as json.Number.
func parseJSON(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return data, nil
}

// saveErrorResponse writes an unparseable body for offline inspection.
func (c *Client) saveErrorResponse(log *zap.Logger, region string, startMS int64, attempt int, body []byte) {
	if c.errorDir == "" {
		return
	}

	if err := os.MkdirAll(c.errorDir, 0755); err != nil {
		log.Error("failed to create error directory", zap.String("dir", c.errorDir), zap.Error(err))
		return
	}

	path := filepath.Join(c.errorDir, ErrorFileName(region, startMS, attempt))
	if err := os.WriteFile(path, body, 0644); err != nil {
		log.Error("failed to save error response", zap.String("path", path), zap.Error(err))
		return
	}

	log.Debug("error response saved", zap.String("path", path))
}

// ErrorFileName names the capture file for one failed attempt.
func ErrorFileName(region string, startMS int64, attempt int) string {
	return fmt.Sprintf("%s_error_response_%d_attempt%d.txt", region, startMS, attempt)
}

func outcomeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsRetryable() {
			return metrics.OutcomeRetryable
		}
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeTransport
}
