package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/metrics"
)

// Defaults for the traffic fraction endpoint.
const (
	DefaultBaseURL      = "https://transparencyreport.google.com/transparencyreport/api/v3/traffic/fraction"
	DefaultProductID    = 21
	DefaultTimeout      = 30 * time.Second
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = 2 * time.Second
)

// Client provides access to the traffic fraction API.
type Client struct {
	baseURL    string
	productID  int
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics

	maxAttempts  int
	retryBackoff time.Duration

	// errorDir receives raw bodies that fail to parse. Empty disables capture.
	errorDir string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   baseURL,
		productID: DefaultProductID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:       zap.NewNop(),
		maxAttempts:  DefaultMaxAttempts,
		retryBackoff: DefaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the total attempt count and the first backoff delay.
// The delay doubles after every failed attempt.
func WithRetries(maxAttempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		c.maxAttempts = maxAttempts
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProductID overrides the product identifier.
func WithProductID(id int) ClientOption {
	return func(c *Client) {
		c.productID = id
	}
}

// WithErrorDir sets where unparseable response bodies are saved.
func WithErrorDir(dir string) ClientOption {
	return func(c *Client) {
		c.errorDir = dir
	}
}

// WithMetrics records request outcomes into m.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}
