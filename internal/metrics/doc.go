// Package metrics provides Prometheus metrics for download runs.
//
// Key metrics:
//   - Request outcomes (ok, retryable, rejected, malformed, transport)
//   - Retries and points fetched
//   - Regions written vs. failed
//
// A download is a batch job, so metrics live in a private registry and are
// pushed to a Pushgateway at the end of the run instead of being scraped.
package metrics
