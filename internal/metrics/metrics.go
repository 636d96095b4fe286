package metrics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Request outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeRetryable = "retryable"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
	OutcomeTransport = "transport"
)

// Region results.
const (
	ResultWritten = "written"
	ResultFailed  = "failed"
)

// Metrics holds the counters for one download run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Retries  prometheus.Counter
	Points   prometheus.Counter
	Regions  *prometheus.CounterVec
}

// New creates the counters and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_requests_total",
			Help: "Traffic fraction API requests by outcome.",
		}, []string{"outcome"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_retries_total",
			Help: "Traffic fraction API request retries.",
		}),
		Points: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_points_total",
			Help: "Data points extracted from API responses.",
		}),
		Regions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_regions_total",
			Help: "Regions processed by result.",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(m.Requests, m.Retries, m.Points, m.Regions)
	return m
}

// ObserveRequest counts one HTTP attempt.
func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

// ObserveRetry counts one retry.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

// ObservePoints adds n extracted points.
func (m *Metrics) ObservePoints(n int) {
	if m == nil {
		return
	}
	m.Points.Add(float64(n))
}

// ObserveRegion counts a finished region.
func (m *Metrics) ObserveRegion(result string) {
	if m == nil {
		return
	}
	m.Regions.WithLabelValues(result).Inc()
}

// Push sends the registry to a Pushgateway under the given job name.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string, groupings map[string]string) error {
	if m == nil {
		return nil
	}

	p := push.New(gatewayURL, job).Gatherer(m.Registry)
	for k, v := range groupings {
		p = p.Grouping(k, v)
	}

	if err := p.PushContext(ctx); err != nil {
		return errors.Wrap(err, "push metrics")
	}
	return nil
}
