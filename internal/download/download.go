package download

import (
	"context"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/metrics"
	"github.com/rickgao/traffic-data/internal/model"
)

// Failure reasons recorded for regions that produced no file.
const (
	ReasonNoData      = "no data downloaded"
	ReasonEmpty       = "empty response"
	ReasonWriteFailed = "failed to save series"
)

// Fetcher retrieves one region's points for one time window.
type Fetcher interface {
	GetTrafficFraction(ctx context.Context, region string, startMS, endMS int64) ([]model.DataPoint, error)
}

// SeriesHandler receives a region's accumulated points.
type SeriesHandler interface {
	HandleSeries(region string, points []model.DataPoint) error
}

// SeriesHandlerFunc is a function adapter for SeriesHandler.
type SeriesHandlerFunc func(region string, points []model.DataPoint) error

func (f SeriesHandlerFunc) HandleSeries(region string, points []model.DataPoint) error {
	return f(region, points)
}

// Config holds downloader configuration.
type Config struct {
	Start time.Time     // First instant requested
	End   time.Time     // Last instant requested, inclusive
	Delay time.Duration // Courtesy delay between consecutive requests
}

// Downloader fetches regions month by month and hands each series to a handler.
type Downloader struct {
	cfg     Config
	fetcher Fetcher
	handler SeriesHandler
	metrics *metrics.Metrics
	logger  *zap.Logger
	runID   string
}

// job is one region × month request.
type job struct {
	region string
	window Window
	last   bool // final window for the region
}

// New creates a Downloader. A nil logger discards output and nil metrics
// records nothing.
func New(cfg Config, fetcher Fetcher, handler SeriesHandler, m *metrics.Metrics, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Downloader{
		cfg:     cfg,
		fetcher: fetcher,
		handler: handler,
		metrics: m,
		logger:  logger.With(zap.String("run_id", runID)),
		runID:   runID,
	}
}

// RunID identifies this downloader's run in logs and metrics.
func (d *Downloader) RunID() string {
	return d.runID
}

// Run downloads every region over the configured range. Per-region failures
// are recorded in the returned Stats; only context cancellation is returned
// as an error, together with the stats gathered so far.
func (d *Downloader) Run(ctx context.Context, regions []string) (*Stats, error) {
	windows := MonthWindows(d.cfg.Start, d.cfg.End)
	stats := &Stats{RunID: d.runID, Regions: len(regions)}
	started := time.Now()
	defer func() { stats.Elapsed = time.Since(started) }()

	queue := deque.New[job]()
	for _, region := range regions {
		for i, w := range windows {
			queue.PushBack(job{region: region, window: w, last: i == len(windows)-1})
		}
	}

	d.logger.Info("starting download",
		zap.Int("regions", len(regions)),
		zap.Int("months", len(windows)),
		zap.Int("requests", queue.Len()),
		zap.Time("start", d.cfg.Start),
		zap.Time("end", d.cfg.End),
	)

	var (
		points      []model.DataPoint
		sliceFailed bool
		requests    int
	)

	for queue.Len() > 0 {
		j := queue.PopFront()

		if requests > 0 {
			if err := sleep(ctx, d.cfg.Delay); err != nil {
				d.logger.Warn("download cancelled", zap.Error(err))
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			d.logger.Warn("download cancelled", zap.Error(err))
			return stats, err
		}
		requests++

		d.logger.Debug("fetching",
			zap.String("region", j.region),
			zap.String("month", j.window.Label()),
			zap.Int("remaining", queue.Len()),
		)

		got, err := d.fetcher.GetTrafficFraction(ctx, j.region, j.window.StartMS(), j.window.EndMS())
		switch {
		case err != nil:
			if ctx.Err() != nil {
				d.logger.Warn("download cancelled", zap.Error(ctx.Err()))
				return stats, ctx.Err()
			}
			sliceFailed = true
			stats.SliceFailures++
			d.logger.Warn("month download failed",
				zap.String("region", j.region),
				zap.String("month", j.window.Label()),
				zap.Error(err),
			)
		case len(got) == 0:
			d.logger.Debug("empty month",
				zap.String("region", j.region),
				zap.String("month", j.window.Label()),
			)
		default:
			points = append(points, got...)
		}

		if !j.last {
			continue
		}

		d.finishRegion(stats, j.region, points, sliceFailed)
		points = nil
		sliceFailed = false
	}

	return stats, nil
}

// finishRegion hands a region's points to the handler and records the result.
func (d *Downloader) finishRegion(stats *Stats, region string, points []model.DataPoint, sliceFailed bool) {
	if len(points) == 0 {
		reason := ReasonEmpty
		if sliceFailed {
			reason = ReasonNoData
		}
		stats.addFailure(region, reason)
		d.metrics.ObserveRegion(metrics.ResultFailed)
		d.logger.Warn("no data for region", zap.String("region", region), zap.String("reason", reason))
		return
	}

	if d.handler != nil {
		if err := d.handler.HandleSeries(region, points); err != nil {
			stats.addFailure(region, ReasonWriteFailed)
			d.metrics.ObserveRegion(metrics.ResultFailed)
			d.logger.Error("failed to save region", zap.String("region", region), zap.Error(err))
			return
		}
	}

	stats.addSuccess(region, len(points))
	d.metrics.ObserveRegion(metrics.ResultWritten)
	d.logger.Info("region complete",
		zap.String("region", region),
		zap.Int("points", len(points)),
		zap.Bool("partial", sliceFailed),
	)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
