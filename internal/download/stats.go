package download

import (
	"time"

	"go.uber.org/zap"
)

// maxLoggedFailures caps the failed regions listed in the summary.
const maxLoggedFailures = 10

// Failure is a region that produced no series file.
type Failure struct {
	Region string
	Reason string
}

// Stats summarizes a download run.
type Stats struct {
	RunID         string
	Regions       int
	Succeeded     []string
	Failed        []Failure
	Points        int
	SliceFailures int
	Elapsed       time.Duration
}

func (s *Stats) addSuccess(region string, points int) {
	s.Succeeded = append(s.Succeeded, region)
	s.Points += points
}

func (s *Stats) addFailure(region, reason string) {
	s.Failed = append(s.Failed, Failure{Region: region, Reason: reason})
}

// LogSummary writes the end-of-run tally.
func (s *Stats) LogSummary(logger *zap.Logger) {
	logger.Info("download summary",
		zap.String("run_id", s.RunID),
		zap.Int("regions", s.Regions),
		zap.Int("succeeded", len(s.Succeeded)),
		zap.Int("failed", len(s.Failed)),
		zap.Int("points", s.Points),
		zap.Int("slice_failures", s.SliceFailures),
		zap.Duration("elapsed", s.Elapsed.Truncate(time.Second)),
	)

	for i, f := range s.Failed {
		if i == maxLoggedFailures {
			logger.Warn("more failed regions not shown", zap.Int("count", len(s.Failed)-maxLoggedFailures))
			break
		}
		logger.Warn("failed region", zap.String("region", f.Region), zap.String("reason", f.Reason))
	}
}
