package merge

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/model"
	"github.com/rickgao/traffic-data/internal/seriesfile"
)

// Missing is written for a region with no value at a timestamp.
const Missing = "NA"

// ErrNoData means no file contributed any rows; no output is written.
var ErrNoData = errors.New("no data to merge")

// Stats summarizes a merge run.
type Stats struct {
	FilesProcessed int
	FilesFailed    int
	FailedFiles    []string
	Regions        int
	Timestamps     int
}

// Merger merges a directory of series files.
type Merger struct {
	logger *zap.Logger
}

// New creates a Merger. A nil logger discards output.
func New(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge reads every series file in inputDir and writes the merged table to
// outputPath. Files that fail to read are skipped and their region omitted.
// An output path inside inputDir is never read back as a region.
func (m *Merger) Merge(inputDir, outputPath string) (*Stats, error) {
	paths, err := seriesfile.List(inputDir)
	if err != nil {
		return nil, err
	}
	paths = m.withoutOutput(paths, outputPath)

	m.logger.Info("found series files", zap.Int("count", len(paths)), zap.String("dir", inputDir))

	stats := &Stats{}
	table := make(map[string]map[string]string)
	var regions []string

	for _, path := range paths {
		name := filepath.Base(path)
		region := seriesfile.RegionFromPath(path)

		rows, err := seriesfile.Read(path)
		if err != nil {
			m.logger.Warn("skipping unreadable file", zap.String("file", name), zap.Error(err))
			stats.addFailure(name)
			continue
		}
		if len(rows) == 0 {
			m.logger.Warn("no data read from file", zap.String("file", name))
			stats.addFailure(name)
			continue
		}

		for _, r := range rows {
			key := model.FormatTimestamp(model.TimeFromMillis(r.TimestampMS))
			row, ok := table[key]
			if !ok {
				row = make(map[string]string)
				table[key] = row
			}
			row[region] = r.Value
		}

		regions = append(regions, region)
		stats.FilesProcessed++
		m.logger.Debug("read file", zap.String("file", name), zap.Int("rows", len(rows)))
	}

	if len(table) == 0 {
		m.logger.Error("no data to merge", zap.Int("files_failed", stats.FilesFailed))
		return stats, ErrNoData
	}

	timestamps := make([]string, 0, len(table))
	for ts := range table {
		timestamps = append(timestamps, ts)
	}
	sort.Strings(timestamps)
	sort.Strings(regions)

	stats.Regions = len(regions)
	stats.Timestamps = len(timestamps)

	m.logger.Info("merging",
		zap.Int("regions", stats.Regions),
		zap.Int("timestamps", stats.Timestamps),
	)

	if err := writeTable(outputPath, regions, timestamps, table); err != nil {
		return stats, err
	}

	m.logger.Info("merged data saved", zap.String("path", outputPath))
	return stats, nil
}

// withoutOutput drops outputPath from paths.
func (m *Merger) withoutOutput(paths []string, outputPath string) []string {
	out, err := filepath.Abs(outputPath)
	if err != nil {
		return paths
	}
	kept := paths[:0]
	for _, path := range paths {
		if abs, err := filepath.Abs(path); err == nil && abs == out {
			m.logger.Debug("skipping merge output", zap.String("file", filepath.Base(path)))
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

func (s *Stats) addFailure(name string) {
	s.FilesFailed++
	s.FailedFiles = append(s.FailedFiles, name)
}

// writeTable writes to a temp file next to path and renames it into place.
func writeTable(path string, regions, timestamps []string, table map[string]map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	tmp, err := os.CreateTemp(dir, ".merge-*.csv")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	header := append([]string{seriesfile.TimestampColumn}, regions...)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write header")
	}

	record := make([]string, len(header))
	for _, ts := range timestamps {
		record[0] = ts
		row := table[ts]
		for i, region := range regions {
			v, ok := row[region]
			if !ok {
				v = Missing
			}
			record[i+1] = v
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return errors.Wrap(err, "write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "flush")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "chmod")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "rename output")
	}
	return nil
}

// LogSummary writes the end-of-run tally.
func (s *Stats) LogSummary(logger *zap.Logger) {
	logger.Info("merge summary",
		zap.Int("files_processed", s.FilesProcessed),
		zap.Int("files_failed", s.FilesFailed),
		zap.Int("regions", s.Regions),
		zap.Int("timestamps", s.Timestamps),
	)

	shown := s.FailedFiles
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, name := range shown {
		logger.Warn("failed file", zap.String("file", name))
	}
	if more := len(s.FailedFiles) - len(shown); more > 0 {
		logger.Warn("more failed files not shown", zap.Int("count", more))
	}
}
