package check

import (
	"path/filepath"
	"sort"

	"github.com/chrispappas/golang-generics-set/set"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/model"
	"github.com/rickgao/traffic-data/internal/seriesfile"
)

// MaxExamples caps the example timestamps reported per difference.
const MaxExamples = 5

// ErrNoUsableFiles means every file in the directory failed to read.
var ErrNoUsableFiles = errors.New("no usable series files")

// Diff lists timestamps present on one side only.
type Diff struct {
	Count     int
	Examples  []int64 // sorted ascending, at most MaxExamples
	Truncated bool
}

// Divergence is a position where two sorted timestamp sequences disagree.
type Divergence struct {
	Index     int
	Reference int64
	Current   int64
}

// Mismatch describes one file whose timestamps differ from the reference.
type Mismatch struct {
	File    string
	Missing Diff // in reference, not in file
	Extra   Diff // in file, not in reference

	Divergences     []Divergence // at most MaxExamples
	DivergenceCount int
}

// Report is the outcome of a check run.
type Report struct {
	Reference  string
	Files      int
	Matched    []string
	Mismatches []Mismatch
	Skipped    []string
	Consistent bool
}

// Checker compares series files in a directory.
type Checker struct {
	logger *zap.Logger
}

// New creates a Checker. A nil logger discards output.
func New(logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{logger: logger}
}

// Check compares every series file in inputDir against the first readable one.
// Directory errors and ErrNoUsableFiles are returned as errors; per-file
// problems are folded into the report.
func (c *Checker) Check(inputDir string) (*Report, error) {
	paths, err := seriesfile.List(inputDir)
	if err != nil {
		return nil, err
	}

	c.logger.Info("checking series files", zap.Int("count", len(paths)), zap.String("dir", inputDir))

	report := &Report{Files: len(paths)}

	var (
		refSorted []int64
		refSet    set.Set[int64]
	)

	for _, path := range paths {
		name := filepath.Base(path)

		rows, err := seriesfile.Read(path)
		if err != nil {
			c.logger.Warn("skipping unreadable file", zap.String("file", name), zap.Error(err))
			report.Skipped = append(report.Skipped, name)
			continue
		}

		current := timestamps(rows)

		if report.Reference == "" {
			report.Reference = name
			refSorted = current
			refSet = set.FromSlice(current)
			c.logger.Info("reference file",
				zap.String("file", name),
				zap.Int("timestamps", len(current)),
			)
			continue
		}

		mm, ok := compare(name, refSorted, refSet, current)
		if ok {
			report.Matched = append(report.Matched, name)
			c.logger.Debug("timestamps match", zap.String("file", name))
			continue
		}

		report.Mismatches = append(report.Mismatches, mm)
		c.logMismatch(mm)
	}

	if report.Reference == "" {
		c.logger.Error("no usable files", zap.Int("skipped", len(report.Skipped)))
		return report, errors.Wrapf(ErrNoUsableFiles, "%s", inputDir)
	}

	report.Consistent = len(report.Skipped) == 0 && len(report.Mismatches) == 0
	return report, nil
}

func (c *Checker) logMismatch(mm Mismatch) {
	fields := []zap.Field{zap.String("file", mm.File)}
	if mm.Missing.Count > 0 {
		fields = append(fields,
			zap.Int("missing", mm.Missing.Count),
			zap.Strings("missing_examples", formatAll(mm.Missing.Examples)),
			zap.Bool("missing_truncated", mm.Missing.Truncated),
		)
	}
	if mm.Extra.Count > 0 {
		fields = append(fields,
			zap.Int("extra", mm.Extra.Count),
			zap.Strings("extra_examples", formatAll(mm.Extra.Examples)),
			zap.Bool("extra_truncated", mm.Extra.Truncated),
		)
	}
	if mm.DivergenceCount > 0 {
		fields = append(fields, zap.Int("divergent_positions", mm.DivergenceCount))
	}
	c.logger.Warn("timestamp mismatch", fields...)
}

// compare reports whether current holds exactly the reference timestamps.
// Both slices must be sorted and free of duplicates.
func compare(name string, refSorted []int64, refSet set.Set[int64], current []int64) (Mismatch, bool) {
	curSet := set.FromSlice(current)

	var missing, extra []int64
	for _, ts := range refSorted {
		if !curSet.Has(ts) {
			missing = append(missing, ts)
		}
	}
	for _, ts := range current {
		if !refSet.Has(ts) {
			extra = append(extra, ts)
		}
	}

	if len(missing) == 0 && len(extra) == 0 && len(refSorted) == len(current) {
		return Mismatch{}, true
	}

	mm := Mismatch{
		File:    name,
		Missing: newDiff(missing),
		Extra:   newDiff(extra),
	}
	if len(missing) == 0 && len(extra) == 0 {
		mm.Divergences, mm.DivergenceCount = positionalDiffs(refSorted, current)
	}
	return mm, false
}

// positionalDiffs compares two sorted sequences index by index. Positions past
// the end of the shorter sequence count as divergent with a zero value.
func positionalDiffs(ref, current []int64) ([]Divergence, int) {
	n := len(ref)
	if len(current) > n {
		n = len(current)
	}

	var (
		examples []Divergence
		count    int
	)
	for i := 0; i < n; i++ {
		var r, c int64
		if i < len(ref) {
			r = ref[i]
		}
		if i < len(current) {
			c = current[i]
		}
		if i < len(ref) && i < len(current) && r == c {
			continue
		}
		count++
		if len(examples) < MaxExamples {
			examples = append(examples, Divergence{Index: i, Reference: r, Current: c})
		}
	}
	return examples, count
}

func newDiff(values []int64) Diff {
	d := Diff{Count: len(values)}
	if len(values) > MaxExamples {
		d.Examples = values[:MaxExamples]
		d.Truncated = true
	} else {
		d.Examples = values
	}
	return d
}

// timestamps returns the distinct timestamps of points, sorted ascending.
func timestamps(rows []seriesfile.Row) []int64 {
	seen := set.FromSlice([]int64{})
	out := make([]int64, 0, len(rows))
	for _, p := range rows {
		if seen.Has(p.TimestampMS) {
			continue
		}
		seen.Add(p.TimestampMS)
		out = append(out, p.TimestampMS)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func formatAll(values []int64) []string {
	out := make([]string, len(values))
	for i, ms := range values {
		out[i] = model.FormatTimestamp(model.TimeFromMillis(ms))
	}
	return out
}

// LogSummary writes the end-of-run tally.
func (r *Report) LogSummary(logger *zap.Logger) {
	logger.Info("check summary",
		zap.String("reference", r.Reference),
		zap.Int("files", r.Files),
		zap.Int("matched", len(r.Matched)),
		zap.Int("mismatched", len(r.Mismatches)),
		zap.Int("skipped", len(r.Skipped)),
		zap.Bool("consistent", r.Consistent),
	)
	for _, name := range r.Skipped {
		logger.Warn("skipped file", zap.String("file", name))
	}
}
