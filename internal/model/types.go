package model

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Timestamp layouts used in per-region and merged files.
const (
	LayoutMillis  = "2006-01-02 15:04:05.000"
	LayoutSeconds = "2006-01-02 15:04:05"
)

// DataPoint is a single traffic-fraction sample.
type DataPoint struct {
	TimestampMS int64           // Sample time (ms since epoch)
	Value       decimal.Decimal // Traffic fraction as reported upstream
}

// Time returns the sample time in UTC.
func (p DataPoint) Time() time.Time {
	return TimeFromMillis(p.TimestampMS)
}

// Equal reports whether two points carry the same timestamp and value.
func (p DataPoint) Equal(o DataPoint) bool {
	return p.TimestampMS == o.TimestampMS && p.Value.Equal(o.Value)
}

// TimeFromMillis converts epoch milliseconds to a UTC time.
func TimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// FormatTimestamp renders t as the canonical timestamp key.
// The fractional part is truncated (not rounded) to milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(LayoutMillis)
}

// ParseTimestamp parses a timestamp with or without a fractional-second suffix.
// The millisecond layout is tried first. The result is UTC, truncated to milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutMillis, s, time.UTC)
	if err != nil {
		t, err = time.ParseInLocation(LayoutSeconds, s, time.UTC)
		if err != nil {
			return time.Time{}, errors.Errorf("unrecognized timestamp %q", s)
		}
	}
	return t.Truncate(time.Millisecond), nil
}
