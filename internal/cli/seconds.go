package cli

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// secondsValue is a duration flag that also accepts a bare number of seconds,
// so "0.5" and "500ms" mean the same thing.
type secondsValue time.Duration

func newSecondsValue(def time.Duration, p *time.Duration) *secondsValue {
	*p = def
	return (*secondsValue)(p)
}

func (v *secondsValue) Set(s string) error {
	d, err := parseSeconds(s)
	if err != nil {
		return err
	}
	*v = secondsValue(d)
	return nil
}

func (v *secondsValue) Type() string { return "duration" }

func (v *secondsValue) String() string { return time.Duration(*v).String() }

func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.Abs(secs) > math.MaxInt64/float64(time.Second) {
			return 0, errors.Errorf("invalid duration %q", s)
		}
		return time.Duration(math.Round(secs * float64(time.Second))), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("invalid duration %q, want seconds (0.5) or a duration (500ms)", s)
	}
	return d, nil
}
