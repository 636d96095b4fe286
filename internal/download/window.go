package download

import "time"

// Window is an inclusive time range covering at most one calendar month.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartMS returns the window start in Unix milliseconds.
func (w Window) StartMS() int64 { return w.Start.UnixMilli() }

// EndMS returns the window end in Unix milliseconds.
func (w Window) EndMS() int64 { return w.End.UnixMilli() }

// Label returns the window's month as YYYY-MM.
func (w Window) Label() string { return w.Start.Format("2006-01") }

// MonthWindows splits [start, end] into calendar-month windows in UTC. The
// first window begins at start, each later one at the first of its month.
// Each window ends one millisecond before the next month or at end.
func MonthWindows(start, end time.Time) []Window {
	start = start.UTC()
	end = end.UTC()

	var windows []Window
	for cur := start; !cur.After(end); {
		next := time.Date(cur.Year(), cur.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

		wEnd := next.Add(-time.Millisecond)
		if wEnd.After(end) {
			wEnd = end
		}
		windows = append(windows, Window{Start: cur, End: wEnd})

		cur = next
	}
	return windows
}
