package download

import (
	"testing"
	"time"
)

func TestMonthWindows(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []Window
	}{
		{
			name:  "single partial month",
			start: date(2023, 1, 10),
			end:   endOfDay(2023, 1, 20),
			want:  []Window{{date(2023, 1, 10), endOfDay(2023, 1, 20)}},
		},
		{
			name:  "spans year boundary",
			start: date(2022, 12, 15),
			end:   endOfDay(2023, 2, 3),
			want: []Window{
				{date(2022, 12, 15), date(2023, 1, 1).Add(-time.Millisecond)},
				{date(2023, 1, 1), date(2023, 2, 1).Add(-time.Millisecond)},
				{date(2023, 2, 1), endOfDay(2023, 2, 3)},
			},
		},
		{
			name:  "leap february",
			start: date(2024, 2, 1),
			end:   endOfDay(2024, 2, 29),
			want:  []Window{{date(2024, 2, 1), endOfDay(2024, 2, 29)}},
		},
		{
			name:  "end before start",
			start: date(2024, 2, 1),
			end:   date(2024, 1, 1),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthWindows(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d windows, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if !got[i].Start.Equal(tt.want[i].Start) || !got[i].End.Equal(tt.want[i].End) {
					t.Errorf("window %d = [%v, %v], want [%v, %v]",
						i, got[i].Start, got[i].End, tt.want[i].Start, tt.want[i].End)
				}
			}
		})
	}
}

func TestMonthWindowsContiguous(t *testing.T) {
	windows := MonthWindows(date(2019, 1, 1), endOfDay(2024, 12, 31))
	if len(windows) != 72 {
		t.Fatalf("got %d windows, want 72", len(windows))
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].StartMS() != windows[i-1].EndMS()+1 {
			t.Errorf("gap between %s and %s", windows[i-1].Label(), windows[i].Label())
		}
	}
}
