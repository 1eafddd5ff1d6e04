package notelist

import (
	"testing"
	"time"
)

func TestTimeAgo(t *testing.T) {
	now := time.UnixMilli(100_000_000_000)
	ms := now.UnixMilli()

	tests := []struct {
		name string
		then int64
		want string
	}{
		{"under a minute", ms - 59_000, "just now"},
		{"future", ms + 5_000, "just now"},
		{"one minute truncated", ms - 90_000, "1 minute ago"},
		{"minutes", ms - 5*60_000, "5 minutes ago"},
		{"one hour", ms - 3_661_000, "1 hour ago"},
		{"days", ms - 3*86_400_000, "3 days ago"},
		{"months", ms - 2*2_592_000_000, "2 months ago"},
		{"one year", ms - 31_536_000_000, "1 year ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeAgo(now, tt.then); got != tt.want {
				t.Errorf("TimeAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2023, time.January, 1, 15, 45, 0, 0, time.UTC).UnixMilli()
	if got := FormatDate(ts, time.UTC); got != "Jan 1, 2023, 3:45 PM" {
		t.Errorf("FormatDate() = %q", got)
	}
}
