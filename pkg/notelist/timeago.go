package notelist

import (
	"fmt"
	"time"
)

var timeUnits = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// TimeAgo renders the age of a millisecond timestamp relative to now,
// e.g. "3 hours ago". Each unit truncates; anything under a minute is "just now".
func TimeAgo(now time.Time, lastUpdated int64) string {
	seconds := (now.UnixMilli() - lastUpdated) / 1000

	for _, u := range timeUnits {
		n := seconds / u.seconds
		if n < 1 {
			continue
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return "just now"
}

// FormatDate renders a millisecond timestamp as "Jan 1, 2023, 3:45 PM" in loc.
func FormatDate(lastUpdated int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(lastUpdated).In(loc).Format("Jan 2, 2006, 3:04 PM")
}
