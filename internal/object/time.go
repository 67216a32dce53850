package object

import (
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05"

// FormatTime renders t in local time as YYYY-MM-DDTHH:MM:SS[.ffffff]; the
// fraction is omitted when the microsecond part is zero.
func FormatTime(t time.Time) string {
	t = t.Local()
	s := t.Format(timestampLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, time.Local)
}
