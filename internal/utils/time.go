package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutClock = "15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseClock validates an HH:MM departure time and returns it normalized.
func ParseClock(s string) (string, error) {
	t, err := time.Parse(layoutClock, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("time must be HH:MM: %w", err)
	}
	return t.Format(layoutClock), nil
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	l := t.In(time.Local)
	y, m, d := l.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
