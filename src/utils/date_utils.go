package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateFormat is the calendar-day layout used for every normalized record.
const DateFormat = "2006-01-02"

// NormalizeDate parses a free-form date (ISO, US month-first, RFC1123, ...) and returns
// it as YYYY-MM-DD in UTC.
func NormalizeDate(dateStr string) (string, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return "", fmt.Errorf("missing date")
	}
	// dateparse reads other bare integers as unix timestamps
	if isAllDigits(dateStr) && len(dateStr) != len("20060102") {
		return "", fmt.Errorf("invalid date '%s'", dateStr)
	}
	t, err := dateparse.ParseIn(dateStr, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date '%s'", dateStr)
	}
	return t.UTC().Format(DateFormat), nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseDay parses a YYYY-MM-DD string produced by NormalizeDate.
func ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, day, time.UTC)
}

// DaysBetween returns the number of whole days from a to b, rounded up, never negative.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
