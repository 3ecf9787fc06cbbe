package shared

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value is the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

// ParseDeadline is ParseDate except that a date-only value means the last
// second of that day, so work is not overdue on the deadline day itself.
func ParseDeadline(value string) (time.Time, error) {
	parsed, err := ParseDate(value)
	if err != nil || parsed.IsZero() || strings.Contains(value, "T") {
		return parsed, err
	}
	return parsed.Add(24*time.Hour - time.Second), nil
}
