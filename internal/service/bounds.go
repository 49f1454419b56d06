package service

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// ParseBound accepts RFC3339 or a bare date. A bare date is midnight in loc,
// or the last instant of that day when endOfDay is set. Blank input yields
// the zero time.
func ParseBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither RFC3339 nor YYYY-MM-DD", ErrInvalidInput, value)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
