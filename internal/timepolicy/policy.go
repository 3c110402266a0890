// Package timepolicy holds the calendar arithmetic behind deadline alerts: parsing
// persisted due dates, day and hour distances, urgency classes and the Spanish
// countdown strings shown to users.
package timepolicy

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var localLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-07",
}

// ParseDueDate parses a persisted due date. Values without a zone are read in loc;
// zoned values keep their instant and are moved into loc.
func ParseDueDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// DaysUntil returns the number of calendar days from now to target in now's location.
// Today is 0, tomorrow is 1, yesterday is -1, regardless of the clock time or DST shifts.
func DaysUntil(target, now time.Time) int {
	loc := now.Location()

	ty, tm, td := target.In(loc).Date()
	ny, nm, nd := now.Date()

	// UTC has no DST, so whole days divide exactly.
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)

	return int(t.Sub(n) / (24 * time.Hour))
}

// HoursUntil returns the distance to target in hours, rounded up.
func HoursUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours()))
}

func IsOverdue(target, now time.Time) bool {
	return DaysUntil(target, now) < 0
}

// IsUpcoming reports whether target falls between today and the given number of days ahead.
func IsUpcoming(target, now time.Time, days int) bool {
	d := DaysUntil(target, now)
	return d >= 0 && d <= days
}
