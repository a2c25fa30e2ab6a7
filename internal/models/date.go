package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ParseDate parses a user supplied air date. Accepted forms are
// YYYY-MM-DD, MM-DD (current year) and DD (current month), the missing
// parts being taken from now in loc.
func ParseDate(value string, now time.Time, loc *time.Location) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	parts := strings.Split(value, "-")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
		}
		nums[i] = n
	}

	var d Date
	switch len(nums) {
	case 1:
		d = Date{Year: now.Year(), Month: now.Month(), Day: nums[0]}
	case 2:
		d = Date{Year: now.Year(), Month: time.Month(nums[0]), Day: nums[1]}
	case 3:
		d = Date{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	default:
		return Date{}, fmt.Errorf("invalid date %q", value)
	}

	// time.Date normalises out-of-range values; a round trip catches them.
	if !DateOf(d.In(loc)).Equal(d) {
		return Date{}, fmt.Errorf("invalid date %q", value)
	}
	return d, nil
}
