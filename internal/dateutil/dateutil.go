// Package dateutil provides timezone-safe calendar arithmetic over civil
// date strings. Comparisons work lexicographically on YYYY-MM-DD values,
// which avoids the off-by-one errors that appear when a date is round-tripped
// through a time.Time in the wrong location. All functions take now
// explicitly so callers stay deterministic under test.
package dateutil

import (
	"time"
)

const (
	// DateLayout is the civil date format used across the engine.
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock format for due and start times.
	ClockLayout = "15:04"
)

// DayRelation positions a civil date relative to today.
type DayRelation int

const (
	Past DayRelation = iota
	Today
	Future
)

// CivilDate formats an instant as the civil date of its location.
func CivilDate(now time.Time) string {
	return now.Format(DateLayout)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidClock reports whether s is a well-formed HH:MM time.
func ValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// CompareToToday classifies dateStr against now's civil date. The second
// return value is false when dateStr is malformed; such items must be
// excluded from classification rather than bucketed arbitrarily.
func CompareToToday(dateStr string, now time.Time) (DayRelation, bool) {
	if !ValidDate(dateStr) {
		return Today, false
	}
	today := CivilDate(now)
	switch {
	case dateStr < today:
		return Past, true
	case dateStr > today:
		return Future, true
	default:
		return Today, true
	}
}

// WithinRange reports whether dateStr falls inside [startStr, endStr],
// inclusive on both ends. Malformed input yields false.
func WithinRange(dateStr, startStr, endStr string) bool {
	if !ValidDate(dateStr) || !ValidDate(startStr) || !ValidDate(endStr) {
		return false
	}
	return dateStr >= startStr && dateStr <= endStr
}

// AddDays returns the civil date n days after dateStr. The empty string
// signals a malformed input.
func AddDays(dateStr string, n int) string {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// DaysOverdue counts whole civil days between dateStr and today. A date
// equal to today or in the future yields 0.
func DaysOverdue(dateStr string, now time.Time) int {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return 0
	}
	today, _ := time.Parse(DateLayout, CivilDate(now))
	days := int(today.Sub(d).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Remaining is the wall-clock delta to a deadline, broken into display units.
type Remaining struct {
	Hours   int
	Minutes int
	Expired bool
}

// TimeRemainingUntil measures the delta from now to t. Expired is true when
// the deadline has passed (delta <= 0).
func TimeRemainingUntil(t, now time.Time) Remaining {
	delta := t.Sub(now)
	if delta <= 0 {
		return Remaining{Expired: true}
	}
	return Remaining{
		Hours:   int(delta / time.Hour),
		Minutes: int(delta%time.Hour) / int(time.Minute),
	}
}

// Combine builds the local instant for a civil date plus wall-clock time.
// The second return value is false when either part is malformed.
func Combine(dateStr, clockStr string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, dateStr+" "+clockStr, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MinutesUntilClock measures minutes from now to clockStr on now's civil
// date. The second return value is false for malformed input.
func MinutesUntilClock(clockStr string, now time.Time) (int, bool) {
	t, ok := Combine(CivilDate(now), clockStr, now.Location())
	if !ok {
		return 0, false
	}
	return int(t.Sub(now) / time.Minute), true
}
