// Package daterange decides whether two half-open booking date ranges
// intersect. All comparisons happen at calendar-day granularity: inputs are
// collapsed onto midnight UTC of their calendar day first, so a DST shift or
// a stray time-of-day component can never move a stay boundary across days.
package daterange

import "time"

// Day returns midnight UTC of t's calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
// The end of a range is exclusive: a stay ending on day D leaves day D free
// for a new check-in. Callers guarantee start < end for both ranges.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	s1, e1 := Day(aStart), Day(aEnd)
	s2, e2 := Day(bStart), Day(bEnd)
	return s1.Before(e2) && s2.Before(e1)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// Nights counts the nights between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)) / (24 * time.Hour))
}
