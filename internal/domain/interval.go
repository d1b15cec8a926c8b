package domain

import "time"

// Overlaps reports whether half-open intervals [s1, e1) and [s2, e2) intersect.
// Back-to-back intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// DateOf truncates t to midnight of its calendar date in t's location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// CreditsFor maps a booking duration to quota credits.
// Only 60 and 120 minute bookings are allowed; ok is false otherwise.
func CreditsFor(d time.Duration) (credits int, ok bool) {
	switch d {
	case OneHourDuration:
		return OneHourCredits, true
	case TwoHourDuration:
		return TwoHourCredits, true
	default:
		return 0, false
	}
}
