// Package clock abstracts wall-clock access so that day-boundary logic
// (boarding-pass validity, streak detection) stays deterministic in tests.
package clock

import "time"

// ServiceDayFormat is the calendar-date layout used everywhere a
// reservation_date or boarding date crosses a boundary.  Dates in this
// layout compare correctly as plain strings.
const ServiceDayFormat = "2006-01-02"

// Clock provides the current time and the current service day.
type Clock interface {
	Now() time.Time
	// Today returns the current service day in ServiceDayFormat, UTC.
	Today() string
}

// System is the production clock backed by time.Now in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

func (s System) Today() string { return s.Now().Format(ServiceDayFormat) }

// Fixed is a clock pinned to a single instant.  Intended for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T.UTC() }

func (f Fixed) Today() string { return f.Now().Format(ServiceDayFormat) }

// ValidServiceDay reports whether s parses as a service day.
func ValidServiceDay(s string) bool {
	_, err := time.Parse(ServiceDayFormat, s)
	return err == nil
}
