package attendance

import (
	"math"
	"time"
)

type EventType string

const (
	EventIn  EventType = "in"
	EventOut EventType = "out"
)

// StatusPresent is the only status written by the engine. Thresholds in the
// settings are informational and never change it.
const StatusPresent = "present"

// DateLayout is the wire format of a work date.
const DateLayout = "2006-01-02"

// Record is one attendance row. There is at most one per employee and date.
type Record struct {
	ID           int64
	EmployeeID   int64
	Date         time.Time
	InTime       *time.Time
	OutTime      *time.Time
	LateMinutes  int
	EarlyMinutes int
	TotalHours   float64
	Status       string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by joined list queries only
	EmployeeName *string
	EmployeeCode *string
}

func (r Record) CheckedIn() bool {
	return r.InTime != nil
}

func (r Record) CheckedOut() bool {
	return r.OutTime != nil
}

// WorkDate returns the calendar day of ts in loc as a UTC midnight value,
// which is how DATE columns round-trip.
func WorkDate(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LateMinutes is the number of whole minutes ts falls after start, never negative.
func LateMinutes(ts, start time.Time) int {
	return wholeMinutes(ts.Sub(start))
}

// EarlyMinutes is the number of whole minutes ts falls before end, never negative.
func EarlyMinutes(ts, end time.Time) int {
	return wholeMinutes(end.Sub(ts))
}

// TotalHours is the fractional number of hours between check-in and check-out.
func TotalHours(in, out time.Time) float64 {
	return out.Sub(in).Hours()
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Minutes()))
}
