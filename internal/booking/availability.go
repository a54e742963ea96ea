package booking

import (
	"errors"
	"time"
)

// ConflictBuffer is the mandatory gap required between two bookings on the
// same room. Existing bookings are widened by this amount on both ends when
// testing a candidate window.
const ConflictBuffer = 15 * time.Minute

// ErrPrimeTimeExceeded indicates a booking starting inside the prime-time
// window that exceeds the duration cap.
var ErrPrimeTimeExceeded = errors.New("booking: prime time bookings cannot exceed the duration cap")

// ExistingBooking is a read-only projection of a persisted booking supplied by
// the caller. Cancelled entries never participate in conflict checks.
type ExistingBooking struct {
	ID        string
	Start     time.Time
	End       time.Time
	Cancelled bool
}

func (b ExistingBooking) window() TimeRange {
	return TimeRange{Start: b.Start, End: b.End}
}

// PrimePolicy describes the peak-hour window during which booking duration is
// capped. Weekday and local-time evaluation use the configured location rather
// than ambient process state.
type PrimePolicy struct {
	Location    *time.Location
	StartHour   int
	EndHour     int
	MaxDuration time.Duration
}

// DefaultPrimePolicy returns the Mon-Fri 09:00-12:00 window with a one hour
// cap, evaluated in the provided location. A nil location falls back to UTC.
func DefaultPrimePolicy(loc *time.Location) PrimePolicy {
	if loc == nil {
		loc = time.UTC
	}
	return PrimePolicy{
		Location:    loc,
		StartHour:   9,
		EndHour:     12,
		MaxDuration: time.Hour,
	}
}

// Checker decides whether a candidate window may be booked against a room's
// existing bookings.
type Checker struct {
	Buffer time.Duration
	Prime  PrimePolicy
}

// NewChecker constructs a checker with the standard conflict buffer.
func NewChecker(prime PrimePolicy) *Checker {
	if prime.Location == nil {
		prime = DefaultPrimePolicy(nil)
	}
	return &Checker{Buffer: ConflictBuffer, Prime: prime}
}

// CheckConflict reports the first non-cancelled booking whose buffered window
// overlaps the candidate. The existing slice must already be scoped to the
// target room.
func (c *Checker) CheckConflict(existing []ExistingBooking, candidate TimeRange) (ExistingBooking, bool) {
	for _, b := range existing {
		if b.Cancelled {
			continue
		}
		if candidate.Overlaps(b.window(), c.Buffer) {
			return b, true
		}
	}
	return ExistingBooking{}, false
}

// CheckPrimeTime enforces the peak-hour duration cap. Only the start instant's
// weekday and local time are tested: a booking starting just before the window
// and running into it is not capped.
func (c *Checker) CheckPrimeTime(candidate TimeRange) error {
	start := candidate.Start.In(c.Prime.Location)

	weekday := start.Weekday()
	if weekday < time.Monday || weekday > time.Friday {
		return nil
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.Prime.Location)
	primeStart := dayStart.Add(time.Duration(c.Prime.StartHour) * time.Hour)
	primeEnd := dayStart.Add(time.Duration(c.Prime.EndHour) * time.Hour)

	if start.Before(primeStart) || !start.Before(primeEnd) {
		return nil
	}
	if candidate.Duration() > c.Prime.MaxDuration {
		return ErrPrimeTimeExceeded
	}
	return nil
}
