package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidDateRange indicates a requested window whose end is not after
	// its start.
	ErrInvalidDateRange = errors.New("booking: end date must be after start date")
	// ErrInvalidRecurrenceEnd indicates a recurring request with a missing
	// recurrence end date or one that does not come after the start.
	ErrInvalidRecurrenceEnd = errors.New("booking: recurrence end date must be after the start date")
)

// CapacityError reports a request whose attendee count exceeds the room's
// capacity.
type CapacityError struct {
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("booking: number of attendees exceeds room capacity (%d)", e.Capacity)
}

// ConflictReason labels why an occurrence was rejected.
type ConflictReason string

const (
	// ReasonExistingBooking marks a buffered overlap with an active booking.
	ReasonExistingBooking ConflictReason = "existing_booking"
	// ReasonPrimeTime marks a violation of the peak-hour duration cap.
	ReasonPrimeTime ConflictReason = "prime_time"
)

// ConflictError reports the first occurrence that could not be booked,
// together with up to three alternative slots on the same day. Suggestions may
// be empty when the day offers no room.
type ConflictError struct {
	Occurrence  TimeRange
	Reason      ConflictReason
	Suggestions []TimeRange
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ReasonPrimeTime:
		return "booking: prime time bookings cannot exceed the duration cap"
	default:
		return "booking: room is unavailable at the selected time due to an existing booking"
	}
}

// Request describes a candidate booking, possibly a recurring series.
type Request struct {
	RoomID        string
	Attendees     int
	Range         TimeRange
	IsRecurring   bool
	Pattern       RecurrencePattern
	RecurrenceEnd *time.Time
}

// Snapshot is the read-consistent view of the target room the caller obtained
// before validating. The existing bookings must be scoped to the room; when
// rescheduling, the booking being moved must already be excluded. The caller
// is responsible for performing the validate and subsequent write atomically.
type Snapshot struct {
	RoomCapacity int
	Existing     []ExistingBooking
}

// Verdict is the successful outcome of a validation: the expanded occurrence
// windows and the series identifier they share.
type Verdict struct {
	Occurrences []TimeRange
	SeriesID    string
}

// Validator runs the full admission pipeline for a booking request. It is pure
// computation over the supplied snapshot and is safe for concurrent use.
type Validator struct {
	checker     *Checker
	newSeriesID func() string
}

// NewValidator wires a validator with the given prime-time policy. When
// newSeriesID is nil, random UUIDs are issued.
func NewValidator(prime PrimePolicy, newSeriesID func() string) *Validator {
	if newSeriesID == nil {
		newSeriesID = uuid.NewString
	}
	return &Validator{checker: NewChecker(prime), newSeriesID: newSeriesID}
}

// Checker exposes the underlying availability checker for callers that need
// individual checks outside the full pipeline.
func (v *Validator) Checker() *Checker {
	return v.checker
}

// Validate runs the checks in order, short-circuiting on the first failure:
// date order, capacity, recurrence expansion, then per-occurrence conflict and
// prime-time checks. A conflicting occurrence yields a ConflictError carrying
// alternative slots for that occurrence's day.
func (v *Validator) Validate(request Request, snapshot Snapshot) (Verdict, error) {
	if !request.Range.IsOrdered() {
		return Verdict{}, ErrInvalidDateRange
	}

	if request.Attendees > snapshot.RoomCapacity {
		return Verdict{}, &CapacityError{Capacity: snapshot.RoomCapacity}
	}

	occurrences := []TimeRange{request.Range}
	if request.IsRecurring {
		if request.RecurrenceEnd == nil || !request.RecurrenceEnd.After(request.Range.Start) {
			return Verdict{}, ErrInvalidRecurrenceEnd
		}
		expanded, err := ExpandOccurrences(request.Range, request.Pattern, *request.RecurrenceEnd)
		if err != nil {
			return Verdict{}, err
		}
		occurrences = expanded
	}

	for _, occurrence := range occurrences {
		if _, conflict := v.checker.CheckConflict(snapshot.Existing, occurrence); conflict {
			return Verdict{}, v.conflictError(occurrence, ReasonExistingBooking, snapshot.Existing)
		}
		if err := v.checker.CheckPrimeTime(occurrence); err != nil {
			return Verdict{}, v.conflictError(occurrence, ReasonPrimeTime, snapshot.Existing)
		}
	}

	return Verdict{Occurrences: occurrences, SeriesID: v.newSeriesID()}, nil
}

func (v *Validator) conflictError(occurrence TimeRange, reason ConflictReason, existing []ExistingBooking) *ConflictError {
	return &ConflictError{
		Occurrence:  occurrence,
		Reason:      reason,
		Suggestions: SuggestSlots(existing, occurrence.Start, occurrence.Duration()),
	}
}
