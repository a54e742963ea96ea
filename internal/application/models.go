package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Employee represents a directory entry allowed to book rooms.
type Employee struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmployeeInput captures caller provided employee fields.
type EmployeeInput struct {
	Name  string
	Email string
}

// CreateEmployeeParams wraps the data required to register an employee.
type CreateEmployeeParams struct {
	Input EmployeeInput
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Amenities *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Capacity  int
	Amenities *string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Input RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	RoomID string
	Input  RoomInput
}

// Booking represents a persisted reservation occurrence.
type Booking struct {
	ID          string
	RoomID      string
	EmployeeID  string
	Title       string
	Attendees   int
	Start       time.Time
	End         time.Time
	Cancelled   bool
	SeriesID    *string
	IsRecurring bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingInput captures caller provided booking fields. The employee is
// identified by the ID and email pair entered on the form.
type BookingInput struct {
	RoomID        string
	EmployeeID    string
	EmployeeEmail string
	Title         string
	Attendees     int
	Start         time.Time
	End           time.Time
	IsRecurring   bool
	Pattern       string
	RecurrenceEnd *time.Time
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Input BookingInput
}

// CreateBookingResult carries the stored occurrences and the code the caller
// needs to cancel them later.
type CreateBookingResult struct {
	Bookings         []Booking
	SeriesID         string
	CancellationCode string
}

// RescheduleBookingParams wraps the data required to move a booking.
type RescheduleBookingParams struct {
	BookingID string
	Start     time.Time
	End       time.Time
}

// CancelBookingParams wraps the data required to cancel a booking.
type CancelBookingParams struct {
	BookingID        string
	CancellationCode string
}

// Sort keys accepted by ListBookings. Unknown keys fall back to start order.
const (
	SortByTitle    = "title"
	SortByRoom     = "room"
	SortByEmployee = "employee"
	SortByStart    = "start"
	SortByEnd      = "end"
)

// ListBookingsParams narrows and orders booking listings.
type ListBookingsParams struct {
	RoomID           string
	EmployeeID       string
	From             *time.Time
	To               *time.Time
	IncludeCancelled bool
	SortBy           string
	Descending       bool
}

// AvailabilityParams wraps the data required to compute open slots.
type AvailabilityParams struct {
	RoomID   string
	Start    time.Time
	Duration time.Duration
}

// Slot is a bookable window offered as an alternative.
type Slot struct {
	Start time.Time
	End   time.Time
}

func toSlots(ranges []booking.TimeRange) []Slot {
	if len(ranges) == 0 {
		return nil
	}
	slots := make([]Slot, len(ranges))
	for i, r := range ranges {
		slots[i] = Slot{Start: r.Start, End: r.End}
	}
	return slots
}
