package persistence

import (
	"context"
	"time"
)

// EmployeeRepository exposes CRUD operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Zero-value fields are ignored.
// OverlapsStart/OverlapsEnd select bookings whose window intersects the
// half-open [OverlapsStart, OverlapsEnd) range.
type BookingFilter struct {
	RoomID           string
	EmployeeID       string
	OverlapsStart    *time.Time
	OverlapsEnd      *time.Time
	IncludeCancelled bool
}

// BookingRepository stores reservation occurrences. InsertOccurrences persists
// every occurrence of a request atomically so a partially written series can
// never be observed.
type BookingRepository interface {
	InsertOccurrences(ctx context.Context, bookings []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) error
}
