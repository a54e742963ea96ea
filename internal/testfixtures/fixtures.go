package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

var (
	employeeCounter uint64
	roomCounter     uint64
	bookingCounter  uint64
)

var referenceTime = time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// is a Monday morning, so generated bookings fall on business days.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Employee fixtures ---------------------------

// EmployeeFixture represents a deterministic employee record that can be
// materialised for application or persistence tests.
type EmployeeFixture struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee fixture with optional
// overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	id := fmt.Sprintf("employee-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EmployeeFixture{
		ID:        id,
		Name:      fmt.Sprintf("Employee %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeID overrides the generated employee ID.
func WithEmployeeID(id string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeName overrides the generated display name.
func WithEmployeeName(name string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Name = name
	}
}

// WithEmployeeEmail overrides the generated email address.
func WithEmployeeEmail(email string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Email = email
	}
}

// WithEmployeeTimestamps sets both created and updated timestamps.
func WithEmployeeTimestamps(created, updated time.Time) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Employee value.
func (f EmployeeFixture) Application() application.Employee {
	return application.Employee{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	return persistence.Employee{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.EmployeeInput.
func (f EmployeeFixture) Input() application.EmployeeInput {
	return application.EmployeeInput{
		Name:  f.Name,
		Email: f.Email,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  int
	Amenities *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  int(4 + idx%4),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomAmenities sets the amenities description on the fixture.
func WithRoomAmenities(amenities string) RoomOption {
	return func(f *RoomFixture) {
		value := amenities
		f.Amenities = &value
	}
}

// WithoutRoomAmenities clears any amenities on the fixture.
func WithoutRoomAmenities() RoomOption {
	return func(f *RoomFixture) {
		f.Amenities = nil
	}
}

// WithRoomTimestamps sets both created and updated timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Amenities: copyStringPtr(f.Amenities),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Amenities: copyStringPtr(f.Amenities),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:      f.Name,
		Capacity:  f.Capacity,
		Amenities: copyStringPtr(f.Amenities),
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking occurrence. Generated
// bookings occupy consecutive one hour afternoon windows so they never overlap
// each other and stay clear of the morning prime time block.
type BookingFixture struct {
	ID               string
	RoomID           string
	EmployeeID       string
	Title            string
	Attendees        int
	Start            time.Time
	End              time.Time
	CancellationCode string
	Cancelled        bool
	SeriesID         *string
	IsRecurring      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional
// overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	id := fmt.Sprintf("booking-%03d", idx)
	day := referenceTime.AddDate(0, 0, int(idx-1))
	start := time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, day.Location())
	fixture := BookingFixture{
		ID:               id,
		RoomID:           fmt.Sprintf("room-%03d", idx),
		EmployeeID:       fmt.Sprintf("employee-%03d", idx),
		Title:            fmt.Sprintf("Booking %03d", idx),
		Attendees:        2,
		Start:            start,
		End:              start.Add(time.Hour),
		CancellationCode: fmt.Sprintf("CODE%04d", idx),
		CreatedAt:        referenceTime,
		UpdatedAt:        referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom sets the room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingEmployee sets the employee ID.
func WithBookingEmployee(employeeID string) BookingOption {
	return func(f *BookingFixture) {
		f.EmployeeID = employeeID
	}
}

// WithBookingTitle overrides the title.
func WithBookingTitle(title string) BookingOption {
	return func(f *BookingFixture) {
		f.Title = title
	}
}

// WithBookingAttendees sets the attendee count.
func WithBookingAttendees(attendees int) BookingOption {
	return func(f *BookingFixture) {
		f.Attendees = attendees
	}
}

// WithBookingWindow sets the start and end times.
func WithBookingWindow(start, end time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithBookingCancellationCode overrides the cancellation code.
func WithBookingCancellationCode(code string) BookingOption {
	return func(f *BookingFixture) {
		f.CancellationCode = code
	}
}

// WithBookingCancelled marks the booking as cancelled.
func WithBookingCancelled() BookingOption {
	return func(f *BookingFixture) {
		f.Cancelled = true
	}
}

// WithBookingSeries sets the series ID and marks the booking recurring.
func WithBookingSeries(seriesID string) BookingOption {
	return func(f *BookingFixture) {
		id := seriesID
		f.SeriesID = &id
		f.IsRecurring = true
	}
}

// WithBookingTimestamps sets both created and updated timestamps.
func WithBookingTimestamps(created, updated time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		EmployeeID:  f.EmployeeID,
		Title:       f.Title,
		Attendees:   f.Attendees,
		Start:       f.Start,
		End:         f.End,
		Cancelled:   f.Cancelled,
		SeriesID:    copyStringPtr(f.SeriesID),
		IsRecurring: f.IsRecurring,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:               f.ID,
		RoomID:           f.RoomID,
		EmployeeID:       f.EmployeeID,
		Title:            f.Title,
		Attendees:        f.Attendees,
		Start:            f.Start,
		End:              f.End,
		CancellationCode: f.CancellationCode,
		Cancelled:        f.Cancelled,
		SeriesID:         copyStringPtr(f.SeriesID),
		IsRecurring:      f.IsRecurring,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BookingInput. The employee email
// follows the generated employee fixture convention.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		RoomID:        f.RoomID,
		EmployeeID:    f.EmployeeID,
		EmployeeEmail: fmt.Sprintf("%s@example.com", f.EmployeeID),
		Title:         f.Title,
		Attendees:     f.Attendees,
		Start:         f.Start,
		End:           f.End,
		IsRecurring:   f.IsRecurring,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
