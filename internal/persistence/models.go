package persistence

import "time"

// Employee represents a staff member who can reserve rooms.
type Employee struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room represents a meeting room catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Amenities *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents one persisted occurrence of a reservation. Occurrences of
// a recurring request share a SeriesID.
type Booking struct {
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
