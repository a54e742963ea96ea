package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

type bookingStoreStub struct {
	insertFn        func(ctx context.Context, bookings []persistence.Booking) error
	getFn           func(ctx context.Context, id string) (persistence.Booking, error)
	updateFn        func(ctx context.Context, booking persistence.Booking) error
	listFn          func(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	markCancelledFn func(ctx context.Context, id string, cancelledAt time.Time) error
}

func (s *bookingStoreStub) InsertOccurrences(ctx context.Context, bookings []persistence.Booking) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, bookings)
}

func (s *bookingStoreStub) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if s.getFn == nil {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return s.getFn(ctx, id)
}

func (s *bookingStoreStub) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, booking)
}

func (s *bookingStoreStub) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s *bookingStoreStub) MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) error {
	if s.markCancelledFn == nil {
		return nil
	}
	return s.markCancelledFn(ctx, id, cancelledAt)
}

type roomCatalogStub struct {
	getFn func(ctx context.Context, id string) (persistence.Room, error)
}

func (s *roomCatalogStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if s.getFn == nil {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return s.getFn(ctx, id)
}

type employeeDirectoryStub struct {
	getFn func(ctx context.Context, id string) (persistence.Employee, error)
}

func (s *employeeDirectoryStub) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if s.getFn == nil {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return s.getFn(ctx, id)
}

type notifierStub struct {
	confirmations []CreateBookingResult
	cancellations []Booking
	confirmErr    error
}

func (s *notifierStub) SendBookingConfirmation(_ context.Context, _ Employee, _ Room, result CreateBookingResult) error {
	s.confirmations = append(s.confirmations, result)
	return s.confirmErr
}

func (s *notifierStub) SendCancellationNotice(_ context.Context, _ Employee, _ Room, cancelled Booking) error {
	s.cancellations = append(s.cancellations, cancelled)
	return nil
}

func sequenceIDs(values ...string) func() string {
	index := 0
	return func() string {
		if index >= len(values) {
			return ""
		}
		value := values[index]
		index++
		return value
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func defaultEmployeeStub() *employeeDirectoryStub {
	return &employeeDirectoryStub{getFn: func(_ context.Context, id string) (persistence.Employee, error) {
		if id != "emp-1" {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{ID: "emp-1", Name: "Dana Silva", Email: "dana@example.com"}, nil
	}}
}

func defaultRoomStub() *roomCatalogStub {
	return &roomCatalogStub{getFn: func(_ context.Context, id string) (persistence.Room, error) {
		if id != "room-1" {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{ID: "room-1", Name: "Aurora", Capacity: 10}, nil
	}}
}

func validBookingInput(start, end time.Time) BookingInput {
	return BookingInput{
		RoomID:        "room-1",
		EmployeeID:    "emp-1",
		EmployeeEmail: "dana@example.com",
		Title:         "Design sync",
		Attendees:     4,
		Start:         start,
		End:           end,
	}
}

func newTestValidator() *booking.Validator {
	return booking.NewValidator(booking.DefaultPrimePolicy(time.UTC), func() string { return "series-1" })
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()

	// Wednesday afternoon, outside the peak-hour window.
	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)

	var inserted []persistence.Booking
	store := &bookingStoreStub{
		insertFn: func(_ context.Context, bookings []persistence.Booking) error {
			inserted = bookings
			return nil
		},
	}
	notifier := &notifierStub{}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), notifier,
		sequenceIDs("code-source", "b-1"), fixedClock(now))

	result, err := service.CreateBooking(context.Background(), CreateBookingParams{
		Input: validBookingInput(start, end),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CancellationCode != "CODESOUR" {
		t.Fatalf("unexpected cancellation code %q", result.CancellationCode)
	}
	if result.SeriesID != "series-1" {
		t.Fatalf("unexpected series id %q", result.SeriesID)
	}
	if len(inserted) != 1 {
		t.Fatalf("expected one stored occurrence, got %d", len(inserted))
	}
	stored := inserted[0]
	if stored.ID != "b-1" || stored.RoomID != "room-1" || stored.EmployeeID != "emp-1" {
		t.Fatalf("unexpected stored booking %+v", stored)
	}
	if stored.SeriesID != nil || stored.IsRecurring {
		t.Fatalf("single booking must not carry series metadata: %+v", stored)
	}
	if stored.CancellationCode != "CODESOUR" {
		t.Fatalf("occurrence code %q does not match issued code", stored.CancellationCode)
	}
	if !stored.CreatedAt.Equal(now) || !stored.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not taken from the clock: %+v", stored)
	}
	if len(notifier.confirmations) != 1 {
		t.Fatalf("expected one confirmation mail, got %d", len(notifier.confirmations))
	}
}

func TestBookingService_CreateBookingRecurringSharesSeriesAndCode(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	recurrenceEnd := start.AddDate(0, 0, 14)
	now := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)

	var inserted []persistence.Booking
	store := &bookingStoreStub{
		insertFn: func(_ context.Context, bookings []persistence.Booking) error {
			inserted = bookings
			return nil
		},
	}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil,
		sequenceIDs("code-source", "b-1", "b-2", "b-3"), fixedClock(now))

	input := validBookingInput(start, end)
	input.IsRecurring = true
	input.Pattern = "weekly"
	input.RecurrenceEnd = &recurrenceEnd

	result, err := service.CreateBooking(context.Background(), CreateBookingParams{Input: input})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inserted) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(inserted))
	}
	for i, occurrence := range inserted {
		if occurrence.SeriesID == nil || *occurrence.SeriesID != "series-1" {
			t.Fatalf("occurrence %d missing series id: %+v", i, occurrence)
		}
		if !occurrence.IsRecurring {
			t.Fatalf("occurrence %d not flagged recurring", i)
		}
		if occurrence.CancellationCode != result.CancellationCode {
			t.Fatalf("occurrence %d has code %q, series issued %q", i, occurrence.CancellationCode, result.CancellationCode)
		}
		wantStart := start.AddDate(0, 0, 7*i)
		if !occurrence.Start.Equal(wantStart) {
			t.Fatalf("occurrence %d starts at %s, want %s", i, occurrence.Start, wantStart)
		}
	}
}

func TestBookingService_CreateBookingValidation(t *testing.T) {
	t.Parallel()

	service := NewBookingService(&bookingStoreStub{}, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	_, err := service.CreateBooking(context.Background(), CreateBookingParams{Input: BookingInput{}})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"room_id", "employee_id", "title", "attendees", "start", "end"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("missing field error for %q: %v", field, vErr.FieldErrors)
		}
	}
}

func TestBookingService_CreateBookingEmployeeMismatch(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	service := NewBookingService(&bookingStoreStub{}, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	input := validBookingInput(start, start.Add(time.Hour))
	input.EmployeeEmail = "someone-else@example.com"

	_, err := service.CreateBooking(context.Background(), CreateBookingParams{Input: input})
	if !errors.Is(err, ErrEmployeeMismatch) {
		t.Fatalf("expected ErrEmployeeMismatch, got %v", err)
	}

	input = validBookingInput(start, start.Add(time.Hour))
	input.EmployeeID = "emp-unknown"
	_, err = service.CreateBooking(context.Background(), CreateBookingParams{Input: input})
	if !errors.Is(err, ErrEmployeeMismatch) {
		t.Fatalf("expected ErrEmployeeMismatch for unknown id, got %v", err)
	}
}

func TestBookingService_CreateBookingConflictCarriesSuggestions(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	existing := persistence.Booking{
		ID: "b-existing", RoomID: "room-1", EmployeeID: "emp-1",
		Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
	}
	store := &bookingStoreStub{
		listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
			return []persistence.Booking{existing}, nil
		},
	}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	input := validBookingInput(day.Add(14*time.Hour+50*time.Minute), day.Add(15*time.Hour+30*time.Minute))
	_, err := service.CreateBooking(context.Background(), CreateBookingParams{Input: input})

	var conflictErr *booking.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflictErr.Reason != booking.ReasonExistingBooking {
		t.Fatalf("unexpected reason %q", conflictErr.Reason)
	}
	if len(conflictErr.Suggestions) == 0 {
		t.Fatalf("expected alternative slots")
	}
	wantStart := day.Add(15*time.Hour + 5*time.Minute)
	if !conflictErr.Suggestions[0].Start.Equal(wantStart) {
		t.Fatalf("first suggestion starts at %s, want %s", conflictErr.Suggestions[0].Start, wantStart)
	}
}

func TestBookingService_CreateBookingCapacityExceeded(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	service := NewBookingService(&bookingStoreStub{}, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	input := validBookingInput(start, start.Add(time.Hour))
	input.Attendees = 25

	_, err := service.CreateBooking(context.Background(), CreateBookingParams{Input: input})

	var capErr *booking.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if capErr.Capacity != 10 {
		t.Fatalf("capacity error carries %d, want 10", capErr.Capacity)
	}
}

func TestBookingService_CreateBookingNotifierFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	notifier := &notifierStub{confirmErr: errors.New("smtp down")}

	service := NewBookingService(&bookingStoreStub{}, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), notifier,
		sequenceIDs("code-source", "b-1"), nil)

	_, err := service.CreateBooking(context.Background(), CreateBookingParams{
		Input: validBookingInput(start, start.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("mail failure must not fail the booking: %v", err)
	}
}

func TestBookingService_RescheduleBookingExcludesItself(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	existing := persistence.Booking{
		ID: "b-1", RoomID: "room-1", EmployeeID: "emp-1", Title: "Design sync",
		Attendees: 4, Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
		CancellationCode: "A1B2C3D4",
	}

	var updated persistence.Booking
	store := &bookingStoreStub{
		getFn: func(_ context.Context, id string) (persistence.Booking, error) {
			if id != "b-1" {
				return persistence.Booking{}, persistence.ErrNotFound
			}
			return existing, nil
		},
		listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
			return []persistence.Booking{existing}, nil
		},
		updateFn: func(_ context.Context, booking persistence.Booking) error {
			updated = booking
			return nil
		},
	}

	now := time.Date(2025, time.September, 2, 8, 0, 0, 0, time.UTC)
	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, fixedClock(now))

	// Moving by 30 minutes overlaps the old window; only the booking itself
	// occupies it, so the move must succeed.
	moved, err := service.RescheduleBooking(context.Background(), RescheduleBookingParams{
		BookingID: "b-1",
		Start:     day.Add(14*time.Hour + 30*time.Minute),
		End:       day.Add(15*time.Hour + 30*time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.Start.Equal(day.Add(14*time.Hour + 30*time.Minute)) {
		t.Fatalf("unexpected new start %s", moved.Start)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at not taken from the clock: %s", updated.UpdatedAt)
	}
}

func TestBookingService_RescheduleBookingConflictsWithOthers(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	mine := persistence.Booking{
		ID: "b-1", RoomID: "room-1", EmployeeID: "emp-1",
		Attendees: 4, Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour),
	}
	other := persistence.Booking{
		ID: "b-2", RoomID: "room-1", EmployeeID: "emp-1",
		Attendees: 4, Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
	}
	store := &bookingStoreStub{
		getFn: func(_ context.Context, _ string) (persistence.Booking, error) { return mine, nil },
		listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
			return []persistence.Booking{mine, other}, nil
		},
	}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	_, err := service.RescheduleBooking(context.Background(), RescheduleBookingParams{
		BookingID: "b-1",
		Start:     day.Add(14*time.Hour + 30*time.Minute),
		End:       day.Add(15*time.Hour + 30*time.Minute),
	})

	var conflictErr *booking.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestBookingService_RescheduleCancelledBooking(t *testing.T) {
	t.Parallel()

	store := &bookingStoreStub{
		getFn: func(_ context.Context, _ string) (persistence.Booking, error) {
			return persistence.Booking{ID: "b-1", Cancelled: true}, nil
		},
	}
	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	_, err := service.RescheduleBooking(context.Background(), RescheduleBookingParams{BookingID: "b-1"})
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	stored := persistence.Booking{
		ID: "b-1", RoomID: "room-1", EmployeeID: "emp-1",
		Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
		CancellationCode: "A1B2C3D4",
	}

	tests := []struct {
		name      string
		bookingID string
		code      string
		cancelled bool
		wantErr   error
	}{
		{name: "matching code cancels", bookingID: "b-1", code: "A1B2C3D4"},
		{name: "unknown booking", bookingID: "missing", code: "A1B2C3D4", wantErr: ErrNotFound},
		{name: "wrong code", bookingID: "b-1", code: "FFFFFFFF", wantErr: ErrInvalidCancellationCode},
		{name: "lowercase code is rejected", bookingID: "b-1", code: "a1b2c3d4", wantErr: ErrInvalidCancellationCode},
		{name: "already cancelled", bookingID: "b-1", code: "A1B2C3D4", cancelled: true, wantErr: ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var marked bool
			store := &bookingStoreStub{
				getFn: func(_ context.Context, id string) (persistence.Booking, error) {
					if id != "b-1" {
						return persistence.Booking{}, persistence.ErrNotFound
					}
					record := stored
					record.Cancelled = tt.cancelled
					return record, nil
				},
				markCancelledFn: func(_ context.Context, _ string, _ time.Time) error {
					marked = true
					return nil
				},
			}
			notifier := &notifierStub{}
			service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), notifier, nil, nil)

			err := service.CancelBooking(context.Background(), CancelBookingParams{
				BookingID:        tt.bookingID,
				CancellationCode: tt.code,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if marked {
					t.Fatalf("booking must not be marked cancelled on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !marked {
				t.Fatalf("booking was not marked cancelled")
			}
			if len(notifier.cancellations) != 1 {
				t.Fatalf("expected one cancellation mail, got %d", len(notifier.cancellations))
			}
			if !notifier.cancellations[0].Cancelled {
				t.Fatalf("cancellation mail carries an active booking")
			}
		})
	}
}

func TestBookingService_ListBookingsSorts(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	stored := []persistence.Booking{
		{ID: "b-1", RoomID: "room-2", EmployeeID: "emp-1", Title: "Weekly review", Start: day.Add(13 * time.Hour), End: day.Add(14 * time.Hour)},
		{ID: "b-2", RoomID: "room-1", EmployeeID: "emp-2", Title: "all hands", Start: day.Add(15 * time.Hour), End: day.Add(16 * time.Hour)},
		{ID: "b-3", RoomID: "room-1", EmployeeID: "emp-1", Title: "Budget", Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},
	}
	store := &bookingStoreStub{listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
		return append([]persistence.Booking(nil), stored...), nil
	}}
	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	cases := []struct {
		name   string
		params ListBookingsParams
		want   []string
	}{
		{name: "default start order", params: ListBookingsParams{}, want: []string{"b-3", "b-1", "b-2"}},
		{name: "title ascending ignores case", params: ListBookingsParams{SortBy: SortByTitle}, want: []string{"b-2", "b-3", "b-1"}},
		{name: "room descending", params: ListBookingsParams{SortBy: SortByRoom, Descending: true}, want: []string{"b-1", "b-2", "b-3"}},
		{name: "end descending", params: ListBookingsParams{SortBy: SortByEnd, Descending: true}, want: []string{"b-2", "b-1", "b-3"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listed, err := service.ListBookings(context.Background(), tc.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(listed) != len(tc.want) {
				t.Fatalf("expected %d bookings, got %d", len(tc.want), len(listed))
			}
			for i, id := range tc.want {
				if listed[i].ID != id {
					t.Fatalf("position %d: expected %q, got %q", i, id, listed[i].ID)
				}
			}
		})
	}
}

func TestBookingService_SuggestAvailabilityUsesCache(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	listCalls := 0
	store := &bookingStoreStub{
		listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
			listCalls++
			return []persistence.Booking{{
				ID: "b-1", RoomID: "room-1",
				Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour),
			}}, nil
		},
	}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	params := AvailabilityParams{
		RoomID:   "room-1",
		Start:    day.Add(14*time.Hour + 50*time.Minute),
		Duration: 30 * time.Minute,
	}

	first, err := service.SuggestAvailability(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("expected at least one slot")
	}
	wantStart := day.Add(15*time.Hour + 5*time.Minute)
	if !first[0].Start.Equal(wantStart) {
		t.Fatalf("first slot starts at %s, want %s", first[0].Start, wantStart)
	}

	second, err := service.SuggestAvailability(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached result differs: %v vs %v", second, first)
	}
	if listCalls != 1 {
		t.Fatalf("expected a single store scan, got %d", listCalls)
	}
}

func TestBookingService_SuggestAvailabilityValidation(t *testing.T) {
	t.Parallel()

	service := NewBookingService(&bookingStoreStub{}, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil, nil, nil)

	_, err := service.SuggestAvailability(context.Background(), AvailabilityParams{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"room_id", "start", "duration"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("missing field error for %q", field)
		}
	}
}

func TestBookingService_ConcurrentCreatesCannotDoubleBook(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	var storeMu sync.Mutex
	var stored []persistence.Booking

	// The scan stalls until a second scan arrives or a grace period passes.
	// If both requests manage to scan before either writes, both see an empty
	// room and both inserts go through.
	var scans atomic.Int32
	bothScanned := make(chan struct{})

	store := &bookingStoreStub{
		listFn: func(_ context.Context, _ persistence.BookingFilter) ([]persistence.Booking, error) {
			if scans.Add(1) == 2 {
				close(bothScanned)
			}
			select {
			case <-bothScanned:
			case <-time.After(100 * time.Millisecond):
			}
			storeMu.Lock()
			defer storeMu.Unlock()
			return append([]persistence.Booking(nil), stored...), nil
		},
		insertFn: func(_ context.Context, bookings []persistence.Booking) error {
			storeMu.Lock()
			defer storeMu.Unlock()
			stored = append(stored, bookings...)
			return nil
		},
	}

	service := NewBookingService(store, defaultRoomStub(), defaultEmployeeStub(), newTestValidator(), nil,
		sequenceIDs("code-a", "b-1", "code-b", "b-2"), fixedClock(start))

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := service.CreateBooking(context.Background(), CreateBookingParams{
				Input: validBookingInput(start, end),
			})
			errs <- err
		}()
	}

	first, second := <-errs, <-errs
	if (first == nil) == (second == nil) {
		t.Fatalf("expected exactly one create to succeed, got %v and %v", first, second)
	}
	failed := first
	if failed == nil {
		failed = second
	}
	var conflictErr *booking.ConflictError
	if !errors.As(failed, &conflictErr) {
		t.Fatalf("expected a conflict error, got %v", failed)
	}
	if conflictErr.Reason != booking.ReasonExistingBooking {
		t.Fatalf("unexpected conflict reason %q", conflictErr.Reason)
	}

	storeMu.Lock()
	defer storeMu.Unlock()
	if len(stored) != 1 {
		t.Fatalf("expected a single stored occurrence, got %d", len(stored))
	}
}
