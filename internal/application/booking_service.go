package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingStore captures the persistence interactions needed by the service.
type BookingStore interface {
	InsertOccurrences(ctx context.Context, bookings []persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	UpdateBooking(ctx context.Context, booking persistence.Booking) error
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) error
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
}

// EmployeeDirectory exposes employee lookup operations.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id string) (persistence.Employee, error)
}

// Notifier sends booking lifecycle mail. Delivery failures are logged and never
// fail the operation that triggered them.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, employee Employee, room Room, result CreateBookingResult) error
	SendCancellationNotice(ctx context.Context, employee Employee, room Room, cancelled Booking) error
}

// BookingService orchestrates validation, persistence, and notification for
// booking operations.
type BookingService struct {
	bookings    BookingStore
	rooms       RoomCatalog
	employees   EmployeeDirectory
	validator   *booking.Validator
	notifier    Notifier
	suggestions *suggestionCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	// admission serializes the conflict scan and the write that follows it.
	// Without it two concurrent requests can both validate against the same
	// stale snapshot and both persist overlapping bookings.
	admission sync.Mutex
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingStore, rooms RoomCatalog, employees EmployeeDirectory, validator *booking.Validator, notifier Notifier, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, employees, validator, notifier, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingStore, rooms RoomCatalog, employees EmployeeDirectory, validator *booking.Validator, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if validator == nil {
		validator = booking.NewValidator(booking.DefaultPrimePolicy(nil), nil)
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		employees:   employees,
		validator:   validator,
		notifier:    notifier,
		suggestions: newSuggestionCache(0, 0, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request against the room's current bookings and
// persists every occurrence of the series atomically. On success the caller
// receives the cancellation code issued for the series.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result CreateBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateBooking",
		"room_id", input.RoomID,
		"employee_id", input.EmployeeID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("series_id", result.SeriesID, "occurrences", len(result.Bookings)).InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{}
	vErr.merge(validateBookingInput(input))
	pattern, patternErr := booking.ParsePattern(input.Pattern)
	if input.IsRecurring && patternErr != nil {
		vErr.add("recurrence_pattern", "recurrence pattern must be daily, weekly, or monthly")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var employee Employee
	employee, err = s.verifyEmployee(ctx, input.EmployeeID, input.EmployeeEmail)
	if err != nil {
		return
	}

	var room Room
	room, err = s.lookupRoom(ctx, input.RoomID)
	if err != nil {
		return
	}

	result, err = s.admitAndStore(ctx, input, pattern, employee, room)
	if err != nil {
		return
	}

	if s.notifier != nil {
		if nerr := s.notifier.SendBookingConfirmation(ctx, employee, room, result); nerr != nil {
			logger.WarnContext(ctx, "failed to send confirmation mail", "error", nerr)
		}
	}

	return
}

// admitAndStore validates the request against a fresh snapshot and persists
// the occurrences while holding the admission lock, so the snapshot cannot go
// stale between the conflict scan and the write.
func (s *BookingService) admitAndStore(ctx context.Context, input BookingInput, pattern booking.RecurrencePattern, employee Employee, room Room) (CreateBookingResult, error) {
	s.admission.Lock()
	defer s.admission.Unlock()

	snapshot, err := s.roomSnapshot(ctx, input.RoomID, "")
	if err != nil {
		return CreateBookingResult{}, err
	}
	snapshot.RoomCapacity = room.Capacity

	request := booking.Request{
		RoomID:        input.RoomID,
		Attendees:     input.Attendees,
		Range:         booking.TimeRange{Start: input.Start, End: input.End},
		IsRecurring:   input.IsRecurring,
		Pattern:       pattern,
		RecurrenceEnd: input.RecurrenceEnd,
	}

	verdict, err := s.validator.Validate(request, snapshot)
	if err != nil {
		return CreateBookingResult{}, mapEngineError(err)
	}

	code := newCancellationCode(s.idGenerator)
	createdAt := s.now()
	title := strings.TrimSpace(input.Title)

	var seriesID *string
	if input.IsRecurring {
		seriesID = &verdict.SeriesID
	}

	records := make([]persistence.Booking, 0, len(verdict.Occurrences))
	for _, occurrence := range verdict.Occurrences {
		records = append(records, persistence.Booking{
			ID:               s.idGenerator(),
			RoomID:           input.RoomID,
			EmployeeID:       employee.ID,
			Title:            title,
			Attendees:        input.Attendees,
			Start:            occurrence.Start,
			End:              occurrence.End,
			CancellationCode: code,
			SeriesID:         seriesID,
			IsRecurring:      input.IsRecurring,
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		})
	}

	if err := s.bookings.InsertOccurrences(ctx, records); err != nil {
		return CreateBookingResult{}, mapBookingRepoError(err)
	}
	s.suggestions.Invalidate()

	return CreateBookingResult{
		Bookings:         toBookings(records),
		SeriesID:         verdict.SeriesID,
		CancellationCode: code,
	}, nil
}

// RescheduleBooking moves a single occurrence to a new window. The occurrence
// being moved never counts as its own conflict.
func (s *BookingService) RescheduleBooking(ctx context.Context, params RescheduleBookingParams) (moved Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "RescheduleBooking", "booking_id", params.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking rescheduled")
	}()

	var existing persistence.Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	if existing.Cancelled {
		err = ErrAlreadyCancelled
		return
	}

	var room Room
	room, err = s.lookupRoom(ctx, existing.RoomID)
	if err != nil {
		return
	}

	var updated persistence.Booking
	updated, err = s.admitAndMove(ctx, existing, room, params.Start, params.End)
	if err != nil {
		return
	}

	moved = toBooking(updated)
	return
}

// admitAndMove revalidates the new window and persists the move under the
// admission lock. The occurrence being moved is excluded from its own
// conflict scan.
func (s *BookingService) admitAndMove(ctx context.Context, existing persistence.Booking, room Room, start, end time.Time) (persistence.Booking, error) {
	s.admission.Lock()
	defer s.admission.Unlock()

	snapshot, err := s.roomSnapshot(ctx, existing.RoomID, existing.ID)
	if err != nil {
		return persistence.Booking{}, err
	}
	snapshot.RoomCapacity = room.Capacity

	request := booking.Request{
		RoomID:    existing.RoomID,
		Attendees: existing.Attendees,
		Range:     booking.TimeRange{Start: start, End: end},
	}
	if _, err := s.validator.Validate(request, snapshot); err != nil {
		return persistence.Booking{}, mapEngineError(err)
	}

	updated := existing
	updated.Start = start
	updated.End = end
	updated.UpdatedAt = s.now()

	if err := s.bookings.UpdateBooking(ctx, updated); err != nil {
		return persistence.Booking{}, mapBookingRepoError(err)
	}
	s.suggestions.Invalidate()

	return updated, nil
}

// CancelBooking marks a booking cancelled when the supplied code matches the
// one issued at creation. The comparison is case sensitive.
func (s *BookingService) CancelBooking(ctx context.Context, params CancelBookingParams) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking store not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking", "booking_id", params.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	var existing persistence.Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	if existing.Cancelled {
		err = ErrAlreadyCancelled
		return
	}
	if existing.CancellationCode != params.CancellationCode {
		err = ErrInvalidCancellationCode
		return
	}

	cancelledAt := s.now()
	if err = s.bookings.MarkCancelled(ctx, existing.ID, cancelledAt); err != nil {
		err = mapBookingRepoError(err)
		return
	}
	s.suggestions.Invalidate()

	if s.notifier != nil {
		cancelled := toBooking(existing)
		cancelled.Cancelled = true
		cancelled.UpdatedAt = cancelledAt

		employee, lookupErr := s.lookupEmployee(ctx, existing.EmployeeID)
		if lookupErr != nil {
			logger.WarnContext(ctx, "failed to load employee for cancellation mail", "error", lookupErr)
			return nil
		}
		room, lookupErr := s.lookupRoom(ctx, existing.RoomID)
		if lookupErr != nil {
			logger.WarnContext(ctx, "failed to load room for cancellation mail", "error", lookupErr)
			return nil
		}
		if nerr := s.notifier.SendCancellationNotice(ctx, employee, room, cancelled); nerr != nil {
			logger.WarnContext(ctx, "failed to send cancellation mail", "error", nerr)
		}
	}

	return nil
}

// GetBooking returns a single booking by ID, cancelled or not.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking store not configured")
	}

	stored, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return toBooking(stored), nil
}

// ListBookings enumerates bookings matching the filter. Results are sorted by
// the requested column, by start time when no sort is given.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListBookings", "room_id", params.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(bookings)).InfoContext(ctx, "bookings listed")
	}()

	filter := persistence.BookingFilter{
		RoomID:           params.RoomID,
		EmployeeID:       params.EmployeeID,
		IncludeCancelled: params.IncludeCancelled,
	}
	if params.From != nil && params.To != nil {
		filter.OverlapsStart = params.From
		filter.OverlapsEnd = params.To
	}

	stored, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	bookings = toBookings(stored)
	sortBookings(bookings, params.SortBy, params.Descending)
	return
}

// SuggestAvailability returns up to three open slots in the requested room on
// the day of the requested start. Results are cached briefly because listings
// repeat the same query while the room's bookings are unchanged.
func (s *BookingService) SuggestAvailability(ctx context.Context, params AvailabilityParams) (slots []Slot, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "SuggestAvailability", "room_id", params.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to suggest availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(slots)).InfoContext(ctx, "availability suggested")
	}()

	vErr := &ValidationError{}
	if params.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if params.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if params.Duration <= 0 {
		vErr.add("duration", "duration must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.lookupRoom(ctx, params.RoomID); err != nil {
		return
	}

	key := buildSuggestionCacheKey(params)
	if cached, ok := s.suggestions.Get(key); ok {
		slots = cached
		return
	}

	snapshot, serr := s.roomSnapshot(ctx, params.RoomID, "")
	if serr != nil {
		err = serr
		return
	}

	slots = toSlots(booking.SuggestSlots(snapshot.Existing, params.Start, params.Duration))
	s.suggestions.Store(key, slots)
	return
}

func sortBookings(bookings []Booking, key string, descending bool) {
	less := func(a, b Booking) bool {
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	}
	switch key {
	case SortByTitle:
		less = func(a, b Booking) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.Start.Before(b.Start)
		}
	case SortByRoom:
		less = func(a, b Booking) bool {
			if a.RoomID != b.RoomID {
				return a.RoomID < b.RoomID
			}
			return a.Start.Before(b.Start)
		}
	case SortByEmployee:
		less = func(a, b Booking) bool {
			if a.EmployeeID != b.EmployeeID {
				return a.EmployeeID < b.EmployeeID
			}
			return a.Start.Before(b.Start)
		}
	case SortByEnd:
		less = func(a, b Booking) bool {
			if !a.End.Equal(b.End) {
				return a.End.Before(b.End)
			}
			return a.Start.Before(b.Start)
		}
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		if descending {
			return less(bookings[j], bookings[i])
		}
		return less(bookings[i], bookings[j])
	})
}

func (s *BookingService) roomSnapshot(ctx context.Context, roomID, excludeBookingID string) (booking.Snapshot, error) {
	stored, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{RoomID: roomID})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return booking.Snapshot{}, nil
		}
		return booking.Snapshot{}, mapBookingRepoError(err)
	}

	existing := make([]booking.ExistingBooking, 0, len(stored))
	for _, b := range stored {
		if b.ID == excludeBookingID {
			continue
		}
		existing = append(existing, booking.ExistingBooking{
			ID:        b.ID,
			Start:     b.Start,
			End:       b.End,
			Cancelled: b.Cancelled,
		})
	}
	return booking.Snapshot{Existing: existing}, nil
}

func (s *BookingService) verifyEmployee(ctx context.Context, id, email string) (Employee, error) {
	employee, err := s.lookupEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Employee{}, ErrEmployeeMismatch
		}
		return Employee{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), employee.Email) {
		return Employee{}, ErrEmployeeMismatch
	}
	return employee, nil
}

func (s *BookingService) lookupEmployee(ctx context.Context, id string) (Employee, error) {
	if s.employees == nil {
		return Employee{ID: id}, nil
	}
	stored, err := s.employees.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, mapDirectoryError(err)
	}
	return toEmployee(stored), nil
}

func (s *BookingService) lookupRoom(ctx context.Context, id string) (Room, error) {
	if s.rooms == nil {
		return Room{ID: id}, nil
	}
	stored, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return toRoom(stored), nil
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if strings.TrimSpace(input.EmployeeID) == "" {
		vErr.add("employee_id", "employee id is required")
	}
	if strings.TrimSpace(input.EmployeeEmail) == "" {
		vErr.add("employee_email", "employee email is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Attendees <= 0 {
		vErr.add("attendees", "attendees must be positive")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if input.IsRecurring && input.RecurrenceEnd == nil {
		vErr.add("recurrence_end", "recurrence end date is required")
	}

	return vErr
}

// mapEngineError translates range and recurrence sentinels into field level
// validation errors. Conflict and capacity errors pass through typed so
// callers can render suggestions and limits.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}

	vErr := &ValidationError{}
	switch {
	case errors.Is(err, booking.ErrInvalidRange), errors.Is(err, booking.ErrInvalidDateRange):
		vErr.add("time", "end date must be after start date")
	case errors.Is(err, booking.ErrInvalidRecurrenceEnd):
		vErr.add("recurrence_end", "recurrence end date must be after the start date")
	case errors.Is(err, booking.ErrInvalidPattern):
		vErr.add("recurrence_pattern", "recurrence pattern must be daily, weekly, or monthly")
	default:
		return err
	}
	return vErr
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "end date must be after start date")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "related records are missing")
		return vErr
	}
	return err
}

func mapDirectoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}

func toEmployee(e persistence.Employee) Employee {
	return Employee{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toRoom(r persistence.Room) Room {
	return Room{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Amenities: r.Amenities,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toBooking(b persistence.Booking) Booking {
	return Booking{
		ID:          b.ID,
		RoomID:      b.RoomID,
		EmployeeID:  b.EmployeeID,
		Title:       b.Title,
		Attendees:   b.Attendees,
		Start:       b.Start,
		End:         b.End,
		Cancelled:   b.Cancelled,
		SeriesID:    b.SeriesID,
		IsRecurring: b.IsRecurring,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookings(stored []persistence.Booking) []Booking {
	if len(stored) == 0 {
		return nil
	}
	out := make([]Booking, len(stored))
	for i, b := range stored {
		out[i] = toBooking(b)
	}
	return out
}
