package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const insertBookingQuery = `
	INSERT INTO bookings (id, room_id, employee_id, title, attendees, start_at, end_at,
		cancellation_code, cancelled, series_id, is_recurring, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertOccurrences persists every occurrence of a request inside one
// transaction. Either the whole series is stored or none of it.
func (r *BookingRepository) InsertOccurrences(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	for _, booking := range bookings {
		if booking.ID == "" {
			return persistence.ErrConstraintViolation
		}
		if !booking.End.After(booking.Start) {
			return persistence.ErrConstraintViolation
		}
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, booking := range bookings {
			_, err := r.helper.ExecTx(tx, insertBookingQuery,
				booking.ID,
				booking.RoomID,
				booking.EmployeeID,
				booking.Title,
				booking.Attendees,
				formatTime(booking.Start),
				formatTime(booking.End),
				booking.CancellationCode,
				boolToInt(booking.Cancelled),
				nullableString(booking.SeriesID),
				boolToInt(booking.IsRecurring),
				formatTime(booking.CreatedAt),
				formatTime(booking.UpdatedAt),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

const selectBookingColumns = `
	id, room_id, employee_id, title, attendees, start_at, end_at,
	cancellation_code, cancelled, series_id, is_recurring, created_at, updated_at
`

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	query := `SELECT ` + selectBookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// UpdateBooking rewrites the mutable fields of an existing booking.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}
	if !booking.End.After(booking.Start) {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE bookings
		SET room_id = ?, title = ?, attendees = ?, start_at = ?, end_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		booking.RoomID,
		booking.Title,
		booking.Attendees,
		formatTime(booking.Start),
		formatTime(booking.End),
		formatTime(booking.UpdatedAt),
		booking.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookings returns bookings matching the filter ordered by start time.
// Cancelled bookings are excluded unless the filter opts in.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if !filter.IncludeCancelled {
		conditions = append(conditions, "cancelled = 0")
	}
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.OverlapsStart != nil && filter.OverlapsEnd != nil {
		conditions = append(conditions, "start_at < ? AND end_at > ?")
		args = append(args, formatTime(*filter.OverlapsEnd), formatTime(*filter.OverlapsStart))
	}

	query := `SELECT ` + selectBookingColumns + ` FROM bookings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_at ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// MarkCancelled flips a booking to cancelled. Already-cancelled bookings are
// left untouched; callers decide how to treat that case before writing.
func (r *BookingRepository) MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE bookings SET cancelled = 1, updated_at = ? WHERE id = ?",
		formatTime(cancelledAt), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var startStr, endStr, createdAtStr, updatedAtStr string
	var cancelled, isRecurring int
	var seriesID sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.EmployeeID,
		&booking.Title,
		&booking.Attendees,
		&startStr,
		&endStr,
		&booking.CancellationCode,
		&cancelled,
		&seriesID,
		&isRecurring,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Cancelled = cancelled != 0
	booking.IsRecurring = isRecurring != 0
	if seriesID.Valid {
		booking.SeriesID = &seriesID.String
	}

	if booking.Start, err = parseTime(startStr); err != nil {
		return persistence.Booking{}, err
	}
	if booking.End, err = parseTime(endStr); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Booking{}, err
	}

	return booking, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
