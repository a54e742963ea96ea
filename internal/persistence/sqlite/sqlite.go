package sqlite

import (
	"context"
	"fmt"
	"time"
)

// schema holds the DDL applied at startup. Timestamps are stored as RFC3339
// UTC text so lexicographic comparison matches chronological order.
const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	capacity   INTEGER NOT NULL CHECK (capacity > 0),
	amenities  TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	id                TEXT PRIMARY KEY,
	room_id           TEXT NOT NULL REFERENCES rooms(id),
	employee_id       TEXT NOT NULL REFERENCES employees(id),
	title             TEXT NOT NULL,
	attendees         INTEGER NOT NULL CHECK (attendees > 0),
	start_at          TEXT NOT NULL,
	end_at            TEXT NOT NULL,
	cancellation_code TEXT NOT NULL,
	cancelled         INTEGER NOT NULL DEFAULT 0,
	series_id         TEXT,
	is_recurring      INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	CHECK (end_at > start_at)
);

CREATE INDEX IF NOT EXISTS idx_bookings_room_window ON bookings (room_id, start_at);
CREATE INDEX IF NOT EXISTS idx_bookings_series ON bookings (series_id);
`

// Migrate applies the schema. It is idempotent and safe to run at every
// startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// formatTime renders a fixed-width UTC timestamp. Sub-second precision is
// dropped so stored values compare lexicographically in SQL.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
