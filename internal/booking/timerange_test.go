package booking

import (
	"errors"
	"testing"
	"time"
)

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, time.September, 3, hour, minute, 0, 0, time.UTC)
}

func TestNewTimeRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{name: "ordered", start: at(t, 9, 0), end: at(t, 10, 0)},
		{name: "inverted", start: at(t, 10, 0), end: at(t, 9, 0), wantErr: true},
		{name: "empty", start: at(t, 9, 0), end: at(t, 9, 0), wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewTimeRange(tc.start, tc.end)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !r.IsOrdered() {
				t.Fatalf("expected ordered range")
			}
			if got := r.Duration(); got != tc.end.Sub(tc.start) {
				t.Fatalf("unexpected duration %v", got)
			}
		})
	}
}

func TestTimeRange_Overlaps_BufferBoundaries(t *testing.T) {
	t.Parallel()

	existing := TimeRange{Start: at(t, 14, 0), End: at(t, 15, 0)}
	buffer := 15 * time.Minute

	cases := []struct {
		name      string
		candidate TimeRange
		want      bool
	}{
		{
			name:      "ends exactly at buffered start",
			candidate: TimeRange{Start: at(t, 13, 0), End: at(t, 13, 45)},
			want:      false,
		},
		{
			name:      "ends one second inside the buffer",
			candidate: TimeRange{Start: at(t, 13, 0), End: at(t, 13, 45).Add(time.Second)},
			want:      true,
		},
		{
			name:      "starts exactly at buffered end",
			candidate: TimeRange{Start: at(t, 15, 15), End: at(t, 16, 0)},
			want:      false,
		},
		{
			name:      "starts one second before buffered end",
			candidate: TimeRange{Start: at(t, 15, 15).Add(-time.Second), End: at(t, 16, 0)},
			want:      true,
		},
		{
			name:      "fully inside",
			candidate: TimeRange{Start: at(t, 14, 15), End: at(t, 14, 30)},
			want:      true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.candidate.Overlaps(existing, buffer); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTimeRange_Overlaps_ZeroBuffer(t *testing.T) {
	t.Parallel()

	first := TimeRange{Start: at(t, 9, 0), End: at(t, 10, 0)}
	second := TimeRange{Start: at(t, 10, 0), End: at(t, 11, 0)}

	if first.Overlaps(second, 0) {
		t.Fatalf("adjacent half-open ranges must not overlap with zero buffer")
	}
}
