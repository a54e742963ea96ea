package booking

import (
	"errors"
	"time"
)

// ErrInvalidRange indicates a time range whose end does not come after its start.
var ErrInvalidRange = errors.New("booking: time range end must be after start")

// TimeRange is an immutable half-open [Start, End) window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange constructs a range, rejecting inverted or empty windows.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if !r.IsOrdered() {
		return TimeRange{}, ErrInvalidRange
	}
	return r, nil
}

// IsOrdered reports whether the end instant comes strictly after the start.
func (r TimeRange) IsOrdered() bool {
	return r.End.After(r.Start)
}

// Duration returns the length of the window.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether the receiver intersects other once other has been
// widened by buffer on both ends. A zero buffer tests plain half-open overlap.
func (r TimeRange) Overlaps(other TimeRange, buffer time.Duration) bool {
	return r.Start.Before(other.End.Add(buffer)) && r.End.After(other.Start.Add(-buffer))
}
