package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPattern indicates an unrecognized recurrence cadence. The closed
// enumeration below should make this unreachable for well-typed callers.
var ErrInvalidPattern = errors.New("booking: invalid recurrence pattern")

// RecurrencePattern enumerates the supported recurrence cadences.
type RecurrencePattern int

const (
	// PatternUnspecified indicates no recurrence cadence was set.
	PatternUnspecified RecurrencePattern = iota
	// PatternDaily repeats every day.
	PatternDaily
	// PatternWeekly repeats every seven days.
	PatternWeekly
	// PatternMonthly repeats on the same day of the next calendar month,
	// clamped to the month's last day when shorter.
	PatternMonthly
)

// String renders the pattern in its wire form.
func (p RecurrencePattern) String() string {
	switch p {
	case PatternDaily:
		return "daily"
	case PatternWeekly:
		return "weekly"
	case PatternMonthly:
		return "monthly"
	default:
		return "unspecified"
	}
}

// ParsePattern converts a wire value into a RecurrencePattern.
func ParsePattern(value string) (RecurrencePattern, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily":
		return PatternDaily, nil
	case "weekly":
		return PatternWeekly, nil
	case "monthly":
		return PatternMonthly, nil
	default:
		return PatternUnspecified, fmt.Errorf("%w: %q", ErrInvalidPattern, value)
	}
}

// ExpandOccurrences generates the ordered occurrence windows of a recurring
// request. The first occurrence's duration is held constant; subsequent starts
// advance by the pattern's cadence while the start remains on or before until.
//
// The until bound is INCLUSIVE: a generated start equal to until is emitted.
// Callers wanting an exclusive end date must adjust before calling.
func ExpandOccurrences(first TimeRange, pattern RecurrencePattern, until time.Time) ([]TimeRange, error) {
	if !first.IsOrdered() {
		return nil, ErrInvalidRange
	}
	switch pattern {
	case PatternDaily, PatternWeekly, PatternMonthly:
	default:
		return nil, ErrInvalidPattern
	}

	duration := first.Duration()
	occurrences := make([]TimeRange, 0, 4)

	for current := first.Start; !current.After(until); {
		occurrences = append(occurrences, TimeRange{Start: current, End: current.Add(duration)})

		switch pattern {
		case PatternDaily:
			current = current.AddDate(0, 0, 1)
		case PatternWeekly:
			current = current.AddDate(0, 0, 7)
		case PatternMonthly:
			current = addCalendarMonth(current)
		}
	}

	return occurrences, nil
}

// addCalendarMonth advances by one month, clamping the day to the target
// month's last day (Jan 31 -> Feb 28) instead of letting it roll over.
func addCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}
