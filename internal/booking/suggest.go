package booking

import (
	"sort"
	"time"
)

// MaxSuggestions caps the number of alternative slots proposed for a
// conflicting request.
const MaxSuggestions = 3

// SuggestSlots proposes up to three non-conflicting windows of the requested
// duration on the same calendar day as requestedStart. The day boundary is
// computed in requestedStart's location. Slots start no earlier than
// requestedStart plus the conflict buffer, never overlap each other, and stay
// within the day. An empty result means no availability and is not an error.
func SuggestSlots(existing []ExistingBooking, requestedStart time.Time, duration time.Duration) []TimeRange {
	if duration <= 0 {
		return nil
	}

	loc := requestedStart.Location()
	dayStart := time.Date(requestedStart.Year(), requestedStart.Month(), requestedStart.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings := make([]ExistingBooking, 0, len(existing))
	for _, b := range existing {
		if b.Cancelled {
			continue
		}
		if b.Start.Before(dayEnd) && b.End.After(dayStart) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].Start.Before(bookings[j].Start)
	})

	suggestions := make([]TimeRange, 0, MaxSuggestions)
	gapStart := requestedStart.Add(ConflictBuffer)

	for _, b := range bookings {
		if b.Start.After(gapStart) && b.Start.Sub(gapStart) >= duration {
			suggestions = append(suggestions, TimeRange{Start: gapStart, End: gapStart.Add(duration)})
			if len(suggestions) == MaxSuggestions {
				break
			}
		}
		if b.End.After(gapStart) {
			gapStart = b.End
		}
	}

	if len(suggestions) < MaxSuggestions && dayEnd.Sub(gapStart) >= duration {
		suggestions = append(suggestions, TimeRange{Start: gapStart, End: gapStart.Add(duration)})
	}

	if len(suggestions) == 0 {
		return nil
	}
	return suggestions
}
