package booking

import (
	"testing"
	"time"
)

func TestSuggestSlots_TracesGapAlgorithm(t *testing.T) {
	t.Parallel()

	// The documented scenario: one active booking 14:00-15:00 and a 30 minute
	// request at 14:50. gapStart becomes 15:05; the booking neither opens a gap
	// nor advances gapStart past itself, so the single suggestion is the
	// trailing day-end slot starting at 15:05.
	existing := []ExistingBooking{
		{ID: "b-1", Start: weekdayAt(t, 14, 0), End: weekdayAt(t, 15, 0)},
	}

	slots := SuggestSlots(existing, weekdayAt(t, 14, 50), 30*time.Minute)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(weekdayAt(t, 15, 5)) || !slots[0].End.Equal(weekdayAt(t, 15, 35)) {
		t.Fatalf("expected [15:05,15:35), got [%s,%s)", slots[0].Start, slots[0].End)
	}
}

func TestSuggestSlots_WalksGapsInOrder(t *testing.T) {
	t.Parallel()

	existing := []ExistingBooking{
		{ID: "b-1", Start: weekdayAt(t, 9, 0), End: weekdayAt(t, 10, 0)},
		{ID: "b-2", Start: weekdayAt(t, 10, 15), End: weekdayAt(t, 11, 0)},
		{ID: "b-3", Start: weekdayAt(t, 12, 0), End: weekdayAt(t, 13, 0)},
	}
	requestedStart := weekdayAt(t, 8, 0)
	duration := 30 * time.Minute

	slots := SuggestSlots(existing, requestedStart, duration)
	want := []TimeRange{
		{Start: weekdayAt(t, 8, 15), End: weekdayAt(t, 8, 45)},
		{Start: weekdayAt(t, 11, 0), End: weekdayAt(t, 11, 30)},
		{Start: weekdayAt(t, 13, 0), End: weekdayAt(t, 13, 30)},
	}

	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i := range want {
		if !slots[i].Start.Equal(want[i].Start) || !slots[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d: got [%s,%s), want [%s,%s)", i, slots[i].Start, slots[i].End, want[i].Start, want[i].End)
		}
	}

	// Invariants the suggester guarantees.
	dayStart := weekdayAt(t, 0, 0)
	dayEnd := dayStart.AddDate(0, 0, 1)
	earliest := requestedStart.Add(ConflictBuffer)
	for i, slot := range slots {
		if slot.Duration() != duration {
			t.Fatalf("slot %d has duration %v", i, slot.Duration())
		}
		if slot.Start.Before(earliest) {
			t.Fatalf("slot %d starts before requestedStart + buffer", i)
		}
		if slot.Start.Before(dayStart) || slot.End.After(dayEnd) {
			t.Fatalf("slot %d leaves the requested day", i)
		}
		if i > 0 && slots[i-1].Overlaps(slot, 0) {
			t.Fatalf("slots %d and %d overlap", i-1, i)
		}
	}
}

func TestSuggestSlots_CapsAtThree(t *testing.T) {
	t.Parallel()

	existing := []ExistingBooking{
		{ID: "b-1", Start: weekdayAt(t, 9, 0), End: weekdayAt(t, 9, 30)},
		{ID: "b-2", Start: weekdayAt(t, 10, 0), End: weekdayAt(t, 10, 30)},
		{ID: "b-3", Start: weekdayAt(t, 11, 0), End: weekdayAt(t, 11, 30)},
		{ID: "b-4", Start: weekdayAt(t, 12, 0), End: weekdayAt(t, 12, 30)},
	}

	slots := SuggestSlots(existing, weekdayAt(t, 8, 0), 30*time.Minute)
	if len(slots) != MaxSuggestions {
		t.Fatalf("expected %d slots, got %d", MaxSuggestions, len(slots))
	}
}

func TestSuggestSlots_EmptyWhenDayIsFull(t *testing.T) {
	t.Parallel()

	dayStart := weekdayAt(t, 0, 0)
	existing := []ExistingBooking{
		{ID: "all-day", Start: dayStart, End: dayStart.AddDate(0, 0, 1)},
	}

	if slots := SuggestSlots(existing, weekdayAt(t, 10, 0), 30*time.Minute); len(slots) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(slots))
	}
}

func TestSuggestSlots_IgnoresCancelledAndOtherDays(t *testing.T) {
	t.Parallel()

	dayStart := weekdayAt(t, 0, 0)
	existing := []ExistingBooking{
		{ID: "cancelled", Start: dayStart, End: dayStart.AddDate(0, 0, 1), Cancelled: true},
		{ID: "tomorrow", Start: dayStart.AddDate(0, 0, 1), End: dayStart.AddDate(0, 0, 2)},
	}

	slots := SuggestSlots(existing, weekdayAt(t, 10, 0), time.Hour)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(weekdayAt(t, 10, 15)) {
		t.Fatalf("expected slot at 10:15, got %s", slots[0].Start)
	}
}

func TestSuggestSlots_RejectsNonPositiveDuration(t *testing.T) {
	t.Parallel()

	if slots := SuggestSlots(nil, weekdayAt(t, 10, 0), 0); slots != nil {
		t.Fatalf("expected nil for zero duration, got %v", slots)
	}
}
