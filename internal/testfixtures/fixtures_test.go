package testfixtures

import (
	"testing"
	"time"
)

func TestEmployeeFixtureOverrides(t *testing.T) {
	fixture := NewEmployeeFixture(
		WithEmployeeID("emp-override"),
		WithEmployeeEmail("dana@example.com"),
	)

	if fixture.ID != "emp-override" {
		t.Fatalf("expected overridden ID, got %q", fixture.ID)
	}
	app := fixture.Application()
	if app.Email != "dana@example.com" {
		t.Fatalf("expected overridden email, got %q", app.Email)
	}
	if got := fixture.Persistence().Email; got != app.Email {
		t.Fatalf("persistence email %q diverges from application email %q", got, app.Email)
	}
}

func TestRoomFixtureCopiesAmenities(t *testing.T) {
	fixture := NewRoomFixture(WithRoomAmenities("projector"))

	app := fixture.Application()
	if app.Amenities == nil || *app.Amenities != "projector" {
		t.Fatalf("expected amenities on application room, got %v", app.Amenities)
	}
	*app.Amenities = "mutated"
	if *fixture.Amenities != "projector" {
		t.Fatalf("fixture amenities mutated through conversion copy")
	}
}

func TestBookingFixturesDoNotOverlap(t *testing.T) {
	first := NewBookingFixture()
	second := NewBookingFixture()

	if first.End.After(second.Start) && second.End.After(first.Start) {
		t.Fatalf("consecutive fixtures overlap: [%v, %v) and [%v, %v)",
			first.Start, first.End, second.Start, second.End)
	}
	if first.End.Sub(first.Start) != time.Hour {
		t.Fatalf("expected one hour window, got %v", first.End.Sub(first.Start))
	}
}

func TestBookingFixtureSeries(t *testing.T) {
	fixture := NewBookingFixture(WithBookingSeries("series-9"))

	record := fixture.Persistence()
	if record.SeriesID == nil || *record.SeriesID != "series-9" {
		t.Fatalf("expected series ID on persistence record, got %v", record.SeriesID)
	}
	if !record.IsRecurring {
		t.Fatalf("expected series bookings to be marked recurring")
	}
}
