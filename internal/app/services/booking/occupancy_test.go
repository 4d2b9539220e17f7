package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

func TestRateMergesOverlappingBookings(t *testing.T) {
	e := newEnv(t)
	// Two stays on the same apartment covering July 1-5 and July 3-8. The
	// second overlaps the first, so together they occupy 8 days, not 11.
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-01",
		LeavingDate: "2026-07-05",
	})
	b := e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.owner.ID,
		ArrivalDate: "2026-07-05",
		LeavingDate: "2026-07-08",
	})
	// Stretch the second back over the first; the conflict checker would
	// refuse this, so write it straight through the repository the way
	// imported legacy rows arrive.
	moved := *b
	moved.ArrivalDate = time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	if err := e.store.Bookings().Update(context.Background(), &moved); err != nil {
		t.Fatalf("Update: %v", err)
	}

	report, err := e.engine.Rate(context.Background(),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if report.TotalApartments != 2 || report.TotalDays != 31 {
		t.Fatalf("population = %d apartments x %d days", report.TotalApartments, report.TotalDays)
	}
	if report.BookedDays != 8 {
		t.Fatalf("booked days = %d, want 8 (overlap merged)", report.BookedDays)
	}
	want := float64(8) / float64(2*31) * 100
	if report.Rate != want {
		t.Fatalf("aggregate rate = %f, want %f", report.Rate, want)
	}

	var first ApartmentOccupancy
	for _, entry := range report.ByApartment {
		if entry.ApartmentID == e.apt.ID {
			first = entry
		}
	}
	if first.BookedDays != 8 || first.VillageName != "Sharm Heights" {
		t.Fatalf("per-apartment entry = %+v", first)
	}
}

func TestRateClipsToWindow(t *testing.T) {
	e := newEnv(t)
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-06-25",
		LeavingDate: "2026-07-05",
	})

	report, err := e.engine.Rate(context.Background(),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	// Only July 1-5 falls inside the window.
	if report.BookedDays != 5 {
		t.Fatalf("booked days = %d, want 5", report.BookedDays)
	}
}

func TestRateExcludesCancelledAndCheckedOut(t *testing.T) {
	e := newEnv(t)
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-01",
		LeavingDate: "2026-07-05",
		Status:      "Checked Out",
	})
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.owner.ID,
		ArrivalDate: "2026-07-10",
		LeavingDate: "2026-07-12",
		Status:      "Cancelled",
	})

	report, err := e.engine.Rate(context.Background(),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if report.BookedDays != 0 {
		t.Fatalf("cancelled/checked-out stays counted: %d days", report.BookedDays)
	}
}

func TestRateZeroPopulation(t *testing.T) {
	e := newEnv(t)
	empty := e.store.AddVillage(&village.Village{Name: "Unbuilt Phase"})

	report, err := e.engine.Rate(context.Background(),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), empty.ID)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if report.Rate != 0 || report.TotalApartments != 0 {
		t.Fatalf("zero population report = %+v", report)
	}
	if report.ByApartment == nil || len(report.ByApartment) != 0 {
		t.Fatalf("ByApartment should be empty, got %v", report.ByApartment)
	}
}

func TestRateRejectsReversedWindow(t *testing.T) {
	e := newEnv(t)
	_, err := e.engine.Rate(context.Background(),
		time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), 0)
	if !errors.Is(err, domainbooking.ErrDateOrder) {
		t.Fatalf("expected ErrDateOrder, got %v", err)
	}
}

func TestRateSingleDayWindow(t *testing.T) {
	e := newEnv(t)
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-10",
		LeavingDate: "2026-07-20",
	})
	day := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	report, err := e.engine.Rate(context.Background(), day, day, 0)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if report.TotalDays != 1 || report.BookedDays != 1 {
		t.Fatalf("single-day window: %d/%d", report.BookedDays, report.TotalDays)
	}
	// One of two apartments occupied on that day.
	if report.Rate != 50 {
		t.Fatalf("rate = %f", report.Rate)
	}
}

func TestCurrentlyOccupiedCount(t *testing.T) {
	e := newEnv(t)
	// Two overlapping-in-time stays on distinct apartments around testNow
	// (July 15), one booking entirely in the past.
	e.create(t, CreateParams{
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-10",
		LeavingDate: "2026-07-20",
	})
	e.create(t, CreateParams{
		ApartmentID: e.aptTwo.ID,
		UserID:      e.owner.ID,
		ArrivalDate: "2026-07-14",
		LeavingDate: "2026-07-16",
	})
	e.create(t, CreateParams{
		ApartmentID: e.aptTwo.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-01",
		LeavingDate: "2026-07-05",
	})

	count, err := e.engine.CurrentlyOccupiedCount(context.Background(), 0)
	if err != nil {
		t.Fatalf("CurrentlyOccupiedCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("occupied = %d, want 2", count)
	}

	count, err = e.engine.CurrentlyOccupiedCount(context.Background(), e.village.ID+100)
	if err != nil {
		t.Fatalf("scoped count: %v", err)
	}
	if count != 0 {
		t.Fatalf("out-of-scope count = %d", count)
	}
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.create(t, CreateParams{ // current
		ApartmentID: e.apt.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-07-10",
		LeavingDate: "2026-07-20",
		Status:      "Checked In",
	})
	e.create(t, CreateParams{ // upcoming
		ApartmentID: e.apt.ID,
		UserID:      e.owner.ID,
		ArrivalDate: "2026-08-01",
		LeavingDate: "2026-08-05",
	})
	e.create(t, CreateParams{ // past, checked out
		ApartmentID: e.aptTwo.ID,
		UserID:      e.renter.ID,
		ArrivalDate: "2026-06-01",
		LeavingDate: "2026-06-05",
		Status:      "Checked Out",
	})

	stats, err := e.engine.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.ByStatus[domainbooking.StatusCheckedIn] != 1 || stats.ByStatus[domainbooking.StatusBooked] != 1 || stats.ByStatus[domainbooking.StatusCheckedOut] != 1 {
		t.Fatalf("by status = %v", stats.ByStatus)
	}
	if stats.ByUserType[domainbooking.UserTypeRenter] != 2 || stats.ByUserType[domainbooking.UserTypeOwner] != 1 {
		t.Fatalf("by user type = %v", stats.ByUserType)
	}
	if stats.Current != 1 || stats.Upcoming != 1 || stats.Past != 1 {
		t.Fatalf("current/upcoming/past = %d/%d/%d", stats.Current, stats.Upcoming, stats.Past)
	}
}
