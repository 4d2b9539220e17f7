package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// OccupancyEngine computes utilization over date ranges for the apartment
// inventory. Overlapping bookings on the same apartment are merged before
// counting so a day is never billed twice.
type OccupancyEngine struct {
	Bookings   domainbooking.Repository
	Apartments apartment.Directory
	Villages   village.Directory
	Logger     *slog.Logger
	Clock      func() time.Time
}

type ApartmentOccupancy struct {
	ApartmentID   apartment.ID
	ApartmentName string
	VillageName   string
	BookedDays    int
	TotalDays     int
	Rate          float64
}

type OccupancyReport struct {
	StartDate       time.Time
	EndDate         time.Time
	TotalApartments int
	TotalDays       int
	BookedDays      int
	Rate            float64
	ByApartment     []ApartmentOccupancy
}

// Rate computes per-apartment and aggregate occupancy over the inclusive
// period, optionally scoped to a village. Day counts are inclusive on both
// ends; rates are percentages in [0, 100].
func (e *OccupancyEngine) Rate(ctx context.Context, start, end time.Time, villageID village.ID) (*OccupancyReport, error) {
	window, err := daterange.NewWindow(start, end)
	if err != nil {
		return nil, domainbooking.ErrDateOrder
	}
	totalDays := window.Days()

	apartments, err := e.Apartments.List(ctx, villageID, 0)
	if err != nil {
		return nil, err
	}
	report := &OccupancyReport{
		StartDate:   window.Start,
		EndDate:     window.End,
		TotalDays:   totalDays,
		ByApartment: []ApartmentOccupancy{},
	}
	if len(apartments) == 0 {
		// Zero population short-circuits before any division.
		return report, nil
	}
	report.TotalApartments = len(apartments)

	occupying, err := e.Bookings.OccupyingInWindow(ctx, window, villageID)
	if err != nil {
		return nil, err
	}
	byApartment := make(map[apartment.ID][]daterange.DateRange, len(apartments))
	for _, b := range occupying {
		clipped, ok := b.Range().Clip(window)
		if !ok {
			continue
		}
		byApartment[b.ApartmentID] = append(byApartment[b.ApartmentID], clipped)
	}

	villageNames := e.villageNames(ctx, apartments)
	totalBooked := 0
	for _, apt := range apartments {
		booked := 0
		for _, rng := range daterange.Merge(byApartment[apt.ID]) {
			booked += rng.Days()
		}
		totalBooked += booked
		report.ByApartment = append(report.ByApartment, ApartmentOccupancy{
			ApartmentID:   apt.ID,
			ApartmentName: apt.Name,
			VillageName:   villageNames[apt.VillageID],
			BookedDays:    booked,
			TotalDays:     totalDays,
			Rate:          percentage(booked, totalDays),
		})
	}
	report.BookedDays = totalBooked
	report.Rate = percentage(totalBooked, len(apartments)*totalDays)
	return report, nil
}

// CurrentlyOccupiedCount counts distinct apartments with a Booked or Checked
// In booking covering today, optionally scoped to a village.
func (e *OccupancyEngine) CurrentlyOccupiedCount(ctx context.Context, villageID village.ID) (int, error) {
	today := daterange.Normalize(e.now())
	window := daterange.DateRange{Start: today, End: today}
	occupying, err := e.Bookings.OccupyingInWindow(ctx, window, villageID)
	if err != nil {
		return 0, err
	}
	seen := make(map[apartment.ID]struct{})
	for _, b := range occupying {
		seen[b.ApartmentID] = struct{}{}
	}
	return len(seen), nil
}

// Stats returns aggregate booking counts by status and user type.
func (e *OccupancyEngine) Stats(ctx context.Context) (domainbooking.Stats, error) {
	return e.Bookings.Stats(ctx, e.now())
}

func (e *OccupancyEngine) villageNames(ctx context.Context, apartments []*apartment.Apartment) map[village.ID]string {
	names := make(map[village.ID]string)
	for _, apt := range apartments {
		if _, ok := names[apt.VillageID]; ok {
			continue
		}
		v, err := e.Villages.ByID(ctx, apt.VillageID)
		if err != nil {
			e.log().Warn("village lookup failed", "village_id", apt.VillageID, "error", err)
			names[apt.VillageID] = ""
			continue
		}
		names[apt.VillageID] = v.Name
	}
	return names
}

func (e *OccupancyEngine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *OccupancyEngine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
