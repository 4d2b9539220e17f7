package dto

import (
	"time"

	bookingapp "github.com/Apolo151/tourist-village-app-sub004/internal/app/services/booking"
)

type ApartmentOccupancy struct {
	ApartmentID   int64   `json:"apartment_id"`
	ApartmentName string  `json:"apartment_name"`
	VillageName   string  `json:"village_name"`
	BookedDays    int     `json:"booked_days"`
	TotalDays     int     `json:"total_days"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyReport struct {
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date"`
	TotalApartments int                  `json:"total_apartments"`
	TotalDays       int                  `json:"total_days"`
	BookedDays      int                  `json:"booked_days"`
	OccupancyRate   float64              `json:"occupancy_rate"`
	ByApartment     []ApartmentOccupancy `json:"by_apartment"`
}

func MapOccupancyReport(report *bookingapp.OccupancyReport) OccupancyReport {
	out := OccupancyReport{
		StartDate:       report.StartDate,
		EndDate:         report.EndDate,
		TotalApartments: report.TotalApartments,
		TotalDays:       report.TotalDays,
		BookedDays:      report.BookedDays,
		OccupancyRate:   report.Rate,
		ByApartment:     make([]ApartmentOccupancy, 0, len(report.ByApartment)),
	}
	for _, entry := range report.ByApartment {
		out.ByApartment = append(out.ByApartment, ApartmentOccupancy{
			ApartmentID:   int64(entry.ApartmentID),
			ApartmentName: entry.ApartmentName,
			VillageName:   entry.VillageName,
			BookedDays:    entry.BookedDays,
			TotalDays:     entry.TotalDays,
			OccupancyRate: entry.Rate,
		})
	}
	return out
}
