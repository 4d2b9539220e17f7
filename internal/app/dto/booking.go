package dto

import (
	"time"

	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
)

type ApartmentSnapshot struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	VillageID   int64  `json:"village_id"`
	VillageName string `json:"village_name"`
	Phase       int    `json:"phase"`
}

type UserSnapshot struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BookingView is the joined response shape: the booking row plus snapshots
// of the apartment (with village) and the occupant.
type BookingView struct {
	ID             int64             `json:"id"`
	Apartment      ApartmentSnapshot `json:"apartment"`
	User           UserSnapshot      `json:"user"`
	UserType       string            `json:"user_type"`
	NumberOfPeople int               `json:"number_of_people"`
	ArrivalDate    time.Time         `json:"arrival_date"`
	LeavingDate    time.Time         `json:"leaving_date"`
	Status         string            `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	PersonName     string            `json:"person_name,omitempty"`
	CreatedBy      int64             `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type BookingPage struct {
	Bookings   []BookingView `json:"bookings"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type BookingStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByUserType map[string]int64 `json:"by_user_type"`
	Current    int64            `json:"current"`
	Upcoming   int64            `json:"upcoming"`
	Past       int64            `json:"past"`
}

func MapStats(stats domainbooking.Stats) BookingStats {
	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	byUserType := make(map[string]int64, len(stats.ByUserType))
	for ut, n := range stats.ByUserType {
		byUserType[string(ut)] = n
	}
	return BookingStats{
		Total:      stats.Total,
		ByStatus:   byStatus,
		ByUserType: byUserType,
		Current:    stats.Current,
		Upcoming:   stats.Upcoming,
		Past:       stats.Past,
	}
}
