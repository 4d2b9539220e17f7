package dto

import (
	"context"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// Assembler joins booking rows with their apartment, occupant and village
// records. Missing references degrade to empty snapshots rather than failing
// the response.
type Assembler struct {
	Apartments apartment.Directory
	Users      user.Repository
	Villages   village.Directory
}

func (a Assembler) Booking(ctx context.Context, b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:             int64(b.ID),
		UserType:       string(b.UserType),
		NumberOfPeople: b.NumberOfPeople,
		ArrivalDate:    b.ArrivalDate,
		LeavingDate:    b.LeavingDate,
		Status:         string(b.Status),
		Notes:          b.Notes,
		PersonName:     b.PersonName,
		CreatedBy:      int64(b.CreatedBy),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	view.Apartment = ApartmentSnapshot{ID: int64(b.ApartmentID)}
	if apt, err := a.Apartments.ByID(ctx, b.ApartmentID); err == nil {
		view.Apartment.Name = apt.Name
		view.Apartment.VillageID = int64(apt.VillageID)
		view.Apartment.Phase = apt.Phase
		if v, err := a.Villages.ByID(ctx, apt.VillageID); err == nil {
			view.Apartment.VillageName = v.Name
		}
	}
	view.User = UserSnapshot{ID: int64(b.UserID)}
	if u, err := a.Users.ByID(ctx, b.UserID); err == nil {
		view.User.Name = u.Name
		view.User.Email = u.Email
		view.User.Role = string(u.Role)
	}
	return view
}

func (a Assembler) Bookings(ctx context.Context, items []*domainbooking.Booking) []BookingView {
	views := make([]BookingView, 0, len(items))
	for _, b := range items {
		views = append(views, a.Booking(ctx, b))
	}
	return views
}
