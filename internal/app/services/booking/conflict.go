package booking

import (
	"context"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
)

// ConflictChecker decides whether a candidate date range may coexist with the
// apartment's existing bookings. Comparison is date-only in UTC with strict
// inequality on both ends, so one booking leaving on the day another arrives
// is fine. Cancelled bookings never block. Pure read, no side effects.
type ConflictChecker struct {
	Bookings domainbooking.Repository
}

// Check returns nil when the range is free, or a *ConflictError listing every
// overlapping active booking. Pass exclude > 0 to ignore the booking being
// updated.
func (c *ConflictChecker) Check(ctx context.Context, apartmentID apartment.ID, rng daterange.DateRange, exclude domainbooking.ID) error {
	existing, err := c.Bookings.ActiveInRange(ctx, apartmentID, rng, exclude)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	conflicts := make([]domainbooking.ConflictEntry, 0, len(existing))
	for _, b := range existing {
		conflicts = append(conflicts, domainbooking.ConflictEntry{
			ID:      b.ID,
			Arrival: b.ArrivalDate,
			Leaving: b.LeavingDate,
			Status:  b.Status,
		})
	}
	return &domainbooking.ConflictError{Conflicts: conflicts}
}
