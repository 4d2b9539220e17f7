package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// BookingRepository is the in-memory implementation of the booking store.
// Returned bookings are copies; callers never share memory with the store.
type BookingRepository struct {
	store *Store
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BookingRepository) ByApartment(ctx context.Context, apartmentID apartment.ID) ([]*domainbooking.Booking, error) {
	return r.collect(func(b *domainbooking.Booking) bool {
		return b.ApartmentID == apartmentID
	}, byArrivalDesc)
}

func (r *BookingRepository) ByUser(ctx context.Context, userID user.ID) ([]*domainbooking.Booking, error) {
	return r.collect(func(b *domainbooking.Booking) bool {
		return b.UserID == userID
	}, byArrivalDesc)
}

func (r *BookingRepository) ActiveInRange(ctx context.Context, apartmentID apartment.ID, rng daterange.DateRange, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	return r.collect(func(b *domainbooking.Booking) bool {
		if b.ApartmentID != apartmentID || !b.Active() {
			return false
		}
		if exclude > 0 && b.ID == exclude {
			return false
		}
		return b.Range().Overlaps(rng)
	}, byArrivalAsc)
}

func (r *BookingRepository) CurrentForApartment(ctx context.Context, apartmentID apartment.ID, now time.Time) (*domainbooking.Booking, error) {
	matches, err := r.collect(func(b *domainbooking.Booking) bool {
		if b.ApartmentID != apartmentID || b.Status == domainbooking.StatusCheckedOut {
			return false
		}
		return b.Range().Contains(now)
	}, byArrivalDesc)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domainbooking.ErrNotFound
	}
	return matches[0], nil
}

func (r *BookingRepository) OccupyingInWindow(ctx context.Context, window daterange.DateRange, villageID village.ID) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var matches []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if !b.Occupying() {
			continue
		}
		// Inclusive on both ends: a booking leaving on the window's first
		// day still counts that day.
		if b.ArrivalDate.After(window.End) || b.LeavingDate.Before(window.Start) {
			continue
		}
		if villageID > 0 && !r.store.apartmentInScopeLocked(b.ApartmentID, villageID, 0) {
			continue
		}
		clone := *b
		matches = append(matches, &clone)
	}
	byArrivalAsc(matches)
	return matches, nil
}

func (r *BookingRepository) List(ctx context.Context, q domainbooking.ListQuery) ([]*domainbooking.Booking, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matches []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if r.matchesLocked(b, q.Filter) {
			clone := *b
			matches = append(matches, &clone)
		}
	}
	total := int64(len(matches))

	r.sortLocked(matches, q.SortBy, q.SortDesc)

	start := q.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matches[start:end], total, nil
}

func (r *BookingRepository) Stats(ctx context.Context, now time.Time) (domainbooking.Stats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats := domainbooking.Stats{
		ByStatus:   make(map[domainbooking.Status]int64),
		ByUserType: make(map[domainbooking.UserType]int64),
	}
	today := daterange.Normalize(now)
	for _, b := range r.store.bookings {
		stats.Total++
		stats.ByStatus[b.Status]++
		stats.ByUserType[b.UserType]++
		switch b.Status {
		case domainbooking.StatusCheckedIn:
			stats.Current++
		case domainbooking.StatusCheckedOut:
			stats.Past++
		case domainbooking.StatusBooked:
			if b.ArrivalDate.After(today) {
				stats.Upcoming++
			}
		}
	}
	return stats, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextBookingID++
	b.ID = domainbooking.ID(r.store.nextBookingID)
	clone := *b
	r.store.bookings[clone.ID] = &clone
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domainbooking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[b.ID]; !ok {
		return domainbooking.ErrNotFound
	}
	clone := *b
	r.store.bookings[clone.ID] = &clone
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.store.bookings, id)
	return nil
}

func (r *BookingRepository) matchesLocked(b *domainbooking.Booking, f domainbooking.Filter) bool {
	if f.ApartmentID > 0 && b.ApartmentID != f.ApartmentID {
		return false
	}
	if f.UserID > 0 && b.UserID != f.UserID {
		return false
	}
	if f.UserType != "" && b.UserType != f.UserType {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	// A negative village scope is a contradiction marker and matches nothing.
	if f.VillageID != 0 && !r.store.apartmentInScopeLocked(b.ApartmentID, f.VillageID, f.Phase) {
		return false
	}
	if !f.ArrivalFrom.IsZero() && b.ArrivalDate.Before(f.ArrivalFrom) {
		return false
	}
	if !f.ArrivalTo.IsZero() && b.ArrivalDate.After(f.ArrivalTo) {
		return false
	}
	if !f.LeavingFrom.IsZero() && b.LeavingDate.Before(f.LeavingFrom) {
		return false
	}
	if !f.LeavingTo.IsZero() && b.LeavingDate.After(f.LeavingTo) {
		return false
	}
	if f.Search != "" {
		if !containsFold(r.store.userNameLocked(b.UserID), f.Search) &&
			!containsFold(b.PersonName, f.Search) &&
			!containsFold(r.store.apartmentNameLocked(b.ApartmentID), f.Search) &&
			!containsFold(b.Notes, f.Search) {
			return false
		}
	}
	return true
}

func (r *BookingRepository) sortLocked(items []*domainbooking.Booking, field string, desc bool) {
	less := func(a, b *domainbooking.Booking) bool {
		switch field {
		case "arrival_date":
			return a.ArrivalDate.Before(b.ArrivalDate)
		case "leaving_date":
			return a.LeavingDate.Before(b.LeavingDate)
		case "status":
			return a.Status < b.Status
		case "user_type":
			return a.UserType < b.UserType
		case "apartment_name":
			return r.store.apartmentNameLocked(a.ApartmentID) < r.store.apartmentNameLocked(b.ApartmentID)
		case "user_name":
			return r.store.userNameLocked(a.UserID) < r.store.userNameLocked(b.UserID)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	// Pre-order by id so ties stay deterministic under the stable sort.
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (r *BookingRepository) collect(match func(*domainbooking.Booking) bool, order func([]*domainbooking.Booking)) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var matches []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if match(b) {
			clone := *b
			matches = append(matches, &clone)
		}
	}
	order(matches)
	return matches, nil
}

func byArrivalAsc(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ArrivalDate.Equal(items[j].ArrivalDate) {
			return items[i].ID < items[j].ID
		}
		return items[i].ArrivalDate.Before(items[j].ArrivalDate)
	})
}

func byArrivalDesc(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ArrivalDate.Equal(items[j].ArrivalDate) {
			return items[i].ID > items[j].ID
		}
		return items[i].ArrivalDate.After(items[j].ArrivalDate)
	})
}
