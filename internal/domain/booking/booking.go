package booking

import (
	"context"
	"strings"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

type ID int64

// Status is stored, not derived from the clock. Transitions happen through
// explicit operations (check-in, check-out, cancel via update); a booking in
// the past stays Booked until someone moves it.
type Status string

const (
	StatusBooked     Status = "Booked"
	StatusCheckedIn  Status = "Checked In"
	StatusCheckedOut Status = "Checked Out"
	StatusCancelled  Status = "Cancelled"
)

func ParseStatus(value string) (Status, error) {
	switch Status(strings.TrimSpace(value)) {
	case StatusBooked:
		return StatusBooked, nil
	case StatusCheckedIn:
		return StatusCheckedIn, nil
	case StatusCheckedOut:
		return StatusCheckedOut, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

// UserType classifies the occupant of this booking, not the user's account
// role: the same user is an owner on apartments they own and a renter
// everywhere else.
type UserType string

const (
	UserTypeOwner  UserType = "owner"
	UserTypeRenter UserType = "renter"
)

func ParseUserType(value string) (UserType, error) {
	switch UserType(strings.TrimSpace(value)) {
	case UserTypeOwner:
		return UserTypeOwner, nil
	case UserTypeRenter:
		return UserTypeRenter, nil
	}
	return "", ErrInvalidUserType
}

type Booking struct {
	ID             ID
	ApartmentID    apartment.ID
	UserID         user.ID
	UserType       UserType
	NumberOfPeople int
	ArrivalDate    time.Time // midnight UTC calendar date
	LeavingDate    time.Time // midnight UTC calendar date
	Status         Status
	Notes          string
	PersonName     string
	CreatedBy      user.ID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (b *Booking) Range() daterange.DateRange {
	return daterange.DateRange{Start: b.ArrivalDate, End: b.LeavingDate}
}

// Active reports whether the booking participates in conflict checking.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

// Occupying reports whether the booking counts toward occupancy figures.
func (b *Booking) Occupying() bool {
	return b.Status == StatusBooked || b.Status == StatusCheckedIn
}

// Filter is the shared vocabulary of the listing and export paths. Zero
// values mean "not filtered". Phase is only honored together with VillageID.
type Filter struct {
	ApartmentID apartment.ID
	UserID      user.ID
	UserType    UserType
	VillageID   village.ID
	Phase       int
	Status      Status
	ArrivalFrom time.Time
	ArrivalTo   time.Time
	LeavingFrom time.Time
	LeavingTo   time.Time
	// Search matches case-insensitive substrings of the occupant name,
	// person name, apartment name and notes.
	Search string
}

// ListQuery is a normalized filter plus deterministic ordering and paging,
// produced by the query layer. Limit zero disables pagination (export path).
type ListQuery struct {
	Filter   Filter
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// Stats are plain aggregate counts over stored bookings; no interval math.
type Stats struct {
	Total      int64
	ByStatus   map[Status]int64
	ByUserType map[UserType]int64
	Current    int64
	Upcoming   int64
	Past       int64
}

// DependencyCounts tallies records in other subsystems that reference a
// booking and therefore block its deletion.
type DependencyCounts struct {
	UtilityReadings int64
	ServiceRequests int64
	Payments        int64
	Emails          int64
}

func (d DependencyCounts) Total() int64 {
	return d.UtilityReadings + d.ServiceRequests + d.Payments + d.Emails
}

// Blocking names the categories with at least one referencing record.
func (d DependencyCounts) Blocking() []string {
	var out []string
	if d.UtilityReadings > 0 {
		out = append(out, "utility readings")
	}
	if d.ServiceRequests > 0 {
		out = append(out, "service requests")
	}
	if d.Payments > 0 {
		out = append(out, "payments")
	}
	if d.Emails > 0 {
		out = append(out, "emails")
	}
	return out
}

type DependencyCounter interface {
	Counts(ctx context.Context, id ID) (DependencyCounts, error)
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	ByApartment(ctx context.Context, apartmentID apartment.ID) ([]*Booking, error)
	ByUser(ctx context.Context, userID user.ID) ([]*Booking, error)

	// ActiveInRange returns non-cancelled bookings for the apartment whose
	// date range overlaps rng under exclusive-end semantics, skipping the
	// excluded id when exclude > 0. Ordered by arrival date.
	ActiveInRange(ctx context.Context, apartmentID apartment.ID, rng daterange.DateRange, exclude ID) ([]*Booking, error)

	// CurrentForApartment returns the booking whose inclusive date range
	// contains now (as a calendar date) with status other than Checked Out,
	// preferring the most recent arrival. ErrNotFound when nobody is there.
	CurrentForApartment(ctx context.Context, apartmentID apartment.ID, now time.Time) (*Booking, error)

	// OccupyingInWindow returns Booked/Checked In bookings overlapping the
	// window (inclusive on both ends), optionally scoped to a village.
	OccupyingInWindow(ctx context.Context, window daterange.DateRange, villageID village.ID) ([]*Booking, error)

	// List applies the query and returns one page plus the total count of the
	// full filtered set. The count is computed from the same predicates as
	// the page so the two can never drift apart.
	List(ctx context.Context, q ListQuery) ([]*Booking, int64, error)

	Stats(ctx context.Context, now time.Time) (Stats, error)

	// Insert assigns a fresh ID to the booking.
	Insert(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id ID) error
}
