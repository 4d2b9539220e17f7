package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
)

// EventPublisher receives booking lifecycle notifications after a successful
// write. Failures are logged, never propagated.
type EventPublisher interface {
	Publish(ctx context.Context, event string, b *domainbooking.Booking) error
}

// Service owns the booking lifecycle: validation, referential checks,
// user-type derivation, conflict checking and the post-write refresh of the
// derived occupancy view. All collaborators are injected.
type Service struct {
	Bookings     domainbooking.Repository
	Apartments   apartment.Directory
	Users        user.Repository
	Dependencies domainbooking.DependencyCounter
	Conflicts    *ConflictChecker
	Renters      *RenterResolver
	View         apartment.OccupancyView
	Events       EventPublisher
	Archiver     ExportArchiver
	Logger       *slog.Logger
	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
	// ExportLimit caps Export; zero means DefaultExportLimit.
	ExportLimit int
}

type CreateParams struct {
	ApartmentID    apartment.ID
	UserID         user.ID
	UserName       string
	UserType       string
	NumberOfPeople int
	ArrivalDate    string
	LeavingDate    string
	Status         string
	Notes          string
	PersonName     string
}

func (s *Service) Create(ctx context.Context, params CreateParams, createdBy user.ID) (*domainbooking.Booking, error) {
	if params.ApartmentID <= 0 {
		return nil, domainbooking.ErrApartmentRequired
	}
	if strings.TrimSpace(params.ArrivalDate) == "" || strings.TrimSpace(params.LeavingDate) == "" {
		return nil, domainbooking.ErrDatesRequired
	}
	hasUser := params.UserID > 0
	hasName := strings.TrimSpace(params.UserName) != ""
	if hasUser == hasName {
		return nil, domainbooking.ErrOccupantRequired
	}

	rng, err := s.parseRange(params.ArrivalDate, params.LeavingDate)
	if err != nil {
		return nil, err
	}

	apt, err := s.Apartments.ByID(ctx, params.ApartmentID)
	if err != nil {
		return nil, err
	}

	var requested domainbooking.UserType
	if params.UserType != "" {
		requested, err = domainbooking.ParseUserType(params.UserType)
		if err != nil {
			return nil, err
		}
	}

	var occupant *user.User
	personName := strings.TrimSpace(params.PersonName)
	if hasUser {
		occupant, err = s.Users.ByID(ctx, params.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		if requested == domainbooking.UserTypeOwner {
			return nil, domainbooking.ErrOwnerByNameOnly
		}
		occupant, err = s.Renters.Resolve(ctx, params.UserName)
		if err != nil {
			return nil, err
		}
		if personName == "" {
			personName = strings.TrimSpace(params.UserName)
		}
	}

	derived := deriveUserType(occupant.ID, apt.OwnerID)
	if requested != "" && requested != derived {
		return nil, &domainbooking.TypeMismatchError{Expected: derived, Provided: requested}
	}

	if err := s.Conflicts.Check(ctx, apt.ID, rng, 0); err != nil {
		return nil, err
	}

	people := params.NumberOfPeople
	if people == 0 {
		people = 1
	}
	if people < 0 {
		return nil, domainbooking.ErrInvalidPeople
	}

	status := domainbooking.StatusBooked
	if params.Status != "" {
		status, err = domainbooking.ParseStatus(params.Status)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	b := &domainbooking.Booking{
		ApartmentID:    apt.ID,
		UserID:         occupant.ID,
		UserType:       derived,
		NumberOfPeople: people,
		ArrivalDate:    rng.Start,
		LeavingDate:    rng.End,
		Status:         status,
		Notes:          strings.TrimSpace(params.Notes),
		PersonName:     personName,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Bookings.Insert(ctx, b); err != nil {
		return nil, err
	}

	created, err := s.Bookings.ByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "booking.created", created)
	return created, nil
}

type UpdateParams struct {
	ApartmentID    *apartment.ID
	UserID         *user.ID
	UserType       *string
	NumberOfPeople *int
	ArrivalDate    *string
	LeavingDate    *string
	Status         *string
	Notes          *string
	PersonName     *string
}

func (p UpdateParams) empty() bool {
	return p.ApartmentID == nil && p.UserID == nil && p.UserType == nil &&
		p.NumberOfPeople == nil && p.ArrivalDate == nil && p.LeavingDate == nil &&
		p.Status == nil && p.Notes == nil && p.PersonName == nil
}

func (s *Service) Update(ctx context.Context, id domainbooking.ID, params UpdateParams, updatedBy user.ID) (*domainbooking.Booking, error) {
	existing, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.empty() {
		return nil, domainbooking.ErrNoChanges
	}

	arrival := existing.ArrivalDate
	leaving := existing.LeavingDate
	if params.ArrivalDate != nil {
		if arrival, err = s.parseDate(*params.ArrivalDate); err != nil {
			return nil, err
		}
	}
	if params.LeavingDate != nil {
		if leaving, err = s.parseDate(*params.LeavingDate); err != nil {
			return nil, err
		}
	}
	rng, err := daterange.New(arrival, leaving)
	if err != nil {
		return nil, domainbooking.ErrDateOrder
	}

	apartmentID := existing.ApartmentID
	apartmentChanged := params.ApartmentID != nil && *params.ApartmentID != existing.ApartmentID
	if params.ApartmentID != nil {
		apartmentID = *params.ApartmentID
	}
	userID := existing.UserID
	userChanged := params.UserID != nil && *params.UserID != existing.UserID
	if params.UserID != nil {
		userID = *params.UserID
	}

	// The effective apartment is needed whenever the reference moved or the
	// caller is asserting ownership.
	var apt *apartment.Apartment
	needApartment := apartmentChanged || userChanged || params.UserType != nil
	if needApartment {
		if apt, err = s.Apartments.ByID(ctx, apartmentID); err != nil {
			return nil, err
		}
	}
	if userChanged {
		if _, err = s.Users.ByID(ctx, userID); err != nil {
			return nil, err
		}
	}

	userType := existing.UserType
	switch {
	case params.UserType != nil:
		requested, err := domainbooking.ParseUserType(*params.UserType)
		if err != nil {
			return nil, err
		}
		// Owner must actually own the effective apartment; renter is always
		// a legal occupant category, owned apartment or not.
		if requested == domainbooking.UserTypeOwner && userID != apt.OwnerID {
			return nil, &domainbooking.TypeMismatchError{
				Expected: domainbooking.UserTypeRenter,
				Provided: domainbooking.UserTypeOwner,
			}
		}
		userType = requested
	case apartmentChanged || userChanged:
		userType = deriveUserType(userID, apt.OwnerID)
	}

	datesChanged := !rng.Start.Equal(existing.ArrivalDate) || !rng.End.Equal(existing.LeavingDate)
	if apartmentChanged || datesChanged {
		if err := s.Conflicts.Check(ctx, apartmentID, rng, existing.ID); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.ApartmentID = apartmentID
	updated.UserID = userID
	updated.UserType = userType
	updated.ArrivalDate = rng.Start
	updated.LeavingDate = rng.End
	if params.NumberOfPeople != nil {
		if *params.NumberOfPeople <= 0 {
			return nil, domainbooking.ErrInvalidPeople
		}
		updated.NumberOfPeople = *params.NumberOfPeople
	}
	if params.Status != nil {
		status, err := domainbooking.ParseStatus(*params.Status)
		if err != nil {
			return nil, err
		}
		updated.Status = status
	}
	if params.Notes != nil {
		updated.Notes = strings.TrimSpace(*params.Notes)
	}
	if params.PersonName != nil {
		updated.PersonName = strings.TrimSpace(*params.PersonName)
	}
	updated.UpdatedAt = s.now()

	if err := s.Bookings.Update(ctx, &updated); err != nil {
		return nil, err
	}
	reloaded, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "booking.updated", reloaded)
	return reloaded, nil
}

func (s *Service) Delete(ctx context.Context, id domainbooking.ID) error {
	existing, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	counts, err := s.Dependencies.Counts(ctx, id)
	if err != nil {
		return err
	}
	if counts.Total() > 0 {
		return &domainbooking.DependencyError{Counts: counts}
	}
	if err := s.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "booking.deleted", existing)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	return s.Bookings.ByID(ctx, id)
}

func (s *Service) GetByApartment(ctx context.Context, id apartment.ID) ([]*domainbooking.Booking, error) {
	return s.Bookings.ByApartment(ctx, id)
}

func (s *Service) GetByUser(ctx context.Context, id user.ID) ([]*domainbooking.Booking, error) {
	return s.Bookings.ByUser(ctx, id)
}

// GetCurrentForApartment answers "who is here right now": the booking whose
// date range contains today with status other than Checked Out. This is a
// point-in-time query; the stored status is deliberately not consulted
// beyond excluding departed guests.
func (s *Service) GetCurrentForApartment(ctx context.Context, id apartment.ID) (*domainbooking.Booking, error) {
	return s.Bookings.CurrentForApartment(ctx, id, s.now())
}

// CheckIn moves a Booked booking to Checked In.
func (s *Service) CheckIn(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, domainbooking.StatusBooked, domainbooking.StatusCheckedIn)
}

// CheckOut moves a Checked In booking to Checked Out.
func (s *Service) CheckOut(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	return s.transition(ctx, id, domainbooking.StatusCheckedIn, domainbooking.StatusCheckedOut)
}

func (s *Service) transition(ctx context.Context, id domainbooking.ID, from, to domainbooking.Status) (*domainbooking.Booking, error) {
	existing, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != from {
		return nil, fmt.Errorf("%w: %s to %s", domainbooking.ErrInvalidTransition, existing.Status, to)
	}
	updated := *existing
	updated.Status = to
	updated.UpdatedAt = s.now()
	if err := s.Bookings.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "booking.updated", &updated)
	return &updated, nil
}

// afterWrite publishes the lifecycle event and refreshes the derived
// occupancy view. Both are best-effort: the write already committed and a
// stale view beats a rolled-back booking.
func (s *Service) afterWrite(ctx context.Context, event string, b *domainbooking.Booking) {
	if s.Events != nil {
		if err := s.Events.Publish(ctx, event, b); err != nil {
			s.log().Warn("booking event publish failed", "event", event, "booking_id", b.ID, "error", err)
		}
	}
	if s.View != nil {
		if err := s.View.Refresh(ctx); err != nil {
			s.log().Warn("occupancy view refresh failed", "booking_id", b.ID, "error", err)
		}
	}
}

func (s *Service) parseRange(arrivalRaw, leavingRaw string) (daterange.DateRange, error) {
	arrival, err := s.parseDate(arrivalRaw)
	if err != nil {
		return daterange.DateRange{}, err
	}
	leaving, err := s.parseDate(leavingRaw)
	if err != nil {
		return daterange.DateRange{}, err
	}
	rng, err := daterange.New(arrival, leaving)
	if err != nil {
		return daterange.DateRange{}, domainbooking.ErrDateOrder
	}
	return rng, nil
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	t, err := daterange.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domainbooking.ErrInvalidDate, raw)
	}
	return t, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func deriveUserType(userID, ownerID user.ID) domainbooking.UserType {
	if ownerID != 0 && userID == ownerID {
		return domainbooking.UserTypeOwner
	}
	return domainbooking.UserTypeRenter
}
