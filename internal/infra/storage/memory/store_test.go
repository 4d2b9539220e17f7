package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedBooking(t *testing.T, s *Store, aptID apartment.ID, status domainbooking.Status, arrival, leaving time.Time) *domainbooking.Booking {
	t.Helper()
	b := &domainbooking.Booking{
		ApartmentID:    aptID,
		UserID:         1,
		UserType:       domainbooking.UserTypeRenter,
		NumberOfPeople: 1,
		ArrivalDate:    arrival,
		LeavingDate:    leaving,
		Status:         status,
		CreatedAt:      arrival,
		UpdatedAt:      arrival,
	}
	if err := s.Bookings().Insert(context.Background(), b); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return b
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	s := NewStore()
	first := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 1), date(2026, 7, 2))
	second := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 3), date(2026, 7, 4))
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d", first.ID, second.ID)
	}
}

func TestGeneratedIDsSkipSeededRows(t *testing.T) {
	s := NewStore()
	owner := s.AddUser(&user.User{ID: 7, Name: "Seeded Owner", Email: "owner@example.com", Role: user.RoleOwner})

	walkIn := &user.User{Name: "Walk In", Email: "walkin@example.com", Role: user.RoleRenter}
	if err := s.Users().Save(context.Background(), walkIn); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if walkIn.ID <= owner.ID {
		t.Fatalf("generated id %d must be past seeded id %d", walkIn.ID, owner.ID)
	}
	kept, err := s.Users().ByID(context.Background(), owner.ID)
	if err != nil || kept.Name != "Seeded Owner" {
		t.Fatalf("seeded user clobbered: %v, %v", kept, err)
	}

	// Saving with an explicit id advances the sequence the same way.
	if err := s.Users().Save(context.Background(), &user.User{ID: 20, Name: "Imported", Email: "imported@example.com", Role: user.RoleRenter}); err != nil {
		t.Fatalf("Save explicit: %v", err)
	}
	next := &user.User{Name: "After Import", Email: "after@example.com", Role: user.RoleRenter}
	if err := s.Users().Save(context.Background(), next); err != nil {
		t.Fatalf("Save after import: %v", err)
	}
	if next.ID != 21 {
		t.Fatalf("next generated id = %d, want 21", next.ID)
	}

	s.AddVillage(&village.Village{ID: 3, Name: "Seeded"})
	if v := s.AddVillage(&village.Village{Name: "Generated"}); v.ID != 4 {
		t.Fatalf("village id = %d, want 4", v.ID)
	}
	s.AddApartment(&apartment.Apartment{ID: 5, Name: "S-5", VillageID: 3, Phase: 1})
	if a := s.AddApartment(&apartment.Apartment{Name: "G-6", VillageID: 3, Phase: 1}); a.ID != 6 {
		t.Fatalf("apartment id = %d, want 6", a.ID)
	}
}

func TestByIDClonesRows(t *testing.T) {
	s := NewStore()
	b := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 1), date(2026, 7, 5))

	got, err := s.Bookings().ByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	got.Notes = "mutated by caller"

	again, _ := s.Bookings().ByID(context.Background(), b.ID)
	if again.Notes != "" {
		t.Fatal("stored row must not share memory with returned copies")
	}

	if _, err := s.Bookings().ByID(context.Background(), 99); !errors.Is(err, domainbooking.ErrNotFound) {
		t.Fatalf("missing id: %v", err)
	}
}

func TestActiveInRange(t *testing.T) {
	s := NewStore()
	overlapping := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 10), date(2026, 7, 20))
	seedBooking(t, s, 1, domainbooking.StatusCancelled, date(2026, 7, 12), date(2026, 7, 18))
	seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 20), date(2026, 7, 25)) // back-to-back
	seedBooking(t, s, 2, domainbooking.StatusBooked, date(2026, 7, 10), date(2026, 7, 20)) // other apartment

	rng, _ := daterange.New(date(2026, 7, 15), date(2026, 7, 21))
	got, err := s.Bookings().ActiveInRange(context.Background(), 1, rng, 0)
	if err != nil {
		t.Fatalf("ActiveInRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].ID != overlapping.ID {
		t.Fatalf("ordering: first match = %d", got[0].ID)
	}

	// Excluding the booking under edit removes it from its own way.
	got, err = s.Bookings().ActiveInRange(context.Background(), 1, rng, overlapping.ID)
	if err != nil {
		t.Fatalf("ActiveInRange with exclude: %v", err)
	}
	if len(got) != 1 || got[0].ID == overlapping.ID {
		t.Fatalf("exclusion failed: %v", got)
	}
}

func TestOccupyingInWindowInclusiveBounds(t *testing.T) {
	s := NewStore()
	s.AddVillage(&village.Village{ID: 1, Name: "North"})
	s.AddApartment(&apartment.Apartment{ID: 1, Name: "A-1", VillageID: 1, Phase: 1})
	s.AddApartment(&apartment.Apartment{ID: 2, Name: "A-2", VillageID: 2, Phase: 1})

	// Leaves on the window's first day and arrives on its last day: both
	// still occupy one day of the window.
	leavesOnStart := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 1), date(2026, 7, 10))
	arrivesOnEnd := seedBooking(t, s, 1, domainbooking.StatusCheckedIn, date(2026, 7, 20), date(2026, 7, 25))
	seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 6, 1), date(2026, 6, 5)) // entirely before the window
	seedBooking(t, s, 1, domainbooking.StatusCancelled, date(2026, 7, 12), date(2026, 7, 15))
	other := seedBooking(t, s, 2, domainbooking.StatusBooked, date(2026, 7, 12), date(2026, 7, 15))

	window, _ := daterange.NewWindow(date(2026, 7, 10), date(2026, 7, 20))
	got, err := s.Bookings().OccupyingInWindow(context.Background(), window, 0)
	if err != nil {
		t.Fatalf("OccupyingInWindow: %v", err)
	}
	ids := map[domainbooking.ID]bool{}
	for _, b := range got {
		ids[b.ID] = true
	}
	if len(got) != 3 || !ids[leavesOnStart.ID] || !ids[arrivesOnEnd.ID] || !ids[other.ID] {
		t.Fatalf("window matches = %v", ids)
	}

	scoped, err := s.Bookings().OccupyingInWindow(context.Background(), window, 1)
	if err != nil {
		t.Fatalf("scoped: %v", err)
	}
	for _, b := range scoped {
		if b.ApartmentID != 1 {
			t.Fatalf("village scope leaked apartment %d", b.ApartmentID)
		}
	}
}

func TestListDenormalizedSort(t *testing.T) {
	s := NewStore()
	s.AddApartment(&apartment.Apartment{ID: 1, Name: "Zebra", VillageID: 1, Phase: 1})
	s.AddApartment(&apartment.Apartment{ID: 2, Name: "Acacia", VillageID: 1, Phase: 1})
	onZebra := seedBooking(t, s, 1, domainbooking.StatusBooked, date(2026, 7, 1), date(2026, 7, 3))
	onAcacia := seedBooking(t, s, 2, domainbooking.StatusBooked, date(2026, 7, 1), date(2026, 7, 3))

	items, total, err := s.Bookings().List(context.Background(), domainbooking.ListQuery{
		SortBy: "apartment_name",
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d", total)
	}
	if items[0].ID != onAcacia.ID || items[1].ID != onZebra.ID {
		t.Fatal("apartment_name sort should resolve through the directory")
	}
}

func TestUserRepositoryEmailUniqueness(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first := &user.User{Name: "A", Email: "dup@example.com", Role: user.RoleRenter, PasswordHash: "x"}
	if err := s.Users().Save(ctx, first); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Save must assign an id")
	}

	second := &user.User{Name: "B", Email: "dup@example.com", Role: user.RoleRenter, PasswordHash: "x"}
	if err := s.Users().Save(ctx, second); !errors.Is(err, user.ErrEmailAlreadyUsed) {
		t.Fatalf("duplicate email: %v", err)
	}

	// Updating the same record keeps its own email without tripping the check.
	first.Name = "A2"
	if err := s.Users().Save(ctx, first); err != nil {
		t.Fatalf("update Save: %v", err)
	}
}

func TestByNameAndRole(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.AddUser(&user.User{Name: "Same Name", Email: "owner@example.com", Role: user.RoleOwner})
	renter := s.AddUser(&user.User{Name: "Same Name", Email: "renter@example.com", Role: user.RoleRenter})

	got, err := s.Users().ByNameAndRole(ctx, "Same Name", user.RoleRenter)
	if err != nil {
		t.Fatalf("ByNameAndRole: %v", err)
	}
	if got.ID != renter.ID {
		t.Fatalf("matched id %d, want %d", got.ID, renter.ID)
	}
	if _, err := s.Users().ByNameAndRole(ctx, "Nobody", user.RoleRenter); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("missing name: %v", err)
	}
}

func TestApartmentDirectoryList(t *testing.T) {
	s := NewStore()
	s.AddApartment(&apartment.Apartment{Name: "A", VillageID: 1, Phase: 1})
	s.AddApartment(&apartment.Apartment{Name: "B", VillageID: 1, Phase: 2})
	s.AddApartment(&apartment.Apartment{Name: "C", VillageID: 2, Phase: 1})

	all, err := s.Apartments().List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}

	scoped, err := s.Apartments().List(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("scoped List: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "B" {
		t.Fatalf("scoped = %v", scoped)
	}
}

func TestDependencyCounter(t *testing.T) {
	s := NewStore()
	s.SetDependencies(5, domainbooking.DependencyCounts{ServiceRequests: 3})

	counts, err := s.Dependencies().Counts(context.Background(), 5)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.ServiceRequests != 3 || counts.Total() != 3 {
		t.Fatalf("counts = %+v", counts)
	}

	empty, err := s.Dependencies().Counts(context.Background(), 99)
	if err != nil {
		t.Fatalf("empty Counts: %v", err)
	}
	if empty.Total() != 0 {
		t.Fatalf("unseeded booking has counts %+v", empty)
	}
}
