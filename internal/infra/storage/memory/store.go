package memory

import (
	"strings"
	"sync"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

// Store keeps every table of the system in process memory behind one lock,
// which also serializes the conflict-check-then-insert sequence. Used as the
// dev-mode backend and as the test double for all repository interfaces.
type Store struct {
	mu           sync.RWMutex
	bookings     map[domainbooking.ID]*domainbooking.Booking
	apartments   map[apartment.ID]*apartment.Apartment
	users        map[user.ID]*user.User
	villages     map[village.ID]*village.Village
	dependencies map[domainbooking.ID]domainbooking.DependencyCounts

	nextBookingID   int64
	nextApartmentID int64
	nextUserID      int64
	nextVillageID   int64
}

func NewStore() *Store {
	return &Store{
		bookings:     make(map[domainbooking.ID]*domainbooking.Booking),
		apartments:   make(map[apartment.ID]*apartment.Apartment),
		users:        make(map[user.ID]*user.User),
		villages:     make(map[village.ID]*village.Village),
		dependencies: make(map[domainbooking.ID]domainbooking.DependencyCounts),
	}
}

func (s *Store) Bookings() *BookingRepository     { return &BookingRepository{store: s} }
func (s *Store) Apartments() *ApartmentDirectory  { return &ApartmentDirectory{store: s} }
func (s *Store) Users() *UserRepository           { return &UserRepository{store: s} }
func (s *Store) Villages() *VillageDirectory      { return &VillageDirectory{store: s} }
func (s *Store) Dependencies() *DependencyCounter { return &DependencyCounter{store: s} }

// AddVillage seeds a village, assigning an id when absent. Explicit ids
// advance the sequence so later generated ids never collide with seeds.
func (s *Store) AddVillage(v *village.Village) *village.Village {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		s.nextVillageID++
		v.ID = village.ID(s.nextVillageID)
	} else if int64(v.ID) > s.nextVillageID {
		s.nextVillageID = int64(v.ID)
	}
	clone := *v
	s.villages[clone.ID] = &clone
	return v
}

// AddApartment seeds an apartment, assigning an id when absent.
func (s *Store) AddApartment(a *apartment.Apartment) *apartment.Apartment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextApartmentID++
		a.ID = apartment.ID(s.nextApartmentID)
	} else if int64(a.ID) > s.nextApartmentID {
		s.nextApartmentID = int64(a.ID)
	}
	clone := *a
	s.apartments[clone.ID] = &clone
	return a
}

// AddUser seeds a user, assigning an id when absent.
func (s *Store) AddUser(u *user.User) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextUserID++
		u.ID = user.ID(s.nextUserID)
	} else if int64(u.ID) > s.nextUserID {
		s.nextUserID = int64(u.ID)
	}
	clone := *u
	s.users[clone.ID] = &clone
	return u
}

// SetDependencies pins the dependent-record counts for a booking, standing in
// for the utility-reading/service-request/payment/email tables.
func (s *Store) SetDependencies(id domainbooking.ID, counts domainbooking.DependencyCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dependencies[id] = counts
}

// locked-context helpers shared by the repository views

func (s *Store) apartmentNameLocked(id apartment.ID) string {
	if apt, ok := s.apartments[id]; ok {
		return apt.Name
	}
	return ""
}

func (s *Store) userNameLocked(id user.ID) string {
	if u, ok := s.users[id]; ok {
		return u.Name
	}
	return ""
}

func (s *Store) apartmentInScopeLocked(id apartment.ID, villageID village.ID, phase int) bool {
	apt, ok := s.apartments[id]
	if !ok {
		return false
	}
	if villageID != 0 && apt.VillageID != villageID {
		return false
	}
	if phase > 0 && apt.Phase != phase {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
