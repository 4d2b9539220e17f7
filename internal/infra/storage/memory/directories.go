package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

type ApartmentDirectory struct {
	store *Store
}

func (d *ApartmentDirectory) ByID(ctx context.Context, id apartment.ID) (*apartment.Apartment, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	apt, ok := d.store.apartments[id]
	if !ok {
		return nil, apartment.ErrNotFound
	}
	clone := *apt
	return &clone, nil
}

func (d *ApartmentDirectory) List(ctx context.Context, villageID village.ID, phase int) ([]*apartment.Apartment, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	var matches []*apartment.Apartment
	for _, apt := range d.store.apartments {
		if villageID > 0 && apt.VillageID != villageID {
			continue
		}
		if phase > 0 && apt.Phase != phase {
			continue
		}
		clone := *apt
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

type VillageDirectory struct {
	store *Store
}

func (d *VillageDirectory) ByID(ctx context.Context, id village.ID) (*village.Village, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	v, ok := d.store.villages[id]
	if !ok {
		return nil, village.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (d *VillageDirectory) List(ctx context.Context) ([]*village.Village, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	matches := make([]*village.Village, 0, len(d.store.villages))
	for _, v := range d.store.villages {
		clone := *v
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

type UserRepository struct {
	store *Store
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	email = user.NormalizeEmail(email)
	for _, u := range r.store.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) ByNameAndRole(ctx context.Context, name string, role user.Role) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, u := range r.store.users {
		if u.Role == role && u.Name == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == u.Email && existing.ID != u.ID {
			return user.ErrEmailAlreadyUsed
		}
	}
	if u.ID == 0 {
		r.store.nextUserID++
		u.ID = user.ID(r.store.nextUserID)
	} else if int64(u.ID) > r.store.nextUserID {
		// Saving with an explicit id also advances the sequence, so a
		// generated id can never land on an occupied key.
		r.store.nextUserID = int64(u.ID)
	}
	clone := *u
	r.store.users[clone.ID] = &clone
	return nil
}

// DependencyCounter reads the pinned dependent-record counts; absent entries
// count as zero everywhere.
type DependencyCounter struct {
	store *Store
}

func (c *DependencyCounter) Counts(ctx context.Context, id domainbooking.ID) (domainbooking.DependencyCounts, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.store.dependencies[id], nil
}
