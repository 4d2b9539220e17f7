package apartment

import (
	"context"
	"errors"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

var ErrNotFound = errors.New("apartment: not found")

type ID int64

type PayingStatus string

const (
	PayingTransferred PayingStatus = "transferred"
	PayingRent        PayingStatus = "rent"
	PayingNonPayer    PayingStatus = "non-payer"
)

const (
	SalesForSale   = "for sale"
	SalesNotListed = "not for sale"
)

// Apartment is the bookable inventory unit. Ownership drives the derived
// user type on bookings; village and phase drive scoping filters.
type Apartment struct {
	ID           ID
	Name         string
	VillageID    village.ID
	Phase        int
	OwnerID      user.ID
	PayingStatus PayingStatus
	SalesStatus  string
}

type Directory interface {
	ByID(ctx context.Context, id ID) (*Apartment, error)
	// List returns apartments, optionally scoped to a village (villageID > 0)
	// and a phase within that village (phase > 0).
	List(ctx context.Context, villageID village.ID, phase int) ([]*Apartment, error)
}

// OccupancyView is the derived "who is where right now" cache kept outside
// the booking store. Refresh is invoked after every booking write and is
// best-effort: a failed refresh never undoes the write.
type OccupancyView interface {
	Refresh(ctx context.Context) error
}

// MultiView fans a refresh out to several views, returning the first error
// after all have been attempted.
type MultiView []OccupancyView

func (m MultiView) Refresh(ctx context.Context) error {
	var first error
	for _, v := range m {
		if err := v.Refresh(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
