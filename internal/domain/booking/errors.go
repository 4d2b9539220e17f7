package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrApartmentRequired = errors.New("booking: apartment id is required")
	ErrDatesRequired     = errors.New("booking: arrival and leaving dates are required")
	ErrOccupantRequired  = errors.New("booking: exactly one of user id or user name must identify the occupant")
	ErrInvalidDate       = errors.New("booking: invalid date")
	ErrDateOrder         = errors.New("booking: arrival date must be strictly before leaving date")
	ErrInvalidStatus     = errors.New("booking: invalid status")
	ErrInvalidUserType   = errors.New("booking: invalid user type")
	ErrInvalidPeople     = errors.New("booking: number of people must be positive")
	ErrNoChanges         = errors.New("booking: no changes to apply")
	ErrOwnerByNameOnly   = errors.New("booking: owner bookings require an existing user, not a free-text name")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrConflict          = errors.New("booking: date range conflicts with an existing booking")
	ErrHasDependencies   = errors.New("booking: referenced by dependent records")
	ErrTypeMismatch      = errors.New("booking: user type does not match apartment ownership")
	ErrInvalidPage       = errors.New("booking: page must be at least 1")
	ErrInvalidLimit      = errors.New("booking: limit must be between 1 and 100")
	ErrExportLimit       = errors.New("booking: export exceeds the maximum exportable rows")
)

// ConflictEntry describes one existing booking blocking a candidate range.
type ConflictEntry struct {
	ID      ID
	Arrival time.Time
	Leaving time.Time
	Status  Status
}

// ConflictError reports every overlapping active booking so the caller can
// resolve the clash without a follow-up query.
type ConflictError struct {
	Conflicts []ConflictEntry
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("booking %d (%s to %s, %s)",
			c.ID, c.Arrival.Format("2006-01-02"), c.Leaving.Format("2006-01-02"), c.Status))
	}
	return fmt.Sprintf("booking dates conflict with: %s; back-to-back bookings are allowed (a booking may start on the day another ends)",
		strings.Join(parts, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// DependencyError blocks deletion and names which categories stand in the way.
type DependencyError struct {
	Counts DependencyCounts
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("booking cannot be deleted while referenced by %s",
		strings.Join(e.Counts.Blocking(), ", "))
}

func (e *DependencyError) Is(target error) bool { return target == ErrHasDependencies }

// TypeMismatchError rejects an explicitly supplied user type that contradicts
// the ownership-derived one.
type TypeMismatchError struct {
	Expected UserType
	Provided UserType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("user type %q does not match apartment ownership, expected %q", e.Provided, e.Expected)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
