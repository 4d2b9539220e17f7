package village

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("village: not found")

type ID int64

// Village groups apartments for scoping, reporting and admin assignment.
type Village struct {
	ID   ID
	Name string
}

type Directory interface {
	ByID(ctx context.Context, id ID) (*Village, error)
	List(ctx context.Context) ([]*Village, error)
}
