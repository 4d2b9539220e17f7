package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("user: not found")
	ErrNameRequired      = errors.New("user: name is required")
	ErrEmailRequired     = errors.New("user: email is required")
	ErrEmailAlreadyUsed  = errors.New("user: email already used")
	ErrInvalidRole       = errors.New("user: invalid role")
	ErrPasswordHashEmpty = errors.New("user: password hash is required")
)

type ID int64

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleRenter     Role = "renter"
)

func ParseRole(value string) (Role, error) {
	switch Role(strings.TrimSpace(value)) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOwner:
		return RoleOwner, nil
	case RoleRenter:
		return RoleRenter, nil
	}
	return "", ErrInvalidRole
}

type User struct {
	ID           ID
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	// ByNameAndRole matches the exact trimmed name; used to reuse renter
	// records created from free-text booking names.
	ByNameAndRole(ctx context.Context, name string, role Role) (*User, error)
	// Save inserts when ID is zero (assigning a fresh one) and updates
	// otherwise.
	Save(ctx context.Context, u *User) error
}

type CreateParams struct {
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

func New(params CreateParams) (*User, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashEmpty
	}
	role := params.Role
	if role == "" {
		role = RoleRenter
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
