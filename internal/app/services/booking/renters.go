package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
)

// DefaultRenterPassword is the fixed initial password of renter accounts
// created from a free-text booking name. Admins hand it out to walk-in
// guests who later claim the account.
const DefaultRenterPassword = "changeme123"

const defaultEmailDomain = "renters.tourist-village.local"

const maxEmailAttempts = 5

var errEmailGeneration = errors.New("booking: could not generate a unique renter email")

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RenterResolver turns a free-text occupant name into a user record: an
// existing renter with that exact name is reused, otherwise a new renter is
// created with a generated placeholder email and the default password.
type RenterResolver struct {
	Users  user.Repository
	Hasher PasswordHasher
	// EmailDomain overrides the placeholder email domain.
	EmailDomain string
	// Now and Suffix exist so tests can pin the generated addresses.
	Now    func() time.Time
	Suffix func() string
}

func (r *RenterResolver) Resolve(ctx context.Context, name string) (*user.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, user.ErrNameRequired
	}

	existing, err := r.Users.ByNameAndRole(ctx, name, user.RoleRenter)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := r.Hasher.Hash(DefaultRenterPassword)
	if err != nil {
		return nil, err
	}

	// The address only needs to be unique and recognizable as generated;
	// re-roll the random suffix on collision.
	for attempt := 0; attempt < maxEmailAttempts; attempt++ {
		email := r.generateEmail(name)
		if _, err := r.Users.ByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, user.ErrNotFound) {
			return nil, err
		}

		created, err := user.New(user.CreateParams{
			Name:         name,
			Email:        email,
			Role:         user.RoleRenter,
			PasswordHash: hash,
			CreatedAt:    r.now(),
		})
		if err != nil {
			return nil, err
		}
		if err := r.Users.Save(ctx, created); err != nil {
			if errors.Is(err, user.ErrEmailAlreadyUsed) {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errEmailGeneration
}

func (r *RenterResolver) generateEmail(name string) string {
	return fmt.Sprintf("%s-%d-%s@%s", emailSlug(name), r.now().Unix(), r.suffix(), r.domain())
}

func (r *RenterResolver) domain() string {
	if r.EmailDomain != "" {
		return r.EmailDomain
	}
	return defaultEmailDomain
}

func (r *RenterResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *RenterResolver) suffix() string {
	if r.Suffix != nil {
		return r.Suffix()
	}
	return uuid.NewString()[:8]
}

func emailSlug(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_' || c == '.':
			b.WriteByte('.')
		}
	}
	slug := strings.Trim(b.String(), ".")
	if slug == "" {
		slug = "renter"
	}
	return slug
}
