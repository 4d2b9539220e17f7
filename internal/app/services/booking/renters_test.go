package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/storage/memory"
)

func newResolver(store *memory.Store) *RenterResolver {
	return &RenterResolver{
		Users:  store.Users(),
		Hasher: fixedHasher{},
		Now:    func() time.Time { return testNow },
		Suffix: func() string { return "ffff0000" },
	}
}

func TestResolveCreatesRenter(t *testing.T) {
	store := memory.NewStore()
	r := newResolver(store)

	created, err := r.Resolve(context.Background(), "  Mona El-Sayed ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created renter has no id")
	}
	if created.Name != "Mona El-Sayed" {
		t.Fatalf("name = %q", created.Name)
	}
	if created.Role != user.RoleRenter {
		t.Fatalf("role = %s", created.Role)
	}
	if !strings.HasPrefix(created.Email, "mona.el.sayed-") {
		t.Fatalf("email slug wrong: %q", created.Email)
	}
	if !strings.HasSuffix(created.Email, "-ffff0000@renters.tourist-village.local") {
		t.Fatalf("email suffix/domain wrong: %q", created.Email)
	}
}

func TestResolveReusesExactName(t *testing.T) {
	store := memory.NewStore()
	r := newResolver(store)

	first, err := r.Resolve(context.Background(), "Ahmed Ali")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), "Ahmed Ali")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("renter not reused: %d vs %d", first.ID, second.ID)
	}

	// Same name with a different role is a different person.
	store.AddUser(&user.User{Name: "Owner Ahmed", Email: "oa@example.com", Role: user.RoleOwner})
	third, err := r.Resolve(context.Background(), "Owner Ahmed")
	if err != nil {
		t.Fatalf("third Resolve: %v", err)
	}
	if third.Role != user.RoleRenter {
		t.Fatalf("owner record must not be reused, got role %s", third.Role)
	}
}

func TestResolveRejectsEmptyName(t *testing.T) {
	r := newResolver(memory.NewStore())
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, user.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestResolveGivesUpOnEmailCollisions(t *testing.T) {
	store := memory.NewStore()
	r := newResolver(store)

	// Pinned clock and suffix make every generated address identical; seed a
	// user holding it so each attempt collides.
	taken, err := r.Resolve(context.Background(), "Clash")
	if err != nil {
		t.Fatalf("seed Resolve: %v", err)
	}
	// A different name with the same slug would not collide, so rename the
	// seeded account and retry the original name.
	taken.Name = "Renamed"
	if err := store.Users().Save(context.Background(), taken); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "Clash"); err == nil {
		t.Fatal("expected email generation to give up")
	}
}

func TestEmailSlug(t *testing.T) {
	cases := map[string]string{
		"Mona El-Sayed": "mona.el.sayed",
		"  A  B  ":      "a..b",
		"!!!":           "renter",
		"User_42":       "user.42",
	}
	for input, want := range cases {
		if got := emailSlug(input); got != want {
			t.Errorf("emailSlug(%q) = %q, want %q", input, got, want)
		}
	}
}
