package testsupport

import (
	"context"
	"testing"

	"liner/internal/config"
	"liner/internal/identity"
)

// MustOpenStore opens an identity.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *identity.Store {
	t.Helper()

	store, err := identity.Open(cfg)
	if err != nil {
		t.Fatalf("identity.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewPerson creates a person identity with a primary name.
func NewPerson(t testing.TB, store *identity.Store, name string) (*identity.Identity, *identity.Name) {
	t.Helper()
	return newIdentity(t, store, identity.KindPerson, name)
}

// NewGroup creates a group identity with a primary name.
func NewGroup(t testing.TB, store *identity.Store, name string) (*identity.Identity, *identity.Name) {
	t.Helper()
	return newIdentity(t, store, identity.KindGroup, name)
}

func newIdentity(t testing.TB, store *identity.Store, kind identity.Kind, name string) (*identity.Identity, *identity.Name) {
	t.Helper()

	ctx := context.Background()
	ident, err := store.CreateIdentity(ctx, kind, identity.Biography{})
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	primary, err := store.CreateName(ctx, name, ident.ID, true)
	if err != nil {
		t.Fatalf("CreateName: %v", err)
	}
	return ident, primary
}

// AddAlias attaches a non-primary name to an identity.
func AddAlias(t testing.TB, store *identity.Store, ownerID int64, text string) *identity.Name {
	t.Helper()

	name, err := store.CreateName(context.Background(), text, ownerID, false)
	if err != nil {
		t.Fatalf("CreateName: %v", err)
	}
	return name
}

// AddCredit records a credit on the given name.
func AddCredit(t testing.TB, store *identity.Store, itemID, nameID int64, role string) *identity.Credit {
	t.Helper()

	credit, err := store.CreateCredit(context.Background(), itemID, nameID, role, 0)
	if err != nil {
		t.Fatalf("CreateCredit: %v", err)
	}
	return credit
}

// AddMembership links a member identity into a group directly at the store
// layer, bypassing cycle checks. Tests that need the guarded path go
// through the executor instead.
func AddMembership(t testing.TB, store *identity.Store, memberID, groupID int64) *identity.Membership {
	t.Helper()

	membership, err := store.CreateMembership(context.Background(), identity.Membership{
		MemberIdentityID: memberID,
		GroupIdentityID:  groupID,
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	return membership
}
