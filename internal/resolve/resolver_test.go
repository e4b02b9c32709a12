package resolve_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"liner/internal/identity"
	"liner/internal/resolve"
	"liner/internal/testsupport"
)

func TestExpandPersonIncludesGroups(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	grohl, _ := testsupport.NewPerson(t, store, "Dave Grohl")
	nirvana, _ := testsupport.NewGroup(t, store, "Nirvana")
	foos, _ := testsupport.NewGroup(t, store, "Foo Fighters")
	cobain, _ := testsupport.NewPerson(t, store, "Kurt Cobain")
	testsupport.AddMembership(t, store, grohl.ID, nirvana.ID)
	testsupport.AddMembership(t, store, grohl.ID, foos.ID)
	testsupport.AddMembership(t, store, cobain.ID, nirvana.ID)

	texts, err := resolver.ExpandText(ctx, "Dave Grohl")
	if err != nil {
		t.Fatalf("ExpandText failed: %v", err)
	}
	expected := []string{"Dave Grohl", "Foo Fighters", "Nirvana"}
	if !slices.Equal(texts, expected) {
		t.Fatalf("expected %v, got %v", expected, texts)
	}
}

func TestExpandGroupStaysDirectional(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	grohl, _ := testsupport.NewPerson(t, store, "Dave Grohl")
	nirvana, _ := testsupport.NewGroup(t, store, "Nirvana")
	foos, _ := testsupport.NewGroup(t, store, "Foo Fighters")
	testsupport.AddMembership(t, store, grohl.ID, nirvana.ID)
	testsupport.AddMembership(t, store, grohl.ID, foos.ID)

	texts, err := resolver.ExpandText(ctx, "Nirvana")
	if err != nil {
		t.Fatalf("ExpandText failed: %v", err)
	}
	if !slices.Equal(texts, []string{"Nirvana"}) {
		t.Fatalf("group expansion leaked member names: %v", texts)
	}
}

func TestExpandIncludesAliases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	bowie, _ := testsupport.NewPerson(t, store, "David Bowie")
	testsupport.AddAlias(t, store, bowie.ID, "Ziggy Stardust")
	testsupport.AddAlias(t, store, bowie.ID, "Thin White Duke")

	texts, err := resolver.ExpandIdentity(ctx, bowie.ID)
	if err != nil {
		t.Fatalf("ExpandIdentity failed: %v", err)
	}
	expected := []string{"David Bowie", "Thin White Duke", "Ziggy Stardust"}
	if !slices.Equal(texts, expected) {
		t.Fatalf("expected %v, got %v", expected, texts)
	}
}

func TestExpandAscendsSupergroups(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	person, _ := testsupport.NewPerson(t, store, "Damon Albarn")
	band, _ := testsupport.NewGroup(t, store, "Gorillaz")
	collective, _ := testsupport.NewGroup(t, store, "Plastic Beach Ensemble")
	testsupport.AddMembership(t, store, person.ID, band.ID)
	testsupport.AddMembership(t, store, band.ID, collective.ID)

	texts, err := resolver.ExpandIdentity(ctx, person.ID)
	if err != nil {
		t.Fatalf("ExpandIdentity failed: %v", err)
	}
	expected := []string{"Damon Albarn", "Gorillaz", "Plastic Beach Ensemble"}
	if !slices.Equal(texts, expected) {
		t.Fatalf("expected %v, got %v", expected, texts)
	}
}

func TestExpandSurvivesStoredLoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	person, _ := testsupport.NewPerson(t, store, "Looper")
	a, _ := testsupport.NewGroup(t, store, "Loop A")
	b, _ := testsupport.NewGroup(t, store, "Loop B")
	// A loop the detector would normally refuse, inserted at the store
	// layer to prove expansion still terminates.
	testsupport.AddMembership(t, store, person.ID, a.ID)
	testsupport.AddMembership(t, store, a.ID, b.ID)
	testsupport.AddMembership(t, store, b.ID, a.ID)

	texts, err := resolver.ExpandIdentity(ctx, person.ID)
	if err != nil {
		t.Fatalf("ExpandIdentity failed: %v", err)
	}
	expected := []string{"Loop A", "Loop B", "Looper"}
	if !slices.Equal(texts, expected) {
		t.Fatalf("expected %v, got %v", expected, texts)
	}
}

func TestExpandUnknownTermReturnsItself(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	texts, err := resolver.ExpandText(context.Background(), "No Such Artist")
	if err != nil {
		t.Fatalf("ExpandText failed: %v", err)
	}
	if !slices.Equal(texts, []string{"No Such Artist"}) {
		t.Fatalf("expected passthrough, got %v", texts)
	}
}

func TestExpandOrphanReturnsOnlyItself(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	if _, err := store.CreateName(ctx, "Mystery Credit", 0, false); err != nil {
		t.Fatalf("CreateName failed: %v", err)
	}

	texts, err := resolver.ExpandText(ctx, "Mystery Credit")
	if err != nil {
		t.Fatalf("ExpandText failed: %v", err)
	}
	if !slices.Equal(texts, []string{"Mystery Credit"}) {
		t.Fatalf("expected orphan passthrough, got %v", texts)
	}
}

func TestExpandNormalizedLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	bjork, _ := testsupport.NewPerson(t, store, "Björk")
	testsupport.AddAlias(t, store, bjork.ID, "Björk Guðmundsdóttir")

	texts, err := resolver.ExpandText(ctx, "bjork")
	if err != nil {
		t.Fatalf("ExpandText failed: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected both spellings via normalized lookup, got %v", texts)
	}
}

func TestExpandIdentityNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	_, err := resolver.ExpandIdentity(context.Background(), 12345)
	if !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionMemoizes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.NewResolver(store, 0, nil)

	ctx := context.Background()
	bowie, _ := testsupport.NewPerson(t, store, "David Bowie")
	testsupport.AddAlias(t, store, bowie.ID, "Ziggy Stardust")

	session := resolver.NewSession()
	first, err := session.ExpandIdentity(ctx, bowie.ID)
	if err != nil {
		t.Fatalf("ExpandIdentity failed: %v", err)
	}

	// A change after the first expansion is not visible within the session.
	testsupport.AddAlias(t, store, bowie.ID, "Aladdin Sane")
	second, err := session.ExpandIdentity(ctx, bowie.ID)
	if err != nil {
		t.Fatalf("ExpandIdentity failed: %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("session returned different results: %v vs %v", first, second)
	}

	union, err := session.ExpandAll(ctx, []string{"David Bowie", "Ziggy Stardust"})
	if err != nil {
		t.Fatalf("ExpandAll failed: %v", err)
	}
	if len(union) < 2 {
		t.Fatalf("unexpected union: %v", union)
	}
}
