package conflict_test

import (
	"context"
	"errors"
	"testing"

	"liner/internal/conflict"
	"liner/internal/identity"
	"liner/internal/testsupport"
)

func TestWouldCollideNormalized(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	ctx := context.Background()
	owner, _ := testsupport.NewPerson(t, store, "Björk")

	hit, err := detector.WouldCollide(ctx, "BJORK", 0)
	if err != nil {
		t.Fatalf("WouldCollide failed: %v", err)
	}
	if hit == nil || hit.OwnerIdentityID != owner.ID {
		t.Fatalf("expected collision with owner %d, got %#v", owner.ID, hit)
	}

	// The owner itself is excluded.
	hit, err = detector.WouldCollide(ctx, "bjork", owner.ID)
	if err != nil {
		t.Fatalf("WouldCollide failed: %v", err)
	}
	if hit != nil {
		t.Fatalf("expected no collision excluding the owner, got %#v", hit)
	}
}

func TestWouldCollideIgnoresOrphans(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	ctx := context.Background()
	if _, err := store.CreateName(ctx, "Unclaimed", 0, false); err != nil {
		t.Fatalf("CreateName failed: %v", err)
	}

	hit, err := detector.WouldCollide(ctx, "unclaimed", 0)
	if err != nil {
		t.Fatalf("WouldCollide failed: %v", err)
	}
	if hit != nil {
		t.Fatalf("orphaned name should not collide, got %#v", hit)
	}
}

func TestWouldCollideRejectsEmptyText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	_, err := detector.WouldCollide(context.Background(), "   ", 0)
	if !errors.Is(err, identity.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestWouldCycleDirect(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	ctx := context.Background()
	person, _ := testsupport.NewPerson(t, store, "P")
	group, _ := testsupport.NewGroup(t, store, "G")
	testsupport.AddMembership(t, store, person.ID, group.ID)

	// Adding G as a member of P's "group" means walking up from P finds G.
	cycle, err := detector.WouldCycle(ctx, group.ID, person.ID)
	if err != nil {
		t.Fatalf("WouldCycle failed: %v", err)
	}
	if !cycle {
		t.Fatal("expected direct cycle to be detected")
	}
}

func TestWouldCycleTransitive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	ctx := context.Background()
	a, _ := testsupport.NewGroup(t, store, "A")
	b, _ := testsupport.NewGroup(t, store, "B")
	c, _ := testsupport.NewGroup(t, store, "C")
	testsupport.AddMembership(t, store, a.ID, b.ID)
	testsupport.AddMembership(t, store, b.ID, c.ID)

	// C as a member of A would close A -> B -> C -> A.
	cycle, err := detector.WouldCycle(ctx, c.ID, a.ID)
	if err != nil {
		t.Fatalf("WouldCycle failed: %v", err)
	}
	if !cycle {
		t.Fatal("expected transitive cycle to be detected")
	}

	// An unrelated group is fine.
	d, _ := testsupport.NewGroup(t, store, "D")
	cycle, err = detector.WouldCycle(ctx, d.ID, a.ID)
	if err != nil {
		t.Fatalf("WouldCycle failed: %v", err)
	}
	if cycle {
		t.Fatal("expected no cycle for unrelated member")
	}
}

func TestWouldCycleSelfEdge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 0)

	group, _ := testsupport.NewGroup(t, store, "Ouroboros")
	cycle, err := detector.WouldCycle(context.Background(), group.ID, group.ID)
	if err != nil {
		t.Fatalf("WouldCycle failed: %v", err)
	}
	if !cycle {
		t.Fatal("expected self-membership to count as a cycle")
	}
}

func TestWouldCycleDepthGuardFailsClosed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	detector := conflict.NewDetector(store, 2)

	ctx := context.Background()
	// Chain deeper than the guard: g0 -> g1 -> g2 -> g3.
	groups := make([]*identity.Identity, 4)
	for i := range groups {
		g, _ := testsupport.NewGroup(t, store, "Chain "+string(rune('A'+i)))
		groups[i] = g
	}
	for i := 0; i < len(groups)-1; i++ {
		testsupport.AddMembership(t, store, groups[i].ID, groups[i+1].ID)
	}

	cycle, err := detector.WouldCycle(ctx, 999999, groups[0].ID)
	if err != nil {
		t.Fatalf("WouldCycle failed: %v", err)
	}
	if !cycle {
		t.Fatal("expected depth guard to fail closed")
	}
}
