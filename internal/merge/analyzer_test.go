package merge_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"liner/internal/identity"
	"liner/internal/merge"
	"liner/internal/testsupport"
)

func TestAnalyzeTrivial(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	source, _ := testsupport.NewPerson(t, store, "Empty Shell")
	target, _ := testsupport.NewPerson(t, store, "Keeper")

	impact, err := analyzer.Analyze(ctx, source.ID, target.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if impact.Tier != merge.TierTrivial {
		t.Fatalf("expected trivial, got %s (%v)", impact.Tier, impact.Notes)
	}
	if impact.Destructive() {
		t.Fatal("trivial merge must not require acknowledgement")
	}
}

func TestAnalyzeOneCreditFlipsToIdentityMerge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	source, sourceName := testsupport.NewPerson(t, store, "Ziggy Stardust")
	target, _ := testsupport.NewPerson(t, store, "David Bowie")

	before, err := analyzer.Analyze(ctx, source.ID, target.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if before.Tier != merge.TierTrivial {
		t.Fatalf("expected trivial before credit, got %s", before.Tier)
	}

	testsupport.AddCredit(t, store, 1, sourceName.ID, "vocals")

	after, err := analyzer.Analyze(ctx, source.ID, target.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if after.Tier != merge.TierIdentityMerge {
		t.Fatalf("expected identity merge after credit, got %s", after.Tier)
	}
	if after.CreditCount != 1 {
		t.Fatalf("expected one itemized credit, got %d", after.CreditCount)
	}
	found := false
	for _, note := range after.Notes {
		if strings.Contains(note, "credit(s) remain attributed to their original name text") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected itemized credit note, got %v", after.Notes)
	}
}

func TestAnalyzeBiographyNote(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	source, err := store.CreateIdentity(ctx, identity.KindPerson, identity.Biography{BornOn: "1947-01-08"})
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	target, _ := testsupport.NewPerson(t, store, "Target")

	impact, err := analyzer.Analyze(ctx, source.ID, target.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if impact.Tier != merge.TierIdentityMerge || !impact.BiographySet {
		t.Fatalf("expected destructive merge for set biography, got %#v", impact)
	}
}

func TestAnalyzeKindMismatchBlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	person, _ := testsupport.NewPerson(t, store, "Solo")
	group, _ := testsupport.NewGroup(t, store, "Ensemble")

	impact, err := analyzer.Analyze(ctx, person.ID, group.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if impact.Tier != merge.TierBlocked || !impact.KindMismatch {
		t.Fatalf("expected blocked kind mismatch, got %#v", impact)
	}

	// With the override the grade falls through to the data-based tiers.
	overridden, err := analyzer.Analyze(ctx, person.ID, group.ID, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if overridden.Tier == merge.TierBlocked {
		t.Fatalf("expected override to unblock, got %#v", overridden)
	}
}

func TestAnalyzeCycleBlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	// outer contains inner; merging outer into inner would require inner
	// to be a member of itself.
	outer, _ := testsupport.NewGroup(t, store, "Outer")
	inner, _ := testsupport.NewGroup(t, store, "Inner")
	middle, _ := testsupport.NewGroup(t, store, "Middle")
	testsupport.AddMembership(t, store, middle.ID, outer.ID)
	testsupport.AddMembership(t, store, inner.ID, middle.ID)

	impact, err := analyzer.Analyze(ctx, outer.ID, inner.ID, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if impact.Tier != merge.TierBlocked || !impact.WouldCycle {
		t.Fatalf("expected cycle block, got %#v", impact)
	}
}

func TestAnalyzeSelfMergeRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ident, _ := testsupport.NewPerson(t, store, "Narcissus")
	_, err := analyzer.Analyze(context.Background(), ident.ID, ident.ID, false)
	if !errors.Is(err, identity.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAnalyzeRetiredSourceNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	source, err := store.CreateIdentity(ctx, identity.KindPerson, identity.Biography{})
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	target, _ := testsupport.NewPerson(t, store, "Target")
	if err := store.RetireIdentity(ctx, source.ID); err != nil {
		t.Fatalf("RetireIdentity failed: %v", err)
	}

	_, err = analyzer.Analyze(ctx, source.ID, target.ID, false)
	if !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for retired source, got %v", err)
	}
}

func TestAnalyzeNameRedirect(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	analyzer := merge.NewAnalyzer(store, 0, nil)

	ctx := context.Background()
	owner, name := testsupport.NewPerson(t, store, "Misfiled")
	target, _ := testsupport.NewPerson(t, store, "Rightful Owner")
	testsupport.AddCredit(t, store, 7, name.ID, "producer")

	impact, err := analyzer.AnalyzeNameRedirect(ctx, name.ID, target.ID)
	if err != nil {
		t.Fatalf("AnalyzeNameRedirect failed: %v", err)
	}
	if impact.Tier != merge.TierSafeRedirect {
		t.Fatalf("expected safe redirect, got %s", impact.Tier)
	}
	if impact.SourceIdentityID != owner.ID || impact.CreditCount != 1 {
		t.Fatalf("unexpected impact: %#v", impact)
	}
	if impact.Destructive() {
		t.Fatal("safe redirect must not require acknowledgement")
	}
}
