package merge

import (
	"context"
	"fmt"
	"log/slog"

	"liner/internal/conflict"
	"liner/internal/identity"
	"liner/internal/logging"
)

// Tier grades a proposed merge by potential data loss.
type Tier string

const (
	// TierTrivial marks a source with nothing to lose: no credits, no
	// non-primary aliases, no memberships, no biography.
	TierTrivial Tier = "trivial"
	// TierSafeRedirect marks a bare name changing owner; no identity-level
	// data is at risk.
	TierSafeRedirect Tier = "safe_redirect"
	// TierIdentityMerge marks a merge that folds a real identity away. Its
	// credits keep their recorded text, but its independent existence (own
	// biography, a boundary for a later split) is lost.
	TierIdentityMerge Tier = "identity_merge"
	// TierBlocked marks a merge refused outright.
	TierBlocked Tier = "blocked"
)

// Impact is the itemized report for a proposed merge.
type Impact struct {
	Tier             Tier
	SourceIdentityID int64
	SourceNameID     int64
	TargetIdentityID int64

	CreditCount     int
	NameCount       int
	AliasCount      int
	MembershipCount int
	BiographySet    bool
	KindMismatch    bool
	WouldCycle      bool

	Notes []string
}

// Destructive reports whether executing this merge requires the data-loss
// acknowledgement.
func (i *Impact) Destructive() bool {
	return i.Tier == TierIdentityMerge
}

// Analyzer grades merges. Read-only; never mutates.
type Analyzer struct {
	store    identity.Querier
	detector *conflict.Detector
	logger   *slog.Logger
}

// NewAnalyzer builds an analyzer sharing the detector's depth guard.
func NewAnalyzer(store identity.Querier, maxDepth int, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		store:    store,
		detector: conflict.NewDetector(store, maxDepth),
		logger:   logging.NewComponentLogger(logger, "analyzer"),
	}
}

// Analyze grades folding sourceID into targetID. allowKindMismatch lets a
// person/group merge through to grading instead of blocking it.
func (a *Analyzer) Analyze(ctx context.Context, sourceID, targetID int64, allowKindMismatch bool) (*Impact, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot merge an identity into itself", identity.ErrValidation)
	}

	source, err := a.activeIdentity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := a.activeIdentity(ctx, targetID)
	if err != nil {
		return nil, err
	}

	impact := &Impact{
		SourceIdentityID: sourceID,
		TargetIdentityID: targetID,
		KindMismatch:     source.Kind != target.Kind,
		BiographySet:     source.Biography.IsSet(),
	}

	if impact.KindMismatch && !allowKindMismatch {
		impact.Tier = TierBlocked
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("kind mismatch: source is %s, target is %s; refused without explicit override", source.Kind, target.Kind))
		return a.graded(impact)
	}

	cycle, err := a.wouldCycleAfterMerge(ctx, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	if cycle {
		impact.Tier = TierBlocked
		impact.WouldCycle = true
		impact.Notes = append(impact.Notes,
			"merging would make an identity transitively a member of itself")
		return a.graded(impact)
	}

	names, err := a.store.NamesOwnedBy(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	impact.NameCount = len(names)
	for _, name := range names {
		if !name.Primary {
			impact.AliasCount++
		}
	}

	impact.CreditCount, err = a.store.CountCreditsForIdentity(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	memberEdges, err := a.store.MembershipsForMember(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	groupEdges, err := a.store.MembershipsForGroup(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	impact.MembershipCount = len(memberEdges) + len(groupEdges)

	if impact.CreditCount == 0 && impact.AliasCount == 0 && impact.MembershipCount == 0 && !impact.BiographySet {
		impact.Tier = TierTrivial
		impact.Notes = append(impact.Notes, "source holds no credits, aliases, memberships, or biography")
		return a.graded(impact)
	}

	impact.Tier = TierIdentityMerge
	if impact.CreditCount > 0 {
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("%d credit(s) remain attributed to their original name text", impact.CreditCount))
	}
	if impact.NameCount > 0 {
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("%d name(s) re-parented, %d of them aliases", impact.NameCount, impact.AliasCount))
	}
	if impact.MembershipCount > 0 {
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("%d membership edge(s) re-pointed, duplicates dropped", impact.MembershipCount))
	}
	if impact.BiographySet {
		impact.Notes = append(impact.Notes, "biography discarded unless explicitly merged")
	}
	impact.Notes = append(impact.Notes, "source identity loses its independent existence")
	return a.graded(impact)
}

func (a *Analyzer) graded(impact *Impact) (*Impact, error) {
	a.logger.Debug("graded merge",
		slog.Int64("source_identity_id", impact.SourceIdentityID),
		slog.Int64("target_identity_id", impact.TargetIdentityID),
		slog.String("tier", string(impact.Tier)))
	return impact, nil
}

// AnalyzeNameRedirect grades moving a single name to targetID. This is the
// SafeRedirect path: only ownership moves, so it never needs the data-loss
// acknowledgement.
func (a *Analyzer) AnalyzeNameRedirect(ctx context.Context, nameID, targetID int64) (*Impact, error) {
	name, err := a.store.GetName(ctx, nameID)
	if err != nil {
		return nil, err
	}
	if _, err := a.activeIdentity(ctx, targetID); err != nil {
		return nil, err
	}

	impact := &Impact{
		Tier:             TierSafeRedirect,
		SourceNameID:     nameID,
		SourceIdentityID: name.OwnerIdentityID,
		TargetIdentityID: targetID,
		NameCount:        1,
	}

	credits, err := a.store.CreditsForName(ctx, nameID)
	if err != nil {
		return nil, err
	}
	impact.CreditCount = len(credits)
	if impact.CreditCount > 0 {
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("%d credit(s) keep displaying %q; they resolve to the new owner", impact.CreditCount, name.Text))
	}
	if name.Orphaned() {
		impact.Notes = append(impact.Notes, "orphaned name gains an owner")
	}
	return impact, nil
}

// wouldCycleAfterMerge checks every membership edge touching the source as
// if it were already re-pointed at the target.
func (a *Analyzer) wouldCycleAfterMerge(ctx context.Context, sourceID, targetID int64) (bool, error) {
	memberEdges, err := a.store.MembershipsForMember(ctx, sourceID)
	if err != nil {
		return true, err
	}
	for _, m := range memberEdges {
		if m.GroupIdentityID == targetID {
			continue // collapses to a self-edge and is dropped by the executor
		}
		cycle, err := a.detector.WouldCycle(ctx, targetID, m.GroupIdentityID)
		if err != nil || cycle {
			return true, err
		}
	}

	groupEdges, err := a.store.MembershipsForGroup(ctx, sourceID)
	if err != nil {
		return true, err
	}
	for _, m := range groupEdges {
		if m.MemberIdentityID == targetID {
			continue
		}
		cycle, err := a.detector.WouldCycle(ctx, m.MemberIdentityID, targetID)
		if err != nil || cycle {
			return true, err
		}
	}
	return false, nil
}

func (a *Analyzer) activeIdentity(ctx context.Context, id int64) (*identity.Identity, error) {
	ident, err := a.store.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if ident.Retired {
		return nil, fmt.Errorf("%w: identity %d is retired", identity.ErrNotFound, id)
	}
	return ident, nil
}
