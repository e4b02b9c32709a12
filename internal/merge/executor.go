package merge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"liner/internal/audit"
	"liner/internal/conflict"
	"liner/internal/identity"
	"liner/internal/logging"
)

// Options tunes merge execution.
type Options struct {
	// CopyBiography fills empty target biography fields from the source
	// instead of discarding them.
	CopyBiography bool
	// AllowKindMismatch permits a person/group merge. The target's kind
	// wins; the acknowledgement gate still applies.
	AllowKindMismatch bool
}

// Result summarizes one committed mutation.
type Result struct {
	Tier               Tier
	SourceIdentityID   int64
	TargetIdentityID   int64
	NamesMoved         int
	MembershipsMoved   int
	MembershipsDropped int
	BiographyCopied    bool
	SourceRetired      bool
	Events             []audit.Event
}

// Executor performs identity mutations. Every public method runs in one
// store transaction: conflict checks, writes, and audit events commit or
// roll back together.
type Executor struct {
	store    *identity.Store
	maxDepth int
	logger   *slog.Logger
}

// NewExecutor builds an executor over the store.
func NewExecutor(store *identity.Store, maxDepth int, logger *slog.Logger) *Executor {
	if maxDepth < 1 {
		maxDepth = conflict.DefaultMaxDepth
	}
	return &Executor{
		store:    store,
		maxDepth: maxDepth,
		logger:   logging.NewComponentLogger(logger, "executor"),
	}
}

// Merge folds sourceID into targetID. The impact passed in is the advisory
// report the caller confirmed; the executor re-grades inside the
// transaction and gates on the fresh grade, so a concurrent change between
// analyze and merge cannot smuggle data loss past the acknowledgement.
func (e *Executor) Merge(ctx context.Context, sourceID, targetID int64, impact *Impact, confirmedDataLossAck bool, opts Options) (*Result, error) {
	if impact == nil {
		return nil, fmt.Errorf("%w: merge requires a prior analysis", identity.ErrValidation)
	}
	if impact.Tier == TierBlocked {
		return nil, fmt.Errorf("%w: analysis classified this merge as blocked", identity.ErrMergeRefused)
	}

	result := &Result{SourceIdentityID: sourceID, TargetIdentityID: targetID}

	err := e.store.InTx(ctx, func(tx *identity.Tx) error {
		analyzer := NewAnalyzer(tx, e.maxDepth, nil)
		fresh, err := analyzer.Analyze(ctx, sourceID, targetID, opts.AllowKindMismatch)
		if err != nil {
			return err
		}
		if fresh.Tier == TierBlocked {
			return fmt.Errorf("%w: %s", identity.ErrMergeRefused, strings.Join(fresh.Notes, "; "))
		}
		if fresh.Destructive() && !confirmedDataLossAck {
			return fmt.Errorf("%w: identity merge loses the source's independent existence", identity.ErrConfirmationRequired)
		}
		result.Tier = fresh.Tier

		source, err := tx.GetIdentity(ctx, sourceID)
		if err != nil {
			return err
		}

		if err := e.moveNames(ctx, tx, result, sourceID, targetID); err != nil {
			return err
		}
		if err := e.moveMemberships(ctx, tx, result, sourceID, targetID); err != nil {
			return err
		}
		if opts.CopyBiography && source.Biography.IsSet() {
			copied, err := e.copyBiography(ctx, tx, result, source, targetID)
			if err != nil {
				return err
			}
			result.BiographyCopied = copied
		}

		retired, err := e.maybeRetire(ctx, tx, result, sourceID)
		if err != nil {
			return err
		}
		result.SourceRetired = retired

		summary := audit.New(audit.OpMerge)
		summary.SourceIdentityID = sourceID
		summary.TargetIdentityID = targetID
		summary.Detail = fmt.Sprintf("tier=%s names=%d memberships=%d", fresh.Tier, result.NamesMoved, result.MembershipsMoved)
		return e.record(ctx, tx, result, summary)
	})
	if err != nil {
		return nil, err
	}

	e.logEvents(result)
	return result, nil
}

// ReparentName moves one name to a new owner, or orphans it when
// newOwnerID is zero. Credits referencing the name are untouched.
func (e *Executor) ReparentName(ctx context.Context, nameID, newOwnerID int64) (*Result, error) {
	result := &Result{TargetIdentityID: newOwnerID}

	err := e.store.InTx(ctx, func(tx *identity.Tx) error {
		name, err := tx.GetName(ctx, nameID)
		if err != nil {
			return err
		}
		if newOwnerID != 0 {
			owner, err := tx.GetIdentity(ctx, newOwnerID)
			if err != nil {
				return err
			}
			if owner.Retired {
				return fmt.Errorf("%w: identity %d is retired", identity.ErrNotFound, newOwnerID)
			}
		}
		if name.OwnerIdentityID == newOwnerID {
			return nil // already there; nothing to record
		}
		if err := tx.ReparentName(ctx, nameID, newOwnerID); err != nil {
			return err
		}
		result.Tier = TierSafeRedirect
		result.SourceIdentityID = name.OwnerIdentityID
		result.NamesMoved = 1

		event := audit.New(audit.OpNameReparent)
		event.NameID = nameID
		event.OldOwnerID = name.OwnerIdentityID
		event.NewOwnerID = newOwnerID
		if err := e.record(ctx, tx, result, event); err != nil {
			return err
		}

		if name.OwnerIdentityID != 0 {
			retired, err := e.maybeRetire(ctx, tx, result, name.OwnerIdentityID)
			if err != nil {
				return err
			}
			result.SourceRetired = retired
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logEvents(result)
	return result, nil
}

// SplitName carves one name out into a fresh identity and returns the new
// identity's id. Zero credit rows are touched; credits reference names, not
// identities, so every recorded credit keeps its text.
func (e *Executor) SplitName(ctx context.Context, nameID int64) (int64, *Result, error) {
	var newID int64
	result := &Result{}

	err := e.store.InTx(ctx, func(tx *identity.Tx) error {
		name, err := tx.GetName(ctx, nameID)
		if err != nil {
			return err
		}

		kind := identity.KindPerson
		if name.OwnerIdentityID != 0 {
			owner, err := tx.GetIdentity(ctx, name.OwnerIdentityID)
			if err != nil {
				return err
			}
			kind = owner.Kind
		}

		fresh, err := tx.CreateIdentity(ctx, kind, identity.Biography{})
		if err != nil {
			return err
		}
		newID = fresh.ID
		result.TargetIdentityID = newID
		result.SourceIdentityID = name.OwnerIdentityID

		if err := tx.ReparentName(ctx, nameID, newID); err != nil {
			return err
		}
		result.Tier = TierSafeRedirect
		result.NamesMoved = 1

		event := audit.New(audit.OpNameSplit)
		event.NameID = nameID
		event.OldOwnerID = name.OwnerIdentityID
		event.NewOwnerID = newID
		if err := e.record(ctx, tx, result, event); err != nil {
			return err
		}

		if name.OwnerIdentityID != 0 {
			retired, err := e.maybeRetire(ctx, tx, result, name.OwnerIdentityID)
			if err != nil {
				return err
			}
			result.SourceRetired = retired
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	e.logEvents(result)
	return newID, result, nil
}

// CreateOrFindName returns the existing name with this exact text, or
// creates an orphaned one. The import pipeline calls this when attaching a
// credit for an unrecognized credit string.
func (e *Executor) CreateOrFindName(ctx context.Context, text string) (*identity.Name, error) {
	var name *identity.Name
	result := &Result{}

	err := e.store.InTx(ctx, func(tx *identity.Tx) error {
		existing, err := tx.FindNameByText(ctx, text)
		if err != nil {
			return err
		}
		if existing != nil {
			name = existing
			return nil
		}

		created, err := tx.CreateName(ctx, text, 0, false)
		if err != nil {
			return err
		}
		name = created

		event := audit.New(audit.OpNameCreate)
		event.NameID = created.ID
		event.Detail = created.Text
		return e.record(ctx, tx, result, event)
	})
	if err != nil {
		return nil, err
	}

	e.logEvents(result)
	return name, nil
}

// AddMembership inserts a person-or-group to group edge after kind and
// cycle checks inside one transaction. Cycles are refused with no partial
// effect.
func (e *Executor) AddMembership(ctx context.Context, m identity.Membership) (*identity.Membership, error) {
	var created *identity.Membership

	err := e.store.InTx(ctx, func(tx *identity.Tx) error {
		group, err := tx.GetIdentity(ctx, m.GroupIdentityID)
		if err != nil {
			return err
		}
		if group.Kind != identity.KindGroup {
			return fmt.Errorf("%w: identity %d is not a group", identity.ErrValidation, m.GroupIdentityID)
		}
		if _, err := tx.GetIdentity(ctx, m.MemberIdentityID); err != nil {
			return err
		}

		detector := conflict.NewDetector(tx, e.maxDepth)
		cycle, err := detector.WouldCycle(ctx, m.MemberIdentityID, m.GroupIdentityID)
		if err != nil {
			return err
		}
		if cycle {
			return fmt.Errorf("%w: identity %d would become a member of itself through group %d",
				identity.ErrCycleDetected, m.MemberIdentityID, m.GroupIdentityID)
		}

		created, err = tx.CreateMembership(ctx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Executor) moveNames(ctx context.Context, tx *identity.Tx, result *Result, sourceID, targetID int64) error {
	names, err := tx.NamesOwnedBy(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := tx.ReparentName(ctx, name.ID, targetID); err != nil {
			return err
		}
		result.NamesMoved++

		event := audit.New(audit.OpNameReparent)
		event.SourceIdentityID = sourceID
		event.TargetIdentityID = targetID
		event.NameID = name.ID
		event.OldOwnerID = sourceID
		event.NewOwnerID = targetID
		if err := e.record(ctx, tx, result, event); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) moveMemberships(ctx context.Context, tx *identity.Tx, result *Result, sourceID, targetID int64) error {
	memberEdges, err := tx.MembershipsForMember(ctx, sourceID)
	if err != nil {
		return err
	}
	targetMemberEdges, err := tx.MembershipsForMember(ctx, targetID)
	if err != nil {
		return err
	}
	for _, m := range memberEdges {
		if m.GroupIdentityID == targetID || hasMemberEdge(targetMemberEdges, m) {
			if err := tx.DeleteMembership(ctx, m.ID); err != nil {
				return err
			}
			result.MembershipsDropped++
			continue
		}
		if err := tx.ReassignMembershipMember(ctx, m.ID, targetID); err != nil {
			return err
		}
		result.MembershipsMoved++
		if err := e.recordMembershipMove(ctx, tx, result, m.ID, sourceID, targetID); err != nil {
			return err
		}
	}

	groupEdges, err := tx.MembershipsForGroup(ctx, sourceID)
	if err != nil {
		return err
	}
	targetGroupEdges, err := tx.MembershipsForGroup(ctx, targetID)
	if err != nil {
		return err
	}
	for _, m := range groupEdges {
		if m.MemberIdentityID == targetID || hasGroupEdge(targetGroupEdges, m) {
			if err := tx.DeleteMembership(ctx, m.ID); err != nil {
				return err
			}
			result.MembershipsDropped++
			continue
		}
		if err := tx.ReassignMembershipGroup(ctx, m.ID, targetID); err != nil {
			return err
		}
		result.MembershipsMoved++
		if err := e.recordMembershipMove(ctx, tx, result, m.ID, sourceID, targetID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) copyBiography(ctx context.Context, tx *identity.Tx, result *Result, source *identity.Identity, targetID int64) (bool, error) {
	target, err := tx.GetIdentity(ctx, targetID)
	if err != nil {
		return false, err
	}

	merged := target.Biography
	changed := false
	if merged.BornOn == "" && source.Biography.BornOn != "" {
		merged.BornOn = source.Biography.BornOn
		changed = true
	}
	if merged.DiedOn == "" && source.Biography.DiedOn != "" {
		merged.DiedOn = source.Biography.DiedOn
		changed = true
	}
	if merged.Area == "" && source.Biography.Area != "" {
		merged.Area = source.Biography.Area
		changed = true
	}
	if merged.Annotation == "" && source.Biography.Annotation != "" {
		merged.Annotation = source.Biography.Annotation
		changed = true
	}
	if !changed {
		return false, nil
	}

	if err := tx.UpdateBiography(ctx, targetID, merged); err != nil {
		return false, err
	}
	event := audit.New(audit.OpBiographyCopy)
	event.SourceIdentityID = source.ID
	event.TargetIdentityID = targetID
	return true, e.record(ctx, tx, result, event)
}

// maybeRetire retires an identity once it owns zero names and zero
// memberships. Pending product confirmation this stays conditional rather
// than eager; an identity still holding memberships survives losing its
// last name.
func (e *Executor) maybeRetire(ctx context.Context, tx *identity.Tx, result *Result, id int64) (bool, error) {
	ident, err := tx.GetIdentity(ctx, id)
	if err != nil {
		return false, err
	}
	if ident.Retired {
		return false, nil
	}

	names, err := tx.NamesOwnedBy(ctx, id)
	if err != nil {
		return false, err
	}
	if len(names) > 0 {
		return false, nil
	}
	memberEdges, err := tx.MembershipsForMember(ctx, id)
	if err != nil {
		return false, err
	}
	groupEdges, err := tx.MembershipsForGroup(ctx, id)
	if err != nil {
		return false, err
	}
	if len(memberEdges)+len(groupEdges) > 0 {
		return false, nil
	}

	if err := tx.RetireIdentity(ctx, id); err != nil {
		return false, err
	}
	event := audit.New(audit.OpIdentityRetire)
	event.SourceIdentityID = id
	return true, e.record(ctx, tx, result, event)
}

func (e *Executor) recordMembershipMove(ctx context.Context, tx *identity.Tx, result *Result, membershipID, sourceID, targetID int64) error {
	event := audit.New(audit.OpMembershipMove)
	event.SourceIdentityID = sourceID
	event.TargetIdentityID = targetID
	event.Detail = fmt.Sprintf("membership %d", membershipID)
	return e.record(ctx, tx, result, event)
}

func (e *Executor) record(ctx context.Context, tx *identity.Tx, result *Result, event audit.Event) error {
	if err := tx.RecordEvent(ctx, event); err != nil {
		return err
	}
	result.Events = append(result.Events, event)
	return nil
}

func (e *Executor) logEvents(result *Result) {
	for _, event := range result.Events {
		audit.Log(e.logger, event)
	}
}

func hasMemberEdge(edges []*identity.Membership, candidate *identity.Membership) bool {
	for _, edge := range edges {
		if edge.GroupIdentityID == candidate.GroupIdentityID &&
			edge.CreditedAsNameID == candidate.CreditedAsNameID {
			return true
		}
	}
	return false
}

func hasGroupEdge(edges []*identity.Membership, candidate *identity.Membership) bool {
	for _, edge := range edges {
		if edge.MemberIdentityID == candidate.MemberIdentityID &&
			edge.CreditedAsNameID == candidate.CreditedAsNameID {
			return true
		}
	}
	return false
}
