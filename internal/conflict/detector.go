package conflict

import (
	"context"
	"fmt"

	"liner/internal/identity"
	"liner/internal/textnorm"
)

// DefaultMaxDepth bounds upward membership walks. Thirty-two levels of
// nested supergroups is far beyond any real catalog; hitting the guard is
// treated as a cycle.
const DefaultMaxDepth = 32

// Detector answers collision and cycle questions against a store or an open
// transaction. It never mutates.
type Detector struct {
	store    identity.Querier
	maxDepth int
}

// NewDetector builds a detector over the given querier. maxDepth values
// below one fall back to DefaultMaxDepth.
func NewDetector(store identity.Querier, maxDepth int) *Detector {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Detector{store: store, maxDepth: maxDepth}
}

// WouldCollide reports the existing owned name that matches nameText under
// normalized comparison, excluding names owned by excludingIdentity. Returns
// nil when the text is free. Orphaned names never collide; they are
// awaiting assignment, not claiming the string.
func (d *Detector) WouldCollide(ctx context.Context, nameText string, excludingIdentity int64) (*identity.Name, error) {
	normalized := textnorm.Normalize(nameText)
	if normalized == "" {
		return nil, fmt.Errorf("%w: name text must not be empty", identity.ErrValidation)
	}

	matches, err := d.store.FindNamesByNormalized(ctx, normalized)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		if match.Orphaned() {
			continue
		}
		if match.OwnerIdentityID == excludingIdentity {
			continue
		}
		return match, nil
	}
	return nil, nil
}

// WouldCycle reports whether adding candidateMemberID as a member of
// candidateGroupID would make an identity transitively a member of itself.
// The walk follows the candidate group's own memberships upward through
// supergroups with an iterative worklist. Unresolvable state fails closed:
// exceeding the depth guard reports a cycle.
func (d *Detector) WouldCycle(ctx context.Context, candidateMemberID, candidateGroupID int64) (bool, error) {
	if candidateMemberID == candidateGroupID {
		return true, nil
	}

	visited := map[int64]struct{}{candidateGroupID: {}}
	frontier := []int64{candidateGroupID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= d.maxDepth {
			return true, nil
		}
		var next []int64
		for _, id := range frontier {
			memberships, err := d.store.MembershipsForMember(ctx, id)
			if err != nil {
				return true, err
			}
			for _, m := range memberships {
				group := m.GroupIdentityID
				if group == candidateMemberID {
					return true, nil
				}
				if _, seen := visited[group]; seen {
					continue
				}
				visited[group] = struct{}{}
				next = append(next, group)
			}
		}
		frontier = next
	}
	return false, nil
}
