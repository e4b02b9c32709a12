package resolve

import (
	"context"
	"log/slog"
	"sort"

	"liner/internal/conflict"
	"liner/internal/identity"
	"liner/internal/logging"
	"liner/internal/textnorm"
)

// Resolver expands queries against a store snapshot. It is read-only; the
// answer may go stale immediately after a concurrent merge, which is
// acceptable because callers re-resolve per search session.
type Resolver struct {
	store    identity.Querier
	maxDepth int
	logger   *slog.Logger
}

// NewResolver builds a resolver. maxDepth bounds the upward walk through
// nested supergroups; values below one fall back to the conflict package's
// default so expansion and cycle checks share one guard.
func NewResolver(store identity.Querier, maxDepth int, logger *slog.Logger) *Resolver {
	if maxDepth < 1 {
		maxDepth = conflict.DefaultMaxDepth
	}
	return &Resolver{
		store:    store,
		maxDepth: maxDepth,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// ExpandText expands a query string. Lookup tries exact display text first,
// then normalized matching. An unknown term returns just itself: the search
// layer can still do a plain substring match with it.
func (r *Resolver) ExpandText(ctx context.Context, text string) ([]string, error) {
	name, err := r.store.FindNameByText(ctx, text)
	if err != nil {
		return nil, err
	}
	if name == nil {
		matches, err := r.store.FindNamesByNormalized(ctx, textnorm.Normalize(text))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			name = matches[0]
		}
	}
	if name == nil {
		return []string{text}, nil
	}
	if name.Orphaned() {
		return []string{name.Text}, nil
	}
	return r.ExpandIdentity(ctx, name.OwnerIdentityID)
}

// ExpandIdentity returns the sorted set of every name text equivalent to the
// identity under the directional rules.
func (r *Resolver) ExpandIdentity(ctx context.Context, identityID int64) ([]string, error) {
	ident, err := r.store.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	if err := r.collectOwnedNames(ctx, ident.ID, set); err != nil {
		return nil, err
	}

	// Only a person query ascends through group edges. A group returns its
	// own names and stops.
	if ident.Kind == identity.KindPerson {
		if err := r.ascendGroups(ctx, ident.ID, set); err != nil {
			return nil, err
		}
	}

	texts := make([]string, 0, len(set))
	for text := range set {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	r.logger.Debug("expanded identity",
		slog.Int64(logging.FieldIdentityID, ident.ID),
		slog.String("kind", string(ident.Kind)),
		slog.Int("name_count", len(texts)))
	return texts, nil
}

// ascendGroups walks member-to-group edges upward from start, unioning in
// each visited group's own names. Visited tracking and the depth guard keep
// the walk finite even if the stored graph already contains a loop.
func (r *Resolver) ascendGroups(ctx context.Context, start int64, set map[string]struct{}) error {
	visited := map[int64]struct{}{start: {}}
	frontier := []int64{start}

	for depth := 0; len(frontier) > 0 && depth < r.maxDepth; depth++ {
		var next []int64
		for _, id := range frontier {
			memberships, err := r.store.MembershipsForMember(ctx, id)
			if err != nil {
				return err
			}
			for _, m := range memberships {
				group := m.GroupIdentityID
				if _, seen := visited[group]; seen {
					continue
				}
				visited[group] = struct{}{}
				if err := r.collectOwnedNames(ctx, group, set); err != nil {
					return err
				}
				next = append(next, group)
			}
		}
		frontier = next
	}
	return nil
}

func (r *Resolver) collectOwnedNames(ctx context.Context, identityID int64, set map[string]struct{}) error {
	names, err := r.store.NamesOwnedBy(ctx, identityID)
	if err != nil {
		return err
	}
	for _, name := range names {
		set[name.Text] = struct{}{}
	}
	return nil
}
