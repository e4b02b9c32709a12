package resolve

import (
	"context"
	"sort"
)

// Session memoizes expansions for the duration of one search session. A
// session is not safe for concurrent use; create one per request.
type Session struct {
	resolver   *Resolver
	byIdentity map[int64][]string
	byText     map[string][]string
}

// NewSession wraps the resolver with per-session caching.
func (r *Resolver) NewSession() *Session {
	return &Session{
		resolver:   r,
		byIdentity: make(map[int64][]string),
		byText:     make(map[string][]string),
	}
}

// ExpandText is Resolver.ExpandText with memoization.
func (s *Session) ExpandText(ctx context.Context, text string) ([]string, error) {
	if cached, ok := s.byText[text]; ok {
		return cached, nil
	}
	texts, err := s.resolver.ExpandText(ctx, text)
	if err != nil {
		return nil, err
	}
	s.byText[text] = texts
	return texts, nil
}

// ExpandIdentity is Resolver.ExpandIdentity with memoization.
func (s *Session) ExpandIdentity(ctx context.Context, identityID int64) ([]string, error) {
	if cached, ok := s.byIdentity[identityID]; ok {
		return cached, nil
	}
	texts, err := s.resolver.ExpandIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}
	s.byIdentity[identityID] = texts
	return texts, nil
}

// ExpandAll expands several query strings and returns the union, sorted.
func (s *Session) ExpandAll(ctx context.Context, queries []string) ([]string, error) {
	set := make(map[string]struct{})
	for _, query := range queries {
		texts, err := s.ExpandText(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, text := range texts {
			set[text] = struct{}{}
		}
	}
	union := make([]string, 0, len(set))
	for text := range set {
		union = append(union, text)
	}
	sort.Strings(union)
	return union, nil
}
