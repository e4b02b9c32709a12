package identity

import (
	"strings"
	"time"
)

// Kind distinguishes person contributors from group contributors.
type Kind string

const (
	KindPerson Kind = "person"
	KindGroup  Kind = "group"
)

var kindSet = map[Kind]struct{}{
	KindPerson: {},
	KindGroup:  {},
}

// ParseKind validates a kind string.
func ParseKind(value string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := kindSet[kind]
	return kind, ok
}

// Biography holds the optional identity-level fields a merge can discard.
// Empty string means unset.
type Biography struct {
	BornOn     string
	DiedOn     string
	Area       string
	Annotation string
}

// IsSet reports whether any biography field carries data.
func (b Biography) IsSet() bool {
	return b.BornOn != "" || b.DiedOn != "" || b.Area != "" || b.Annotation != ""
}

// Identity is a real contributor who may appear under many names.
type Identity struct {
	ID        int64
	Kind      Kind
	Retired   bool
	Biography Biography
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name is a display string with at most one current owning identity.
// OwnerIdentityID zero means the name is orphaned pending assignment.
type Name struct {
	ID              int64
	Text            string
	NormalizedText  string
	SortText        string
	Disambiguation  string
	Primary         bool
	OwnerIdentityID int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Orphaned reports whether the name currently has no owning identity.
func (n *Name) Orphaned() bool {
	return n.OwnerIdentityID == 0
}

// Membership is an edge from a person identity to a group identity.
// CreditedAsNameID zero means the membership carries no credited-as name.
// Empty EndedOn means the membership is open.
type Membership struct {
	ID               int64
	MemberIdentityID int64
	GroupIdentityID  int64
	CreditedAsNameID int64
	BeganOn          string
	EndedOn          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Credit is an immutable link from a catalog item to exactly one name.
// Credits are created and removed as whole rows by the catalog lifecycle;
// no identity operation ever rewrites NameID.
type Credit struct {
	ID           int64
	ItemID       int64
	NameID       int64
	Role         string
	DisplayOrder int
	CreatedAt    time.Time
}
