package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const membershipColumns = "id, member_identity_id, group_identity_id, credited_as_name_id, began_on, ended_on, created_at, updated_at"

// CreateMembership inserts a person-to-group edge. Kind and cycle checks
// belong to the conflict detector and the executor; the store only enforces
// referential integrity.
func (q queries) CreateMembership(ctx context.Context, m Membership) (*Membership, error) {
	if m.MemberIdentityID == 0 || m.GroupIdentityID == 0 {
		return nil, fmt.Errorf("%w: membership requires member and group ids", ErrValidation)
	}
	now := storeTime(time.Now())

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO memberships (member_identity_id, group_identity_id, credited_as_name_id, began_on, ended_on, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.MemberIdentityID,
		m.GroupIdentityID,
		nullableID(m.CreditedAsNameID),
		nullableString(m.BeganOn),
		nullableString(m.EndedOn),
		now,
		now,
	)
	if err != nil {
		return nil, mapExecError("insert membership", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return q.GetMembership(ctx, id)
}

// GetMembership fetches one membership edge by id.
func (q queries) GetMembership(ctx context.Context, id int64) (*Membership, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE id = ?", id)
	membership, err := scanMembership(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: membership %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return membership, nil
}

// MembershipsForMember returns every group edge where the identity is the
// member side.
func (q queries) MembershipsForMember(ctx context.Context, memberID int64) ([]*Membership, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE member_identity_id = ? ORDER BY id",
		memberID)
	if err != nil {
		return nil, fmt.Errorf("memberships for member: %w", err)
	}
	return collectMemberships(rows)
}

// MembershipsForGroup returns every member edge of the group.
func (q queries) MembershipsForGroup(ctx context.Context, groupID int64) ([]*Membership, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE group_identity_id = ? ORDER BY id",
		groupID)
	if err != nil {
		return nil, fmt.Errorf("memberships for group: %w", err)
	}
	return collectMemberships(rows)
}

// ReassignMembershipMember re-points the member side of an edge.
func (q queries) ReassignMembershipMember(ctx context.Context, membershipID, identityID int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE memberships SET member_identity_id = ?, updated_at = ? WHERE id = ?",
		identityID, storeTime(time.Now()), membershipID)
	if err != nil {
		return mapExecError("reassign membership member", err)
	}
	return requireRow(res, "membership", membershipID)
}

// ReassignMembershipGroup re-points the group side of an edge.
func (q queries) ReassignMembershipGroup(ctx context.Context, membershipID, identityID int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE memberships SET group_identity_id = ?, updated_at = ? WHERE id = ?",
		identityID, storeTime(time.Now()), membershipID)
	if err != nil {
		return mapExecError("reassign membership group", err)
	}
	return requireRow(res, "membership", membershipID)
}

// DeleteMembership removes an edge, used when a merge would duplicate one
// already present on the target.
func (q queries) DeleteMembership(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM memberships WHERE id = ?", id)
	if err != nil {
		return mapExecError("delete membership", err)
	}
	return requireRow(res, "membership", id)
}

func collectMemberships(rows *sql.Rows) ([]*Membership, error) {
	defer rows.Close()
	var memberships []*Membership
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

func scanMembership(row rowScanner) (*Membership, error) {
	var (
		m                    Membership
		creditedAs           sql.NullInt64
		began, ended         sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&m.ID, &m.MemberIdentityID, &m.GroupIdentityID, &creditedAs,
		&began, &ended, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.CreditedAsNameID = idOrZero(creditedAs)
	m.BeganOn = stringOrEmpty(began)
	m.EndedOn = stringOrEmpty(ended)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}
