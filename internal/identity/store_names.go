package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"liner/internal/textnorm"
)

const nameColumns = "id, text, normalized_text, sort_text, disambiguation, is_primary, owner_identity_id, created_at, updated_at"

// CreateName inserts a display name. ownerID zero creates an orphaned name
// pending assignment. The normalized form and a default sort form are
// derived from the text.
func (q queries) CreateName(ctx context.Context, text string, ownerID int64, primary bool) (*Name, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: name text must not be empty", ErrValidation)
	}
	now := storeTime(time.Now())

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO names (text, normalized_text, sort_text, is_primary, owner_identity_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		trimmed,
		textnorm.Normalize(trimmed),
		textnorm.SortKey(trimmed),
		boolToInt(primary),
		nullableID(ownerID),
		now,
		now,
	)
	if err != nil {
		return nil, mapExecError("insert name", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return q.GetName(ctx, id)
}

// GetName fetches one name by id.
func (q queries) GetName(ctx context.Context, id int64) (*Name, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+nameColumns+" FROM names WHERE id = ?", id)
	name, err := scanName(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: name %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get name: %w", err)
	}
	return name, nil
}

// FindNameByText looks up a name by exact display text. Returns nil when no
// such name exists.
func (q queries) FindNameByText(ctx context.Context, text string) (*Name, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+nameColumns+" FROM names WHERE text = ?", strings.TrimSpace(text))
	name, err := scanName(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find name by text: %w", err)
	}
	return name, nil
}

// FindNamesByNormalized returns every name whose normalized form matches.
func (q queries) FindNamesByNormalized(ctx context.Context, normalized string) ([]*Name, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+nameColumns+" FROM names WHERE normalized_text = ? ORDER BY id", normalized)
	if err != nil {
		return nil, fmt.Errorf("find names by normalized: %w", err)
	}
	return collectNames(rows)
}

// NamesOwnedBy returns every name currently owned by the identity, primary
// first.
func (q queries) NamesOwnedBy(ctx context.Context, ownerID int64) ([]*Name, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+nameColumns+" FROM names WHERE owner_identity_id = ? ORDER BY is_primary DESC, id",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("names owned by: %w", err)
	}
	return collectNames(rows)
}

// ReparentName moves a name to a new owner. newOwnerID zero orphans the
// name. The name row itself, and every credit referencing it, is untouched.
func (q queries) ReparentName(ctx context.Context, nameID, newOwnerID int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE names SET owner_identity_id = ?, updated_at = ? WHERE id = ?",
		nullableID(newOwnerID), storeTime(time.Now()), nameID)
	if err != nil {
		return mapExecError("reparent name", err)
	}
	return requireRow(res, "name", nameID)
}

func collectNames(rows *sql.Rows) ([]*Name, error) {
	defer rows.Close()
	var names []*Name
	for rows.Next() {
		name, err := scanName(rows)
		if err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanName(row rowScanner) (*Name, error) {
	var (
		name                 Name
		sortText             sql.NullString
		disambiguation       sql.NullString
		primary              int
		owner                sql.NullInt64
		createdAt, updatedAt string
	)
	err := row.Scan(&name.ID, &name.Text, &name.NormalizedText, &sortText, &disambiguation,
		&primary, &owner, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	name.SortText = stringOrEmpty(sortText)
	name.Disambiguation = stringOrEmpty(disambiguation)
	name.Primary = primary != 0
	name.OwnerIdentityID = idOrZero(owner)
	name.CreatedAt = parseTime(createdAt)
	name.UpdatedAt = parseTime(updatedAt)
	return &name, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
