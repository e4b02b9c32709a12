package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const identityColumns = "id, kind, retired, born_on, died_on, area, annotation, created_at, updated_at"

// CreateIdentity inserts a new identity of the given kind.
func (q queries) CreateIdentity(ctx context.Context, kind Kind, bio Biography) (*Identity, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: unknown identity kind %q", ErrValidation, kind)
	}
	now := storeTime(time.Now())

	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO identities (kind, retired, born_on, died_on, area, annotation, created_at, updated_at)
         VALUES (?, 0, ?, ?, ?, ?, ?, ?)`,
		string(kind),
		nullableString(bio.BornOn),
		nullableString(bio.DiedOn),
		nullableString(bio.Area),
		nullableString(bio.Annotation),
		now,
		now,
	)
	if err != nil {
		return nil, mapExecError("insert identity", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return q.GetIdentity(ctx, id)
}

// GetIdentity fetches one identity by id, retired or not.
func (q queries) GetIdentity(ctx context.Context, id int64) (*Identity, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE id = ?", id)
	ident, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: identity %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return ident, nil
}

// ListIdentities returns identities ordered by id. Retired identities are
// excluded unless requested.
func (q queries) ListIdentities(ctx context.Context, includeRetired bool) ([]*Identity, error) {
	query := "SELECT " + identityColumns + " FROM identities"
	if !includeRetired {
		query += " WHERE retired = 0"
	}
	query += " ORDER BY id"

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []*Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, ident)
	}
	return identities, rows.Err()
}

// UpdateBiography replaces the biography fields of an identity.
func (q queries) UpdateBiography(ctx context.Context, id int64, bio Biography) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE identities SET born_on = ?, died_on = ?, area = ?, annotation = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(bio.BornOn),
		nullableString(bio.DiedOn),
		nullableString(bio.Area),
		nullableString(bio.Annotation),
		storeTime(time.Now()),
		id,
	)
	if err != nil {
		return mapExecError("update biography", err)
	}
	return requireRow(res, "identity", id)
}

// RetireIdentity marks an identity retired. The caller is responsible for
// ensuring it no longer owns names or memberships.
func (q queries) RetireIdentity(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE identities SET retired = 1, updated_at = ? WHERE id = ?",
		storeTime(time.Now()), id)
	if err != nil {
		return mapExecError("retire identity", err)
	}
	return requireRow(res, "identity", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*Identity, error) {
	var (
		ident                Identity
		kind                 string
		retired              int
		born, died           sql.NullString
		area, annotation     sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&ident.ID, &kind, &retired, &born, &died, &area, &annotation, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	ident.Kind = Kind(kind)
	ident.Retired = retired != 0
	ident.Biography = Biography{
		BornOn:     stringOrEmpty(born),
		DiedOn:     stringOrEmpty(died),
		Area:       stringOrEmpty(area),
		Annotation: stringOrEmpty(annotation),
	}
	ident.CreatedAt = parseTime(createdAt)
	ident.UpdatedAt = parseTime(updatedAt)
	return &ident, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
	}
	return nil
}
