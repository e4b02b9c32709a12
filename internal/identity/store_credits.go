package identity

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const creditColumns = "id, item_id, name_id, role, display_order, created_at"

// CreateCredit records a credit row linking a catalog item to a name. The
// row is immutable afterwards; identity operations never touch it.
func (q queries) CreateCredit(ctx context.Context, itemID, nameID int64, role string, displayOrder int) (*Credit, error) {
	if itemID == 0 || nameID == 0 {
		return nil, fmt.Errorf("%w: credit requires item and name ids", ErrValidation)
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO credits (item_id, name_id, role, display_order, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		itemID, nameID, role, displayOrder, storeTime(time.Now()))
	if err != nil {
		return nil, mapExecError("insert credit", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := q.db.QueryRowContext(ctx, "SELECT "+creditColumns+" FROM credits WHERE id = ?", id)
	credit, err := scanCredit(row)
	if err != nil {
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return credit, nil
}

// CreditsForName returns every credit referencing the name.
func (q queries) CreditsForName(ctx context.Context, nameID int64) ([]*Credit, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+creditColumns+" FROM credits WHERE name_id = ? ORDER BY id", nameID)
	if err != nil {
		return nil, fmt.Errorf("credits for name: %w", err)
	}
	return collectCredits(rows)
}

// CreditsForItem returns a catalog item's credits in display order.
func (q queries) CreditsForItem(ctx context.Context, itemID int64) ([]*Credit, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+creditColumns+" FROM credits WHERE item_id = ? ORDER BY display_order, id", itemID)
	if err != nil {
		return nil, fmt.Errorf("credits for item: %w", err)
	}
	return collectCredits(rows)
}

// CountCreditsForIdentity counts credits attached to any name the identity
// currently owns.
func (q queries) CountCreditsForIdentity(ctx context.Context, identityID int64) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM credits c
         JOIN names n ON n.id = c.name_id
         WHERE n.owner_identity_id = ?`, identityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count credits for identity: %w", err)
	}
	return count, nil
}

func collectCredits(rows *sql.Rows) ([]*Credit, error) {
	defer rows.Close()
	var credits []*Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}

func scanCredit(row rowScanner) (*Credit, error) {
	var (
		credit    Credit
		createdAt string
	)
	err := row.Scan(&credit.ID, &credit.ItemID, &credit.NameID, &credit.Role,
		&credit.DisplayOrder, &createdAt)
	if err != nil {
		return nil, err
	}
	credit.CreatedAt = parseTime(createdAt)
	return &credit, nil
}
