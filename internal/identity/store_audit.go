package identity

import (
	"context"
	"database/sql"
	"fmt"

	"liner/internal/audit"
)

// RecordEvent persists an audit event. The merge executor calls this inside
// the same transaction as the mutation it describes, so history never shows
// an event for a rolled-back change.
func (q queries) RecordEvent(ctx context.Context, e audit.Event) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, occurred_at, operation, source_identity_id, target_identity_id, name_id, old_owner_id, new_owner_id, detail)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		storeTime(e.OccurredAt),
		string(e.Operation),
		nullableID(e.SourceIdentityID),
		nullableID(e.TargetIdentityID),
		nullableID(e.NameID),
		nullableID(e.OldOwnerID),
		nullableID(e.NewOwnerID),
		nullableString(e.Detail),
	)
	if err != nil {
		return mapExecError("insert audit event", err)
	}
	return nil
}

// ListEvents returns the most recent audit events, newest first. A limit of
// zero or less returns everything.
func (q queries) ListEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `SELECT id, occurred_at, operation, source_identity_id, target_identity_id, name_id, old_owner_id, new_owner_id, detail
              FROM audit_events ORDER BY occurred_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e          audit.Event
			occurredAt string
			source     sql.NullInt64
			target     sql.NullInt64
			nameID     sql.NullInt64
			oldOwner   sql.NullInt64
			newOwner   sql.NullInt64
			operation  string
			detail     sql.NullString
		)
		if err := rows.Scan(&e.ID, &occurredAt, &operation, &source, &target, &nameID, &oldOwner, &newOwner, &detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.OccurredAt = parseTime(occurredAt)
		e.Operation = audit.Operation(operation)
		e.SourceIdentityID = idOrZero(source)
		e.TargetIdentityID = idOrZero(target)
		e.NameID = idOrZero(nameID)
		e.OldOwnerID = idOrZero(oldOwner)
		e.NewOwnerID = idOrZero(newOwner)
		e.Detail = stringOrEmpty(detail)
		events = append(events, e)
	}
	return events, rows.Err()
}
