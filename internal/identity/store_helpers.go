package identity

import (
	"database/sql"
	"time"
)

func storeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// nullableString maps empty strings to NULL for optional columns.
func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// nullableID maps a zero id to NULL for optional foreign keys.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func stringOrEmpty(value sql.NullString) string {
	if value.Valid {
		return value.String
	}
	return ""
}

func idOrZero(value sql.NullInt64) int64 {
	if value.Valid {
		return value.Int64
	}
	return 0
}
