package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"liner/internal/config"
)

// Store manages identity persistence backed by SQLite.
type Store struct {
	queries
	db   *sql.DB
	path string
}

// Tx exposes the same query surface inside a single transaction. Mutations
// that must be atomic (conflict check plus write) run through InTx.
type Tx struct {
	queries
	tx *sql.Tx
}

// Querier is the read/write surface shared by Store and Tx. Components that
// must work both standalone and inside a caller-scoped transaction accept
// this interface.
type Querier interface {
	GetIdentity(ctx context.Context, id int64) (*Identity, error)
	ListIdentities(ctx context.Context, includeRetired bool) ([]*Identity, error)
	CreateIdentity(ctx context.Context, kind Kind, bio Biography) (*Identity, error)
	UpdateBiography(ctx context.Context, id int64, bio Biography) error
	RetireIdentity(ctx context.Context, id int64) error

	CreateName(ctx context.Context, text string, ownerID int64, primary bool) (*Name, error)
	GetName(ctx context.Context, id int64) (*Name, error)
	FindNameByText(ctx context.Context, text string) (*Name, error)
	FindNamesByNormalized(ctx context.Context, normalized string) ([]*Name, error)
	NamesOwnedBy(ctx context.Context, ownerID int64) ([]*Name, error)
	ReparentName(ctx context.Context, nameID, newOwnerID int64) error

	CreateMembership(ctx context.Context, m Membership) (*Membership, error)
	GetMembership(ctx context.Context, id int64) (*Membership, error)
	MembershipsForMember(ctx context.Context, memberID int64) ([]*Membership, error)
	MembershipsForGroup(ctx context.Context, groupID int64) ([]*Membership, error)
	ReassignMembershipMember(ctx context.Context, membershipID, identityID int64) error
	ReassignMembershipGroup(ctx context.Context, membershipID, identityID int64) error
	DeleteMembership(ctx context.Context, id int64) error

	CreateCredit(ctx context.Context, itemID, nameID int64, role string, displayOrder int) (*Credit, error)
	CreditsForName(ctx context.Context, nameID int64) ([]*Credit, error)
	CreditsForItem(ctx context.Context, itemID int64) ([]*Credit, error)
	CountCreditsForIdentity(ctx context.Context, identityID int64) (int, error)
}

var (
	_ Querier = (*Store)(nil)
	_ Querier = (*Tx)(nil)
)

// Open initializes or connects to the identity database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per-connection; pin the pool to one so they hold.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{queries: queries{db: db}, db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// InTx runs fn inside a single transaction. Any error rolls back every
// effect; a nil return commits. This is the only write path the merge
// executor uses, so a conflict check and its mutation always share one
// snapshot.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	wrapped := &Tx{queries: queries{db: tx}, tx: tx}
	if err := fn(wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

// mapExecError classifies SQLite failures so callers can test with
// errors.Is. modernc.org/sqlite reports constraint failures in the error
// text rather than a typed error.
func mapExecError(operation string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "constraint") {
		return fmt.Errorf("%w: %s: %v", ErrConstraintViolation, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
