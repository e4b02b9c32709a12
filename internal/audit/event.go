package audit

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"liner/internal/logging"
)

// Operation identifies the mutation that produced an event.
type Operation string

const (
	OpMerge          Operation = "merge"
	OpNameCreate     Operation = "name.create"
	OpNameReparent   Operation = "name.reparent"
	OpNameSplit      Operation = "name.split"
	OpMembershipMove Operation = "membership.move"
	OpIdentityRetire Operation = "identity.retire"
	OpBiographyCopy  Operation = "biography.copy"
)

// Event is one structured record per committed mutation. Zero-valued id
// fields mean "not applicable" (for example NameID on an identity
// retirement).
type Event struct {
	ID               string
	OccurredAt       time.Time
	Operation        Operation
	SourceIdentityID int64
	TargetIdentityID int64
	NameID           int64
	OldOwnerID       int64
	NewOwnerID       int64
	Detail           string
}

// New builds an event with a fresh id and timestamp.
func New(op Operation) Event {
	return Event{
		ID:         uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Operation:  op,
	}
}

// Attrs returns the event as slog attributes for structured logging.
func (e Event) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(logging.FieldEventID, e.ID),
		slog.String(logging.FieldOperation, string(e.Operation)),
	}
	if e.SourceIdentityID != 0 {
		attrs = append(attrs, slog.Int64("source_identity_id", e.SourceIdentityID))
	}
	if e.TargetIdentityID != 0 {
		attrs = append(attrs, slog.Int64("target_identity_id", e.TargetIdentityID))
	}
	if e.NameID != 0 {
		attrs = append(attrs, slog.Int64(logging.FieldNameID, e.NameID))
	}
	if e.OldOwnerID != 0 {
		attrs = append(attrs, slog.Int64("old_owner_id", e.OldOwnerID))
	}
	if e.NewOwnerID != 0 {
		attrs = append(attrs, slog.Int64("new_owner_id", e.NewOwnerID))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	return attrs
}

// Log writes the event to the provided logger at info level.
func Log(logger *slog.Logger, e Event) {
	if logger == nil {
		return
	}
	logger.Info("identity mutation", logging.Args(e.Attrs()...)...)
}
