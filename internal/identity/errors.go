package identity

import (
	"errors"
)

var (
	// ErrNotFound marks lookups of absent or retired records where the
	// caller asked for a specific row.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation marks dangling references and uniqueness
	// failures surfaced by the store.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrCycleDetected marks a membership mutation that would make an
	// identity transitively a member of itself.
	ErrCycleDetected = errors.New("membership cycle detected")
	// ErrMergeRefused marks a merge blocked outright, such as a
	// person/group kind mismatch without an explicit override.
	ErrMergeRefused = errors.New("merge refused")
	// ErrConfirmationRequired marks a destructive merge attempted without
	// the data-loss acknowledgement.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
)
