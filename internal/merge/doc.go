// Package merge classifies and executes identity merges.
//
// The analyzer grades a proposed merge by what it can lose: Trivial (an
// empty shell), SafeRedirect (one name moves, no identity-level data at
// risk), IdentityMerge (the source's independent existence disappears), or
// Blocked (kind mismatch or membership cycle). It is purely advisory.
//
// The executor performs the mutation in one transaction, re-grading inside
// that transaction so the advisory answer cannot go stale between analyze
// and merge. A destructive merge without an explicit data-loss
// acknowledgement fails; that gate is part of the engine, not the UI.
// Credits are never touched: names change owner, credit rows keep pointing
// at the same names, and recorded credit text never changes.
package merge
