// Package conflict detects problems a proposed identity mutation would
// cause: name collisions under normalized matching, and membership edges
// that would make an identity transitively a member of itself.
//
// The detector is read-only. Callers run its checks and the mutation they
// guard inside one store transaction so the answer cannot go stale between
// check and write.
package conflict
