// Package identity defines the contributor data model and its SQLite store.
//
// The model separates three layers that age differently:
//
//   - Identity: a real contributor (person or group). Mutable; may be
//     retired once nothing references it.
//   - Name: a display string owned by at most one Identity. Names are
//     re-parented, never deleted, so recorded credit text survives every
//     curation decision.
//   - Credit: an immutable link from a catalog item to one Name. A credit's
//     name reference is never rewritten; only the name's ownership changes
//     underneath it.
//
// Group memberships are explicit edges from person identities to group
// identities, traversed elsewhere (resolve, conflict) with bounded walks.
//
// The store makes no safety decisions. It persists rows atomically inside
// caller-scoped transactions and surfaces constraint failures; collision
// checks, cycle checks, and merge gating live in the conflict and merge
// packages.
package identity
