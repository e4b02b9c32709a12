// Package resolve expands a search term into every credit-name string that
// should match the same underlying contributor.
//
// Expansion is strictly directional. A person broadens upward: their own
// aliases, plus the names of every group they belong to, on through nested
// supergroups. A group never broadens downward to its members; a well-known
// group's search must not leak in every side project of every member.
package resolve
