// Package testsupport provides helpers for constructing configs, stores,
// and seeded identity graphs in tests.
package testsupport
