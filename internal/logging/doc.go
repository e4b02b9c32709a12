// Package logging constructs the slog loggers used across liner.
//
// Output is text or JSON per configuration, optionally teed into the
// configured log directory. Field name constants keep structured keys
// consistent between the engine packages and the audit trail.
package logging
