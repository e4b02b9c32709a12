// Package config loads and validates liner configuration from TOML.
//
// Configuration is resolved from an explicit path, ~/.config/liner/config.toml,
// or a project-local liner.toml, in that order. Missing files are not an
// error; defaults apply and path fields are tilde-expanded.
package config
