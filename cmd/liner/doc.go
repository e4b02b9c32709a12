// Package main hosts the liner CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the identity engine: search-term
// expansion, identity and name curation, merge analysis and execution,
// membership edits, the audit history, and configuration scaffolding. It
// centralizes configuration resolution, store access, and the advisory lock
// for mutating commands so subcommands can focus on user experience.
//
// Keep this package lean: add new behavior to the internal packages first,
// then surface it through a dedicated command or flag here.
package main
