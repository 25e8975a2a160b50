// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form, a short Message, the Primary span, optional Notes and optional
// Fixes. Fixes are data-only edit recipes (span + replacement text) that the
// fix engine, the CLI and the language server materialise.
//
// Phases emit through a Reporter so they stay decoupled from storage.
// BagReporter collects into a Bag, which supports sorting, deduplication and
// merging. Rendering lives in internal/diagfmt.
//
// Only SevError diagnostics block a module from being startable.
package diag
