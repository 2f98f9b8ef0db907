// Package pipeline orchestrates a whole-tree resolution run.
//
// A run enumerates all record paths under the architecture root (unioned
// with pre-existing outputs so stale records are pruned), resolves every
// record in pass 1, then persists, validates, and indexes them in pass 2.
// Resolution is single-threaded and synchronous by design; the record
// store's cache is the only shared mutable state and is owned by the run.
//
// Any ParseError, ReferenceError, CycleError, SchemaNotFoundError, or
// ValidationError aborts the run before the manifest is published, so a
// half-resolved architecture can never drive downstream code generation.
package pipeline
