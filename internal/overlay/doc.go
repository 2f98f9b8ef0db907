// Package overlay combines a base record tree with an optional patch tree
// before inheritance is expanded.
//
// Patches follow JSON Merge Patch (RFC 7386) semantics: object patches
// recurse, null deletes, anything else replaces wholesale. File-level
// merging is incremental, keyed on modification times, and prunes outputs
// whose sources have been deleted.
package overlay
