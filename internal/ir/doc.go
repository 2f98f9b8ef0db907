// Package ir defines the in-memory representation of architecture records.
//
// A record is an ordered mapping of string keys to values, sourced from one
// YAML file. Values form a closed sum type (Value): null, bool, int, float,
// string, sequence, or ordered mapping. The variant is fixed at parse time
// and all processing dispatches on it exhaustively.
//
// The package provides three serializations:
//   - YAML (FromNode/ToNode/MarshalYAML): the on-disk record form,
//     preserving key order.
//   - Canonical JSON (MarshalCanonical): deterministic byte form used for
//     content hashing and golden-file comparison. Keys sort by UTF-16 code
//     units, strings are NFC normalized, HTML escaping is disabled.
//   - Content hashes (RecordHash): SHA-256 over canonical JSON with domain
//     separation.
//
// Pointer paths ("/a/b/0") address nodes inside a value (Dig) and reference
// targets split into file and pointer parts (SplitTarget).
package ir
