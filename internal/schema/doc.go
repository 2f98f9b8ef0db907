// Package schema validates resolved records against their declared schemas
// and backfills default values.
//
// Schemas are JSON Schema documents authored as YAML, addressed by
// "<relative-path>#<pointer>" from a record's $schema key. The Registry
// lazily loads them from a fixed schema root, inlines cross-schema $ref
// targets, and compiles each referenced schema once into a CUE validator.
// Records without an explicit schema reference pass through unvalidated and
// undefaulted.
//
// Defaulting mutates the instance before validation, so persisted output
// always carries injected defaults. Validation failures report the single
// most relevant failing constraint and the offending instance location,
// never an exhaustive list.
package schema
