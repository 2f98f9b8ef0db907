// Package resolve expands the declarative record graph into self-contained
// records.
//
// The Store addresses, loads, and memoizes records by canonical path under
// an architecture root; each path resolves at most once per Store lifetime.
// Resolution is a recursive descent over the record's values: $inherits
// directives expand into a synthesized parent merged beneath the child's own
// keys, $remove directives drop keys after the merge, and provenance is
// tracked through $child_of stamps and append-only $parent_of breadcrumb
// lists owned by the Store.
//
// Resolution is referentially transparent: resolving path P yields identical
// output whether or not unrelated path Q was resolved first. Breadcrumbs
// live outside cached values precisely to preserve that property.
//
// Failure modes are PARSE_ERROR (malformed source), REFERENCE_ERROR
// (dangling $inherits target), and CYCLE_ERROR (a reference chain revisiting
// a resolution still in progress). All are fatal; there is no partial-result
// recovery, because downstream generators require an exactly-consistent
// resolved set.
package resolve
