package ir

// Directive and provenance keys recognized inside records. Directive keys
// are consumed during resolution; provenance and source keys survive into
// the persisted output but are never themselves inherited.
const (
	// KeyName is the mandatory record name, matching the file stem.
	KeyName = "name"

	// KeyInherits references one or more ancestor objects to merge into the
	// current object before its own keys take effect.
	KeyInherits = "$inherits"

	// KeyRemove names keys to drop after the inheritance merge.
	KeyRemove = "$remove"

	// KeyChildOf records the original $inherits value on the child.
	KeyChildOf = "$child_of"

	// KeyParentOf records breadcrumbs on a referenced ancestor, one per
	// descendant location, accumulated across the run.
	KeyParentOf = "$parent_of"

	// KeySchema references the schema record used for post-resolution
	// validation and defaulting.
	KeySchema = "$schema"

	// KeySource is the absolute input path stamped on persisted output.
	KeySource = "$source"
)
