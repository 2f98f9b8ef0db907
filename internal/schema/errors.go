package schema

import "fmt"

// SchemaNotFoundError indicates an unresolvable $schema or $ref target.
type SchemaNotFoundError struct {
	Ref string // the reference that failed, "<relative-path>#<pointer>"
	Err error  // underlying cause, optional
}

func (e *SchemaNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("SCHEMA_NOT_FOUND: schema %q: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("SCHEMA_NOT_FOUND: schema %q not found", e.Ref)
}

func (e *SchemaNotFoundError) Unwrap() error { return e.Err }

// ValidationError indicates a resolved record violating its schema. It
// carries the single most relevant failing constraint and the instance
// location, not an exhaustive error list.
type ValidationError struct {
	File       string // record path, filled by the caller
	Schema     string // schema reference the record declared
	Location   string // pointer path of the offending instance node
	Constraint string // the failing constraint, human-readable
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("VALIDATION_ERROR: %s", e.Constraint)
	if e.File != "" {
		msg += fmt.Sprintf(" (file=%s", e.File)
		if e.Location != "" {
			msg += fmt.Sprintf(", path=%s", e.Location)
		}
		msg += ")"
	} else if e.Location != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Location)
	}
	return msg
}
