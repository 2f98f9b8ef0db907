package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/jsonschema"

	"github.com/archdb/archdb/internal/ir"
)

// DefaultAndValidate resolves schemaRef through the registry, injects the
// schema's defaults into record (mutating it), and validates the defaulted
// record. file names the record for error context. On violation the
// returned ValidationError carries the single most relevant failing
// constraint and instance location.
func (r *Registry) DefaultAndValidate(record ir.Value, schemaRef, file string) error {
	node, err := r.Schema(schemaRef)
	if err != nil {
		return err
	}

	ApplyDefaults(record, node)

	validator, err := r.compiledSchema(schemaRef, node)
	if err != nil {
		return err
	}

	instJSON, err := ir.MarshalCanonical(record)
	if err != nil {
		return fmt.Errorf("encode %s for validation: %w", file, err)
	}
	inst := r.ctx.CompileBytes(instJSON, cue.Filename(file))
	if err := inst.Err(); err != nil {
		return fmt.Errorf("build instance %s: %w", file, err)
	}

	unified := validator.Unify(inst)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationError(err, schemaRef, file)
	}
	return nil
}

// compiledSchema converts an inlined schema node to a CUE validator,
// memoized per reference. The schema document (JSON Schema vocabulary,
// authored as YAML) is serialized to JSON, extracted to CUE constraints,
// and built once.
func (r *Registry) compiledSchema(ref string, node ir.Value) (cue.Value, error) {
	if v, ok := r.compiled[ref]; ok {
		return v, nil
	}

	schemaJSON, err := ir.MarshalCanonical(node)
	if err != nil {
		return cue.Value{}, &SchemaNotFoundError{Ref: ref, Err: err}
	}
	data := r.ctx.CompileBytes(schemaJSON, cue.Filename(ref))
	if err := data.Err(); err != nil {
		return cue.Value{}, &SchemaNotFoundError{Ref: ref, Err: err}
	}

	file, err := jsonschema.Extract(data, &jsonschema.Config{})
	if err != nil {
		return cue.Value{}, &SchemaNotFoundError{Ref: ref, Err: fmt.Errorf("extract schema: %w", err)}
	}
	v := r.ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return cue.Value{}, &SchemaNotFoundError{Ref: ref, Err: fmt.Errorf("build schema: %w", err)}
	}

	r.compiled[ref] = v
	return v, nil
}

// toValidationError reduces a CUE validation failure to the single most
// relevant constraint: the first reported error, which CUE orders by
// position.
func toValidationError(err error, schemaRef, file string) *ValidationError {
	ve := &ValidationError{
		File:       file,
		Schema:     schemaRef,
		Constraint: err.Error(),
	}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		first := errs[0]
		ve.Constraint = first.Error()
		if path := first.Path(); len(path) > 0 {
			ve.Location = "/" + strings.Join(path, "/")
		}
	}
	return ve
}
