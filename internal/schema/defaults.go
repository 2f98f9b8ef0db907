package schema

import "github.com/archdb/archdb/internal/ir"

// ApplyDefaults walks the schema's declared object properties top-down and
// mutates instance so every property carrying a default value that the
// instance does not already set gets that default. Defaults nested beneath
// freshly injected mappings populate too. Instance values the record sets
// explicitly are never touched.
func ApplyDefaults(instance, schema ir.Value) {
	schemaObj, ok := schema.(*ir.Object)
	if !ok {
		return
	}

	if obj, ok := instance.(*ir.Object); ok {
		if props, ok := schemaObj.Get("properties"); ok {
			if propsObj, ok := props.(*ir.Object); ok {
				applyPropertyDefaults(obj, propsObj)
			}
		}
	}

	if arr, ok := instance.(ir.Array); ok {
		if items, ok := schemaObj.Get("items"); ok {
			for _, elem := range arr {
				ApplyDefaults(elem, items)
			}
		}
	}
}

func applyPropertyDefaults(obj, props *ir.Object) {
	for _, name := range props.Keys() {
		sub, _ := props.Get(name)
		subSchema, ok := sub.(*ir.Object)
		if !ok {
			continue
		}
		if def, ok := subSchema.Get("default"); ok && !obj.Has(name) {
			obj.Set(name, ir.DeepClone(def))
		}
		if child, ok := obj.Get(name); ok {
			ApplyDefaults(child, subSchema)
		}
	}
}
