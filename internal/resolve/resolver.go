package resolve

import (
	"fmt"
	"strconv"

	"github.com/archdb/archdb/internal/ir"
)

// env carries the context of one record's resolution: the store (for
// cross-record references), the owning record's canonical path, and its raw
// root (for intra-record references).
type env struct {
	store     *Store
	ownerPath string
	ownerRoot ir.Value

	// visiting guards intra-record reference chains; cross-record chains
	// are guarded by the store's in-progress markers.
	visiting map[string]bool
}

func newEnv(store *Store, ownerPath string, ownerRoot ir.Value) *env {
	return &env{
		store:     store,
		ownerPath: ownerPath,
		ownerRoot: ownerRoot,
		visiting:  make(map[string]bool),
	}
}

// resolve recursively expands a raw value at the given structural path.
// Scalars pass through, sequences resolve element-wise in order, mappings
// expand $inherits and consume $remove.
func (e *env) resolve(v ir.Value, path string) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Null, ir.Bool, ir.Int, ir.Float, ir.String:
		return val, nil

	case ir.Array:
		out := make(ir.Array, len(val))
		for i, elem := range val {
			rv, err := e.resolve(elem, ir.JoinPointer(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil

	case *ir.Object:
		if val.Has(ir.KeyInherits) {
			return e.resolveInheriting(val, path)
		}
		return e.resolvePlain(val, path)

	default:
		return nil, NewParseError(e.ownerPath, fmt.Sprintf("unknown value type %T at %s", v, path), nil)
	}
}

// resolvePlain resolves every value of a mapping without $inherits, then
// applies and consumes any local $remove.
func (e *env) resolvePlain(obj *ir.Object, path string) (ir.Value, error) {
	out := ir.NewObject()
	for _, k := range obj.Keys() {
		if k == ir.KeyRemove {
			continue
		}
		raw, _ := obj.Get(k)
		rv, err := e.resolve(raw, ir.JoinPointer(path, k))
		if err != nil {
			return nil, err
		}
		out.Set(k, rv)
	}
	if directive, ok := obj.Get(ir.KeyRemove); ok {
		if err := e.applyRemove(out, directive, path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveInheriting expands a mapping carrying $inherits:
//
//  1. Normalize the directive to an ordered target list; remember the
//     original value for the $child_of stamp.
//  2. Resolve each target and merge them, in order, into one synthesized
//     parent (later targets outrank earlier ones on direct conflicts).
//  3. Stamp a $parent_of breadcrumb for each original target.
//  4. Union child keys with parent keys, child keys first. Child values are
//     resolved; a parent-mapping/child-mapping pair deep-merges with the
//     child winning per leaf; a parent mapping paired with a non-mapping
//     child value is taken from the child outright, no merge attempt.
//  5. Apply and consume any $remove.
func (e *env) resolveInheriting(obj *ir.Object, path string) (ir.Value, error) {
	rawInherits, _ := obj.Get(ir.KeyInherits)
	targets, err := e.targetList(rawInherits, path)
	if err != nil {
		return nil, err
	}
	childOf := ir.DeepClone(rawInherits)

	parent := ir.NewObject()
	for _, target := range targets {
		resolved, err := e.resolveTarget(target, path)
		if err != nil {
			return nil, err
		}
		mergeTargetInto(parent, resolved)
	}

	result := ir.NewObject()
	for _, k := range obj.Keys() {
		if k == ir.KeyInherits || k == ir.KeyRemove {
			continue
		}
		raw, _ := obj.Get(k)
		rv, err := e.resolve(raw, ir.JoinPointer(path, k))
		if err != nil {
			return nil, err
		}
		if pv, ok := parent.Get(k); ok {
			if po, pok := pv.(*ir.Object); pok {
				if ro, rok := rv.(*ir.Object); rok {
					result.Set(k, deepMerge(po, ro))
					continue
				}
				// Parent holds a mapping but the child resolved to a
				// non-mapping: the child's value stands outright.
			}
		}
		result.Set(k, rv)
	}
	for _, k := range parent.Keys() {
		if !result.Has(k) {
			pv, _ := parent.Get(k)
			result.Set(k, pv)
		}
	}
	result.Set(ir.KeyChildOf, childOf)

	if directive, ok := obj.Get(ir.KeyRemove); ok {
		if err := e.applyRemove(result, directive, path); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolveTarget resolves one $inherits target to a mapping and stamps the
// breadcrumb on the target record.
func (e *env) resolveTarget(target, childPath string) (*ir.Object, error) {
	file, pointer := ir.SplitTarget(target)

	var (
		node      ir.Value
		crumbFile string
	)
	if file == "" {
		// Intra-record: dig the pointer out of the owning record's raw
		// root, then resolve it.
		if e.visiting[pointer] {
			return nil, NewCycleError([]string{e.ownerPath + "#" + pointer})
		}
		raw, err := ir.Dig(e.ownerRoot, pointer)
		if err != nil {
			return nil, NewReferenceError(e.ownerPath, childPath, fmt.Sprintf("unresolvable target %q: %v", target, err))
		}
		e.visiting[pointer] = true
		resolved, err := e.resolve(raw, pointer)
		delete(e.visiting, pointer)
		if err != nil {
			return nil, err
		}
		node = resolved
		crumbFile = e.ownerPath
	} else {
		// Cross-record: resolve the file through the store so its cache is
		// reused, then dig the pointer out of its resolved root.
		root, err := e.store.Resolve(file)
		if err != nil {
			return nil, err
		}
		resolved, err := ir.Dig(root, pointer)
		if err != nil {
			return nil, NewReferenceError(e.store.Canonical(file), pointer, fmt.Sprintf("unresolvable target %q: %v", target, err))
		}
		node = resolved
		crumbFile = e.store.Canonical(file)
	}

	mapping, ok := node.(*ir.Object)
	if !ok {
		return nil, NewReferenceError(e.ownerPath, childPath, fmt.Sprintf("target %q is not a mapping", target))
	}
	e.store.AddBreadcrumb(crumbFile, pointer, e.ownerPath+"#"+childPath)
	return mapping, nil
}

// targetList normalizes $inherits to an ordered list of target strings.
func (e *env) targetList(v ir.Value, path string) ([]string, error) {
	switch val := v.(type) {
	case ir.String:
		return []string{string(val)}, nil
	case ir.Array:
		targets := make([]string, 0, len(val))
		for _, elem := range val {
			str, ok := elem.(ir.String)
			if !ok {
				return nil, NewParseError(e.ownerPath, fmt.Sprintf("$inherits at %s must list strings, got %T", path, elem), nil)
			}
			targets = append(targets, string(str))
		}
		return targets, nil
	default:
		return nil, NewParseError(e.ownerPath, fmt.Sprintf("$inherits at %s must be a string or list of strings, got %T", path, v), nil)
	}
}

// applyRemove deletes the keys named by a $remove directive. The directive
// itself is consumed and never appears in resolved output.
func (e *env) applyRemove(obj *ir.Object, directive ir.Value, path string) error {
	var names []string
	switch val := directive.(type) {
	case ir.String:
		names = []string{string(val)}
	case ir.Array:
		for _, elem := range val {
			str, ok := elem.(ir.String)
			if !ok {
				return NewParseError(e.ownerPath, fmt.Sprintf("$remove at %s must list strings, got %T", path, elem), nil)
			}
			names = append(names, string(str))
		}
	default:
		return NewParseError(e.ownerPath, fmt.Sprintf("$remove at %s must be a string or list of strings, got %T", path, directive), nil)
	}
	for _, name := range names {
		obj.Delete(name)
	}
	return nil
}

// mergeTargetInto folds one resolved target into the synthesized parent.
// A key already present as a mapping deep-merges with a mapping-valued
// incoming key (the later target winning per leaf); anything else replaces
// with a deep copy.
func mergeTargetInto(parent, target *ir.Object) {
	for _, k := range target.Keys() {
		// Provenance is metadata, never itself inherited.
		if k == ir.KeyChildOf || k == ir.KeyParentOf {
			continue
		}
		tv, _ := target.Get(k)
		if existing, ok := parent.Get(k); ok {
			if eo, eok := existing.(*ir.Object); eok {
				if to, tok := tv.(*ir.Object); tok {
					parent.Set(k, deepMerge(eo, to))
					continue
				}
			}
		}
		parent.Set(k, ir.DeepClone(tv))
	}
}

// deepMerge overlays over onto base, mutating and returning base. Mapping
// pairs recurse; any other pairing takes the overlay value. base must own
// its memory (it is mutated in place); overlay values are deep-copied in.
func deepMerge(base, over *ir.Object) *ir.Object {
	for _, k := range over.Keys() {
		ov, _ := over.Get(k)
		if bv, ok := base.Get(k); ok {
			if bo, bok := bv.(*ir.Object); bok {
				if oo, ook := ov.(*ir.Object); ook {
					base.Set(k, deepMerge(bo, oo))
					continue
				}
			}
		}
		base.Set(k, ir.DeepClone(ov))
	}
	return base
}
