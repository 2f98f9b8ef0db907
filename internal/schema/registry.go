package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/archdb/archdb/internal/ir"
)

// refKey is the JSON Schema cross-reference keyword recognized inside
// schema documents.
const refKey = "$ref"

// Registry lazily loads schema documents from a fixed schema root and
// serves sub-schemas by reference. Cross-schema $ref targets are resolved
// through the registry itself and inlined, so a served schema is always
// self-contained. Loaded documents and compiled validators are memoized for
// the registry's lifetime.
type Registry struct {
	root     string
	ctx      *cue.Context
	docs     map[string]ir.Value  // inlined documents by canonical path
	compiled map[string]cue.Value // compiled validators by full reference
	loading  map[string]bool      // document-level $ref cycle guard
}

// NewRegistry creates a Registry over the given schema root directory.
func NewRegistry(root string) *Registry {
	return &Registry{
		root:     root,
		ctx:      cuecontext.New(),
		docs:     make(map[string]ir.Value),
		compiled: make(map[string]cue.Value),
		loading:  make(map[string]bool),
	}
}

// Schema returns the self-contained sub-schema addressed by ref, of the
// form "<relative-path>#<pointer>".
func (r *Registry) Schema(ref string) (ir.Value, error) {
	file, pointer := ir.SplitTarget(ref)
	if file == "" {
		return nil, &SchemaNotFoundError{Ref: ref, Err: errors.New("schema reference has no file part")}
	}
	doc, err := r.document(file)
	if err != nil {
		return nil, err
	}
	node, err := ir.Dig(doc, pointer)
	if err != nil {
		return nil, &SchemaNotFoundError{Ref: ref, Err: err}
	}
	return node, nil
}

// document loads, parses, and ref-inlines one schema file.
func (r *Registry) document(rel string) (ir.Value, error) {
	key := path.Clean(filepath.ToSlash(rel))
	if doc, ok := r.docs[key]; ok {
		return doc, nil
	}
	if r.loading[key] {
		return nil, &SchemaNotFoundError{Ref: key, Err: errors.New("cyclic schema document reference")}
	}
	r.loading[key] = true
	defer delete(r.loading, key)

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SchemaNotFoundError{Ref: key}
		}
		return nil, err
	}
	docs, err := ir.DecodeDocuments(data)
	if err != nil {
		return nil, &SchemaNotFoundError{Ref: key, Err: err}
	}
	if len(docs) == 0 {
		return nil, &SchemaNotFoundError{Ref: key, Err: errors.New("schema file holds no document")}
	}

	inlined, err := r.inline(docs[0], key, docs[0], make(map[string]bool))
	if err != nil {
		return nil, err
	}
	r.docs[key] = inlined
	return inlined, nil
}

// inline replaces every $ref node with a deep copy of its target. seen
// guards same-document reference chains; cross-document chains are guarded
// by the loading set.
func (r *Registry) inline(v ir.Value, docKey string, rawDoc ir.Value, seen map[string]bool) (ir.Value, error) {
	switch val := v.(type) {
	case *ir.Object:
		if refVal, ok := val.Get(refKey); ok {
			str, ok := refVal.(ir.String)
			if !ok {
				return nil, &SchemaNotFoundError{Ref: docKey, Err: fmt.Errorf("$ref must be a string, got %T", refVal)}
			}
			return r.inlineRef(string(str), docKey, rawDoc, seen)
		}
		out := ir.NewObject()
		for _, k := range val.Keys() {
			elem, _ := val.Get(k)
			iv, err := r.inline(elem, docKey, rawDoc, seen)
			if err != nil {
				return nil, err
			}
			out.Set(k, iv)
		}
		return out, nil

	case ir.Array:
		out := make(ir.Array, len(val))
		for i, elem := range val {
			iv, err := r.inline(elem, docKey, rawDoc, seen)
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil

	default:
		return val, nil
	}
}

func (r *Registry) inlineRef(ref, docKey string, rawDoc ir.Value, seen map[string]bool) (ir.Value, error) {
	file, pointer := ir.SplitTarget(ref)

	if file == "" {
		full := docKey + "#" + pointer
		if seen[full] {
			return nil, &SchemaNotFoundError{Ref: full, Err: errors.New("cyclic schema reference")}
		}
		node, err := ir.Dig(rawDoc, pointer)
		if err != nil {
			return nil, &SchemaNotFoundError{Ref: docKey + "#" + pointer, Err: err}
		}
		seen[full] = true
		out, err := r.inline(node, docKey, rawDoc, seen)
		delete(seen, full)
		return out, err
	}

	// Cross-document references land in an already-inlined document.
	doc, err := r.document(file)
	if err != nil {
		return nil, err
	}
	node, err := ir.Dig(doc, pointer)
	if err != nil {
		return nil, &SchemaNotFoundError{Ref: ref, Err: err}
	}
	return ir.DeepClone(node), nil
}
