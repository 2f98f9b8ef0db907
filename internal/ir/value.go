package ir

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface representing the constrained value shapes a
// record may hold. Only Null, Bool, Int, Float, String, Array, and *Object
// implement it. The variant is fixed at parse time; resolution dispatches on
// it with exhaustive type switches.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an explicit YAML/JSON null.
// An explicit type keeps nil out of the Value domain entirely.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean scalar.
type Bool bool

func (Bool) value() {}

// Int represents an integer scalar. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point scalar.
type Float float64

func (Float) value() {}

// String represents a string scalar.
type String string

func (String) value() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) value() {}

// Object is an ordered mapping of string keys to values. Key order is
// insertion order, matching the order keys appear in the source document.
// Always construct via NewObject; the zero value is usable but empty.
type Object struct {
	keys []string
	vals map[string]Value
}

func (*Object) value() {}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Pair is a key-value pair for literal Object construction in tests and
// programmatic builders.
type Pair struct {
	Key   string
	Value Value
}

// NewObjectFromPairs creates an Object with the given entries, in order.
func NewObjectFromPairs(pairs ...Pair) *Object {
	obj := NewObject()
	for _, p := range pairs {
		obj.Set(p.Key, p.Value)
	}
	return obj
}

// P is a shorthand Pair constructor for ergonomic construction.
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Get returns the value for key, if present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Set assigns key to value. A new key is appended; an existing key keeps its
// position.
func (o *Object) Set(key string, value Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = value
}

// Delete removes key, preserving the order of the remaining entries.
// Returns true if the key was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.vals[key]; !ok {
		return false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	out := &Object{
		keys: slices.Clone(o.keys),
		vals: make(map[string]Value, len(o.vals)),
	}
	for k, v := range o.vals {
		out.vals[k] = DeepClone(v)
	}
	return out
}

// DeepClone returns a deep copy of v. Scalars are immutable and returned
// as-is; arrays and objects are copied recursively.
func DeepClone(v Value) Value {
	switch val := v.(type) {
	case Null, Bool, Int, Float, String:
		return val
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = DeepClone(elem)
		}
		return out
	case *Object:
		return val.Clone()
	default:
		panic(fmt.Sprintf("ir: unknown Value type %T", v))
	}
}

// Equal reports structural equality of two values. Object key order is
// ignored; only the key set and per-key values matter.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.vals {
			w, ok := bv.vals[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SortedKeys returns keys ordered by UTF-16 code units, the ordering used by
// canonical JSON serialization. Insertion order is not touched.
func (o *Object) SortedKeys() []string {
	keys := slices.Clone(o.keys)
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code units. Go's native string
// comparison is UTF-8 byte order, which differs for supplementary-plane
// characters.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
