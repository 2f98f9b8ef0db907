package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitTarget splits a reference target of the form
// "<relative-file-path>#<pointer-path>" into its two parts. A target with no
// "#" is all file path; an empty file part addresses the owning record.
func SplitTarget(target string) (file, pointer string) {
	file, pointer, found := strings.Cut(target, "#")
	if !found {
		return target, "/"
	}
	if pointer == "" {
		pointer = "/"
	}
	return file, pointer
}

// JoinPointer appends a segment to a structural pointer path.
func JoinPointer(pointer, segment string) string {
	if pointer == "" || pointer == "/" {
		return "/" + segment
	}
	return pointer + "/" + segment
}

// Dig walks a "/"-separated pointer path into a value. Object segments are
// keys; array segments are decimal indices. "/" and "" address the root.
func Dig(root Value, pointer string) (Value, error) {
	current := root
	for _, seg := range strings.Split(pointer, "/") {
		if seg == "" {
			continue
		}
		switch node := current.(type) {
		case *Object:
			v, ok := node.Get(seg)
			if !ok {
				return nil, fmt.Errorf("pointer %q: no key %q", pointer, seg)
			}
			current = v
		case Array:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("pointer %q: segment %q is not an array index", pointer, seg)
			}
			if idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("pointer %q: index %d out of range (len %d)", pointer, idx, len(node))
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("pointer %q: cannot descend into %T at %q", pointer, current, seg)
		}
	}
	return current, nil
}
