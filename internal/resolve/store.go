package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/archdb/archdb/internal/ir"
)

// Config configures a Store.
type Config struct {
	// Root is the architecture root directory all record paths are
	// relative to.
	Root string

	// Strict enforces that a record file holds exactly one document whose
	// root is a mapping carrying a name key equal to the file stem.
	Strict bool
}

// Breadcrumb marks one descendant of a node inside a resolved record.
type Breadcrumb struct {
	// Pointer addresses the inherited-from node within the target record.
	Pointer string

	// Child is the descendant's location, "<relative-path>#<pointer>".
	Child string
}

// Store addresses, loads, and memoizes records under an architecture root.
// Each path is resolved at most once per Store lifetime; the cache is owned
// by the instance, so independent runs cannot leak state into each other.
//
// Provenance breadcrumbs accumulate in an explicit append-only list per
// record rather than by mutating cached values: the cached resolution of a
// path is therefore identical no matter which descendants were resolved
// before or after it.
//
// A Store is not safe for unsynchronized concurrent use.
type Store struct {
	cfg        Config
	cache      map[string]ir.Value
	inProgress map[string]bool
	stack      []string
	crumbs     map[string][]Breadcrumb
}

// NewStore creates a Store over the given architecture root.
func NewStore(cfg Config) *Store {
	return &Store{
		cfg:        cfg,
		cache:      make(map[string]ir.Value),
		inProgress: make(map[string]bool),
		crumbs:     make(map[string][]Breadcrumb),
	}
}

// Root returns the architecture root directory.
func (s *Store) Root() string { return s.cfg.Root }

// Canonical normalizes a record path to its cache key: slash-separated and
// cleaned.
func (s *Store) Canonical(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}

// Load reads and parses the record file at rel, returning its documents.
// Malformed syntax yields a ParseError; a missing file yields fs.ErrNotExist
// for the caller to classify.
func (s *Store) Load(rel string) ([]ir.Value, error) {
	key := s.Canonical(rel)
	data, err := os.ReadFile(filepath.Join(s.cfg.Root, filepath.FromSlash(key)))
	if err != nil {
		return nil, err
	}
	docs, err := ir.DecodeDocuments(data)
	if err != nil {
		return nil, NewParseError(key, "malformed record source", err)
	}
	return docs, nil
}

// Resolve returns the fully resolved record at rel, computing it on first
// request and serving the memoized value afterwards. Resolution of a path
// already in progress means the reference chain has looped back on itself
// and raises a CycleError instead of recursing unbounded.
func (s *Store) Resolve(rel string) (ir.Value, error) {
	key := s.Canonical(rel)
	if v, ok := s.cache[key]; ok {
		return v, nil
	}
	if s.inProgress[key] {
		return nil, NewCycleError(append(slices.Clone(s.stack), key))
	}

	docs, err := s.Load(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewReferenceError(key, "", "record file not found")
		}
		return nil, err
	}
	root, err := s.checkRecord(key, docs)
	if err != nil {
		return nil, err
	}

	s.inProgress[key] = true
	s.stack = append(s.stack, key)
	defer func() {
		delete(s.inProgress, key)
		s.stack = s.stack[:len(s.stack)-1]
	}()

	env := newEnv(s, key, root)
	resolved, err := env.resolve(root, "/")
	if err != nil {
		return nil, err
	}
	s.cache[key] = resolved
	return resolved, nil
}

// checkRecord enforces the single-record-per-file shape and, in strict
// mode, the name-matches-stem invariant.
func (s *Store) checkRecord(key string, docs []ir.Value) (*ir.Object, error) {
	if len(docs) == 0 {
		return nil, NewParseError(key, "record file holds no document", nil)
	}
	if s.cfg.Strict && len(docs) > 1 {
		return nil, NewParseError(key, fmt.Sprintf("record file holds %d documents, want 1", len(docs)), nil)
	}
	root, ok := docs[0].(*ir.Object)
	if !ok {
		return nil, NewParseError(key, "record root must be a mapping", nil)
	}
	if s.cfg.Strict {
		stem := strings.TrimSuffix(path.Base(key), path.Ext(key))
		name, ok := root.Get(ir.KeyName)
		if !ok {
			return nil, NewParseError(key, "record is missing a name key", nil)
		}
		if str, ok := name.(ir.String); !ok || string(str) != stem {
			return nil, NewParseError(key, fmt.Sprintf("record name %v does not match file stem %q", name, stem), nil)
		}
	}
	return root, nil
}

// AddBreadcrumb records that the node at pointer inside rel has the given
// descendant. Duplicate breadcrumbs collapse.
func (s *Store) AddBreadcrumb(rel, pointer, child string) {
	key := s.Canonical(rel)
	crumb := Breadcrumb{Pointer: pointer, Child: child}
	if slices.Contains(s.crumbs[key], crumb) {
		return
	}
	s.crumbs[key] = append(s.crumbs[key], crumb)
}

// Breadcrumbs returns the accumulated descendant breadcrumbs for rel, in
// the order they were recorded.
func (s *Store) Breadcrumbs(rel string) []Breadcrumb {
	return slices.Clone(s.crumbs[s.Canonical(rel)])
}
