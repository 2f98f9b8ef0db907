package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/archdb/archdb/internal/index"
	"github.com/archdb/archdb/internal/ir"
	"github.com/archdb/archdb/internal/resolve"
	"github.com/archdb/archdb/internal/schema"
)

// RecordExt is the file extension of architecture record files.
const RecordExt = ".yaml"

// IndexName is the SQLite index file written under the output root.
const IndexName = "index.db"

// Config configures a whole-tree resolution run.
type Config struct {
	// ArchDir is the combined (base+overlay merged) architecture tree.
	ArchDir string

	// OutDir receives one resolved record per input record, the manifest,
	// and the index database.
	OutDir string

	// SchemaDir is the root of the schema tree. Empty disables validation
	// the same way SkipValidation does.
	SchemaDir string

	// SkipValidation skips schema defaulting and validation.
	SkipValidation bool

	// Progress receives progress reporting; nil disables it.
	Progress io.Writer

	// FileMode is applied to every written output record for deterministic
	// permissions. Zero means 0o644.
	FileMode fs.FileMode
}

// Runner drives a whole-tree pass: enumerate, resolve, persist, validate,
// index. Correctness is all-or-nothing: the first fatal error aborts the
// run before the manifest is published, so consumers never observe a
// partial resolved set.
type Runner struct {
	cfg   Config
	store *resolve.Store
	reg   *schema.Registry
}

// New creates a Runner. Each Runner owns a fresh record store, so
// independent runs cannot leak cached resolutions into each other.
func New(cfg Config) *Runner {
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}
	r := &Runner{
		cfg:   cfg,
		store: resolve.NewStore(resolve.Config{Root: cfg.ArchDir, Strict: true}),
	}
	if cfg.SchemaDir != "" {
		r.reg = schema.NewRegistry(cfg.SchemaDir)
	}
	return r
}

// Run executes the two-pass resolution over the architecture tree and
// returns the published manifest.
//
// Pass 1 resolves every record; $parent_of breadcrumbs accumulate from
// descendants regardless of visitation order, so provenance is only
// complete once the whole pass finishes. Pass 2 injects provenance and
// $source, applies schema defaults, validates, persists, and indexes.
func (r *Runner) Run(ctx context.Context) (*Manifest, error) {
	rels, err := r.enumerate()
	if err != nil {
		return nil, err
	}
	if err := r.pruneStale(rels); err != nil {
		return nil, err
	}

	r.progress("pass 1: resolving %d record(s)", len(rels))
	for _, rel := range rels {
		if _, err := r.store.Resolve(rel); err != nil {
			return nil, err
		}
		r.progress("  resolved %s", rel)
	}

	ix, err := index.Open(filepath.Join(r.cfg.OutDir, IndexName))
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	runID := uuid.NewString()
	if err := ix.BeginRun(ctx, runID); err != nil {
		return nil, err
	}

	r.progress("pass 2: persisting %d record(s)", len(rels))
	for _, rel := range rels {
		if err := r.persist(ctx, ix, runID, rel); err != nil {
			return nil, err
		}
		r.progress("  wrote %s", rel)
	}

	if err := ix.FinishRun(ctx, runID, len(rels)); err != nil {
		return nil, err
	}

	manifest := &Manifest{RunID: runID, RecordCount: len(rels), Paths: rels}
	if err := WriteManifest(r.cfg.OutDir, manifest); err != nil {
		return nil, err
	}
	r.progress("manifest published (%d record(s), run %s)", len(rels), runID)
	return manifest, nil
}

// enumerate lists all record paths under the architecture root, sorted for
// a deterministic visitation order.
func (r *Runner) enumerate() ([]string, error) {
	rels, err := listRecords(r.cfg.ArchDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", r.cfg.ArchDir, err)
	}
	sort.Strings(rels)
	return rels, nil
}

// pruneStale deletes outputs whose source record no longer exists. The
// union of source and output sets is what spec enumeration sees, so
// deleted records disappear from the output tree as well.
func (r *Runner) pruneStale(rels []string) error {
	keep := make(map[string]bool, len(rels))
	for _, rel := range rels {
		keep[rel] = true
	}
	existing, err := listRecords(r.cfg.OutDir)
	if err != nil {
		return fmt.Errorf("enumerate outputs %s: %w", r.cfg.OutDir, err)
	}
	for _, rel := range existing {
		if keep[rel] {
			continue
		}
		if err := os.Remove(filepath.Join(r.cfg.OutDir, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		r.progress("pruned stale output %s", rel)
	}
	return nil
}

// persist finalizes one resolved record (provenance, $source, defaults),
// validates it, writes it with deterministic permissions, and indexes it.
func (r *Runner) persist(ctx context.Context, ix *index.Index, runID, rel string) error {
	resolved, err := r.store.Resolve(rel) // memoized from pass 1
	if err != nil {
		return err
	}
	root, ok := resolved.(*ir.Object)
	if !ok {
		return fmt.Errorf("resolved record %s is not a mapping", rel)
	}
	out := root.Clone()

	for _, crumb := range r.store.Breadcrumbs(rel) {
		node, err := ir.Dig(out, crumb.Pointer)
		if err != nil {
			return fmt.Errorf("stamp provenance in %s: %w", rel, err)
		}
		obj, ok := node.(*ir.Object)
		if !ok {
			return fmt.Errorf("stamp provenance in %s: node at %s is not a mapping", rel, crumb.Pointer)
		}
		appendBreadcrumb(obj, crumb.Child)
	}

	absSource, err := filepath.Abs(filepath.Join(r.cfg.ArchDir, rel))
	if err != nil {
		return err
	}
	out.Set(ir.KeySource, ir.String(absSource))

	if ref := schemaRef(out); ref != "" && !r.cfg.SkipValidation && r.reg != nil {
		if err := r.reg.DefaultAndValidate(out, ref, rel); err != nil {
			return err
		}
	}

	data, err := ir.MarshalYAML(out)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	outPath := filepath.Join(r.cfg.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, r.cfg.FileMode); err != nil {
		return err
	}
	// WriteFile's mode only applies at creation and is filtered by the
	// umask; chmod makes permissions deterministic.
	if err := os.Chmod(outPath, r.cfg.FileMode); err != nil {
		return err
	}

	hash, err := ir.RecordHash(out)
	if err != nil {
		return fmt.Errorf("hash %s: %w", rel, err)
	}
	return ix.WriteRecord(ctx, index.Entry{
		RelPath:   rel,
		Name:      recordName(out),
		SchemaRef: schemaRef(out),
		Hash:      hash,
		RunID:     runID,
	})
}

// appendBreadcrumb accumulates a $parent_of entry: a single descendant is a
// scalar, further descendants extend it into an ordered list.
func appendBreadcrumb(obj *ir.Object, child string) {
	existing, ok := obj.Get(ir.KeyParentOf)
	if !ok {
		obj.Set(ir.KeyParentOf, ir.String(child))
		return
	}
	switch v := existing.(type) {
	case ir.String:
		obj.Set(ir.KeyParentOf, ir.Array{v, ir.String(child)})
	case ir.Array:
		obj.Set(ir.KeyParentOf, append(v, ir.String(child)))
	default:
		obj.Set(ir.KeyParentOf, ir.String(child))
	}
}

func schemaRef(obj *ir.Object) string {
	if v, ok := obj.Get(ir.KeySchema); ok {
		if s, ok := v.(ir.String); ok {
			return string(s)
		}
	}
	return ""
}

func recordName(obj *ir.Object) string {
	if v, ok := obj.Get(ir.KeyName); ok {
		if s, ok := v.(ir.String); ok {
			return string(s)
		}
	}
	return ""
}

// listRecords returns the relative paths of all record files under dir,
// slash-separated. A missing dir yields no paths.
func listRecords(dir string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != RecordExt {
			return nil
		}
		if filepath.Base(p) == ManifestName {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *Runner) progress(format string, args ...any) {
	if r.cfg.Progress == nil {
		return
	}
	fmt.Fprintf(r.cfg.Progress, format+"\n", args...)
}
