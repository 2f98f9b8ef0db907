package overlay

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/archdb/archdb/internal/ir"
)

// MergePatch applies patch to base following JSON Merge Patch (RFC 7386)
// semantics: an object patch recurses key by key (creating the base mapping
// if absent), a null patch value deletes the key, and any other patch value
// replaces the base value with a deep copy. Neither input is mutated.
func MergePatch(base, patch ir.Value) ir.Value {
	patchObj, ok := patch.(*ir.Object)
	if !ok {
		return ir.DeepClone(patch)
	}

	target, ok := base.(*ir.Object)
	if !ok {
		target = ir.NewObject()
	} else {
		target = target.Clone()
	}

	for _, k := range patchObj.Keys() {
		pv, _ := patchObj.Get(k)
		if _, isNull := pv.(ir.Null); isNull {
			target.Delete(k)
			continue
		}
		bv, _ := target.Get(k)
		target.Set(k, MergePatch(bv, pv))
	}
	return target
}

// MergeFile produces outDir/rel from baseDir/rel and overlayDir/rel:
//
//   - only one side exists: copy it, unless the output is already newer
//     than the source
//   - both exist: parse both and apply MergePatch
//   - neither exists but a stale output does: delete the output
//
// The modification-time comparison makes repeated merges incremental and
// idempotent.
func MergeFile(rel, baseDir, overlayDir, outDir string) error {
	basePath := filepath.Join(baseDir, rel)
	overlayPath := filepath.Join(overlayDir, rel)
	outPath := filepath.Join(outDir, rel)

	baseInfo, baseErr := os.Stat(basePath)
	overlayInfo, overlayErr := os.Stat(overlayPath)
	baseExists := baseErr == nil
	overlayExists := overlayErr == nil
	if baseErr != nil && !errors.Is(baseErr, fs.ErrNotExist) {
		return baseErr
	}
	if overlayErr != nil && !errors.Is(overlayErr, fs.ErrNotExist) {
		return overlayErr
	}

	switch {
	case !baseExists && !overlayExists:
		if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil

	case baseExists && !overlayExists:
		return copyIfStale(basePath, baseInfo, outPath)

	case !baseExists && overlayExists:
		return copyIfStale(overlayPath, overlayInfo, outPath)

	default:
		base, err := loadSingle(basePath)
		if err != nil {
			return err
		}
		patch, err := loadSingle(overlayPath)
		if err != nil {
			return err
		}
		merged := MergePatch(base, patch)
		data, err := ir.MarshalYAML(merged)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rel, err)
		}
		return writeFile(outPath, data)
	}
}

// MergeTree merges every record path present in baseDir or overlayDir into
// outDir, and prunes outputs whose sources vanished. ext filters the record
// files considered (e.g. ".yaml").
func MergeTree(baseDir, overlayDir, outDir, ext string) error {
	paths := make(map[string]bool)
	for _, dir := range []string{baseDir, overlayDir, outDir} {
		rels, err := listTree(dir, ext)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			paths[rel] = true
		}
	}
	for rel := range paths {
		if err := MergeFile(rel, baseDir, overlayDir, outDir); err != nil {
			return fmt.Errorf("merge %s: %w", rel, err)
		}
	}
	return nil
}

// listTree returns the relative paths of all files under dir with the given
// extension. A missing dir yields no paths.
func listTree(dir, ext string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ext {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// copyIfStale copies src to dst unless dst already exists and is at least as
// new as src.
func copyIfStale(src string, srcInfo fs.FileInfo, dst string) error {
	if dstInfo, err := os.Stat(dst); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFile(dst, data)
}

// loadSingle parses the first YAML document of a record file.
func loadSingle(path string) (ir.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := ir.DecodeDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(docs) == 0 {
		return ir.Null{}, nil
	}
	return docs[0], nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
