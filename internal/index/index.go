package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry describes one resolved record in the index.
type Entry struct {
	RelPath   string // output path relative to the output root
	Name      string // the record's name key
	SchemaRef string // declared $schema reference, empty if none
	Hash      string // content hash of the resolved record
	RunID     string // run that last produced this record
}

// Index is the SQLite database of resolved records kept next to the output
// tree for downstream enumeration and change detection.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database at the given path, applying the
// required pragmas and schema. Idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to index database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// BeginRun registers a run before its records are written.
func (ix *Index) BeginRun(ctx context.Context, runID string) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO runs (run_id) VALUES (?)
		ON CONFLICT(run_id) DO NOTHING
	`, runID)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the final record count of a completed run and prunes
// index entries for records the run no longer produced.
func (ix *Index) FinishRun(ctx context.Context, runID string, recordCount int) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finish run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE run_id != ?`, runID); err != nil {
		return fmt.Errorf("finish run: prune: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET record_count = ? WHERE run_id = ?`, recordCount, runID); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return tx.Commit()
}

// WriteRecord upserts one resolved record entry.
func (ix *Index) WriteRecord(ctx context.Context, e Entry) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO records (rel_path, name, schema_ref, hash, run_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(rel_path) DO UPDATE SET
			name = excluded.name,
			schema_ref = excluded.schema_ref,
			hash = excluded.hash,
			run_id = excluded.run_id
	`, e.RelPath, e.Name, e.SchemaRef, e.Hash, e.RunID)
	if err != nil {
		return fmt.Errorf("write record %s: %w", e.RelPath, err)
	}
	return nil
}

// Records returns all index entries ordered by relative path.
func (ix *Index) Records(ctx context.Context) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT rel_path, name, schema_ref, hash, run_id
		FROM records
		ORDER BY rel_path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RelPath, &e.Name, &e.SchemaRef, &e.Hash, &e.RunID); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
