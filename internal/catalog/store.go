// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/estimate-engine/pkg/types"
)

const dbFile = "catalog.db"

// Store is the SQLite-backed normative catalog.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database under dataDir, creating
// the schema if it does not exist.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			unit TEXT NOT NULL,
			section TEXT,
			parameters TEXT,
			composition TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			entry_code TEXT NOT NULL REFERENCES entries(code) ON DELETE CASCADE,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			unit TEXT,
			quantity_per_unit REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_section ON entries(section)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_entry ON resources(entry_code)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entries_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE entries_fts USING fts5(name, composition, content=entries)`,
			`CREATE TRIGGER entries_ai AFTER INSERT ON entries BEGIN
				INSERT INTO entries_fts(rowid, name, composition) VALUES (new.rowid, new.name, new.composition);
			END`,
			`CREATE TRIGGER entries_ad AFTER DELETE ON entries BEGIN
				INSERT INTO entries_fts(entries_fts, rowid, name, composition) VALUES('delete', old.rowid, old.name, old.composition);
			END`,
			`CREATE TRIGGER entries_au AFTER UPDATE ON entries BEGIN
				INSERT INTO entries_fts(entries_fts, rowid, name, composition) VALUES('delete', old.rowid, old.name, old.composition);
				INSERT INTO entries_fts(rowid, name, composition) VALUES (new.rowid, new.name, new.composition);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// catalogFile is the YAML import format.
type catalogFile struct {
	Entries []types.CatalogEntry `yaml:"entries"`
}

// ImportSummary holds counts from a catalog import run.
type ImportSummary struct {
	Imported int
	Failed   int
}

// ImportYAML loads catalog entries from a YAML file and upserts them.
// Per-entry failures are reported to w and counted, not fatal.
func (s *Store) ImportYAML(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing catalog file: %w", err)
	}

	var summary ImportSummary
	for _, entry := range file.Entries {
		if entry.Code == "" || entry.Name == "" {
			fmt.Fprintf(w, "failed  entry %q: missing code or name\n", entry.Code)
			summary.Failed++
			continue
		}
		if err := s.upsertEntry(ctx, entry); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Code, err)
			summary.Failed++
			continue
		}
		summary.Imported++
	}

	fmt.Fprintf(w, "\nimported: %d, failed: %d\n", summary.Imported, summary.Failed)
	return summary, nil
}

func (s *Store) upsertEntry(ctx context.Context, entry types.CatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	paramsJSON, _ := json.Marshal(entry.Parameters)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (code, name, unit, section, parameters, composition)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			name=excluded.name, unit=excluded.unit, section=excluded.section,
			parameters=excluded.parameters, composition=excluded.composition`,
		entry.Code, entry.Name, entry.Unit, entry.Section, string(paramsJSON), entry.Composition,
	)
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM resources WHERE entry_code = ?`, entry.Code,
	); err != nil {
		return fmt.Errorf("clearing old resources: %w", err)
	}

	for _, r := range entry.Resources {
		var qty any
		if r.QuantityPerUnit != nil {
			qty = *r.QuantityPerUnit
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resources (entry_code, type, name, unit, quantity_per_unit)
			 VALUES (?, ?, ?, ?, ?)`,
			entry.Code, string(r.Type), r.Name, r.Unit, qty,
		); err != nil {
			return fmt.Errorf("inserting resource: %w", err)
		}
	}

	return tx.Commit()
}

// FindBySection implements Lookup against the SQLite store.
func (s *Store) FindBySection(ctx context.Context, sections []string) ([]types.CatalogEntry, error) {
	query := `SELECT code, name, unit, section, parameters, composition FROM entries`
	var args []any
	if len(sections) > 0 {
		query += ` WHERE section IN (?` + repeatPlaceholder(len(sections)-1) + `)`
		for _, sec := range sections {
			args = append(args, sec)
		}
	}
	query += ` ORDER BY code`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		resources, err := s.loadResources(ctx, entries[i].Code)
		if err != nil {
			return nil, err
		}
		entries[i].Resources = resources
	}
	return entries, nil
}

// GetByCode implements Lookup against the SQLite store.
func (s *Store) GetByCode(ctx context.Context, code string) (*types.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, name, unit, section, parameters, composition FROM entries WHERE code = ?`, code)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	resources, err := s.loadResources(ctx, code)
	if err != nil {
		return nil, err
	}
	entry.Resources = resources
	return &entry, nil
}

// Search runs an FTS5 query over entry names and compositions, for the
// CLI inspection surface. The pipeline itself scores the full section
// slice and does not use FTS.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.CatalogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.code, e.name, e.unit, e.section, e.parameters, e.composition
		 FROM entries_fts
		 JOIN entries e ON e.rowid = entries_fts.rowid
		 WHERE entries_fts MATCH ?
		 ORDER BY entries_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of catalog entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n)
	return n, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (types.CatalogEntry, error) {
	var (
		entry       types.CatalogEntry
		section     sql.NullString
		paramsJSON  sql.NullString
		composition sql.NullString
	)
	if err := row.Scan(&entry.Code, &entry.Name, &entry.Unit, &section, &paramsJSON, &composition); err != nil {
		if err == sql.ErrNoRows {
			return entry, err
		}
		return entry, fmt.Errorf("scanning entry: %w", err)
	}
	if section.Valid {
		entry.Section = section.String
	}
	if composition.Valid {
		entry.Composition = composition.String
	}
	if paramsJSON.Valid && paramsJSON.String != "" && paramsJSON.String != "null" {
		json.Unmarshal([]byte(paramsJSON.String), &entry.Parameters)
	}
	return entry, nil
}

func (s *Store) loadResources(ctx context.Context, code string) ([]types.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, name, unit, quantity_per_unit FROM resources WHERE entry_code = ?`, code)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var resources []types.Resource
	for rows.Next() {
		var (
			r       types.Resource
			rType   string
			unit    sql.NullString
			qty     sql.NullFloat64
		)
		if err := rows.Scan(&rType, &r.Name, &unit, &qty); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		r.Type = types.ResourceType(rType)
		if unit.Valid {
			r.Unit = unit.String
		}
		if qty.Valid {
			v := qty.Float64
			r.QuantityPerUnit = &v
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
