// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v3"
)

const dbFile = "prices.db"

// Store is the SQLite-backed unit-price reference.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the price database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening price database: %w", err)
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS prices (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			unit TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			currency TEXT NOT NULL
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// priceFile is the YAML import format. Prices are decimal strings so no
// binary-float rounding enters the reference.
type priceFile struct {
	Currency string `yaml:"currency"`
	Prices   []struct {
		Name      string `yaml:"name"`
		Unit      string `yaml:"unit"`
		UnitPrice string `yaml:"unit_price"`
	} `yaml:"prices"`
}

// ImportSummary holds counts from a price list import.
type ImportSummary struct {
	Imported int
	Failed   int
}

// ImportYAML loads a YAML price list and upserts the records. Per-record
// failures are reported to w and counted, not fatal.
func (s *Store) ImportYAML(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading price file: %w", err)
	}
	return s.importData(ctx, data, w)
}

func (s *Store) importData(ctx context.Context, data []byte, w io.Writer) (ImportSummary, error) {
	var file priceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing price file: %w", err)
	}

	currency := file.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	var summary ImportSummary
	for _, p := range file.Prices {
		price, err := decimal.NewFromString(p.UnitPrice)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: bad unit price %q: %v\n", p.Name, p.UnitPrice, err)
			summary.Failed++
			continue
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO prices (key, name, unit, unit_price, currency)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET
				name=excluded.name, unit=excluded.unit,
				unit_price=excluded.unit_price, currency=excluded.currency`,
			Key(p.Name, p.Unit), p.Name, p.Unit, price.String(), currency,
		)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p.Name, err)
			summary.Failed++
			continue
		}
		summary.Imported++
	}

	fmt.Fprintf(w, "\nimported: %d, failed: %d\n", summary.Imported, summary.Failed)
	return summary, nil
}

// GetPrice implements Lookup against the SQLite reference.
func (s *Store) GetPrice(ctx context.Context, materialName, unit string) (*Price, error) {
	var (
		priceStr string
		currency string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT unit_price, currency FROM prices WHERE key = ?`, Key(materialName, unit),
	).Scan(&priceStr, &currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying price: %w", err)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt price record for %q: %w", materialName, err)
	}
	return &Price{UnitPrice: price, Currency: currency}, nil
}

// Count returns the number of price records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM prices`).Scan(&n)
	return n, err
}
