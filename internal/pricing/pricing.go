// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pricing provides unit-price lookups for cost aggregation.
// Lookups are keyed by normalized material name and unit; the production
// implementation is a SQLite reference populated from YAML price lists.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/estimate-engine/internal/textutil"
)

// DefaultCurrency is used when a price list does not state one.
const DefaultCurrency = "RUB"

// Price is one unit-price record.
type Price struct {
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Currency  string          `json:"currency" yaml:"currency"`
}

// Lookup is the read-only price access the cost aggregator depends on.
// GetPrice returns (nil, nil) when no price is known; an error means the
// reference itself failed. Implementations must be safe for concurrent
// readers.
type Lookup interface {
	GetPrice(ctx context.Context, materialName, unit string) (*Price, error)
}

// Key returns the normalized lookup key for a material name and unit.
func Key(materialName, unit string) string {
	return textutil.Normalize(materialName) + "|" + textutil.NormalizeUnit(unit)
}

// MemoryLookup is an in-memory Lookup for tests.
type MemoryLookup struct {
	prices map[string]Price
}

// NewMemoryLookup builds a MemoryLookup. Keys are normalized on insert.
func NewMemoryLookup() *MemoryLookup {
	return &MemoryLookup{prices: make(map[string]Price)}
}

// Set registers a price for a material name and unit.
func (m *MemoryLookup) Set(materialName, unit string, unitPrice decimal.Decimal) {
	m.prices[Key(materialName, unit)] = Price{UnitPrice: unitPrice, Currency: DefaultCurrency}
}

// GetPrice implements Lookup.
func (m *MemoryLookup) GetPrice(_ context.Context, materialName, unit string) (*Price, error) {
	p, ok := m.prices[Key(materialName, unit)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
