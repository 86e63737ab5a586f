// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog provides read access to the normative-works catalog.
// The pipeline consumes the Lookup interface; the production implementation
// is a SQLite store populated from YAML, and an in-memory implementation
// backs tests.
package catalog

import (
	"context"
	"sort"

	"github.com/pdiddy/estimate-engine/pkg/types"
)

// Lookup is the read-only catalog access the pipeline depends on.
// Implementations must be safe for concurrent readers.
type Lookup interface {
	// FindBySection returns entries in the named sections, or the whole
	// catalog when sections is empty. Order is by code ascending.
	FindBySection(ctx context.Context, sections []string) ([]types.CatalogEntry, error)

	// GetByCode returns the entry with the given code, or nil when absent.
	GetByCode(ctx context.Context, code string) (*types.CatalogEntry, error)
}

// MemoryLookup is an in-memory Lookup for tests and embedding callers.
type MemoryLookup struct {
	entries map[string]types.CatalogEntry
}

// NewMemoryLookup builds a MemoryLookup from a slice of entries.
func NewMemoryLookup(entries []types.CatalogEntry) *MemoryLookup {
	m := &MemoryLookup{entries: make(map[string]types.CatalogEntry, len(entries))}
	for _, e := range entries {
		m.entries[e.Code] = e
	}
	return m
}

// FindBySection implements Lookup.
func (m *MemoryLookup) FindBySection(_ context.Context, sections []string) ([]types.CatalogEntry, error) {
	want := make(map[string]bool, len(sections))
	for _, s := range sections {
		want[s] = true
	}

	var out []types.CatalogEntry
	for _, e := range m.entries {
		if len(want) == 0 || want[e.Section] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GetByCode implements Lookup.
func (m *MemoryLookup) GetByCode(_ context.Context, code string) (*types.CatalogEntry, error) {
	e, ok := m.entries[code]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
