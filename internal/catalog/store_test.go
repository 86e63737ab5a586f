// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeCatalogYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const sampleCatalog = `
entries:
  - code: "ГЭСН 16-02-005-01"
    name: "Укладка трубопроводов стальных диаметром 100 мм"
    unit: "м"
    section: "pipelines"
    parameters:
      диаметр: "100 мм"
    composition: "Разработка траншеи. Укладка труб. Сварка стыков."
    resources:
      - type: labor
        name: "Затраты труда рабочих"
        unit: "чел·ч"
        quantity_per_unit: 0.82
      - type: machine
        name: "Краны на автомобильном ходу"
        unit: "маш·ч"
        quantity_per_unit: 0.12
  - code: "ГЭСН 08-01-002-01"
    name: "Устройство бетонной подготовки"
    unit: "м³"
    section: "concrete"
    resources:
      - type: labor
        name: "Затраты труда рабочих"
        unit: "чел·ч"
        quantity_per_unit: 4.3
`

func TestImportYAMLAndGetByCode(t *testing.T) {
	store := testStore(t)

	path := writeCatalogYAML(t, sampleCatalog)
	summary, err := store.ImportYAML(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if summary.Imported != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 imported, 0 failed", summary)
	}

	entry, err := store.GetByCode(context.Background(), "ГЭСН 16-02-005-01")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if entry == nil {
		t.Fatal("entry = nil, want the imported record")
	}
	if entry.Unit != "м" || entry.Section != "pipelines" {
		t.Errorf("entry = %+v, want unit м section pipelines", entry)
	}
	if entry.Parameters["диаметр"] != "100 мм" {
		t.Errorf("Parameters = %v, want диаметр = 100 мм", entry.Parameters)
	}
	if len(entry.Resources) != 2 {
		t.Fatalf("len(Resources) = %d, want 2", len(entry.Resources))
	}
	labor := entry.LaborResources()
	if len(labor) != 1 {
		t.Fatalf("len(LaborResources) = %d, want 1", len(labor))
	}
	if *labor[0].QuantityPerUnit != 0.82 {
		t.Errorf("QuantityPerUnit = %f, want 0.82", *labor[0].QuantityPerUnit)
	}
}

func TestGetByCodeUnknownReturnsNil(t *testing.T) {
	store := testStore(t)
	entry, err := store.GetByCode(context.Background(), "НЕТ-ТАКОГО")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}
}

func TestFindBySection(t *testing.T) {
	store := testStore(t)
	path := writeCatalogYAML(t, sampleCatalog)
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}

	tests := []struct {
		name     string
		sections []string
		want     int
	}{
		{"all sections when empty", nil, 2},
		{"one section", []string{"pipelines"}, 1},
		{"multiple sections", []string{"pipelines", "concrete"}, 2},
		{"unknown section", []string{"earthworks"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.FindBySection(context.Background(), tt.sections)
			if err != nil {
				t.Fatalf("FindBySection: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("len(entries) = %d, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestFindBySectionOrderedByCode(t *testing.T) {
	store := testStore(t)
	path := writeCatalogYAML(t, sampleCatalog)
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}

	entries, err := store.FindBySection(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindBySection: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Code > entries[i].Code {
			t.Errorf("entries not ordered by code: %q before %q", entries[i-1].Code, entries[i].Code)
		}
	}
	// Resources ride along on bulk reads too.
	if len(entries) > 0 && len(entries[0].Resources) == 0 {
		t.Error("FindBySection entries should carry resources")
	}
}

func TestImportYAMLUpsertReplaces(t *testing.T) {
	store := testStore(t)

	path := writeCatalogYAML(t, sampleCatalog)
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err != nil {
		t.Fatalf("first import: %v", err)
	}

	updated := strings.Replace(sampleCatalog, "Устройство бетонной подготовки",
		"Устройство бетонной подготовки толщиной 100 мм", 1)
	path2 := writeCatalogYAML(t, updated)
	if _, err := store.ImportYAML(context.Background(), path2, io.Discard); err != nil {
		t.Fatalf("second import: %v", err)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2 (upsert, not duplicate)", count)
	}

	entry, err := store.GetByCode(context.Background(), "ГЭСН 08-01-002-01")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if !strings.Contains(entry.Name, "толщиной 100 мм") {
		t.Errorf("Name = %q, want the updated name", entry.Name)
	}
	// The resource set is replaced, not appended.
	if len(entry.Resources) != 1 {
		t.Errorf("len(Resources) = %d, want 1 after re-import", len(entry.Resources))
	}
}

func TestImportYAMLCountsBadEntries(t *testing.T) {
	store := testStore(t)

	path := writeCatalogYAML(t, `
entries:
  - code: "ГЭСН-OK"
    name: "Нормальная запись"
    unit: "м"
  - code: ""
    name: "Без кода"
    unit: "м"
  - code: "ГЭСН-БЕЗ-ИМЕНИ"
    name: ""
    unit: "м"
`)

	var out strings.Builder
	summary, err := store.ImportYAML(context.Background(), path, &out)
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if summary.Imported != 1 || summary.Failed != 2 {
		t.Errorf("summary = %+v, want 1 imported, 2 failed", summary)
	}
	if !strings.Contains(out.String(), "missing code or name") {
		t.Errorf("output = %q, want per-entry failure lines", out.String())
	}
}

func TestImportYAMLMalformedFile(t *testing.T) {
	store := testStore(t)
	path := writeCatalogYAML(t, "entries: [not: {valid")
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestSearchFullText(t *testing.T) {
	store := testStore(t)
	path := writeCatalogYAML(t, sampleCatalog)
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}

	entries, err := store.Search(context.Background(), "трубопроводов", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Code != "ГЭСН 16-02-005-01" {
		t.Errorf("found %q, want the pipeline entry", entries[0].Code)
	}

	// Composition is indexed too.
	entries, err = store.Search(context.Background(), "Сварка", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("composition search found %d entries, want 1", len(entries))
	}
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	path := writeCatalogYAML(t, sampleCatalog)
	if _, err := store.ImportYAML(context.Background(), path, io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	store.Close()

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count after reopen = %d, want 2", count)
	}
}
