// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

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

func writePriceYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const samplePrices = `
currency: RUB
prices:
  - name: "Труба стальная"
    unit: "м"
    unit_price: "1250.50"
  - name: "Бетон В25"
    unit: "м³"
    unit_price: "4800"
`

func TestImportYAMLAndGetPrice(t *testing.T) {
	store := testStore(t)

	summary, err := store.ImportYAML(context.Background(), writePriceYAML(t, samplePrices), io.Discard)
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if summary.Imported != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 imported", summary)
	}

	price, err := store.GetPrice(context.Background(), "Труба стальная", "м")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if price == nil {
		t.Fatal("price = nil, want the imported record")
	}
	if price.UnitPrice.String() != "1250.5" {
		t.Errorf("UnitPrice = %s, want 1250.5", price.UnitPrice)
	}
	if price.Currency != "RUB" {
		t.Errorf("Currency = %q, want RUB", price.Currency)
	}
}

func TestGetPriceNormalizedLookup(t *testing.T) {
	// Lookups normalize both name and unit: case, whitespace, and unit
	// aliases all resolve to the same key.
	store := testStore(t)
	if _, err := store.ImportYAML(context.Background(), writePriceYAML(t, samplePrices), io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}

	tests := []struct {
		name string
		q    string
		unit string
	}{
		{"lowercase", "труба стальная", "м"},
		{"extra spaces", "  Труба   стальная ", "м"},
		{"unit alias", "Бетон В25", "м3"},
		{"unit verbose alias", "Бетон В25", "куб.м"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := store.GetPrice(context.Background(), tt.q, tt.unit)
			if err != nil {
				t.Fatalf("GetPrice: %v", err)
			}
			if price == nil {
				t.Errorf("GetPrice(%q, %q) = nil, want a record", tt.q, tt.unit)
			}
		})
	}
}

func TestGetPriceUnknownReturnsNil(t *testing.T) {
	store := testStore(t)
	price, err := store.GetPrice(context.Background(), "неизвестный материал", "шт")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if price != nil {
		t.Errorf("price = %+v, want nil for unknown material", price)
	}
}

func TestImportYAMLBadPriceCounted(t *testing.T) {
	store := testStore(t)

	var out strings.Builder
	summary, err := store.ImportYAML(context.Background(), writePriceYAML(t, `
prices:
  - name: "Нормальный"
    unit: "шт"
    unit_price: "10"
  - name: "Сломанный"
    unit: "шт"
    unit_price: "дорого"
`), &out)
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if summary.Imported != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 imported, 1 failed", summary)
	}
	if !strings.Contains(out.String(), "bad unit price") {
		t.Errorf("output = %q, want a bad-price line", out.String())
	}
}

func TestImportYAMLDefaultCurrency(t *testing.T) {
	store := testStore(t)
	if _, err := store.ImportYAML(context.Background(), writePriceYAML(t, `
prices:
  - name: "Материал"
    unit: "т"
    unit_price: "99.99"
`), io.Discard); err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}

	price, err := store.GetPrice(context.Background(), "Материал", "т")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if price.Currency != DefaultCurrency {
		t.Errorf("Currency = %q, want default %q", price.Currency, DefaultCurrency)
	}
}

func TestImportYAMLUpsertReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.ImportYAML(ctx, writePriceYAML(t, samplePrices), io.Discard); err != nil {
		t.Fatalf("first import: %v", err)
	}
	updated := strings.Replace(samplePrices, `"1250.50"`, `"1300"`, 1)
	if _, err := store.ImportYAML(ctx, writePriceYAML(t, updated), io.Discard); err != nil {
		t.Fatalf("second import: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2 (upsert)", count)
	}

	price, err := store.GetPrice(ctx, "Труба стальная", "м")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if price.UnitPrice.String() != "1300" {
		t.Errorf("UnitPrice = %s, want updated 1300", price.UnitPrice)
	}
}

func TestKeyNormalization(t *testing.T) {
	tests := []struct {
		name string
		a    [2]string
		b    [2]string
		same bool
	}{
		{"case", [2]string{"Труба", "м"}, [2]string{"труба", "м"}, true},
		{"unit alias", [2]string{"бетон", "м3"}, [2]string{"бетон", "м³"}, true},
		{"different name", [2]string{"труба", "м"}, [2]string{"бетон", "м"}, false},
		{"different unit", [2]string{"труба", "м"}, [2]string{"труба", "т"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := Key(tt.a[0], tt.a[1]), Key(tt.b[0], tt.b[1])
			if (ka == kb) != tt.same {
				t.Errorf("Key(%v) = %q, Key(%v) = %q, same = %v, want %v",
					tt.a, ka, tt.b, kb, ka == kb, tt.same)
			}
		})
	}
}
