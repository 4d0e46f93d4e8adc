package catalog_test

import (
	"testing"

	"github.com/luwak-cafe/pos-api/internal/catalog"
)

func TestEveryProductBelongsToAKnownCategory(t *testing.T) {
	known := make(map[string]bool)
	for _, c := range catalog.Categories() {
		known[c.ID] = true
	}

	for _, p := range catalog.Products() {
		if !known[p.CategoryID] {
			t.Errorf("product %s references unknown category %q", p.ID, p.CategoryID)
		}
		if p.Price.IsNegative() || p.Price.IsZero() {
			t.Errorf("product %s has non-positive price %s", p.ID, p.Price)
		}
	}
}

func TestProductIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range catalog.Products() {
		if seen[p.ID] {
			t.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestProductsByCategory(t *testing.T) {
	hot := catalog.ProductsByCategory("calientes")
	if len(hot) == 0 {
		t.Fatal("calientes category is empty")
	}
	for _, p := range hot {
		if p.CategoryID != "calientes" {
			t.Errorf("product %s leaked into calientes", p.ID)
		}
	}

	if got := catalog.ProductsByCategory("inexistente"); len(got) != 0 {
		t.Errorf("unknown category: got %d products, want 0", len(got))
	}
}

func TestFindProduct(t *testing.T) {
	p, ok := catalog.FindProduct("cafe-americano")
	if !ok {
		t.Fatal("cafe-americano not found")
	}
	if p.Name != "Café americano" {
		t.Errorf("name: got %q", p.Name)
	}

	if _, ok := catalog.FindProduct("nope"); ok {
		t.Error("unknown id must not resolve")
	}
}
