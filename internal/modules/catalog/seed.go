package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Seed is the catalog file loaded into the in-memory store in dev mode.
type Seed struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// LoadSeed fills the store from a JSON seed file and returns the number of
// products loaded. Every product must name a category of the file or store.
func (m *MemoryRepository) LoadSeed(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for _, c := range seed.Categories {
		m.PutCategory(c)
	}
	for i, p := range seed.Products {
		if len(p.ProductID) != 3 || p.Name == "" || p.Stock < 0 {
			return i, fmt.Errorf("seed product %d: invalid product %q", i, p.ProductID)
		}
		if _, ok := m.category(p.CategoryID); !ok {
			return i, fmt.Errorf("seed product %s: unknown category %q", p.ProductID, p.CategoryID)
		}
		m.PutProduct(p)
	}
	return len(seed.Products), nil
}
