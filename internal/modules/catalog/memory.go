package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
)

type productKey struct{ id, variant string }

// MemoryRepository is an in-process Repository used in dev mode and tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	products   map[productKey]Product
	categories map[string]Category
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:   make(map[productKey]Product),
		categories: make(map[string]Category),
	}
}

// PutCategory inserts or replaces a category.
func (m *MemoryRepository) PutCategory(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.categories[c.CategoryID] = c
}

// PutProduct inserts or replaces a product.
func (m *MemoryRepository) PutProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Variant = NormalizeVariant(p.Variant)
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m.products[productKey{p.ProductID, p.Variant}] = p
}

// RemoveProduct deletes a product, as a catalog edit would.
func (m *MemoryRepository) RemoveProduct(productID, variant string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, productKey{productID, NormalizeVariant(variant)})
}

// Snapshot is a copy of the product table.
type Snapshot map[productKey]Product

// Snapshot captures the product table so a failed unit of work can be undone.
func (m *MemoryRepository) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(Snapshot, len(m.products))
	for k, v := range m.products {
		out[k] = v
	}
	return out
}

func (m *MemoryRepository) Restore(s Snapshot) {
	m.mu.Lock()
	m.products = s
	m.mu.Unlock()
}

func (m *MemoryRepository) GetProduct(_ context.Context, productID, variant string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productKey{productID, NormalizeVariant(variant)}]
	if !ok {
		return nil, apperror.NotFound("Product %s not found", Describe(productID, variant))
	}
	return &p, nil
}

func (m *MemoryRepository) ListProducts(_ context.Context, categoryID string) ([]*Product, error) {
	return m.filter(func(p Product) bool { return categoryID == "" || p.CategoryID == categoryID }, 0), nil
}

func (m *MemoryRepository) ListVariants(_ context.Context, productID string) ([]*Product, error) {
	return m.filter(func(p Product) bool { return p.ProductID == productID }, 0), nil
}

func (m *MemoryRepository) SearchProducts(_ context.Context, query string, limit int) ([]*Product, error) {
	q := strings.ToLower(query)
	return m.filter(func(p Product) bool { return strings.Contains(strings.ToLower(p.Name), q) }, limit), nil
}

func (m *MemoryRepository) ListProductIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for k := range m.products {
		if !seen[k.id] {
			seen[k.id] = true
			ids = append(ids, k.id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryRepository) AdjustStock(_ context.Context, productID, variant string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := productKey{productID, NormalizeVariant(variant)}
	p, ok := m.products[key]
	if !ok {
		return 0, apperror.NotFound("Product %s not found", Describe(productID, variant))
	}
	if p.Stock+delta < 0 {
		return 0, apperror.New(apperror.ErrInsufficientStock,
			"Insufficient stock for %s. Available: %d", p.Label(), p.Stock)
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	m.products[key] = p
	return p.Stock, nil
}

func (m *MemoryRepository) CategoryExists(_ context.Context, categoryID string) (bool, error) {
	_, ok := m.category(categoryID)
	return ok, nil
}

func (m *MemoryRepository) category(categoryID string) (Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[categoryID]
	return c, ok
}

func (m *MemoryRepository) filter(keep func(Product) bool, limit int) []*Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Product
	for _, p := range m.products {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Variant < out[j].Variant
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
