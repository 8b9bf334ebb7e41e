package catalog

import "context"

// Repository defines product and category data access. Lookups of an absent
// product return an apperror.ErrNotFound.
type Repository interface {
	GetProduct(ctx context.Context, productID, variant string) (*Product, error)
	ListProducts(ctx context.Context, categoryID string) ([]*Product, error)
	ListVariants(ctx context.Context, productID string) ([]*Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]*Product, error)
	ListProductIDs(ctx context.Context) ([]string, error)

	// AdjustStock adds delta to the product's stock and returns the new level.
	// A change that would drive stock below zero fails with
	// apperror.ErrInsufficientStock and leaves the stock untouched.
	AdjustStock(ctx context.Context, productID, variant string, delta int) (int, error)

	CategoryExists(ctx context.Context, categoryID string) (bool, error)
}
