package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
)

type postgresRepo struct{ db database.DBTX }

// NewPostgresRepository works on a *sql.DB or inside a *sql.Tx.
func NewPostgresRepository(db database.DBTX) Repository { return &postgresRepo{db: db} }

const productColumns = `product_id, name, variant, category_id, stock, buying_price, selling_price, created_at, updated_at`

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ProductID, &p.Name, &p.Variant, &p.CategoryID, &p.Stock,
		&p.BuyingPrice, &p.SellingPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Variant = NormalizeVariant(p.Variant)
	return p, nil
}

func (r *postgresRepo) GetProduct(ctx context.Context, productID, variant string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE product_id=$1 AND variant=$2`,
		productID, NormalizeVariant(variant)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Product %s not found", Describe(productID, variant))
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return p, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context, categoryID string) ([]*Product, error) {
	if categoryID == "" {
		return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id, variant`)
	}
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE category_id=$1 ORDER BY product_id, variant`, categoryID)
}

func (r *postgresRepo) ListVariants(ctx context.Context, productID string) ([]*Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE product_id=$1 ORDER BY variant`, productID)
}

func (r *postgresRepo) SearchProducts(ctx context.Context, query string, limit int) ([]*Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY product_id, variant LIMIT $2`, query, limit)
}

func (r *postgresRepo) ListProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT product_id FROM products ORDER BY product_id`)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Storage(err)
		}
		ids = append(ids, id)
	}
	return ids, apperror.Storage(rows.Err())
}

func (r *postgresRepo) AdjustStock(ctx context.Context, productID, variant string, delta int) (int, error) {
	variant = NormalizeVariant(variant)
	var stock int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW()
		WHERE product_id=$2 AND variant=$3 AND stock + $1 >= 0
		RETURNING stock`, delta, productID, variant).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.Storage(err)
	}
	// Either the product is gone or the guard rejected the change.
	current, getErr := r.GetProduct(ctx, productID, variant)
	if getErr != nil {
		return 0, getErr
	}
	return 0, apperror.New(apperror.ErrInsufficientStock,
		"Insufficient stock for %s. Available: %d", current.Label(), current.Stock)
}

func (r *postgresRepo) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE category_id=$1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, apperror.Storage(err)
	}
	return exists, nil
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		products = append(products, p)
	}
	return products, apperror.Storage(rows.Err())
}
