package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
)

const searchLimit = 20

// Service exposes the read side of the product catalog.
type Service interface {
	// GetProduct returns the given variant, or every variant when variant is empty.
	GetProduct(ctx context.Context, productID, variant string) ([]*Product, error)
	ListProducts(ctx context.Context, categoryID string) ([]*Product, error)
	SearchProducts(ctx context.Context, query string) ([]*Product, error)
	ListVariants(ctx context.Context, productID string) ([]*Product, error)
	// NextProductID returns the lowest unused id in 001..999.
	NextProductID(ctx context.Context) (string, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) GetProduct(ctx context.Context, productID, variant string) ([]*Product, error) {
	if strings.TrimSpace(variant) != "" {
		p, err := s.repo.GetProduct(ctx, productID, variant)
		if err != nil {
			return nil, err
		}
		return []*Product{p}, nil
	}
	products, err := s.repo.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperror.NotFound("Product not found")
	}
	return products, nil
}

func (s *service) ListProducts(ctx context.Context, categoryID string) ([]*Product, error) {
	if categoryID != "" {
		ok, err := s.repo.CategoryExists(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("Category not found")
		}
	}
	return s.repo.ListProducts(ctx, categoryID)
}

func (s *service) SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("query is required")
	}
	return s.repo.SearchProducts(ctx, query, searchLimit)
}

func (s *service) ListVariants(ctx context.Context, productID string) ([]*Product, error) {
	variants, err := s.repo.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, apperror.NotFound("Product not found")
	}
	return variants, nil
}

func (s *service) NextProductID(ctx context.Context) (string, error) {
	ids, err := s.repo.ListProductIDs(ctx)
	if err != nil {
		return "", err
	}
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil {
			used[n] = true
		}
	}
	for i := 1; i <= 999; i++ {
		if !used[i] {
			return fmt.Sprintf("%03d", i), nil
		}
	}
	return "", apperror.New(apperror.ErrNoData, "No available product IDs")
}
