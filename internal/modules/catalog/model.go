package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVariant is the implicit variant of products that predate variants.
const DefaultVariant = "Standard"

// NormalizeVariant resolves an absent variant to DefaultVariant. Every read
// and write path goes through it.
func NormalizeVariant(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultVariant
	}
	return v
}

// Product is one sellable (productId, variant) with its stock and prices.
type Product struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Variant      string          `json:"variant"`
	CategoryID   string          `json:"categoryId"`
	Stock        int             `json:"stock"`
	BuyingPrice  decimal.Decimal `json:"buyingPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Label is the product name, suffixed with the variant unless it is the default.
func (p *Product) Label() string {
	return p.Name + variantSuffix(p.Variant)
}

// Category groups products.
type Category struct {
	CategoryID  string    `json:"categoryId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Describe identifies a product key in messages: "001" or "001 (Small)".
func Describe(productID, variant string) string {
	return productID + variantSuffix(NormalizeVariant(variant))
}

func variantSuffix(variant string) string {
	if variant == DefaultVariant || variant == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", variant)
}
