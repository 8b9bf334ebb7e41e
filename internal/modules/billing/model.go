package billing

import (
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/shopspring/decimal"
)

// LineItem is one sold product inside a bill. It is immutable once the bill
// is written.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	// BuyingPrice is the cost captured at sale time. Bills written before
	// costs were recorded lack it.
	BuyingPrice decimal.NullDecimal `json:"buyingPrice"`
	Total       decimal.Decimal     `json:"total"`
}

// UnitCost is the captured buying price, or zero for legacy lines.
func (li LineItem) UnitCost() decimal.Decimal {
	if !li.BuyingPrice.Valid {
		return decimal.Zero
	}
	return li.BuyingPrice.Decimal
}

// Bill is a persisted sale.
type Bill struct {
	BillID        string          `json:"billId"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Date          time.Time       `json:"date"`
	Time          string          `json:"time"`
	DayIdentifier string          `json:"dayIdentifier"`
	Cash          decimal.Decimal `json:"cash"`
	Change        decimal.Decimal `json:"change"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// normalize resolves defaults on records read back from storage.
func (b *Bill) normalize() *Bill {
	for i := range b.Items {
		b.Items[i].Variant = catalog.NormalizeVariant(b.Items[i].Variant)
	}
	return b
}

// ── Requests ──────────────────────────────────────────────────────────────────

type ItemRequest struct {
	ProductID string `json:"productId" validate:"required,len=3,number"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	// Price overrides the catalog selling price when present.
	Price decimal.NullDecimal `json:"price" validate:"omitempty,gte=0,cents"`
}

type CreateBillRequest struct {
	Items []ItemRequest   `json:"items" validate:"required,min=1,dive"`
	Cash  decimal.Decimal `json:"cash" validate:"gte=0,cents"`
}
