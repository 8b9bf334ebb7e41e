package summary

import (
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/billing"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/shopspring/decimal"
)

// ItemSale is the aggregate of one (productId, variant) over a set of bills.
type ItemSale struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Variant      string          `json:"variant"`
	SoldQuantity int             `json:"soldQuantity"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	Profit       decimal.Decimal `json:"profit"`
}

// Aggregation is the result of folding bills.
type Aggregation struct {
	Items       []ItemSale
	TotalIncome decimal.Decimal
	TotalProfit decimal.Decimal
}

// Aggregate groups every line item by (productId, variant) in first-seen
// order. Profit per line is (price - unit cost) * quantity, with legacy lines
// that lack a cost counted at zero cost.
func Aggregate(bills []*billing.Bill) Aggregation {
	type key struct{ id, variant string }
	index := make(map[key]int)
	agg := Aggregation{Items: []ItemSale{}, TotalIncome: decimal.Zero, TotalProfit: decimal.Zero}

	for _, b := range bills {
		for _, li := range b.Items {
			variant := catalog.NormalizeVariant(li.Variant)
			qty := decimal.NewFromInt(int64(li.Quantity))
			profit := li.Price.Sub(li.UnitCost()).Mul(qty)

			k := key{li.ProductID, variant}
			if i, ok := index[k]; ok {
				row := &agg.Items[i]
				row.SoldQuantity += li.Quantity
				row.TotalIncome = row.TotalIncome.Add(li.Total)
				row.Profit = row.Profit.Add(profit)
			} else {
				index[k] = len(agg.Items)
				agg.Items = append(agg.Items, ItemSale{
					ProductID:    li.ProductID,
					Name:         li.Name,
					Variant:      variant,
					SoldQuantity: li.Quantity,
					TotalIncome:  li.Total,
					Profit:       profit,
				})
			}
			agg.TotalIncome = agg.TotalIncome.Add(li.Total)
			agg.TotalProfit = agg.TotalProfit.Add(profit)
		}
	}
	return agg
}
