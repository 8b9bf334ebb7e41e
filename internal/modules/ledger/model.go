// Package ledger keeps the running total of each trading day.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActiveDay is the mutable ledger of one trading day. It is created by the
// first bill of the day and closed by day-end processing.
type ActiveDay struct {
	Date         string          `json:"date"`
	IsActive     bool            `json:"isActive"`
	StartedAt    time.Time       `json:"startedAt"`
	CurrentTotal decimal.Decimal `json:"currentTotal"`
}
