// Package summary folds bills into the current-day view and into immutable
// daily and retained monthly summaries.
package summary

import (
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyRetention is how many month keys survive pruning.
const MonthlyRetention = 12

// Source names the window a monthly summary was computed over.
type Source string

const (
	SourceRolling  Source = "rolling"
	SourceCalendar Source = "calendar"
)

// DailySummary is written once when a trading day is closed.
type DailySummary struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Items       []ItemSale      `json:"items"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
	EndedAt     time.Time       `json:"endedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MonthlySummary is keyed by month (YYYY-MM) and overwritten by later rollups
// of the same key.
type MonthlySummary struct {
	ID           uuid.UUID       `json:"id"`
	Month        string          `json:"month"`
	MonthName    string          `json:"monthName"`
	Items        []ItemSale      `json:"items"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	DaysIncluded int             `json:"daysIncluded"`
	Source       Source          `json:"source"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CurrentDay is the read-only running view of today.
type CurrentDay struct {
	Date        string          `json:"date"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
	BillCount   int             `json:"billCount"`
	Items       []ItemSale      `json:"items"`
	Bills       []*billing.Bill `json:"bills"`
}
