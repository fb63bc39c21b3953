package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one parsed CSV row.
// Description is kept as uploaded; NormalizedDescription is derived from it
// and is what the categorizer sees.
type Transaction struct {
	Date                  time.Time       // calendar date, UTC midnight
	Description           string          // raw "Description" column
	NormalizedDescription string          // lowercased, punctuation stripped
	Amount                decimal.Decimal // signed, as in the source file
	Category              Category        // assigned once after normalization
}

// SpendingSummary is the aggregated view of one run's transactions.
// It is recomputed from scratch on every run and never updated in place.
type SpendingSummary struct {
	CategoryTotals map[Category]decimal.Decimal `json:"category_totals"`
	MonthlyTotals  map[string]decimal.Decimal   `json:"monthly_totals"`
	TotalSpending  decimal.Decimal              `json:"total_spending"`
}

// MonthKey returns the "YYYY-MM" key used by MonthlyTotals.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
