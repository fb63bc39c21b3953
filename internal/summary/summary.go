// Package summary aggregates categorized transactions into spending totals.
package summary

import (
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize groups transactions by category and by calendar month.
// Group totals are the absolute value of the signed group sum;
// TotalSpending keeps its sign. Empty input yields empty maps and zero.
func Summarize(txs []domain.Transaction) domain.SpendingSummary {
	byCategory := make(map[domain.Category]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, tx := range txs {
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)

		month := domain.MonthKey(tx.Date)
		byMonth[month] = byMonth[month].Add(tx.Amount)

		total = total.Add(tx.Amount)
	}

	for cat, sum := range byCategory {
		byCategory[cat] = sum.Abs()
	}
	for month, sum := range byMonth {
		byMonth[month] = sum.Abs()
	}

	return domain.SpendingSummary{
		CategoryTotals: byCategory,
		MonthlyTotals:  byMonth,
		TotalSpending:  total,
	}
}
