package summary

import (
	"sort"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is one entry of the ranked category list.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// AdviceInput is the read-only view of a summary handed to advice generation.
type AdviceInput struct {
	Summary domain.SpendingSummary `json:"summary"`

	// Ranked lists categories by total, largest first. Equal totals follow
	// category enumeration order.
	Ranked []CategoryTotal `json:"ranked"`

	// Shares holds each category's percentage of AbsoluteTotal, unrounded.
	// Every share is zero when AbsoluteTotal is zero.
	Shares map[domain.Category]decimal.Decimal `json:"shares"`

	AbsoluteTotal decimal.Decimal `json:"absolute_total"`
}

// NewAdviceInput derives the ranking and shares from s.
func NewAdviceInput(s domain.SpendingSummary) AdviceInput {
	ranked := make([]CategoryTotal, 0, len(s.CategoryTotals))
	for _, cat := range domain.Categories() {
		if total, ok := s.CategoryTotals[cat]; ok {
			ranked = append(ranked, CategoryTotal{Category: cat, Total: total})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})

	absTotal := s.TotalSpending.Abs()
	shares := make(map[domain.Category]decimal.Decimal, len(ranked))
	for _, ct := range ranked {
		if absTotal.IsZero() {
			shares[ct.Category] = decimal.Zero
			continue
		}
		shares[ct.Category] = ct.Total.Div(absTotal).Mul(hundred)
	}

	return AdviceInput{
		Summary:       s,
		Ranked:        ranked,
		Shares:        shares,
		AbsoluteTotal: absTotal,
	}
}

// Top returns the n-th ranked category (0-based). ok is false when there
// are not enough categories.
func (a AdviceInput) Top(n int) (CategoryTotal, bool) {
	if n < 0 || n >= len(a.Ranked) {
		return CategoryTotal{}, false
	}
	return a.Ranked[n], true
}

// Share returns the percentage share of cat, zero when absent.
func (a AdviceInput) Share(cat domain.Category) decimal.Decimal {
	return a.Shares[cat]
}

// ShareString formats the share of cat with one decimal place.
func (a AdviceInput) ShareString(cat domain.Category) string {
	return a.Share(cat).StringFixed(1)
}
