// Package report shapes a finished run for display.
package report

import (
	"strings"

	"github.com/dvloznov/spendwise/internal/domain"
)

// TransactionView is a display-ready transaction.
type TransactionView struct {
	Date                  string `json:"date"`   // YYYY-MM-DD
	Amount                string `json:"amount"` // "$-54.20", sign kept
	Description           string `json:"description"`
	NormalizedDescription string `json:"normalized_description"`
	Category              string `json:"category"`
}

// Chart holds parallel label/value arrays for a category pie chart.
type Chart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Dashboard is everything the presentation layer needs for one run.
type Dashboard struct {
	Transactions []TransactionView      `json:"transactions"`
	Chart        Chart                  `json:"chart"`
	Summary      domain.SpendingSummary `json:"summary"`
	Advice       string                 `json:"advice"`
}

// Build assembles the dashboard. Transactions keep their input order and the
// chart follows category enumeration order. Markdown headers are dropped from
// the advice text.
func Build(txs []domain.Transaction, s domain.SpendingSummary, advice string) Dashboard {
	views := make([]TransactionView, len(txs))
	for i, tx := range txs {
		views[i] = NewTransactionView(tx)
	}

	return Dashboard{
		Transactions: views,
		Chart:        NewChart(s),
		Summary:      s,
		Advice:       StripMarkdownHeaders(advice),
	}
}

// NewTransactionView formats one transaction.
func NewTransactionView(tx domain.Transaction) TransactionView {
	return TransactionView{
		Date:                  tx.Date.Format("2006-01-02"),
		Amount:                FormatAmount(tx.Amount.StringFixed(2)),
		Description:           tx.Description,
		NormalizedDescription: tx.NormalizedDescription,
		Category:              tx.Category.String(),
	}
}

// FormatAmount prefixes a fixed-point amount with a dollar sign.
func FormatAmount(fixed string) string {
	return "$" + fixed
}

// NewChart builds chart arrays from the category totals.
func NewChart(s domain.SpendingSummary) Chart {
	chart := Chart{Labels: []string{}, Data: []float64{}}
	for _, cat := range domain.Categories() {
		total, ok := s.CategoryTotals[cat]
		if !ok {
			continue
		}
		chart.Labels = append(chart.Labels, cat.String())
		chart.Data = append(chart.Data, total.InexactFloat64())
	}
	return chart
}

// StripMarkdownHeaders removes lines starting with '#'.
func StripMarkdownHeaders(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
