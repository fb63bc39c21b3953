package report

import (
	"sort"

	"github.com/dvloznov/spendwise/internal/domain"
)

// sortedMonths returns the summary's month keys in calendar order.
func sortedMonths(s domain.SpendingSummary) []string {
	months := make([]string, 0, len(s.MonthlyTotals))
	for m := range s.MonthlyTotals {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
