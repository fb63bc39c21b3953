package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dvloznov/spendwise/internal/domain"
)

// OutputFormatter renders a dashboard for the CLI.
type OutputFormatter interface {
	Format(d Dashboard) ([]byte, error)
}

// JSONFormatter renders the dashboard as JSON.
type JSONFormatter struct {
	PrettyPrint bool
}

func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{PrettyPrint: prettyPrint}
}

func (f *JSONFormatter) Format(d Dashboard) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// TextFormatter renders aligned tables for a terminal.
type TextFormatter struct{}

func (TextFormatter) Format(d Dashboard) ([]byte, error) {
	var b strings.Builder

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, tx := range d.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tx.Date, tx.Amount, tx.Category, tx.Description)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("Format: transactions: %w", err)
	}

	b.WriteString("\nBy category:\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, cat := range domain.Categories() {
		if total, ok := d.Summary.CategoryTotals[cat]; ok {
			fmt.Fprintf(tw, "  %s\t%s\n", cat, FormatAmount(total.StringFixed(2)))
		}
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("Format: categories: %w", err)
	}

	b.WriteString("\nBy month:\n")
	for _, month := range sortedMonths(d.Summary) {
		fmt.Fprintf(&b, "  %s  %s\n", month, FormatAmount(d.Summary.MonthlyTotals[month].StringFixed(2)))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", FormatAmount(d.Summary.TotalSpending.StringFixed(2)))

	if d.Advice != "" {
		b.WriteString("\nAdvice:\n")
		b.WriteString(d.Advice)
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}
