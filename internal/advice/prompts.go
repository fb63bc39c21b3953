package advice

import (
	"fmt"
	"strings"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/summary"
)

// BuildPrompt describes the spending pattern and asks for three tips.
func BuildPrompt(in summary.AdviceInput) string {
	var breakdown []string
	for _, cat := range domain.Categories() {
		if total, ok := in.Summary.CategoryTotals[cat]; ok {
			breakdown = append(breakdown, fmt.Sprintf("%s: $%s", cat, total.StringFixed(2)))
		}
	}

	topLabel, topAmount, topShare := "Unknown", "0.00", "0.0"
	if top, ok := in.Top(0); ok {
		topLabel = top.Category.String()
		topAmount = top.Total.StringFixed(2)
		topShare = in.ShareString(top.Category)
	}
	secondLabel, secondAmount := "Unknown", "0.00"
	if second, ok := in.Top(1); ok {
		secondLabel = second.Category.String()
		secondAmount = second.Total.StringFixed(2)
	}

	var b strings.Builder
	b.WriteString("You are a personal financial advisor analyzing spending patterns. Here's the complete financial overview:\n\n")

	b.WriteString("SPENDING BREAKDOWN:\n")
	b.WriteString(strings.Join(breakdown, ", ") + "\n\n")

	fmt.Fprintf(&b, "TOTAL SPENDING: $%s\n", in.AbsoluteTotal.StringFixed(2))
	fmt.Fprintf(&b, "TOP SPENDING CATEGORY: %s ($%s - %s%% of total)\n", topLabel, topAmount, topShare)
	fmt.Fprintf(&b, "SECOND HIGHEST: %s ($%s)\n\n", secondLabel, secondAmount)

	b.WriteString("ANALYSIS REQUIREMENTS:\n")
	b.WriteString("1. Provide exactly 3 specific, actionable money-saving recommendations\n")
	b.WriteString("2. Focus primarily on the highest spending categories\n")
	b.WriteString("3. Include specific dollar amounts or percentage targets where possible\n")
	b.WriteString("4. Make suggestions realistic and practical for everyday implementation\n")
	b.WriteString("5. Consider both immediate cost-cutting and long-term financial habits\n\n")

	b.WriteString("FORMAT REQUIREMENTS:\n")
	b.WriteString("- Use numbered list (1., 2., 3.)\n")
	b.WriteString("- Each tip should be 2-3 sentences maximum\n")
	b.WriteString("- Include specific actions the user can take this week\n")
	b.WriteString("- Mention potential savings amounts when possible\n\n")

	b.WriteString("Focus on practical advice that can lead to measurable savings based on the spending patterns shown.\n")
	return b.String()
}
