package categorizer

import (
	"strings"

	"github.com/dvloznov/spendwise/internal/domain"
)

// Rule maps a category to the lowercase keywords that select it.
type Rule struct {
	Category domain.Category `json:"category"`
	Keywords []string        `json:"keywords"`
}

// RuleTable is an ordered list of rules. The first rule with a matching
// keyword wins, so order decides overlaps such as "gas".
type RuleTable []Rule

// DefaultRules returns the keyword table in category enumeration order.
func DefaultRules() RuleTable {
	return RuleTable{
		{domain.Food, []string{"restaurant", "food", "grocery", "cafe", "coffee", "pizza", "burger", "takeout", "delivery", "dining"}},
		{domain.Rent, []string{"rent", "mortgage", "housing", "apartment", "landlord"}},
		{domain.Utilities, []string{"electric", "gas", "water", "internet", "phone", "utility", "bill", "power"}},
		{domain.Shopping, []string{"amazon", "target", "walmart", "shopping", "store", "retail", "purchase", "buy"}},
		{domain.Transport, []string{"gas", "fuel", "uber", "lyft", "taxi", "bus", "train", "parking", "car", "transportation"}},
		{domain.Entertainment, []string{"movie", "cinema", "theater", "concert", "game", "entertainment", "fun", "hobby"}},
		{domain.Subscriptions, []string{"subscription", "netflix", "spotify", "premium", "monthly", "annual", "service"}},
		{domain.Other, nil},
	}
}

// Match returns the category of the first rule with a keyword contained in
// description, or Other when nothing matches.
func (t RuleTable) Match(description string) domain.Category {
	lower := strings.ToLower(description)
	for _, rule := range t {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return domain.Other
}

// CategorizeByRules categorizes description with the default keyword table.
// It never consults a model and is safe to call on raw descriptions.
func CategorizeByRules(description string) domain.Category {
	return DefaultRules().Match(description)
}
