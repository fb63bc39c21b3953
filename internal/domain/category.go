package domain

import (
	"fmt"
	"strings"
)

// Category is one of the fixed spending categories.
// The declaration order is significant: keyword rules are evaluated in it and
// it breaks ties wherever a deterministic order is needed.
type Category int

const (
	Food Category = iota + 1
	Rent
	Utilities
	Shopping
	Transport
	Entertainment
	Subscriptions
	Other
)

var categoryNames = [...]string{
	Food:          "Food",
	Rent:          "Rent",
	Utilities:     "Utilities",
	Shopping:      "Shopping",
	Transport:     "Transport",
	Entertainment: "Entertainment",
	Subscriptions: "Subscriptions",
	Other:         "Other",
}

// Categories returns every category in enumeration order.
func Categories() []Category {
	return []Category{Food, Rent, Utilities, Shopping, Transport, Entertainment, Subscriptions, Other}
}

// CategoryLabels returns the category names in enumeration order.
func CategoryLabels() []string {
	cats := Categories()
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.String()
	}
	return labels
}

// Valid reports whether c is one of the eight categories.
func (c Category) Valid() bool {
	return c >= Food && c <= Other
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a label to its Category, ignoring case and surrounding whitespace.
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	for _, c := range Categories() {
		if strings.EqualFold(label, categoryNames[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", label)
}

// MarshalText lets categories serialize as labels, including as JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
