// Package advice turns a spending summary into savings recommendations.
package advice

import (
	"context"
	"fmt"

	"github.com/dvloznov/spendwise/internal/summary"
)

// Generator produces advice text. It never fails: problems are reported in
// the returned text.
type Generator interface {
	Generate(ctx context.Context, in summary.AdviceInput) string
}

// FailureText is what generators return instead of an error.
func FailureText(err error) string {
	return fmt.Sprintf("Unable to generate advice at this time. Error: %v", err)
}

// Disabled returns no advice.
type Disabled struct{}

func (Disabled) Generate(context.Context, summary.AdviceInput) string { return "" }

// Unavailable reports a generator that could not be initialized.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Generate(context.Context, summary.AdviceInput) string {
	reason := u.Reason
	if reason == nil {
		reason = fmt.Errorf("advice generator not configured")
	}
	return FailureText(reason)
}
