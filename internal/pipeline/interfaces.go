package pipeline

import (
	"context"

	"github.com/dvloznov/spendwise/internal/advice"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/gcs"
)

// Categorizer assigns categories to normalized descriptions.
// *categorizer.Categorizer is the production implementation.
type Categorizer interface {
	CategorizeAll(ctx context.Context, descriptions []string) []domain.Category
}

// Advisor produces advice text from a summary.
type Advisor = advice.Generator

// Fetcher downloads CSV bytes from object storage.
type Fetcher = gcs.Fetcher
