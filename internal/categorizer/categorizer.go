// Package categorizer assigns one of the fixed spending categories to
// normalized transaction descriptions.
package categorizer

import (
	"context"
	"strings"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent classifier calls in CategorizeAll.
const DefaultWorkers = 4

// Categorizer is safe for concurrent use; its strategy is read-only.
type Categorizer struct {
	strategy Strategy
	workers  int
	log      zerolog.Logger
}

// New creates a Categorizer around a strategy built by NewStrategy.
// workers < 1 means DefaultWorkers.
func New(strategy Strategy, workers int, log zerolog.Logger) *Categorizer {
	if strategy == nil {
		strategy = Unavailable{}
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Categorizer{
		strategy: strategy,
		workers:  workers,
		log:      log.With().Str("component", "categorizer").Str("strategy", strategy.Name()).Logger(),
	}
}

// Strategy returns the strategy selected at startup.
func (c *Categorizer) Strategy() Strategy {
	return c.strategy
}

// Categorize returns the category of one normalized description.
//
// An empty description is Other whatever the strategy. With ModelBacked, any
// per-call failure (error, timeout, unknown or missing label) yields Other for
// that call; the keyword table is not consulted on that path. Use
// CategorizeByRules, or the RuleBased strategy, for keyword matching.
func (c *Categorizer) Categorize(ctx context.Context, description string) domain.Category {
	if strings.TrimSpace(description) == "" {
		return domain.Other
	}

	switch s := c.strategy.(type) {
	case ModelBacked:
		return c.classify(ctx, s, description)
	case RuleBased:
		rules := s.Rules
		if rules == nil {
			rules = DefaultRules()
		}
		return rules.Match(description)
	case Unavailable:
		return domain.Other
	default:
		return domain.Other
	}
}

func (c *Categorizer) classify(ctx context.Context, s ModelBacked, description string) (category domain.Category) {
	if s.Classifier == nil {
		return domain.Other
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("description", description).Msg("Classifier panicked")
			category = domain.Other
		}
	}()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	scores, err := s.Classifier.Classify(ctx, description, domain.CategoryLabels())
	if err != nil {
		c.log.Error().Err(err).Str("description", description).Msg("Error categorizing transaction")
		return domain.Other
	}
	if len(scores) == 0 {
		c.log.Error().Str("description", description).Msg("Classifier returned no labels")
		return domain.Other
	}

	top, err := domain.ParseCategory(scores[0].Label)
	if err != nil {
		c.log.Error().Err(err).Str("description", description).Msg("Classifier returned an unknown label")
		return domain.Other
	}
	return top
}

// CategorizeAll categorizes every description independently. The result has
// the same length and order as descriptions. Up to the configured number of
// workers run at once.
func (c *Categorizer) CategorizeAll(ctx context.Context, descriptions []string) []domain.Category {
	categories := make([]domain.Category, len(descriptions))

	if u, ok := c.strategy.(Unavailable); ok {
		ev := c.log.Warn()
		if u.Reason != nil {
			ev = ev.AnErr("reason", u.Reason)
		}
		ev.Msg("Classifier not available, returning 'Other' for all transactions")
		for i := range categories {
			categories[i] = domain.Other
		}
		return categories
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, desc := range descriptions {
		g.Go(func() error {
			categories[i] = c.Categorize(ctx, desc)
			return nil
		})
	}
	_ = g.Wait()

	c.log.Info().Int("count", len(descriptions)).Msg("Categorized transactions")
	return categories
}
