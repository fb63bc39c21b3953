// Package pipeline runs one CSV through validation, categorization,
// aggregation, advice and report shaping.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/spendwise/internal/advice"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/report"
	"github.com/dvloznov/spendwise/internal/summary"
	"github.com/google/uuid"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first error.
// Step errors are wrapped with %w.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		start := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			log.Error().Err(err).Str("step", step.Name()).Msg("Pipeline step failed")
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
		log.Debug().Str("step", step.Name()).Dur("duration", time.Since(start)).Msg("Pipeline step completed")
	}
	return nil
}

// Deps are the collaborators of an analysis run.
type Deps struct {
	Categorizer Categorizer
	Advisor     Advisor // nil means advice.Disabled
	Fetcher     Fetcher // only needed by AnalyzeFromGCS
}

// Result is the outcome of one run.
type Result struct {
	RunID        string
	Transactions []domain.Transaction
	Summary      domain.SpendingSummary
	AdviceInput  summary.AdviceInput
	Dashboard    report.Dashboard
}

// Analyzer runs the standard analysis steps.
type Analyzer struct {
	deps Deps
}

// New creates an Analyzer.
func New(deps Deps) *Analyzer {
	if deps.Advisor == nil {
		deps.Advisor = advice.Disabled{}
	}
	return &Analyzer{deps: deps}
}

// NewAnalysisPipeline creates the standard steps for an already opened CSV.
func NewAnalysisPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&ParseStep{},
		&NormalizeStep{},
		&CategorizeStep{Categorizer: deps.Categorizer},
		&SummarizeStep{},
		&AdviceStep{Advisor: deps.Advisor},
		&ReportStep{},
	)
}

// Analyze runs a CSV read from r. A structural problem in the file is
// returned as a *statement.ValidationError (use errors.As).
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (*Result, error) {
	return a.run(ctx, &PipelineState{Input: r, Source: "upload"}, NewAnalysisPipeline(a.deps))
}

// AnalyzeFromGCS fetches uri and runs it.
func (a *Analyzer) AnalyzeFromGCS(ctx context.Context, uri string) (*Result, error) {
	steps := append([]PipelineStep{&FetchStep{Fetcher: a.deps.Fetcher}}, NewAnalysisPipeline(a.deps).steps...)
	return a.run(ctx, &PipelineState{Source: uri}, NewPipeline(steps...))
}

func (a *Analyzer) run(ctx context.Context, state *PipelineState, p *Pipeline) (*Result, error) {
	state.RunID = uuid.NewString()

	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Str("source", state.Source).Logger()
	ctx = logger.WithContext(ctx, log)

	start := time.Now()
	log.Info().Msg("Starting analysis")

	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}

	log.Info().
		Int("transactions", len(state.Transactions)).
		Str("total_spending", state.Summary.TotalSpending.StringFixed(2)).
		Dur("duration", time.Since(start)).
		Msg("Analysis completed")

	return &Result{
		RunID:        state.RunID,
		Transactions: state.Transactions,
		Summary:      state.Summary,
		AdviceInput:  state.AdviceInput,
		Dashboard:    state.Dashboard,
	}, nil
}
