package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/report"
	"github.com/dvloznov/spendwise/internal/statement"
	"github.com/dvloznov/spendwise/internal/summary"
)

// PipelineStep represents a single step in an analysis run.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID  string
	Source string // gs:// URI or local name, for logging only

	Input        io.Reader
	Transactions []domain.Transaction
	Summary      domain.SpendingSummary
	AdviceInput  summary.AdviceInput
	Advice       string
	Dashboard    report.Dashboard
}

// FetchStep downloads the CSV named by state.Source.
type FetchStep struct {
	Fetcher Fetcher
}

func (s *FetchStep) Name() string { return "fetch" }

func (s *FetchStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Fetcher == nil {
		return fmt.Errorf("no fetcher configured")
	}
	data, err := s.Fetcher.Fetch(ctx, state.Source)
	if err != nil {
		return err
	}
	state.Input = bytes.NewReader(data)
	return nil
}

// ParseStep validates the CSV and reads its rows.
type ParseStep struct{}

func (s *ParseStep) Name() string { return "parse" }

func (s *ParseStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Input == nil {
		return fmt.Errorf("no input")
	}
	txs, err := statement.Parse(state.Input)
	if err != nil {
		return err
	}
	state.Transactions = txs
	return nil
}

// NormalizeStep fills NormalizedDescription. Description is left unchanged.
type NormalizeStep struct{}

func (s *NormalizeStep) Name() string { return "normalize" }

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	for i := range state.Transactions {
		state.Transactions[i].NormalizedDescription = categorizer.Normalize(state.Transactions[i].Description)
	}
	return nil
}

// CategorizeStep assigns a category to every transaction.
type CategorizeStep struct {
	Categorizer Categorizer
}

func (s *CategorizeStep) Name() string { return "categorize" }

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	descriptions := make([]string, len(state.Transactions))
	for i, tx := range state.Transactions {
		descriptions[i] = tx.NormalizedDescription
	}

	categories := s.Categorizer.CategorizeAll(ctx, descriptions)
	if len(categories) != len(descriptions) {
		return fmt.Errorf("categorizer returned %d categories for %d transactions", len(categories), len(descriptions))
	}

	for i, cat := range categories {
		if !cat.Valid() {
			cat = domain.Other
		}
		state.Transactions[i].Category = cat
	}
	return nil
}

// SummarizeStep aggregates the categorized transactions.
type SummarizeStep struct{}

func (s *SummarizeStep) Name() string { return "summarize" }

func (s *SummarizeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Summary = summary.Summarize(state.Transactions)
	state.AdviceInput = summary.NewAdviceInput(state.Summary)
	return nil
}

// AdviceStep asks the advisor for recommendations. Its output is passed
// through untouched, failure text included.
type AdviceStep struct {
	Advisor Advisor
}

func (s *AdviceStep) Name() string { return "advice" }

func (s *AdviceStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Advisor == nil {
		return nil
	}
	state.Advice = s.Advisor.Generate(ctx, state.AdviceInput)
	return nil
}

// ReportStep builds the display-ready dashboard.
type ReportStep struct{}

func (s *ReportStep) Name() string { return "report" }

func (s *ReportStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Dashboard = report.Build(state.Transactions, state.Summary, state.Advice)
	log := logger.FromContext(ctx)
	log.Debug().
		Int("chart_categories", len(state.Dashboard.Chart.Labels)).
		Msg("Dashboard built")
	return nil
}
