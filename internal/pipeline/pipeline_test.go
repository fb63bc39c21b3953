package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/pipeline"
	"github.com/dvloznov/spendwise/internal/statement"
	"github.com/dvloznov/spendwise/internal/summary"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementCSV = "Date,Description,Amount\n" +
	"2024-01-05,Whole Foods Market,-54.20\n" +
	"2024-01-10,Netflix,-15.99\n" +
	"2024-02-01,Salary Deposit,2500.00\n"

// MockAdvisor is a func-field mock of advice.Generator.
type MockAdvisor struct {
	GenerateFunc func(ctx context.Context, in summary.AdviceInput) string
}

func (m *MockAdvisor) Generate(ctx context.Context, in summary.AdviceInput) string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, in)
	}
	return "1. Spend less."
}

// MockFetcher is a func-field mock of gcs.Fetcher.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, uri string) ([]byte, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return []byte(statementCSV), nil
}

// MockCategorizer is a func-field mock of pipeline.Categorizer.
type MockCategorizer struct {
	CategorizeAllFunc func(ctx context.Context, descriptions []string) []domain.Category
}

func (m *MockCategorizer) CategorizeAll(ctx context.Context, descriptions []string) []domain.Category {
	if m.CategorizeAllFunc != nil {
		return m.CategorizeAllFunc(ctx, descriptions)
	}
	out := make([]domain.Category, len(descriptions))
	for i := range out {
		out[i] = domain.Other
	}
	return out
}

func rulesCategorizer() *categorizer.Categorizer {
	return categorizer.New(categorizer.RuleBased{}, 2, zerolog.Nop())
}

func TestAnalyze_EndToEndWithRules(t *testing.T) {
	var adviceInput summary.AdviceInput
	advisor := &MockAdvisor{
		GenerateFunc: func(ctx context.Context, in summary.AdviceInput) string {
			adviceInput = in
			return "# Plan\n1. Cook at home."
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Advisor: advisor})

	res, err := a.Analyze(context.Background(), strings.NewReader(statementCSV))
	require.NoError(t, err)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, domain.Food, res.Transactions[0].Category)
	assert.Equal(t, domain.Subscriptions, res.Transactions[1].Category)
	assert.Equal(t, domain.Other, res.Transactions[2].Category)

	assert.Equal(t, "Whole Foods Market", res.Transactions[0].Description)
	assert.Equal(t, "whole foods market", res.Transactions[0].NormalizedDescription)

	assert.Equal(t, "2429.81", res.Summary.TotalSpending.StringFixed(2))
	require.Len(t, res.Summary.MonthlyTotals, 2)
	assert.Equal(t, "70.19", res.Summary.MonthlyTotals["2024-01"].StringFixed(2))
	assert.Equal(t, "2500.00", res.Summary.MonthlyTotals["2024-02"].StringFixed(2))

	assert.Equal(t, domain.Other, adviceInput.Ranked[0].Category)
	assert.Equal(t, "1. Cook at home.", res.Dashboard.Advice)
	assert.Equal(t, []string{"Food", "Subscriptions", "Other"}, res.Dashboard.Chart.Labels)
	assert.Equal(t, "$-54.20", res.Dashboard.Transactions[0].Amount)
	assert.NotEmpty(t, res.RunID)
}

func TestAnalyze_ValidationErrorPropagates(t *testing.T) {
	called := false
	cat := &MockCategorizer{
		CategorizeAllFunc: func(ctx context.Context, descriptions []string) []domain.Category {
			called = true
			return nil
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: cat})

	res, err := a.Analyze(context.Background(), strings.NewReader("Date,Memo,Amount\n2024-01-01,x,1\n"))

	assert.Nil(t, res)
	var ve *statement.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, statement.KindColumnNames, ve.Kind)
	assert.False(t, called, "categorizer must not run on an invalid file")
}

func TestAnalyze_UnavailableClassifierStillSucceeds(t *testing.T) {
	c := categorizer.New(categorizer.Unavailable{Reason: errors.New("no model")}, 2, zerolog.Nop())
	a := pipeline.New(pipeline.Deps{Categorizer: c})

	res, err := a.Analyze(context.Background(), strings.NewReader(statementCSV))
	require.NoError(t, err)

	for _, tx := range res.Transactions {
		assert.Equal(t, domain.Other, tx.Category)
	}
	assert.Equal(t, "2429.81", res.Summary.CategoryTotals[domain.Other].StringFixed(2))
	assert.Empty(t, res.Dashboard.Advice)
}

func TestAnalyze_AdviceFailureTextPassesThrough(t *testing.T) {
	advisor := &MockAdvisor{
		GenerateFunc: func(ctx context.Context, in summary.AdviceInput) string {
			return "Unable to generate advice at this time. Error: boom"
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Advisor: advisor})

	res, err := a.Analyze(context.Background(), strings.NewReader(statementCSV))
	require.NoError(t, err)
	assert.Equal(t, "Unable to generate advice at this time. Error: boom", res.Dashboard.Advice)
}

func TestAnalyze_CategorizerReturningWrongLength(t *testing.T) {
	cat := &MockCategorizer{
		CategorizeAllFunc: func(ctx context.Context, descriptions []string) []domain.Category {
			return []domain.Category{domain.Food}
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: cat})

	_, err := a.Analyze(context.Background(), strings.NewReader(statementCSV))
	assert.ErrorContains(t, err, "categorize")
}

func TestAnalyze_InvalidCategoryBecomesOther(t *testing.T) {
	cat := &MockCategorizer{
		CategorizeAllFunc: func(ctx context.Context, descriptions []string) []domain.Category {
			return make([]domain.Category, len(descriptions))
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: cat})

	res, err := a.Analyze(context.Background(), strings.NewReader(statementCSV))
	require.NoError(t, err)
	for _, tx := range res.Transactions {
		assert.Equal(t, domain.Other, tx.Category)
	}
}

func TestAnalyzeFromGCS(t *testing.T) {
	var gotURI string
	fetcher := &MockFetcher{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			gotURI = uri
			return []byte(statementCSV), nil
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: fetcher})

	res, err := a.AnalyzeFromGCS(context.Background(), "gs://bucket/jan.csv")
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/jan.csv", gotURI)
	assert.Len(t, res.Transactions, 3)
}

func TestAnalyzeFromGCS_FetchError(t *testing.T) {
	fetcher := &MockFetcher{
		FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
			return nil, errors.New("permission denied")
		},
	}
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer(), Fetcher: fetcher})

	_, err := a.AnalyzeFromGCS(context.Background(), "gs://bucket/jan.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.False(t, statement.IsValidationError(err))
}

func TestAnalyzeFromGCS_NoFetcher(t *testing.T) {
	a := pipeline.New(pipeline.Deps{Categorizer: rulesCategorizer()})

	_, err := a.AnalyzeFromGCS(context.Background(), "gs://bucket/jan.csv")
	assert.ErrorContains(t, err, "no fetcher configured")
}

type recordingStep struct {
	name  string
	order *[]string
	err   error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(ctx context.Context, state *pipeline.PipelineState) error {
	*s.order = append(*s.order, s.name)
	return s.err
}

func TestPipeline_ExecuteStopsAtFirstError(t *testing.T) {
	var order []string
	stepErr := errors.New("boom")
	p := pipeline.NewPipeline(
		&recordingStep{name: "a", order: &order},
		&recordingStep{name: "b", order: &order, err: stepErr},
		&recordingStep{name: "c", order: &order},
	)

	err := p.Execute(context.Background(), &pipeline.PipelineState{})

	assert.ErrorIs(t, err, stepErr)
	assert.Contains(t, err.Error(), "pipeline step 2 (b) failed")
	assert.Equal(t, []string{"a", "b"}, order)
}
