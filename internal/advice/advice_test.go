package advice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/summary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// MockModels is a func-field mock of the GenAI models service.
type MockModels struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *MockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, model, contents, config)
	}
	return textResponse("1. Cook at home."), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func sampleInput() summary.AdviceInput {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	return summary.NewAdviceInput(summary.Summarize([]domain.Transaction{
		{Date: day("2024-01-05"), Amount: decimal.RequireFromString("-54.20"), Category: domain.Food},
		{Date: day("2024-01-10"), Amount: decimal.RequireFromString("-15.99"), Category: domain.Subscriptions},
		{Date: day("2024-01-12"), Amount: decimal.RequireFromString("-1200"), Category: domain.Rent},
	}))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	assert.Contains(t, prompt, "Food: $54.20, Rent: $1200.00, Subscriptions: $15.99\n")
	assert.Contains(t, prompt, "TOTAL SPENDING: $1270.19\n")
	assert.Contains(t, prompt, "TOP SPENDING CATEGORY: Rent ($1200.00 - 94.5% of total)\n")
	assert.Contains(t, prompt, "SECOND HIGHEST: Food ($54.20)\n")
	assert.Contains(t, prompt, "exactly 3 specific, actionable money-saving recommendations")
}

func TestBuildPrompt_NoTransactions(t *testing.T) {
	prompt := BuildPrompt(summary.NewAdviceInput(summary.Summarize(nil)))

	assert.Contains(t, prompt, "TOP SPENDING CATEGORY: Unknown ($0.00 - 0.0% of total)")
	assert.Contains(t, prompt, "SECOND HIGHEST: Unknown ($0.00)")
}

func TestGeminiGenerator_Generate(t *testing.T) {
	var gotModel string
	var gotPrompt string
	mock := &MockModels{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotPrompt = contents[0].Parts[0].Text
			return textResponse("1. Cancel unused subscriptions."), nil
		},
	}
	g := &GeminiGenerator{models: mock, model: "gemini-2.5-flash"}

	text := g.Generate(context.Background(), sampleInput())

	assert.Equal(t, "1. Cancel unused subscriptions.", text)
	assert.Equal(t, "gemini-2.5-flash", gotModel)
	assert.Contains(t, gotPrompt, "SPENDING BREAKDOWN")
}

func TestGeminiGenerator_FailureReturnsSentinel(t *testing.T) {
	mock := &MockModels{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	g := &GeminiGenerator{models: mock, model: "m"}

	text := g.Generate(context.Background(), sampleInput())

	assert.Equal(t, "Unable to generate advice at this time. Error: generate content: quota exceeded", text)
}

func TestGeminiGenerator_EmptyResponse(t *testing.T) {
	mock := &MockModels{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}
	g := &GeminiGenerator{models: mock, model: "m"}

	assert.Contains(t, g.Generate(context.Background(), sampleInput()), "Unable to generate advice at this time. Error:")
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "gemini-2.5-flash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFallbackGenerators(t *testing.T) {
	assert.Empty(t, Disabled{}.Generate(context.Background(), sampleInput()))
	assert.Equal(t,
		"Unable to generate advice at this time. Error: no key",
		Unavailable{Reason: errors.New("no key")}.Generate(context.Background(), sampleInput()))
	assert.Contains(t, Unavailable{}.Generate(context.Background(), sampleInput()), "not configured")
}
