package advice

import (
	"context"
	"fmt"

	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/summary"
	"google.golang.org/genai"
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator asks a Gemini model for advice.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// NewGeminiGenerator creates the GenAI client used for every request.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiGenerator: GEMINI_API_KEY is not set")
	}
	if model == "" {
		return nil, fmt.Errorf("NewGeminiGenerator: model name is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}

	return &GeminiGenerator{models: client.Models, model: model}, nil
}

// Generate returns the model's text, or FailureText on any error.
func (g *GeminiGenerator) Generate(ctx context.Context, in summary.AdviceInput) string {
	log := logger.FromContext(ctx)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(in)), nil)
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("Failed to generate advice")
		return FailureText(fmt.Errorf("generate content: %w", err))
	}

	text := resp.Text()
	if text == "" {
		log.Error().Str("model", g.model).Msg("Advice model returned an empty response")
		return FailureText(fmt.Errorf("empty response from model"))
	}

	log.Debug().Int("length", len(text)).Msg("Advice generated")
	return text
}
