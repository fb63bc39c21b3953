package categorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParseScores(t *testing.T) {
	labels := domain.CategoryLabels()

	t.Run("sorted by score", func(t *testing.T) {
		raw := `{"scores":[{"label":"Other","score":0.05},{"label":"Food","score":0.8},{"label":"Shopping","score":0.15}]}`
		scores, err := parseScores(raw, labels)
		require.NoError(t, err)
		assert.Equal(t, []Score{
			{Label: "Food", Score: 0.8},
			{Label: "Shopping", Score: 0.15},
			{Label: "Other", Score: 0.05},
		}, scores)
	})

	t.Run("ties keep model order", func(t *testing.T) {
		raw := `{"scores":[{"label":"Transport","score":0.5},{"label":"Utilities","score":0.5}]}`
		scores, err := parseScores(raw, labels)
		require.NoError(t, err)
		assert.Equal(t, "Transport", scores[0].Label)
	})

	t.Run("canonicalizes and drops unknown or duplicate labels", func(t *testing.T) {
		raw := `{"scores":[{"label":"groceries","score":0.9},{"label":" food ","score":0.7},{"label":"Food","score":0.2}]}`
		scores, err := parseScores(raw, labels)
		require.NoError(t, err)
		assert.Equal(t, []Score{{Label: "Food", Score: 0.7}}, scores)
	})

	t.Run("fenced output", func(t *testing.T) {
		raw := "```json\n{\"scores\":[{\"label\":\"Rent\",\"score\":1}]}\n```"
		scores, err := parseScores(raw, labels)
		require.NoError(t, err)
		assert.Equal(t, "Rent", scores[0].Label)
	})

	t.Run("no known labels", func(t *testing.T) {
		_, err := parseScores(`{"scores":[{"label":"Travel","score":1}]}`, labels)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseScores("I think this is Food.", labels)
		assert.Error(t, err)
	})
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding text", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw))
		})
	}
}

func TestBuildClassificationPrompt(t *testing.T) {
	prompt := buildClassificationPrompt("  uber ride ", domain.CategoryLabels())

	assert.Contains(t, prompt, "  uber ride\n")
	for _, l := range domain.CategoryLabels() {
		assert.Contains(t, prompt, "  - "+l+"\n")
	}
}

func TestScoresSchema_ConstrainsLabels(t *testing.T) {
	schema := scoresSchema(domain.CategoryLabels())

	item := schema.Properties["scores"].Items
	require.NotNil(t, item)
	assert.Equal(t, domain.CategoryLabels(), item.Properties["label"].Enum)
}

func TestNewGeminiClassifier_RequiresKey(t *testing.T) {
	_, err := NewGeminiClassifier(t.Context(), "", "gemini-2.5-flash")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

type fakeModels struct {
	text   string
	err    error
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

func TestGeminiClassifier_Classify(t *testing.T) {
	fake := &fakeModels{text: `{"scores":[{"label":"Transport","score":0.2},{"label":"Food","score":0.7}]}`}
	g := &GeminiClassifier{models: fake, model: "gemini-2.5-flash"}

	scores, err := g.Classify(context.Background(), "uber eats", domain.CategoryLabels())
	require.NoError(t, err)
	assert.Equal(t, "Food", scores[0].Label)

	require.NotNil(t, fake.config)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Equal(t, float32(0), *fake.config.Temperature)
}

func TestGeminiClassifier_ClassifyErrors(t *testing.T) {
	g := &GeminiClassifier{models: &fakeModels{err: errors.New("unavailable")}, model: "m"}
	_, err := g.Classify(context.Background(), "x", domain.CategoryLabels())
	assert.ErrorContains(t, err, "unavailable")

	g = &GeminiClassifier{models: &fakeModels{text: ""}, model: "m"}
	_, err = g.Classify(context.Background(), "x", domain.CategoryLabels())
	assert.ErrorContains(t, err, "empty response")
}
