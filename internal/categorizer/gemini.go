package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"
)

// lookupTimeout bounds the model lookup done while initializing.
const lookupTimeout = 20 * time.Second

// contentGenerator is the subset of genai.Models used by Classify.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier is a ZeroShotClassifier backed by a Gemini model.
// The client is created once and shared by all calls.
type GeminiClassifier struct {
	models contentGenerator
	model  string
}

// NewGeminiClassifier creates the GenAI client and checks that the model is
// reachable. Any failure here means the classifier is unavailable.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClassifier: GEMINI_API_KEY is not set")
	}
	if model == "" {
		return nil, fmt.Errorf("NewGeminiClassifier: model name is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClassifier: create genai client: %w", err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	if _, err := client.Models.Get(lookupCtx, model, nil); err != nil {
		return nil, fmt.Errorf("NewGeminiClassifier: load model %q: %w", model, err)
	}

	return &GeminiClassifier{models: client.Models, model: model}, nil
}

// Classify asks the model to score every label for text.
func (g *GeminiClassifier) Classify(ctx context.Context, text string, labels []string) ([]Score, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   scoresSchema(labels),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildClassificationPrompt(text, labels)), cfg)
	if err != nil {
		return nil, fmt.Errorf("Classify: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Classify: empty response from model")
	}

	return parseScores(rawText, labels)
}

func scoresSchema(labels []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label": {Type: genai.TypeString, Enum: labels},
						"score": {Type: genai.TypeNumber},
					},
					Required: []string{"label", "score"},
				},
			},
		},
		Required: []string{"scores"},
	}
}

// parseScores decodes the model output, keeps only candidate labels (first
// occurrence wins, spelled as in labels) and sorts by score descending.
// The sort is stable so equal scores keep the model's order.
func parseScores(raw string, labels []string) ([]Score, error) {
	var payload struct {
		Scores []Score `json:"scores"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parseScores: unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	canonical := make(map[string]string, len(labels))
	for _, l := range labels {
		canonical[strings.ToLower(l)] = l
	}

	seen := make(map[string]bool, len(labels))
	scores := make([]Score, 0, len(payload.Scores))
	for _, s := range payload.Scores {
		label, ok := canonical[strings.ToLower(strings.TrimSpace(s.Label))]
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		scores = append(scores, Score{Label: label, Score: s.Score})
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("parseScores: no candidate labels in response: %s", raw)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
