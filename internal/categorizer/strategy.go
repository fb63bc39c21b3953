package categorizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Strategy modes accepted by NewStrategy.
const (
	ModeGemini = "gemini"
	ModeRules  = "rules"
	ModeNone   = "none"
)

// Score is one candidate label with the classifier's confidence.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotClassifier ranks candidate labels for a piece of text.
// Implementations return scores ordered by their own confidence, highest
// first; ties keep whatever order the classifier produced.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) ([]Score, error)
}

// Strategy is the categorization mode chosen once at process start.
// It is one of ModelBacked, RuleBased or Unavailable.
type Strategy interface {
	Name() string
	strategy()
}

// ModelBacked asks a zero-shot classifier for every description.
type ModelBacked struct {
	Classifier ZeroShotClassifier
	Timeout    time.Duration // per call; zero means no timeout
}

// RuleBased uses the keyword table only.
type RuleBased struct {
	Rules RuleTable // nil means DefaultRules
}

// Unavailable records that the classifier could not be initialized.
// Every description is categorized as Other.
type Unavailable struct {
	Reason error
}

func (ModelBacked) Name() string { return "model" }
func (RuleBased) Name() string   { return "rules" }
func (Unavailable) Name() string { return "unavailable" }

func (ModelBacked) strategy() {}
func (RuleBased) strategy()   {}
func (Unavailable) strategy() {}

// StrategyConfig selects and configures the strategy.
type StrategyConfig struct {
	Mode    string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewStrategy builds the process-wide strategy. A classifier that fails to
// initialize is not fatal: the failure is logged once and recorded in an
// Unavailable strategy, which is never retried.
func NewStrategy(ctx context.Context, cfg StrategyConfig, log zerolog.Logger) Strategy {
	switch cfg.Mode {
	case ModeRules:
		log.Info().Str("strategy", "rules").Msg("Transaction categorizer using keyword rules")
		return RuleBased{Rules: DefaultRules()}
	case ModeNone:
		log.Warn().Str("strategy", "unavailable").Msg("Transaction categorizer disabled, all transactions will be Other")
		return Unavailable{Reason: fmt.Errorf("classifier disabled by configuration")}
	case ModeGemini:
		classifier, err := NewGeminiClassifier(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			log.Error().Err(err).Str("model", cfg.Model).Msg("Failed to initialize categorizer")
			return Unavailable{Reason: err}
		}
		log.Info().Str("strategy", "model").Str("model", cfg.Model).Msg("Transaction categorizer initialized successfully")
		return ModelBacked{Classifier: classifier, Timeout: cfg.Timeout}
	default:
		err := fmt.Errorf("unknown classifier mode %q", cfg.Mode)
		log.Error().Err(err).Msg("Failed to initialize categorizer")
		return Unavailable{Reason: err}
	}
}
