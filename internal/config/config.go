package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Classifier modes accepted by CLASSIFIER_MODE.
const (
	ClassifierGemini = "gemini"
	ClassifierRules  = "rules"
	ClassifierNone   = "none"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Config holds application configuration.
type Config struct {
	// HTTP server
	Port           string
	MaxUploadBytes int64

	// Gemini
	GeminiAPIKey string

	// Categorization
	ClassifierMode    string
	ClassifierModel   string
	ClassifierTimeout time.Duration
	ClassifierWorkers int

	// Advice generation
	AdviceEnabled bool
	AdviceModel   string

	// Object storage
	GCSCredentialsFile string

	// Async jobs
	JobQueueSize  int
	JobWorkers    int
	JobMaxRetries int

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load reads an optional .env file followed by the process environment.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: reading .env: %w", err)
	}

	apiKey := getEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GOOGLE_API_KEY", "")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 16<<20)),

		GeminiAPIKey: apiKey,

		ClassifierMode:    strings.ToLower(getEnv("CLASSIFIER_MODE", ClassifierGemini)),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", DefaultModelName),
		ClassifierTimeout: getEnvDuration("CLASSIFIER_TIMEOUT", 15*time.Second),
		ClassifierWorkers: getEnvInt("CLASSIFIER_WORKERS", 4),

		AdviceEnabled: getEnvBool("ADVICE_ENABLED", true),
		AdviceModel:   getEnv("ADVICE_MODEL", DefaultModelName),

		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		JobQueueSize:  getEnvInt("JOB_QUEUE_SIZE", 100),
		JobWorkers:    getEnvInt("JOB_WORKERS", 2),
		JobMaxRetries: getEnvInt("JOB_MAX_RETRIES", 2),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", true),
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MaxUploadBytes < 1 {
		problems = append(problems, fmt.Sprintf("invalid max upload size %d: must be positive", c.MaxUploadBytes))
	}

	switch c.ClassifierMode {
	case ClassifierGemini, ClassifierRules, ClassifierNone:
	default:
		problems = append(problems, fmt.Sprintf("invalid classifier mode '%s': must be one of %v",
			c.ClassifierMode, []string{ClassifierGemini, ClassifierRules, ClassifierNone}))
	}

	if c.ClassifierModel == "" {
		problems = append(problems, "classifier model cannot be empty")
	}
	if c.ClassifierTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid classifier timeout %v: must be positive", c.ClassifierTimeout))
	}
	if c.ClassifierWorkers < 1 || c.ClassifierWorkers > 64 {
		problems = append(problems, fmt.Sprintf("invalid classifier workers %d: must be between 1 and 64", c.ClassifierWorkers))
	}

	if c.AdviceEnabled && c.AdviceModel == "" {
		problems = append(problems, "advice model cannot be empty when advice is enabled")
	}

	if c.GCSCredentialsFile != "" {
		if _, err := os.Stat(c.GCSCredentialsFile); err != nil {
			problems = append(problems, fmt.Sprintf("GCS credentials file is not readable: %s", c.GCSCredentialsFile))
		}
	}

	if c.JobQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid job queue size %d: must be at least 1", c.JobQueueSize))
	}
	if c.JobWorkers < 1 {
		problems = append(problems, fmt.Sprintf("invalid job workers %d: must be at least 1", c.JobWorkers))
	}
	if c.JobMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid job max retries %d: must not be negative", c.JobMaxRetries))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
