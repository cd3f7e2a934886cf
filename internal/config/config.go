// Package config handles application configuration from environment
// variables. Credential loading lives here, outside the analysis core.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration (HTTP surface only).
	Server ServerConfig

	// AI provider configuration.
	AI AIConfig

	// Log processing configuration.
	Processing ProcessingConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must comfortably exceed the provider timeout.
	WriteTimeout time.Duration
}

// AIConfig contains provider settings.
type AIConfig struct {
	// Provider is the provider id (openai, anthropic, gemini).
	Provider string

	// Model is the requested model; empty selects the provider default.
	Model string

	// APIKey is the provider credential.
	APIKey string

	// BaseURL overrides the provider's default API base.
	BaseURL string

	// MaxTokens is the requested output token bound.
	MaxTokens int

	// Timeout bounds one provider call.
	Timeout time.Duration

	// MockMode replaces the provider client with a canned one.
	MockMode bool
}

// ProcessingConfig contains log processing settings.
type ProcessingConfig struct {
	// LogBudget is the character budget for the log excerpt embedded in
	// the prompt.
	LogBudget int

	// MaxLogSize is the maximum log size accepted from callers before
	// redaction.
	MaxLogSize int

	// EnableRules enables rule-based pre-classification.
	EnableRules bool

	// RuleConfidenceThreshold is the minimum confidence to short-circuit
	// with a rule result.
	RuleConfidenceThreshold float64
}

// credentialEnvVars lists where the API key may come from, most specific
// name last. AI_ERROR_ANALYSIS_API_KEY always wins.
var credentialEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	providerID := strings.ToLower(getEnvOrDefault("AI_PROVIDER", "openai"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 150*time.Second),
		},
		AI: AIConfig{
			Provider:  providerID,
			Model:     os.Getenv("AI_MODEL"),
			APIKey:    LookupCredential(providerID),
			BaseURL:   os.Getenv("AI_BASE_URL"),
			MaxTokens: getIntOrDefault("AI_MAX_TOKENS", provider.DefaultMaxTokens),
			Timeout:   getDurationOrDefault("AI_TIMEOUT", provider.DefaultTimeout),
			MockMode:  getBoolOrDefault("AI_MOCK_MODE", false),
		},
		Processing: ProcessingConfig{
			LogBudget:               getIntOrDefault("LOG_BUDGET", prompt.DefaultLogBudget),
			MaxLogSize:              getIntOrDefault("MAX_LOG_SIZE", 50000),
			EnableRules:             getBoolOrDefault("ENABLE_RULES", true),
			RuleConfidenceThreshold: getFloatOrDefault("RULE_CONFIDENCE_THRESHOLD", 0.8),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LookupCredential reads the API key from the environment: the dedicated
// variable first, the provider-conventional one as fallback.
func LookupCredential(providerID string) string {
	if key := os.Getenv("AI_ERROR_ANALYSIS_API_KEY"); key != "" {
		return key
	}
	if envVar, ok := credentialEnvVars[strings.ToLower(providerID)]; ok {
		return os.Getenv(envVar)
	}
	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AI.Provider == "" {
		return fmt.Errorf("invalid configuration: AI_PROVIDER is required")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("invalid configuration: AI_MAX_TOKENS must be positive")
	}
	if c.AI.Timeout < time.Second {
		return fmt.Errorf("invalid configuration: AI_TIMEOUT must be at least 1 second")
	}
	if c.Processing.LogBudget <= 0 {
		return fmt.Errorf("invalid configuration: LOG_BUDGET must be positive")
	}
	if c.Processing.RuleConfidenceThreshold < 0 || c.Processing.RuleConfidenceThreshold > 1 {
		return fmt.Errorf("invalid configuration: RULE_CONFIDENCE_THRESHOLD must be between 0 and 1")
	}
	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Accept plain seconds ("120") or duration strings ("2m").
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
