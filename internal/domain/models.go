// Package domain contains the core domain models and types.
// These models represent the business logic contracts and are independent
// of any infrastructure concerns.
package domain

import "time"

// Severity represents the impact level assigned to a build failure.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid checks if the severity value is one of the allowed values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// BuildContext describes one failed CI build. It is supplied by the caller
// and read-only to the analysis core.
type BuildContext struct {
	// Pipeline is the name of the CI pipeline that failed.
	Pipeline string `json:"pipeline"`

	// Branch is the branch the build ran against.
	Branch string `json:"branch"`

	// Command is the command whose failure ended the build.
	Command string `json:"command"`

	// ExitStatus is the exit status of the failed command.
	ExitStatus string `json:"exit_status"`

	// Phase is the build phase that failed (e.g. "command", "checkout").
	Phase string `json:"phase"`

	// LogExcerpt is the tail of the build log. The prompt builder enforces
	// its own character budget regardless of how much the caller sends.
	LogExcerpt string `json:"log_excerpt"`
}

// AnalysisRequest is one analysis submission from a caller. Provider and
// Model are optional; empty values select the configured defaults.
type AnalysisRequest struct {
	// Provider is the provider id (openai, anthropic, gemini).
	Provider string `json:"provider,omitempty"`

	// Model is the requested model identifier or alias.
	Model string `json:"model,omitempty"`

	// MaxTokens overrides the configured output token bound when positive.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Context describes the failed build.
	Context BuildContext `json:"context"`
}

// ProviderReply holds the raw text extracted from one provider response
// envelope, before structured extraction.
type ProviderReply struct {
	// RawText is the generated free-form reply.
	RawText string

	// TokensUsed is the usage figure reported by the provider, 0 if absent.
	TokensUsed int
}

// AnalysisResult is the durable output of one analysis. It is immutable
// once produced and always well-formed, even when the analysis failed.
type AnalysisResult struct {
	// Provider is the provider that produced this result.
	Provider string `json:"provider"`

	// Model is the resolved model identifier.
	Model string `json:"model"`

	// RootCause explains why the build failed.
	RootCause string `json:"root_cause"`

	// SuggestedFixes lists remediation steps in the order the model gave
	// them. Never nil; may be empty.
	SuggestedFixes []string `json:"suggested_fixes"`

	// Confidence is the model's self-reported confidence, 0-100.
	Confidence int `json:"confidence"`

	// Severity is the assessed impact level.
	Severity Severity `json:"severity"`

	// AnalysisTime is the wall-clock duration of the provider call.
	AnalysisTime time.Duration `json:"analysis_time"`

	// TokensUsed is the token usage reported by the provider.
	TokensUsed int `json:"tokens_used"`

	// Cached reports whether the result was served from a cache.
	// Reserved; always false in this core.
	Cached bool `json:"cached"`
}

// AnalysisResponse wraps an analysis result with delivery metadata for the
// HTTP surface.
type AnalysisResponse struct {
	// Success indicates whether the analysis completed without an
	// aborting error. Failed analyses still carry an error-shaped Result.
	Success bool `json:"success"`

	// Result contains the analysis result.
	Result *AnalysisResult `json:"result,omitempty"`

	// Error contains the failure description if the analysis aborted.
	Error string `json:"error,omitempty"`

	// Source indicates whether the result came from rules or an AI provider.
	Source string `json:"source,omitempty"`

	// ProcessedAt is the timestamp when the analysis was completed.
	ProcessedAt time.Time `json:"processed_at"`
}

// RuleMatch represents a match from the rule-based pre-classification.
type RuleMatch struct {
	// RuleID is the unique identifier of the matched rule.
	RuleID string

	// Confidence indicates how confident the rule match is (0.0 - 1.0).
	Confidence float64

	// Result is the pre-computed analysis result from the rule.
	Result *AnalysisResult
}
