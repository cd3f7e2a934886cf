// Package service contains the business logic layer.
package service

import (
	"context"
	"time"

	"github.com/ai-error-analysis/internal/analyzer"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/rules"
	"github.com/ai-error-analysis/pkg/redact"
	"go.uber.org/zap"
)

// Analyzer orchestrates the full analysis pipeline around the AI core:
// input validation, secret redaction, rule-based pre-classification, and
// error shaping.
type Analyzer struct {
	core            *analyzer.Orchestrator
	ruleEngine      *rules.Engine
	redactor        *redact.Redactor
	defaultProvider string
	defaultModel    string
	enableRules     bool
	logger          *zap.Logger
}

// AnalyzerConfig contains configuration for the Analyzer.
type AnalyzerConfig struct {
	// DefaultProvider is used when a request names no provider.
	DefaultProvider string

	// DefaultModel is used when a request names no model. Empty selects
	// the provider's catalog default.
	DefaultModel string

	// EnableRules enables rule-based pre-classification.
	EnableRules bool
}

// NewAnalyzer creates a new Analyzer with all dependencies.
func NewAnalyzer(
	core *analyzer.Orchestrator,
	ruleEngine *rules.Engine,
	redactor *redact.Redactor,
	config AnalyzerConfig,
	logger *zap.Logger,
) *Analyzer {
	return &Analyzer{
		core:            core,
		ruleEngine:      ruleEngine,
		redactor:        redactor,
		defaultProvider: config.DefaultProvider,
		defaultModel:    config.DefaultModel,
		enableRules:     config.EnableRules,
		logger:          logger.Named("service"),
	}
}

// Analyze processes a failed build through the analysis pipeline:
// 1. Validate and redact the log excerpt
// 2. Apply rule-based pre-classification
// 3. If no high-confidence rule match, ask the AI provider
// 4. Shape errors into a well-formed response
func (a *Analyzer) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	startTime := time.Now()
	a.logger.Debug("starting analysis", zap.Int("log_length", len(req.Context.LogExcerpt)))

	if a.redactor.IsEmpty(req.Context.LogExcerpt) {
		return &domain.AnalysisResponse{
			Success:     false,
			Error:       domain.ErrEmptyLog.Error(),
			ProcessedAt: time.Now(),
		}, nil
	}

	redactedLog, stats := a.redactor.RedactWithStats(req.Context.LogExcerpt)
	a.logger.Debug("log redacted",
		zap.Int("original_size", stats.OriginalSize),
		zap.Int("redacted_size", stats.RedactedSize),
		zap.Int("secrets_masked", stats.SecretsMasked),
		zap.Bool("truncated", stats.Truncated),
	)

	buildCtx := req.Context
	buildCtx.LogExcerpt = redactedLog

	if a.enableRules {
		matches := a.ruleEngine.Analyze(redactedLog)
		if best := a.ruleEngine.BestMatch(matches); best != nil {
			a.logger.Info("using rule-based result",
				zap.String("rule_id", best.RuleID),
				zap.Float64("confidence", best.Confidence),
				zap.Duration("duration", time.Since(startTime)),
			)

			return &domain.AnalysisResponse{
				Success:     true,
				Result:      best.Result,
				Source:      "rules:" + best.RuleID,
				ProcessedAt: time.Now(),
			}, nil
		}

		if len(matches) > 0 {
			a.logger.Debug("rule matches below threshold, proceeding to AI",
				zap.Int("match_count", len(matches)),
			)
		}
	}

	providerID := req.Provider
	if providerID == "" {
		providerID = a.defaultProvider
	}
	model := req.Model
	if model == "" {
		model = a.defaultModel
	}

	result, err := a.core.Analyze(ctx, providerID, model, req.MaxTokens, buildCtx)
	if err != nil {
		a.logger.Error("AI analysis failed",
			zap.String("provider", providerID),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)

		return &domain.AnalysisResponse{
			Success:     false,
			Result:      analyzer.ErrorResult(providerID, model, err),
			Error:       err.Error(),
			Source:      "error",
			ProcessedAt: time.Now(),
		}, nil
	}

	a.logger.Info("AI analysis completed",
		zap.String("provider", result.Provider),
		zap.String("model", result.Model),
		zap.String("severity", string(result.Severity)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &domain.AnalysisResponse{
		Success:     true,
		Result:      result,
		Source:      "ai",
		ProcessedAt: time.Now(),
	}, nil
}
