// Package analyzer ties the analysis core together: it resolves the model,
// builds the prompt, dispatches to the provider client, and extracts the
// structured verdict. One call in, one result or one error out - no
// retries, no caching, no concurrency.
package analyzer

import (
	"context"
	"time"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/extract"
	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
	"go.uber.org/zap"
)

// ClientFactory builds the provider client for a resolved catalog entry.
// Swappable so tests and mock mode can substitute the network client.
type ClientFactory func(entry catalog.Entry, cfg provider.Config, logger *zap.Logger) (provider.Client, error)

// Orchestrator runs one analysis end to end. All fields are read-only
// after construction, so a single Orchestrator is safe to share; per-call
// state lives on the stack of Analyze.
type Orchestrator struct {
	catalog    *catalog.Catalog
	resolver   *catalog.Resolver
	prompts    *prompt.Builder
	extractor  *extract.Extractor
	newClient  ClientFactory
	clientConf provider.Config
	logger     *zap.Logger
}

// New creates an orchestrator using the real provider clients.
func New(c *catalog.Catalog, prompts *prompt.Builder, extractor *extract.Extractor, clientConf provider.Config, logger *zap.Logger) *Orchestrator {
	return NewWithFactory(c, prompts, extractor, provider.New, clientConf, logger)
}

// NewWithFactory creates an orchestrator with a custom client factory.
func NewWithFactory(c *catalog.Catalog, prompts *prompt.Builder, extractor *extract.Extractor, factory ClientFactory, clientConf provider.Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:    c,
		resolver:   catalog.NewResolver(c),
		prompts:    prompts,
		extractor:  extractor,
		newClient:  factory,
		clientConf: clientConf,
		logger:     logger.Named("orchestrator"),
	}
}

// Analyze performs one analysis of a build failure.
//
// Configuration errors (unknown provider, unsupported model, missing
// credential) surface before any network call. Transport and envelope
// errors abort the call. Extraction never fails; a degraded extraction is
// reported in the result, not as an error.
//
// maxTokens overrides the configured output bound for this call; zero or
// negative keeps the configured value.
func (o *Orchestrator) Analyze(ctx context.Context, providerID, requestedModel string, maxTokens int, buildCtx domain.BuildContext) (*domain.AnalysisResult, error) {
	model, err := o.resolver.Resolve(providerID, requestedModel)
	if err != nil {
		return nil, domain.WrapError("resolve_model", err)
	}
	if err := o.resolver.Validate(providerID, model); err != nil {
		return nil, domain.WrapError("validate_model", err)
	}

	entry, err := o.catalog.Entry(providerID, model)
	if err != nil {
		return nil, domain.WrapError("catalog_entry", err)
	}

	clientConf := o.clientConf
	if maxTokens > 0 {
		clientConf.MaxTokens = maxTokens
	}
	client, err := o.newClient(entry, clientConf, o.logger)
	if err != nil {
		return nil, domain.WrapError("create_client", err)
	}

	renderedPrompt := o.prompts.Build(buildCtx)

	o.logger.Debug("dispatching analysis",
		zap.String("provider", entry.Provider),
		zap.String("model", entry.Model),
		zap.Int("prompt_length", len(renderedPrompt)),
	)

	startTime := time.Now()
	reply, err := client.Analyze(ctx, renderedPrompt)
	analysisTime := time.Since(startTime)
	if err != nil {
		return nil, err
	}

	analysis := o.extractor.Extract(reply.RawText, reply.TokensUsed)
	if analysis.FallbackUsed {
		o.logger.Warn("extraction degraded to fallback",
			zap.String("provider", entry.Provider),
			zap.String("model", entry.Model),
		)
	}

	result := &domain.AnalysisResult{
		Provider:       entry.Provider,
		Model:          entry.Model,
		RootCause:      analysis.RootCause,
		SuggestedFixes: analysis.SuggestedFixes,
		Confidence:     analysis.Confidence,
		Severity:       analysis.Severity,
		AnalysisTime:   analysisTime,
		TokensUsed:     analysis.TokensUsed,
		Cached:         false,
	}

	o.logger.Info("analysis completed",
		zap.String("provider", result.Provider),
		zap.String("model", result.Model),
		zap.Int("confidence", result.Confidence),
		zap.String("severity", string(result.Severity)),
		zap.Duration("analysis_time", result.AnalysisTime),
		zap.Int("tokens_used", result.TokensUsed),
	)
	return result, nil
}

// errorFixes is the generic remediation list attached to error-shaped
// results, so downstream consumers always receive actionable content.
var errorFixes = []string{
	"Check the AI provider configuration",
	"Verify the API key and network connectivity",
	"Review the build logs manually",
	"Retry the analysis once the underlying issue is resolved",
}

// ErrorResult converts an aborting error into an AnalysisResult-shaped
// record so the caller's persistence step is uniform regardless of the
// failure kind.
func ErrorResult(providerID, model string, err error) *domain.AnalysisResult {
	if model == "" {
		model = "unknown"
	}
	return &domain.AnalysisResult{
		Provider:       providerID,
		Model:          model,
		RootCause:      "AI analysis failed: " + err.Error(),
		SuggestedFixes: append([]string{}, errorFixes...),
		Confidence:     0,
		Severity:       domain.SeverityHigh,
		AnalysisTime:   0,
		TokensUsed:     0,
		Cached:         false,
	}
}
