// Package analyzer provides unit tests for the analysis orchestrator.
package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/extract"
	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
	"go.uber.org/zap"
)

// stubClient returns a fixed reply or error and records the prompt it saw.
type stubClient struct {
	reply  domain.ProviderReply
	err    error
	prompt string
}

func (s *stubClient) Analyze(ctx context.Context, p string) (domain.ProviderReply, error) {
	s.prompt = p
	if s.err != nil {
		return domain.ProviderReply{}, s.err
	}
	return s.reply, nil
}

func newTestOrchestrator(t *testing.T, client provider.Client, factoryErr error) (*Orchestrator, *stubClient) {
	t.Helper()
	logger := zap.NewNop()
	prompts, err := prompt.NewBuilder(prompt.DefaultLogBudget)
	if err != nil {
		t.Fatalf("prompt builder: %v", err)
	}
	stub, _ := client.(*stubClient)
	factory := func(entry catalog.Entry, cfg provider.Config, l *zap.Logger) (provider.Client, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return client, nil
	}
	o := NewWithFactory(catalog.New(), prompts, extract.NewExtractor(logger), factory, provider.Config{APIKey: "key"}, logger)
	return o, stub
}

func TestOrchestrator_Analyze(t *testing.T) {
	stub := &stubClient{
		reply: domain.ProviderReply{
			RawText:    "ROOT CAUSE: Token expired.\nSUGGESTED FIXES:\n- Regenerate token\n- Check expiry\nCONFIDENCE: 85%\nSEVERITY: high",
			TokensUsed: 432,
		},
	}
	o, _ := newTestOrchestrator(t, stub, nil)

	buildCtx := domain.BuildContext{
		Pipeline:   "api",
		Branch:     "main",
		LogExcerpt: "fatal: unable to access",
	}
	result, err := o.Analyze(context.Background(), "anthropic", "", 0, buildCtx)
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}

	if result.Provider != "anthropic" {
		t.Errorf("Provider = %q", result.Provider)
	}
	if result.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("Model = %q, want provider default", result.Model)
	}
	if result.RootCause != "Token expired." {
		t.Errorf("RootCause = %q", result.RootCause)
	}
	if len(result.SuggestedFixes) != 2 {
		t.Errorf("SuggestedFixes = %v", result.SuggestedFixes)
	}
	if result.Confidence != 85 {
		t.Errorf("Confidence = %d", result.Confidence)
	}
	if result.Severity != domain.SeverityHigh {
		t.Errorf("Severity = %q", result.Severity)
	}
	if result.Cached {
		t.Error("Cached must be false")
	}
	if result.TokensUsed != 432 {
		t.Errorf("TokensUsed = %d", result.TokensUsed)
	}

	// The rendered prompt must carry the build context.
	if !strings.Contains(stub.prompt, "Pipeline: api") {
		t.Error("prompt missing pipeline metadata")
	}
	if !strings.Contains(stub.prompt, "fatal: unable to access") {
		t.Error("prompt missing log excerpt")
	}
}

func TestOrchestrator_AnalyzeConfigurationErrors(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		model      string
		factoryErr error
		wantErr    error
	}{
		{name: "unknown provider", provider: "mistral", wantErr: domain.ErrUnknownProvider},
		{name: "unsupported model", provider: "openai", model: "gpt-2", wantErr: domain.ErrUnsupportedModel},
		{name: "missing credential", provider: "openai", factoryErr: domain.ErrMissingCredential, wantErr: domain.ErrMissingCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubClient{reply: domain.ProviderReply{RawText: "x"}}
			o, _ := newTestOrchestrator(t, stub, tt.factoryErr)

			_, err := o.Analyze(context.Background(), tt.provider, tt.model, 0, domain.BuildContext{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Analyze() error = %v, want %v", err, tt.wantErr)
			}
			if stub.prompt != "" {
				t.Error("no provider call should happen on configuration errors")
			}
		})
	}
}

func TestOrchestrator_AnalyzePropagatesClientError(t *testing.T) {
	stub := &stubClient{err: domain.WrapError("provider_response", domain.NewHTTPError(429, "rate limited"))}
	o, _ := newTestOrchestrator(t, stub, nil)

	_, err := o.Analyze(context.Background(), "gemini", "gemini-1.5-pro", 0, domain.BuildContext{})
	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Analyze() error = %v, want *domain.HTTPError", err)
	}
	if httpErr.Status != 429 {
		t.Errorf("Status = %d, want 429", httpErr.Status)
	}
}

func TestOrchestrator_AnalyzeFallbackNeverEmpty(t *testing.T) {
	stub := &stubClient{reply: domain.ProviderReply{RawText: "the build agent lost its workspace mid-run"}}
	o, _ := newTestOrchestrator(t, stub, nil)

	result, err := o.Analyze(context.Background(), "openai", "", 0, domain.BuildContext{})
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}
	if result.RootCause == "" {
		t.Error("root cause must never be empty")
	}
	if len(result.SuggestedFixes) == 0 {
		t.Error("fallback must populate suggested fixes")
	}
}

func TestOrchestrator_AnalyzeMaxTokensOverride(t *testing.T) {
	logger := zap.NewNop()
	prompts, err := prompt.NewBuilder(prompt.DefaultLogBudget)
	if err != nil {
		t.Fatalf("prompt builder: %v", err)
	}

	var seenMaxTokens int
	factory := func(entry catalog.Entry, cfg provider.Config, l *zap.Logger) (provider.Client, error) {
		seenMaxTokens = cfg.MaxTokens
		return &stubClient{reply: domain.ProviderReply{RawText: "ROOT CAUSE: x y z words here."}}, nil
	}
	o := NewWithFactory(catalog.New(), prompts, extract.NewExtractor(logger), factory, provider.Config{APIKey: "key", MaxTokens: 500}, logger)

	if _, err := o.Analyze(context.Background(), "openai", "", 2000, domain.BuildContext{}); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if seenMaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want per-call override 2000", seenMaxTokens)
	}

	if _, err := o.Analyze(context.Background(), "openai", "", 0, domain.BuildContext{}); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if seenMaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want configured 500", seenMaxTokens)
	}
}

func TestErrorResult(t *testing.T) {
	err := domain.WrapError("resolve_model", domain.ErrUnknownProvider)
	result := ErrorResult("mistral", "", err)

	if result.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0", result.Confidence)
	}
	if result.Severity != domain.SeverityHigh {
		t.Errorf("Severity = %q, want high", result.Severity)
	}
	if !strings.Contains(result.RootCause, "unknown provider") {
		t.Errorf("RootCause = %q, should describe the failure", result.RootCause)
	}
	if len(result.SuggestedFixes) == 0 {
		t.Error("error result must carry the generic fixes list")
	}
	if result.Model != "unknown" {
		t.Errorf("Model = %q, want unknown", result.Model)
	}
	if result.Cached {
		t.Error("Cached must be false")
	}
}
