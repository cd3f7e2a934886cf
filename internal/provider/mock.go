// Package provider implements the clients for the supported AI providers.
package provider

import (
	"context"

	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

// Mock implements Client without any network I/O, for local development
// and for running the server without a credential.
type Mock struct {
	logger *zap.Logger
}

// NewMock creates a mock provider client.
func NewMock(logger *zap.Logger) *Mock {
	return &Mock{logger: logger.Named("mock_client")}
}

// Analyze returns a canned reply in the labeled output format.
func (m *Mock) Analyze(ctx context.Context, prompt string) (domain.ProviderReply, error) {
	m.logger.Debug("mock analysis", zap.Int("prompt_length", len(prompt)))

	return domain.ProviderReply{
		RawText: "ROOT CAUSE: This is a mock analysis; no provider was called.\n" +
			"SUGGESTED FIXES:\n" +
			"- Set AI_ERROR_ANALYSIS_API_KEY to enable real analysis\n" +
			"- Set AI_MOCK_MODE=false\n" +
			"CONFIDENCE: 50%\n" +
			"SEVERITY: low",
		TokensUsed: 0,
	}, nil
}
