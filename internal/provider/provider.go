// Package provider implements the clients for the supported AI providers.
// Each variant knows its own request shape, auth placement, and response
// envelope; everything else (HTTPS-only transport, error classification)
// is shared.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one provider call end to end.
const DefaultTimeout = 120 * time.Second

// DefaultMaxTokens is the requested output bound when the caller gives none.
const DefaultMaxTokens = 1000

// Client issues one analysis request against a provider and returns the raw
// reply. Implementations hold no per-call state and are safe to share.
type Client interface {
	// Analyze sends the prompt and extracts the raw text reply from the
	// provider's envelope.
	Analyze(ctx context.Context, prompt string) (domain.ProviderReply, error)
}

// Config carries the per-call client settings supplied by the caller.
type Config struct {
	// APIKey is the provider credential, obtained from the environment by
	// the caller.
	APIKey string

	// BaseURL overrides the provider's default API base. Must be HTTPS.
	BaseURL string

	// MaxTokens is the requested output token bound. The effective value
	// sent to a provider never exceeds the model's catalog cap.
	MaxTokens int

	// Timeout bounds the HTTP call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient substitutes the transport's HTTP client, for tests.
	HTTPClient *http.Client
}

// New selects the client variant for the catalog entry's provider.
// The credential is checked here, before any request is constructed.
func New(entry catalog.Entry, cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", domain.ErrMissingCredential, entry.Provider)
	}

	t := newTransport(cfg, logger)

	switch entry.Provider {
	case catalog.ProviderOpenAI:
		return &openAIClient{entry: entry, cfg: cfg, transport: t, logger: logger.Named("openai_client")}, nil
	case catalog.ProviderAnthropic:
		return &anthropicClient{entry: entry, cfg: cfg, transport: t, logger: logger.Named("anthropic_client")}, nil
	case catalog.ProviderGemini:
		return &geminiClient{entry: entry, cfg: cfg, transport: t, logger: logger.Named("gemini_client")}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, entry.Provider)
	}
}

// effectiveMaxTokens caps the requested bound at the model's catalog limit.
func effectiveMaxTokens(requested, modelCap int) int {
	if requested <= 0 {
		requested = DefaultMaxTokens
	}
	if requested > modelCap {
		return modelCap
	}
	return requested
}

// baseURL picks the configured override or the provider default.
func baseURL(cfg Config, fallback string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return fallback
}
