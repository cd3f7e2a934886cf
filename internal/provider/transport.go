// Package provider implements the clients for the supported AI providers.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

// transport is the shared HTTP layer under all provider variants. It makes
// exactly one request per call and classifies every failure into the
// uniform error taxonomy so variants stay free of transport handling.
type transport struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func newTransport(cfg Config, logger *zap.Logger) *transport {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &transport{
		httpClient: client,
		logger:     logger.Named("transport"),
	}
}

// postJSON posts the payload and returns the response body, which is
// guaranteed to be JSON. The HTTPS check runs before any socket activity.
func (t *transport) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	if !strings.HasPrefix(url, "https://") {
		return nil, domain.WrapError("validate_url",
			fmt.Errorf("%w, got scheme %q", domain.ErrInsecureTransport, urlScheme(url)))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.WrapError("marshal_request", err)
	}

	t.logger.Debug("sending provider request",
		zap.String("url", maskKey(url)),
		zap.Int("body_size", len(body)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError("create_request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError("http_request", fmt.Errorf("%w: %v", domain.ErrNetwork, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError("read_response", fmt.Errorf("%w: %v", domain.ErrNetwork, err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.WrapError("provider_response", domain.NewHTTPError(resp.StatusCode, string(respBody)))
	}

	if !json.Valid(respBody) {
		return nil, domain.WrapError("decode_response", domain.ErrInvalidResponseEncoding)
	}

	return respBody, nil
}

// urlScheme extracts the scheme for error messages without echoing the
// rest of the URL, which may embed a credential.
func urlScheme(url string) string {
	if idx := strings.Index(url, "://"); idx != -1 {
		return url[:idx]
	}
	return ""
}

// maskKey masks a key query parameter in a URL for safe logging.
func maskKey(url string) string {
	idx := strings.Index(url, "key=")
	if idx == -1 {
		return url
	}
	end := strings.Index(url[idx:], "&")
	if end == -1 {
		return url[:idx] + "key=***"
	}
	return url[:idx] + "key=***" + url[idx+end:]
}

// truncate shortens a string for log fields.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
