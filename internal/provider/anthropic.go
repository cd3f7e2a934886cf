// Package provider implements the clients for the supported AI providers.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// anthropicClient speaks the Anthropic messages wire shape: x-api-key plus
// a fixed version header, a single user message, reply at content[0].text
// and usage at usage.output_tokens.
type anthropicClient struct {
	entry     catalog.Entry
	cfg       Config
	transport *transport
	logger    *zap.Logger
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Analyze issues one messages request.
func (c *anthropicClient) Analyze(ctx context.Context, prompt string) (domain.ProviderReply, error) {
	startTime := time.Now()
	url := fmt.Sprintf("%s/%s", baseURL(c.cfg, anthropicDefaultBaseURL), c.entry.Endpoint)

	payload := messagesRequest{
		Model:     c.entry.Model,
		MaxTokens: effectiveMaxTokens(c.cfg.MaxTokens, c.entry.MaxOutputTokens),
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := c.transport.postJSON(ctx, url, headers, payload)
	if err != nil {
		return domain.ProviderReply{}, err
	}

	reply, err := c.extractEnvelope(body)
	if err != nil {
		return domain.ProviderReply{}, err
	}

	c.logger.Debug("analysis reply received",
		zap.String("model", c.entry.Model),
		zap.Int("tokens_used", reply.TokensUsed),
		zap.Duration("duration", time.Since(startTime)),
	)
	return reply, nil
}

// extractEnvelope pulls the reply text out of the messages envelope.
func (c *anthropicClient) extractEnvelope(body []byte) (domain.ProviderReply, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ProviderReply{}, domain.WrapError("parse_envelope",
			fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err))
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		c.logger.Warn("reply path missing in envelope",
			zap.String("body_preview", truncate(string(body), 500)),
		)
		return domain.ProviderReply{}, domain.WrapError("extract_reply",
			fmt.Errorf("%w: missing content[0].text", domain.ErrMalformedEnvelope))
	}

	return domain.ProviderReply{
		RawText:    resp.Content[0].Text,
		TokensUsed: resp.Usage.OutputTokens,
	}, nil
}
