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

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// systemRole primes the chat-style providers before the user prompt.
const systemRole = "You are an expert DevOps engineer analyzing CI/CD failures."

// openAIClient speaks the OpenAI chat-completions wire shape: Bearer auth,
// a system+user message array, reply at choices[0].message.content and
// usage at usage.total_tokens.
type openAIClient struct {
	entry     catalog.Entry
	cfg       Config
	transport *transport
	logger    *zap.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze issues one chat-completions request.
func (c *openAIClient) Analyze(ctx context.Context, prompt string) (domain.ProviderReply, error) {
	startTime := time.Now()
	url := fmt.Sprintf("%s/%s", baseURL(c.cfg, openAIDefaultBaseURL), c.entry.Endpoint)

	payload := chatRequest{
		Model: c.entry.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemRole},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   effectiveMaxTokens(c.cfg.MaxTokens, c.entry.MaxOutputTokens),
		Temperature: 0.1,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
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

// extractEnvelope pulls the reply text out of the chat-completions envelope.
func (c *openAIClient) extractEnvelope(body []byte) (domain.ProviderReply, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ProviderReply{}, domain.WrapError("parse_envelope",
			fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err))
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Warn("reply path missing in envelope",
			zap.String("body_preview", truncate(string(body), 500)),
		)
		return domain.ProviderReply{}, domain.WrapError("extract_reply",
			fmt.Errorf("%w: missing choices[0].message.content", domain.ErrMalformedEnvelope))
	}

	return domain.ProviderReply{
		RawText:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
