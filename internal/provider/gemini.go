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

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient speaks the Gemini wire shape: the API key travels as a URL
// query parameter, content goes as a parts array, the reply sits at
// candidates[0].content.parts[0].text and usage at
// usageMetadata.totalTokenCount.
type geminiClient struct {
	entry     catalog.Entry
	cfg       Config
	transport *transport
	logger    *zap.Logger
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Analyze issues one generateContent request.
func (c *geminiClient) Analyze(ctx context.Context, prompt string) (domain.ProviderReply, error) {
	startTime := time.Now()
	url := fmt.Sprintf("%s/models/%s:%s?key=%s",
		baseURL(c.cfg, geminiDefaultBaseURL), c.entry.Model, c.entry.Endpoint, c.cfg.APIKey)

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: effectiveMaxTokens(c.cfg.MaxTokens, c.entry.MaxOutputTokens),
			Temperature:     0.1,
		},
	}

	// No Authorization header; the key is in the URL.
	body, err := c.transport.postJSON(ctx, url, nil, payload)
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

// extractEnvelope pulls the reply text out of the candidates envelope.
func (c *geminiClient) extractEnvelope(body []byte) (domain.ProviderReply, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ProviderReply{}, domain.WrapError("parse_envelope",
			fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err))
	}

	if len(resp.Candidates) == 0 ||
		len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == "" {
		c.logger.Warn("reply path missing in envelope",
			zap.String("body_preview", truncate(string(body), 500)),
		)
		return domain.ProviderReply{}, domain.WrapError("extract_reply",
			fmt.Errorf("%w: missing candidates[0].content.parts[0].text", domain.ErrMalformedEnvelope))
	}

	return domain.ProviderReply{
		RawText:    resp.Candidates[0].Content.Parts[0].Text,
		TokensUsed: resp.UsageMetadata.TotalTokenCount,
	}, nil
}
