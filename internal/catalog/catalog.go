// Package catalog holds the static registry of supported provider/model
// combinations and resolves requested model names against it.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ai-error-analysis/internal/domain"
)

// Provider identifiers accepted by the catalog.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Entry describes one provider/model combination.
type Entry struct {
	// Provider is the owning provider id.
	Provider string `json:"provider"`

	// Model is the canonical model identifier.
	Model string `json:"model"`

	// Endpoint is the provider-specific endpoint path for this model.
	Endpoint string `json:"endpoint"`

	// MaxOutputTokens caps the tokens a request may ask this model for.
	MaxOutputTokens int `json:"max_output_tokens"`

	// CostPer1K is an advisory cost hint in USD per 1000 tokens.
	CostPer1K float64 `json:"cost_per_1k"`

	// Aliases are legacy names that resolve to this model. Currently no
	// model carries aliases; the resolution path is kept for when legacy
	// names need to be mapped again.
	Aliases []string `json:"aliases,omitempty"`
}

// Catalog is an immutable lookup table built once at process start.
// It is safe for concurrent use.
type Catalog struct {
	entries  map[string]map[string]Entry
	defaults map[string]string
}

// New builds the catalog of supported models.
func New() *Catalog {
	c := &Catalog{
		entries: map[string]map[string]Entry{
			ProviderOpenAI:    {},
			ProviderAnthropic: {},
			ProviderGemini:    {},
		},
		defaults: map[string]string{
			ProviderOpenAI:    "gpt-4o-mini",
			ProviderAnthropic: "claude-3-5-sonnet-20241022",
			ProviderGemini:    "gemini-1.5-flash",
		},
	}

	openAI := func(model string, cost float64) {
		c.add(Entry{Provider: ProviderOpenAI, Model: model, Endpoint: "chat/completions", MaxOutputTokens: 128000, CostPer1K: cost})
	}
	openAI("gpt-4o", 0.005)
	openAI("gpt-4o-mini", 0.00015)
	openAI("gpt-4o-2024-11-20", 0.0025)
	openAI("gpt-4o-2024-08-06", 0.0025)
	openAI("gpt-4o-mini-2024-07-18", 0.00015)
	openAI("o1-preview", 0.015)
	openAI("o1-preview-2024-09-12", 0.015)
	openAI("o1-mini", 0.003)
	openAI("o1-mini-2024-09-12", 0.003)
	openAI("gpt-4-turbo", 0.01)
	openAI("gpt-4-turbo-2024-04-09", 0.01)

	anthropic := func(model string, maxTokens int, cost float64) {
		c.add(Entry{Provider: ProviderAnthropic, Model: model, Endpoint: "messages", MaxOutputTokens: maxTokens, CostPer1K: cost})
	}
	anthropic("claude-opus-4-20250514", 4096, 0.15)
	anthropic("claude-sonnet-4-20250514", 4096, 0.03)
	anthropic("claude-3-opus-20240229", 4096, 0.15)
	anthropic("claude-3-5-sonnet-20241022", 8192, 0.03)
	anthropic("claude-3-5-haiku-20241022", 8192, 0.0025)

	gemini := func(model string, maxTokens int, cost float64) {
		c.add(Entry{Provider: ProviderGemini, Model: model, Endpoint: "generateContent", MaxOutputTokens: maxTokens, CostPer1K: cost})
	}
	gemini("gemini-2.0-flash", 1000000, 0.0005)
	gemini("gemini-2.0-pro-exp", 2000000, 0.002)
	gemini("gemini-1.5-pro", 2000000, 0.002)
	gemini("gemini-1.5-flash", 1000000, 0.0005)

	return c
}

func (c *Catalog) add(e Entry) {
	models := c.entries[e.Provider]
	if _, exists := models[e.Model]; exists {
		// Uniqueness of (provider, model) is a build-time invariant.
		panic(fmt.Sprintf("catalog: duplicate entry %s/%s", e.Provider, e.Model))
	}
	models[e.Model] = e
}

// Lookup returns the model entries for a provider. The provider id is
// matched case-insensitively.
func (c *Catalog) Lookup(provider string) (map[string]Entry, error) {
	models, ok := c.entries[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
	return models, nil
}

// Entry returns the catalog entry for a provider/model pair.
func (c *Catalog) Entry(provider, model string) (Entry, error) {
	models, err := c.Lookup(provider)
	if err != nil {
		return Entry{}, err
	}
	entry, ok := models[model]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q for provider %q", domain.ErrUnsupportedModel, model, provider)
	}
	return entry, nil
}

// DefaultModel returns the default model for a provider.
func (c *Catalog) DefaultModel(provider string) (string, error) {
	model, ok := c.defaults[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
	return model, nil
}

// Providers returns the supported provider ids, sorted.
func (c *Catalog) Providers() []string {
	providers := make([]string, 0, len(c.entries))
	for p := range c.entries {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Models returns the entries for a provider sorted by model id, for
// listing purposes.
func (c *Catalog) Models(provider string) ([]Entry, error) {
	models, err := c.Lookup(provider)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(models))
	for _, e := range models {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}
