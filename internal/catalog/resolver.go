// Package catalog holds the static registry of supported provider/model
// combinations and resolves requested model names against it.
package catalog

import "strings"

// Resolver maps a requested model name to a canonical catalog model id.
// Resolution and validation are deliberately separate phases: legacy or
// aliased names degrade into a clear unsupported-model error instead of a
// confusing API-level 404.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver backed by the given catalog.
func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve returns the effective model id for a provider.
//
// An empty request resolves to the provider default. A known model id is
// returned unchanged. Otherwise the entries are scanned for a matching
// alias; if none matches, the requested name is returned as-is and left
// for Validate to reject.
func (r *Resolver) Resolve(provider, requested string) (string, error) {
	models, err := r.catalog.Lookup(provider)
	if err != nil {
		return "", err
	}

	if requested == "" {
		return r.catalog.DefaultModel(provider)
	}

	if _, ok := models[requested]; ok {
		return requested, nil
	}

	for _, entry := range models {
		for _, alias := range entry.Aliases {
			if strings.EqualFold(alias, requested) {
				return entry.Model, nil
			}
		}
	}

	return requested, nil
}

// Validate confirms the model id exists in the provider's catalog subset.
func (r *Resolver) Validate(provider, model string) error {
	_, err := r.catalog.Entry(provider, model)
	return err
}
