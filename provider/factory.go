package provider

import (
	"fmt"

	"parley/model"
)

// New creates the provider for a catalog slug. Constructors never fail on
// missing credentials; an unknown slug is the only error.
func New(slug string, deps Deps) (model.Provider, error) {
	switch slug {
	case "anthropic":
		return NewAnthropicProvider(deps), nil
	case "gemini":
		return NewGeminiProvider(deps), nil
	case "ollama":
		return NewOllamaProvider(deps), nil
	case "dall-e":
		return NewImageProvider(deps), nil
	default:
		for _, entry := range CompatCatalog {
			if entry.Slug == slug {
				return NewCompatProvider(entry, deps), nil
			}
		}
		return nil, fmt.Errorf("unknown provider: %s", slug)
	}
}

// Slugs returns every catalog slug in display order.
func Slugs() []string {
	slugs := make([]string, 0, len(CompatCatalog)+4)
	slugs = append(slugs, "ollama")
	for _, entry := range CompatCatalog {
		slugs = append(slugs, entry.Slug)
	}
	return append(slugs, "anthropic", "gemini", "dall-e")
}
