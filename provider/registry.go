package provider

import (
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"

	"parley/model"
)

// Registry holds one live provider per catalog slug and answers lookup
// queries from the dispatcher. Adapters are rebuilt wholesale on Reload
// after settings change; they are cheap to construct.
type Registry struct {
	source SettingsSource
	global Deps

	mu        sync.RWMutex
	providers map[string]model.Provider
}

var _ model.ProviderLookup = (*Registry)(nil)

// NewRegistry instantiates adapters for the whole catalog. global carries
// defaults that are not per-provider settings (Ollama host, default model).
func NewRegistry(source SettingsSource, global Deps) *Registry {
	r := &Registry{
		source: source,
		global: global,
	}
	r.Reload()
	return r
}

// Reload rebuilds every adapter from current settings. Called after the
// user edits provider config or credentials.
func (r *Registry) Reload() {
	providers := make(map[string]model.Provider, len(Slugs()))
	for _, slug := range Slugs() {
		deps := Deps{
			APIKey:       r.source.APIKey(slug),
			Data:         r.source.ProviderData(slug),
			OllamaHost:   r.global.OllamaHost,
			DefaultModel: r.global.DefaultModel,
		}
		p, err := New(slug, deps)
		if err != nil {
			continue
		}
		providers[slug] = p
	}

	r.mu.Lock()
	r.providers = providers
	r.mu.Unlock()
}

// Get returns the live provider for a slug.
func (r *Registry) Get(slug string) (model.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[slug]
	return p, ok
}

// Enabled reports whether a provider is switched on in settings.
func (r *Registry) Enabled(slug string) bool {
	return r.source.ProviderEnabled(slug)
}

// All returns every provider in catalog order.
func (r *Registry) All() []model.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]model.Provider, 0, len(r.providers))
	for _, slug := range Slugs() {
		if p, ok := r.providers[slug]; ok {
			providers = append(providers, p)
		}
	}
	return providers
}

// EnabledProviders returns the providers switched on in settings, in
// catalog order.
func (r *Registry) EnabledProviders() []model.Provider {
	var enabled []model.Provider
	for _, p := range r.All() {
		if r.Enabled(p.Slug()) {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// FilterModels narrows a model list with fuzzy matching, best matches
// first. An empty query returns the input sorted alphabetically.
func FilterModels(models []string, query string) []string {
	if query == "" {
		sorted := make([]string, len(models))
		copy(sorted, models)
		sort.Strings(sorted)
		return sorted
	}

	matches := fuzzy.Find(query, models)
	filtered := make([]string, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, models[match.Index])
	}
	return filtered
}
