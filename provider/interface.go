// Package provider implements chat backends behind the model.Provider
// interface.
//
// Parley talks to multiple backends through one contract: OpenAI-compatible
// HTTP APIs (OpenAI, Groq, Together, OpenRouter, Mistral, Perplexity,
// Hugging Face, vLLM), Anthropic, Google Gemini, a local Ollama server,
// and DALL·E image generation. The UI and dispatcher stay backend-agnostic.
//
// # Architecture
//
//   - model.Provider defines the contract (in the model package, to avoid
//     import cycles)
//   - CompatProvider covers every OpenAI-compatible API, parameterized by
//     a catalog entry
//   - AnthropicProvider, GeminiProvider, OllamaProvider, ImageProvider
//     cover the rest
//   - New() builds a provider from a slug and its stored settings
//   - Registry holds one live instance per catalog slug
//
// # Error handling
//
// Providers never return Go errors from Ask/AskStream. Every failure is
// classified into a model.ResultKind and paired with a user-facing
// message, so the UI can always render the outcome in the transcript.
package provider

// Deps carries everything a provider constructor needs: the credential,
// per-provider config data, and global defaults.
type Deps struct {
	APIKey string
	// Data holds the provider's stored config fields, e.g. "base_url",
	// "model".
	Data map[string]string

	OllamaHost   string
	DefaultModel string
}

// field returns a config value from Data with a fallback.
func (d Deps) field(key, fallback string) string {
	if v, ok := d.Data[key]; ok && v != "" {
		return v
	}
	return fallback
}

// SettingsSource supplies provider settings to the registry. Implemented
// by the storage layer with credentials overlaid from the config package.
type SettingsSource interface {
	ProviderEnabled(slug string) bool
	ProviderData(slug string) map[string]string
	APIKey(slug string) string
}
