package model

import "context"

// Provider abstracts a chat backend (OpenAI-compatible APIs, Anthropic,
// Gemini, Ollama, image generation).
//
// The interface lives in the model package, not the provider package, to
// avoid import cycles: provider implementations import model, and the
// dispatcher can use providers without importing their package.
type Provider interface {
	// Name returns the human-readable provider name ("OpenAI", "Groq").
	Name() string

	// Slug returns the stable identifier used for config and credential
	// storage ("openai", "groq").
	Slug() string

	// Model returns the currently selected model name.
	Model() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ask sends the prompt with chat history and returns the complete
	// reply. Failures are reported through the Result kind, never as a
	// Go error: every outcome is renderable.
	Ask(ctx context.Context, ex Exchange) Result

	// AskStream is Ask with incremental delivery. onToken is called for
	// each chunk; the returned Result carries the full accumulated text.
	AskStream(ctx context.Context, ex Exchange, onToken StreamCallback) Result

	// ListModels returns model names available to the account, or the
	// provider's preset list when the API offers no listing endpoint.
	ListModels(ctx context.Context) ([]string, error)

	// ConfigSchema describes the provider's config fields as key to
	// human label, e.g. "api_key" to "API Key".
	ConfigSchema() map[string]string
}

// StreamCallback receives one chunk of streamed output at a time.
type StreamCallback func(chunk string)

// Exchange bundles everything a provider needs for one request: the new
// prompt, the prior transcript, the classification name for assistant
// messages, and an optional system prompt.
type Exchange struct {
	Prompt  string
	System  string
	Chat    *Chat
	BotName string
}

// ModelSettings holds sampling parameters for local generation. Zero
// values mean "use the default".
type ModelSettings struct {
	Temperature       float64 `json:"temperature"`
	TopK              int     `json:"top_k"`
	TopP              float64 `json:"top_p"`
	MaxTokens         int     `json:"max_tokens"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	RepeatLastN       int     `json:"repeat_last_n"`
	NBatch            int     `json:"n_batch"`
}

// DefaultModelSettings returns the sampling defaults applied to models
// without stored settings.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		Temperature:       0.9,
		TopK:              40,
		TopP:              0.5,
		MaxTokens:         500,
		RepetitionPenalty: 1.20,
		RepeatLastN:       64,
		NBatch:            10,
	}
}
