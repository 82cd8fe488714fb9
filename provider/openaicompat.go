package provider

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"parley/model"
)

// CompatEntry describes one OpenAI-compatible backend. A single adapter
// implementation serves every entry; only the endpoint, defaults, and
// listing behavior differ.
type CompatEntry struct {
	Name         string
	Slug         string
	BaseURL      string
	DefaultModel string
	// RequiresKey is false for self-hosted endpoints like vLLM.
	RequiresKey bool
	// PresetModels replaces the /models endpoint for backends that do
	// not implement listing.
	PresetModels []string
}

// CompatCatalog lists the supported OpenAI-compatible backends. Order is
// the display order in the provider menu.
var CompatCatalog = []CompatEntry{
	{
		Name:         "OpenAI",
		Slug:         "openai",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o-mini",
		RequiresKey:  true,
	},
	{
		Name:         "Groq",
		Slug:         "groq",
		BaseURL:      "https://api.groq.com/openai/v1",
		DefaultModel: "llama-3.1-8b-instant",
		RequiresKey:  true,
	},
	{
		Name:         "Together",
		Slug:         "together",
		BaseURL:      "https://api.together.xyz/v1",
		DefaultModel: "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo",
		RequiresKey:  true,
	},
	{
		Name:         "OpenRouter",
		Slug:         "openrouter",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "openrouter/auto",
		RequiresKey:  true,
	},
	{
		Name:         "Mistral",
		Slug:         "mistral",
		BaseURL:      "https://api.mistral.ai/v1",
		DefaultModel: "mistral-small-latest",
		RequiresKey:  true,
	},
	{
		Name:         "Perplexity",
		Slug:         "perplexity",
		BaseURL:      "https://api.perplexity.ai",
		DefaultModel: "sonar",
		RequiresKey:  true,
		// Perplexity has no /models endpoint
		PresetModels: []string{"sonar", "sonar-pro", "sonar-reasoning"},
	},
	{
		Name:         "Hugging Face",
		Slug:         "hugging-face",
		BaseURL:      "https://router.huggingface.co/v1",
		DefaultModel: "meta-llama/Llama-3.1-8B-Instruct",
		RequiresKey:  true,
	},
	{
		Name:         "vLLM",
		Slug:         "vllm",
		BaseURL:      "http://localhost:8000/v1",
		DefaultModel: "",
		RequiresKey:  false,
	},
}

// CompatProvider talks to any OpenAI-compatible chat completion API.
type CompatProvider struct {
	entry   CompatEntry
	client  openai.Client
	apiKey  string
	baseURL string
	model   string
}

var _ model.Provider = (*CompatProvider)(nil)

// NewCompatProvider builds the adapter for one catalog entry. A missing
// API key is not an error here: requests report KindNotConfigured so the
// UI can point at preferences instead of failing at startup.
func NewCompatProvider(entry CompatEntry, deps Deps) *CompatProvider {
	baseURL := deps.field("base_url", entry.BaseURL)
	modelName := deps.field("model", entry.DefaultModel)

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(deps.APIKey),
	)

	return &CompatProvider{
		entry:   entry,
		client:  client,
		apiKey:  deps.APIKey,
		baseURL: baseURL,
		model:   modelName,
	}
}

func (p *CompatProvider) Name() string { return p.entry.Name }
func (p *CompatProvider) Slug() string { return p.entry.Slug }

func (p *CompatProvider) Model() string     { return p.model }
func (p *CompatProvider) SetModel(m string) { p.model = m }

func (p *CompatProvider) ConfigSchema() map[string]string {
	schema := map[string]string{
		"base_url": "Base URL",
		"model":    "Model",
	}
	if p.entry.RequiresKey {
		schema["api_key"] = "API Key"
	}
	return schema
}

// configured reports whether a request can be attempted at all.
func (p *CompatProvider) configured() (model.Result, bool) {
	if p.entry.RequiresKey && p.apiKey == "" {
		return notConfiguredResult(p.entry.Name), false
	}
	if p.model == "" {
		return noModelResult(), false
	}
	return model.Result{}, true
}

func (p *CompatProvider) params(ex model.Exchange) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:    BuildOpenAIMessages(ex),
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(4096),
	}
}

func (p *CompatProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	if res, ok := p.configured(); !ok {
		return res
	}

	completion, err := p.client.Chat.Completions.New(ctx, p.params(ex))
	if err != nil {
		return classifyOpenAIError(err)
	}
	if len(completion.Choices) == 0 {
		return model.ErrorResult(model.KindDecodeFailure, msgConnection)
	}
	return model.OKResult(completion.Choices[0].Message.Content)
}

func (p *CompatProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	if res, ok := p.configured(); !ok {
		return res
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(ex))

	acc := openai.ChatCompletionAccumulator{}
	var full strings.Builder

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			content := chunk.Choices[0].Delta.Content
			full.WriteString(content)
			if onToken != nil {
				onToken(content)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return classifyOpenAIError(err)
	}
	return model.OKResult(full.String())
}

func (p *CompatProvider) ListModels(ctx context.Context) ([]string, error) {
	if len(p.entry.PresetModels) > 0 {
		return p.entry.PresetModels, nil
	}

	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
