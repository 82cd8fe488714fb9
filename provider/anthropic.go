package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"parley/model"
)

const anthropicDefaultModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// AnthropicProvider implements the Provider interface using the official
// Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	apiKey string
	model  string
}

var _ model.Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider builds the Claude adapter. The API key may be
// empty; requests then report KindNotConfigured.
func NewAnthropicProvider(deps Deps) *AnthropicProvider {
	baseURL := deps.field("base_url", "https://api.anthropic.com")
	modelName := deps.field("model", anthropicDefaultModel)

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(deps.APIKey),
	)

	return &AnthropicProvider{
		client: &client,
		apiKey: deps.APIKey,
		model:  modelName,
	}
}

func (p *AnthropicProvider) Name() string { return "Anthropic" }
func (p *AnthropicProvider) Slug() string { return "anthropic" }

func (p *AnthropicProvider) Model() string     { return p.model }
func (p *AnthropicProvider) SetModel(m string) { p.model = m }

func (p *AnthropicProvider) ConfigSchema() map[string]string {
	return map[string]string{
		"api_key":  "API Key",
		"base_url": "Base URL",
		"model":    "Model",
	}
}

func (p *AnthropicProvider) params(ex model.Exchange) anthropic.MessageNewParams {
	messages, system := BuildAnthropicMessages(ex)
	params := anthropic.MessageNewParams{
		Model:    anthropic.Model(p.model),
		Messages: messages,
		// Required by the API
		MaxTokens: 4096,
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}

func (p *AnthropicProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	if p.apiKey == "" {
		return notConfiguredResult("Anthropic")
	}
	if p.model == "" {
		return noModelResult()
	}

	message, err := p.client.Messages.New(ctx, p.params(ex))
	if err != nil {
		return classifyAnthropicError(err)
	}

	var full strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			full.WriteString(text.Text)
		}
	}
	return model.OKResult(full.String())
}

func (p *AnthropicProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	if p.apiKey == "" {
		return notConfiguredResult("Anthropic")
	}
	if p.model == "" {
		return noModelResult()
	}

	stream := p.client.Messages.NewStreaming(ctx, p.params(ex))

	var full strings.Builder
	for stream.Next() {
		event := stream.Current()

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				full.WriteString(deltaVariant.Text)
				if onToken != nil {
					onToken(deltaVariant.Text)
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return classifyAnthropicError(err)
	}
	return model.OKResult(full.String())
}

// ListModels returns a curated list; the API offers no listing endpoint.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]string, error) {
	models := []anthropic.Model{
		anthropic.ModelClaudeSonnet4_5_20250929,
		anthropic.ModelClaude3_5Haiku20241022,
		anthropic.ModelClaude_3_Opus_20240229,
		anthropic.ModelClaude_3_Haiku_20240307,
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, string(m))
	}
	return names, nil
}
