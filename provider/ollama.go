package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"parley/model"
)

// OllamaProvider talks to a local or remote Ollama server through its
// official client. No API key is involved; reachability is the only
// configuration concern.
type OllamaProvider struct {
	client *api.Client
	host   string
	model  string
}

var _ model.Provider = (*OllamaProvider)(nil)

// NewOllamaProvider builds the Ollama adapter. An unparsable host URL
// falls back to the default local server.
func NewOllamaProvider(deps Deps) *OllamaProvider {
	host := deps.field("base_url", deps.OllamaHost)
	if host == "" {
		host = "http://localhost:11434"
	}

	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		parsed = &url.URL{Scheme: "http", Host: "localhost:11434"}
	}

	modelName := deps.field("model", deps.DefaultModel)

	return &OllamaProvider{
		client: api.NewClient(parsed, http.DefaultClient),
		host:   parsed.String(),
		model:  modelName,
	}
}

func (p *OllamaProvider) Name() string { return "Ollama" }
func (p *OllamaProvider) Slug() string { return "ollama" }

func (p *OllamaProvider) Model() string     { return p.model }
func (p *OllamaProvider) SetModel(m string) { p.model = m }

func (p *OllamaProvider) ConfigSchema() map[string]string {
	return map[string]string{
		"base_url": "Server URL",
		"model":    "Model",
	}
}

func (p *OllamaProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	return p.chat(ctx, ex, nil)
}

func (p *OllamaProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	return p.chat(ctx, ex, onToken)
}

func (p *OllamaProvider) chat(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	if p.model == "" {
		return noModelResult()
	}

	streaming := onToken != nil
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: BuildOllamaMessages(ex),
		Stream:   &streaming,
	}

	var full strings.Builder
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			full.WriteString(resp.Message.Content)
			if onToken != nil {
				onToken(resp.Message.Content)
			}
		}
		return nil
	})
	if err != nil {
		return classifyOllamaError(err, p.model)
	}
	return model.OKResult(full.String())
}

func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
