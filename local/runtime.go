// Package local runs prompts against a locally hosted model through the
// Ollama generate API. Unlike the Ollama chat provider it sends a single
// prompt with sampling settings, which is how the preferences-managed
// "local mode" works.
package local

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"parley/config"
	"parley/model"
)

// Runtime implements model.LocalRuntime over an Ollama server.
type Runtime struct {
	client *api.Client
	model  string
}

var _ model.LocalRuntime = (*Runtime)(nil)

// New builds a runtime for the given host and model. An empty model name
// yields a runtime that reports not ready.
func New(host, modelName string) *Runtime {
	if host == "" {
		host = "http://localhost:11434"
	}
	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		parsed = &url.URL{Scheme: "http", Host: "localhost:11434"}
	}

	return &Runtime{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  modelName,
	}
}

// Ready reports whether a model is selected for local generation.
func (r *Runtime) Ready() bool {
	return r.model != ""
}

// ModelName returns the selected model.
func (r *Runtime) ModelName() string {
	return r.model
}

// SetModel switches the local model.
func (r *Runtime) SetModel(modelName string) {
	r.model = modelName
}

// Generate runs one prompt. onToken may be nil; when set, output is
// streamed chunk by chunk in addition to the returned full text.
func (r *Runtime) Generate(ctx context.Context, system, prompt string, settings model.ModelSettings, onToken model.StreamCallback) (string, error) {
	streaming := onToken != nil
	req := &api.GenerateRequest{
		Model:   r.model,
		Prompt:  prompt,
		System:  system,
		Stream:  &streaming,
		Options: optionsFromSettings(settings),
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("local generate: model=%s prompt_len=%d stream=%v", r.model, len(prompt), streaming)
	}

	var full string
	err := r.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		if resp.Response != "" {
			full += resp.Response
			if onToken != nil {
				onToken(resp.Response)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return full, nil
}

// optionsFromSettings maps sampling settings onto Ollama option names.
func optionsFromSettings(s model.ModelSettings) map[string]any {
	return map[string]any{
		"temperature":    s.Temperature,
		"top_k":          s.TopK,
		"top_p":          s.TopP,
		"num_predict":    s.MaxTokens,
		"repeat_penalty": s.RepetitionPenalty,
		"repeat_last_n":  s.RepeatLastN,
		"num_batch":      s.NBatch,
	}
}
