package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"parley/model"
)

// GeminiProvider talks to the Google Generative Language REST API. There
// is no official Go SDK dependency here; the wire format is small enough
// to handle directly.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ model.Provider = (*GeminiProvider)(nil)

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiProvider builds the Gemini adapter.
func NewGeminiProvider(deps Deps) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  deps.APIKey,
		baseURL: deps.field("base_url", "https://generativelanguage.googleapis.com/v1beta"),
		model:   deps.field("model", "gemini-2.0-flash"),
		client:  &http.Client{},
	}
}

func (p *GeminiProvider) Name() string { return "Gemini" }
func (p *GeminiProvider) Slug() string { return "gemini" }

func (p *GeminiProvider) Model() string     { return p.model }
func (p *GeminiProvider) SetModel(m string) { p.model = m }

func (p *GeminiProvider) ConfigSchema() map[string]string {
	return map[string]string{
		"api_key":  "API Key",
		"base_url": "Base URL",
		"model":    "Model",
	}
}

// buildRequest maps an exchange onto Gemini's contents format. Assistant
// turns use the "model" role; the system prompt travels separately.
func (p *GeminiProvider) buildRequest(ex model.Exchange) geminiRequest {
	var contents []geminiContent

	if ex.Chat != nil {
		for _, msg := range ex.Chat.Content {
			role := "user"
			if model.IsAssistant(msg, ex.BotName) {
				role = "model"
			}
			contents = append(contents, geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
				Role:  role,
			})
		}
	}
	contents = append(contents, geminiContent{
		Parts: []geminiPart{{Text: ex.Prompt}},
		Role:  "user",
	})

	req := geminiRequest{
		Contents:         contents,
		GenerationConfig: &geminiGenerationConfig{Temperature: 0.7, MaxOutputTokens: 4096},
	}
	if ex.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: ex.System}}}
	}
	return req
}

func (p *GeminiProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	if p.apiKey == "" {
		return notConfiguredResult("Gemini")
	}
	if p.model == "" {
		return noModelResult()
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	resp, cleanup, res := p.post(ctx, url, p.buildRequest(ex))
	if res != nil {
		return *res
	}
	defer cleanup()

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.ErrorResult(model.KindDecodeFailure, msgConnection)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return model.ErrorResult(model.KindDecodeFailure, msgConnection)
	}

	var full strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		full.WriteString(part.Text)
	}
	return model.OKResult(full.String())
}

func (p *GeminiProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	if p.apiKey == "" {
		return notConfiguredResult("Gemini")
	}
	if p.model == "" {
		return noModelResult()
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", p.baseURL, p.model, p.apiKey)
	resp, cleanup, res := p.post(ctx, url, p.buildRequest(ex))
	if res != nil {
		return *res
	}
	defer cleanup()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, candidate := range chunk.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text == "" {
					continue
				}
				full.WriteString(part.Text)
				if onToken != nil {
					onToken(part.Text)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return classifyTransportError(err)
	}
	return model.OKResult(full.String())
}

// post sends a JSON request and maps HTTP-level failures onto a result.
// On success the caller owns the body via the returned cleanup func.
func (p *GeminiProvider) post(ctx context.Context, url string, payload any) (*http.Response, func(), *model.Result) {
	body, err := json.Marshal(payload)
	if err != nil {
		res := model.ErrorResult(model.KindDecodeFailure, msgConnection)
		return nil, nil, &res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		res := model.ErrorResult(model.KindConnectionFailure, msgConnection)
		return nil, nil, &res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		res := classifyTransportError(err)
		return nil, nil, &res
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		res := classifyStatus(resp.StatusCode, string(detail))
		return nil, nil, &res
	}

	return resp, func() { resp.Body.Close() }, nil
}

type geminiModelList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/models?key=%s", p.baseURL, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("list models failed (status %d): %s", resp.StatusCode, detail)
	}

	var parsed geminiModelList
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		// API names arrive as "models/gemini-2.0-flash"
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}
