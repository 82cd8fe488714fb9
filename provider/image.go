package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"parley/model"
)

// ImageProvider generates images through the OpenAI Images API. It shares
// the OpenAI credential but is selectable as its own backend so a chat
// can be pointed at image generation explicitly.
type ImageProvider struct {
	client openai.Client
	apiKey string
	model  string
}

var _ model.Provider = (*ImageProvider)(nil)

// NewImageProvider builds the DALL·E adapter.
func NewImageProvider(deps Deps) *ImageProvider {
	baseURL := deps.field("base_url", "https://api.openai.com/v1")

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(deps.APIKey),
	)

	return &ImageProvider{
		client: client,
		apiKey: deps.APIKey,
		model:  deps.field("model", "dall-e-3"),
	}
}

func (p *ImageProvider) Name() string { return "DALL·E" }
func (p *ImageProvider) Slug() string { return "dall-e" }

func (p *ImageProvider) Model() string     { return p.model }
func (p *ImageProvider) SetModel(m string) { p.model = m }

func (p *ImageProvider) ConfigSchema() map[string]string {
	return map[string]string{
		"api_key": "API Key",
		"model":   "Model",
	}
}

// Ask treats the prompt as an image description. History is ignored;
// image generation is stateless.
func (p *ImageProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	if p.apiKey == "" {
		return notConfiguredResult("DALL·E")
	}
	if p.model == "" {
		return noModelResult()
	}

	params := openai.ImageGenerateParams{
		Prompt:         ex.Prompt,
		Model:          openai.ImageModel(p.model),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}
	// N is only accepted by dall-e-2
	if p.model == string(openai.ImageModelDallE2) {
		params.N = openai.Int(1)
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 {
		return model.ErrorResult(model.KindDecodeFailure, msgConnection)
	}

	image := resp.Data[0]
	var data []byte
	switch {
	case image.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return model.ErrorResult(model.KindDecodeFailure, msgConnection)
		}
	case image.URL != "":
		data, err = fetchImage(ctx, image.URL)
		if err != nil {
			return classifyTransportError(err)
		}
	default:
		return model.ErrorResult(model.KindDecodeFailure, msgConnection)
	}

	caption := fmt.Sprintf("Generated image for: %s", ex.Prompt)
	return model.ImageResult(data, caption)
}

// AskStream generates the image and delivers the caption as one chunk;
// the Images API has no streaming variant.
func (p *ImageProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	result := p.Ask(ctx, ex)
	if !result.IsError() && onToken != nil {
		onToken(result.Text)
	}
	return result
}

func (p *ImageProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{
		string(openai.ImageModelDallE3),
		string(openai.ImageModelDallE2),
	}, nil
}

func fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
