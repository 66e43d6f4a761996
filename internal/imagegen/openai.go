package imagegen

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates images with DALL-E.
type OpenAI struct {
	client *openai.Client
	model  string
	hasKey bool
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  openai.CreateImageModelDallE3,
		hasKey: apiKey != "",
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (*Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}
	if !o.hasKey {
		return nil, errors.New("openai api key is not configured (set OPENAI_API_KEY)")
	}

	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          o.model,
		N:              1, // dall-e-3 accepts a single image per call
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, &GenerationError{Provider: "openai", Reason: err.Error()}
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, &GenerationError{Provider: "openai", Reason: "no image URL in response"}
	}

	return &Image{
		URL:      resp.Data[0].URL,
		Provider: "openai",
		Model:    o.model,
	}, nil
}
