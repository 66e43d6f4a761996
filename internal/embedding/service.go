// Package embedding turns prompts into vectors for gallery similarity search.
package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Service wraps the OpenAI embeddings endpoint. A nil *Service is a valid
// "embeddings disabled" state; callers check before use.
type Service struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewService returns nil when no API key is configured, which disables
// similarity search without failing the rest of the pipeline.
func NewService(apiKey, model string) *Service {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &Service{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: s.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
