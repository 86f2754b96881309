package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int32
}

func NewGeminiProvider(client *genai.Client, model string, dimension int) EmbeddingProvider {
	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: int32(dimension),
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if p.dimension > 0 {
		cfg.OutputDimensionality = genai.Ptr(p.dimension)
	}

	res, err := p.client.Models.EmbedContent(ctx, p.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content with %s: %w", p.model, err)
	}
	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, fmt.Errorf("embed content with %s: empty embeddings", p.model)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: res.Embeddings[0].Values},
	}, nil
}
