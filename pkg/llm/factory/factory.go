package factory

import (
	"context"
	"fmt"

	"datasense-be/pkg/llm"
	"datasense-be/pkg/llm/gemini"

	"google.golang.org/genai"
)

type ClientConfig struct {
	Backend  string // "gemini" or "vertex"
	APIKey   string
	Project  string
	Location string
}

// NewGenAIClient builds the shared genai client. The same client serves
// generation and embeddings.
func NewGenAIClient(ctx context.Context, cfg ClientConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{}

	switch cfg.Backend {
	case "gemini":
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.APIKey
	case "vertex":
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.Project
		clientCfg.Location = cfg.Location
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	return client, nil
}

func NewLLMProvider(client *genai.Client, cfg gemini.Config) llm.LLMProvider {
	return gemini.NewProvider(client, cfg)
}
