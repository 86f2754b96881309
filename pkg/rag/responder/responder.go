package responder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"datasense-be/internal/constant"
	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/chat"
	"datasense-be/pkg/llm"

	"google.golang.org/genai"
)

var ErrMalformedOutput = errors.New("responder returned malformed output")

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"answer": {Type: genai.TypeString, Description: "The answer to the latest user message"},
	},
	Required: []string{"answer"},
}

// Responder produces the immediate answer of a chat turn.
type Responder struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func New(provider llm.LLMProvider, log logger.ILogger) *Responder {
	return &Responder{provider: provider, logger: log}
}

func (r *Responder) Respond(ctx context.Context, history []chat.Turn) (string, error) {
	raw, err := r.provider.Chat(ctx, llm.FromTurns(history),
		llm.WithSystemInstruction(constant.NormalResponderPrompt),
		llm.WithResponseSchema(responseSchema),
	)
	if err != nil {
		r.logger.Error("NormalResponder", "Generation call failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer, err := Parse(raw)
	if err != nil {
		r.logger.Error("NormalResponder", "Generation output rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   raw,
		})
		return "", err
	}
	return answer, nil
}

// Parse decodes {"answer": string}.
func Parse(raw string) (string, error) {
	var out struct {
		Answer *string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if out.Answer == nil {
		return "", fmt.Errorf("%w: answer missing", ErrMalformedOutput)
	}
	return *out.Answer, nil
}
