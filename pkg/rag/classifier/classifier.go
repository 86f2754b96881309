package classifier

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

var ErrMalformedOutput = errors.New("classifier returned malformed output")

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"premium_applicable": {
			Type:        genai.TypeBoolean,
			Description: "True when the latest user message is a substantive information request",
		},
	},
	Required: []string{"premium_applicable"},
}

// Classifier decides whether a turn warrants the premium retrieval path.
type Classifier struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func New(provider llm.LLMProvider, log logger.ILogger) *Classifier {
	return &Classifier{provider: provider, logger: log}
}

// Classify inspects the history, whose last entry is the new user turn.
func (c *Classifier) Classify(ctx context.Context, history []chat.Turn) (bool, error) {
	raw, err := c.provider.Chat(ctx, llm.FromTurns(history),
		llm.WithSystemInstruction(constant.PremiumClassifierPrompt),
		llm.WithResponseSchema(responseSchema),
		llm.WithTemperature(0),
	)
	if err != nil {
		c.logger.Error("Classifier", "Classification call failed", map[string]interface{}{"error": err.Error()})
		return false, fmt.Errorf("classify turn: %w", err)
	}

	premium, err := Parse(raw)
	if err != nil {
		c.logger.Error("Classifier", "Classification output rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   raw,
		})
		return false, err
	}

	c.logger.Debug("Classifier", "Turn classified", map[string]interface{}{"premium_applicable": premium})
	return premium, nil
}

// Parse decodes {"premium_applicable": bool}. A missing or non-boolean field
// is ErrMalformedOutput.
func Parse(raw string) (bool, error) {
	var out struct {
		PremiumApplicable *bool `json:"premium_applicable"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if out.PremiumApplicable == nil {
		return false, fmt.Errorf("%w: premium_applicable missing", ErrMalformedOutput)
	}
	return *out.PremiumApplicable, nil
}
