package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature       *float32
	TopP              *float32
	MaxTokens         int32
	Model             string // Override default model
	SystemInstruction string
	// ResponseSchema constrains the output to JSON matching the schema.
	ResponseSchema *genai.Schema
}

func WithTemperature(temp float32) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithTopP(topP float32) Option {
	return func(o *Options) {
		o.TopP = &topP
	}
}

func WithMaxTokens(n int32) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemInstruction(instruction string) Option {
	return func(o *Options) {
		o.SystemInstruction = instruction
	}
}

func WithResponseSchema(schema *genai.Schema) Option {
	return func(o *Options) {
		o.ResponseSchema = schema
	}
}

// Apply folds options into a fresh Options value.
func Apply(options ...Option) Options {
	var o Options
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
