package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datasense-be/pkg/llm"

	"google.golang.org/genai"
)

type Config struct {
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	// SystemInstruction is used when a call does not set its own.
	SystemInstruction string
	Timeout           time.Duration
}

// Provider implements llm.LLMProvider on top of the genai SDK. It is safe for
// concurrent use; the underlying client is shared.
type Provider struct {
	client *genai.Client
	cfg    Config
}

func NewProvider(client *genai.Client, cfg Config) *Provider {
	return &Provider{client: client, cfg: cfg}
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(options...)

	contents, systemFromHistory := ToContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: no user or assistant content to send")
	}

	model := p.cfg.Model
	if opts.Model != "" {
		model = opts.Model
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, p.buildConfig(opts, systemFromHistory))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (p *Provider) buildConfig(opts llm.Options, systemFromHistory string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.cfg.Temperature),
	}
	if p.cfg.TopP > 0 {
		cfg.TopP = genai.Ptr(p.cfg.TopP)
	}
	if p.cfg.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = p.cfg.MaxOutputTokens
	}

	if opts.Temperature != nil {
		cfg.Temperature = opts.Temperature
	}
	if opts.TopP != nil {
		cfg.TopP = opts.TopP
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}

	instruction := firstNonEmpty(opts.SystemInstruction, systemFromHistory, p.cfg.SystemInstruction)
	if instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	if opts.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = opts.ResponseSchema
	}
	return cfg
}

// ToContents converts provider-agnostic messages to genai contents. The genai
// API names the assistant role "model"; system messages are returned joined
// so they can travel as the system instruction.
func ToContents(history []llm.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(history))
	var system []string

	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, string(genai.RoleModel):
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
