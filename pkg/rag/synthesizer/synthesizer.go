package synthesizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/llm"
	"datasense-be/pkg/rag/prompt"
	"datasense-be/pkg/store"

	"google.golang.org/genai"
)

const FallbackText = "[fallback] Unable to synthesize a grounded answer from the retrieved context."

var requiredFields = []string{
	"thought_process",
	"file_link",
	"partner_name",
	"file_name",
	"thumbnail_link",
	"answer",
	"enough_context",
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"thought_process": {Type: genai.TypeString, Description: "Reasoning used while synthesizing the answer"},
		"file_link":       stringList("Video file links the answer relies on"),
		"partner_name":    stringList("Partner of each referenced video"),
		"file_name":       stringList("File name of each referenced video"),
		"thumbnail_link":  stringList("Thumbnail link of each referenced video"),
		"answer":          {Type: genai.TypeString, Description: "The synthesized answer to the user's question"},
		"enough_context":  {Type: genai.TypeBoolean, Description: "Whether the context was sufficient to answer"},
	},
	Required: requiredFields,
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// Answer is the structured premium answer. The four reference lists are
// parallel, one entry per contributing video.
type Answer struct {
	ThoughtProcess string   `json:"thought_process"`
	FileLinks      []string `json:"file_link"`
	PartnerNames   []string `json:"partner_name"`
	FileNames      []string `json:"file_name"`
	ThumbnailLinks []string `json:"thumbnail_link"`
	Text           string   `json:"answer"`
	EnoughContext  bool     `json:"enough_context"`
}

// Result is either a parsed answer or, when Fallback is set, the fixed
// fallback answer with Reason describing why the model output was rejected.
type Result struct {
	Answer   Answer
	Fallback bool
	Reason   string
}

type Config struct {
	Temperature float32
}

func DefaultConfig() Config {
	return Config{Temperature: 0.3}
}

type Synthesizer struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	config   Config
}

func New(provider llm.LLMProvider, log logger.ILogger, config Config) *Synthesizer {
	return &Synthesizer{provider: provider, logger: log, config: config}
}

// Synthesize merges video and document context into one grounded answer.
// Only transport failures are returned as errors; output that does not match
// the answer shape yields a fallback Result.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, videos []store.VideoRecord, documents []store.Document) (Result, error) {
	system, err := prompt.RenderSynthesisSystem(ctx, videos, documents)
	if err != nil {
		return Result{}, err
	}

	raw, err := s.provider.Generate(ctx, question,
		llm.WithSystemInstruction(system),
		llm.WithTemperature(s.config.Temperature),
		llm.WithResponseSchema(responseSchema),
	)
	if errors.Is(err, llm.ErrEmptyResponse) {
		return s.fallback(videos, err.Error(), ""), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("synthesis call: %w", err)
	}

	answer, err := Parse(raw)
	if err != nil {
		return s.fallback(videos, err.Error(), raw), nil
	}

	s.logger.Info("Synthesizer", "Answer synthesized", map[string]interface{}{
		"videos":         len(answer.FileLinks),
		"enough_context": answer.EnoughContext,
	})
	return Result{Answer: answer}, nil
}

func (s *Synthesizer) fallback(videos []store.VideoRecord, reason, raw string) Result {
	s.logger.Error("Synthesizer", "Synthesis output could not be parsed, using fallback answer", map[string]interface{}{
		"reason": reason,
		"raw":    raw,
	})
	return Result{Answer: FallbackAnswer(videos), Fallback: true, Reason: reason}
}

// FallbackAnswer is the fixed answer used when synthesis output is unusable.
// Its references point at the retrieved videos in rank order.
func FallbackAnswer(videos []store.VideoRecord) Answer {
	answer := Answer{
		Text:           FallbackText,
		FileLinks:      make([]string, 0, len(videos)),
		PartnerNames:   make([]string, 0, len(videos)),
		FileNames:      make([]string, 0, len(videos)),
		ThumbnailLinks: make([]string, 0, len(videos)),
	}
	for _, v := range videos {
		answer.FileLinks = append(answer.FileLinks, v.VideoURI)
		answer.PartnerNames = append(answer.PartnerNames, v.Partner)
		answer.FileNames = append(answer.FileNames, v.FileName)
		answer.ThumbnailLinks = append(answer.ThumbnailLinks, v.ThumbnailURI)
	}
	return answer
}

// Parse requires every answer field to be present and correctly typed, and
// the reference lists to be of equal length.
func Parse(raw string) (Answer, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Answer{}, fmt.Errorf("decode synthesis output: %w", err)
	}
	for _, name := range requiredFields {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			return Answer{}, fmt.Errorf("synthesis output missing %q", name)
		}
	}

	var answer Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return Answer{}, fmt.Errorf("decode synthesis output: %w", err)
	}

	n := len(answer.FileLinks)
	if len(answer.PartnerNames) != n || len(answer.FileNames) != n || len(answer.ThumbnailLinks) != n {
		return Answer{}, fmt.Errorf("synthesis reference lists differ in length: file_link=%d partner_name=%d file_name=%d thumbnail_link=%d",
			n, len(answer.PartnerNames), len(answer.FileNames), len(answer.ThumbnailLinks))
	}
	return answer, nil
}
