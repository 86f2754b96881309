package prompt

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"datasense-be/pkg/store"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/synthesis_prompt.txt
var synthesisSystemPrompt string

// videoContext is the projection of a video record the model sees.
type videoContext struct {
	VideoFilePath string `json:"video_file_path"`
	PageContent   string `json:"page_content"`
	Partner       string `json:"partner"`
	FileName      string `json:"file_name"`
	ThumbnailURI  string `json:"thumbnail_uri"`
}

// RenderSynthesisSystem renders the grounding system prompt for a premium answer.
func RenderSynthesisSystem(ctx context.Context, videos []store.VideoRecord, documents []store.Document) (string, error) {
	videoJSON, err := VideoContextJSON(videos)
	if err != nil {
		return "", err
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(synthesisSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"VideoContext":    videoJSON,
		"DocumentContext": DocumentContext(documents),
	})
	if err != nil {
		return "", fmt.Errorf("synthesis prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("synthesis prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// VideoContextJSON serializes the records as an indented JSON array, "[]" when empty.
func VideoContextJSON(videos []store.VideoRecord) (string, error) {
	rows := make([]videoContext, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, videoContext{
			VideoFilePath: v.VideoURI,
			PageContent:   v.Transcript,
			Partner:       v.Partner,
			FileName:      v.FileName,
			ThumbnailURI:  v.ThumbnailURI,
		})
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize video context: %w", err)
	}
	return string(b), nil
}

// DocumentContext joins the extractive segment text of every document.
func DocumentContext(documents []store.Document) string {
	parts := make([]string, 0, len(documents))
	for _, d := range documents {
		parts = append(parts, d.SegmentContent)
	}
	return strings.Join(parts, ".")
}
