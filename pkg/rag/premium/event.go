package premium

import (
	"datasense-be/pkg/rag/synthesizer"
	"datasense-be/pkg/store"
)

type Status string

const (
	StatusStarted      Status = "started"
	StatusSearching    Status = "searching"
	StatusSynthesizing Status = "synthesizing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// ProgressEvent is one message pushed to the client channel. Data is set only
// for completed events and Error only for error events.
type ProgressEvent struct {
	Status  Status            `json:"status"`
	Message string            `json:"message"`
	Data    *CompletedPayload `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// CompletedPayload is the premium answer in the shape the browser client reads.
type CompletedPayload struct {
	GeminiResponse string           `json:"gemini_response"`
	VideoFileLinks []string         `json:"video_file_links"`
	VideoFileNames []string         `json:"video_file_names"`
	ThumbnailLinks []string         `json:"thumbnail_links"`
	PartnerNames   []string         `json:"partner_names"`
	EnoughContext  bool             `json:"enough_context"`
	Fallback       bool             `json:"fallback"`
	PDFDocuments   []store.Document `json:"pdf_documents"`
}

func StartedEvent() ProgressEvent {
	return ProgressEvent{Status: StatusStarted, Message: "Premium response generation started"}
}

func SearchingEvent() ProgressEvent {
	return ProgressEvent{Status: StatusSearching, Message: "Searching videos and documents"}
}

func SynthesizingEvent() ProgressEvent {
	return ProgressEvent{Status: StatusSynthesizing, Message: "Synthesizing premium answer"}
}

func CompletedEvent(result synthesizer.Result, documents []store.Document) ProgressEvent {
	if documents == nil {
		documents = []store.Document{}
	}
	a := result.Answer
	return ProgressEvent{
		Status:  StatusCompleted,
		Message: "Premium response completed",
		Data: &CompletedPayload{
			GeminiResponse: a.Text,
			VideoFileLinks: nonNil(a.FileLinks),
			VideoFileNames: nonNil(a.FileNames),
			ThumbnailLinks: nonNil(a.ThumbnailLinks),
			PartnerNames:   nonNil(a.PartnerNames),
			EnoughContext:  a.EnoughContext,
			Fallback:       result.Fallback,
			PDFDocuments:   documents,
		},
	}
}

func ErrorEvent(err error) ProgressEvent {
	return ProgressEvent{
		Status:  StatusError,
		Message: "Premium response failed",
		Error:   err.Error(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
