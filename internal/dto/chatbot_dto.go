package dto

import "datasense-be/pkg/chat"

// ChatRequest is the body of POST /chat. Message is either a string or a
// {role, content} object.
type ChatRequest struct {
	Message     chat.TurnInput `json:"message"`
	ChatHistory []chat.Turn    `json:"chatHistory" validate:"dive"`
	ClientID    string         `json:"clientId" validate:"max=128"`
}

type ChatResponse struct {
	ChatHistory       []chat.Turn `json:"chatHistory"`
	GeminiResponse    string      `json:"gemini_response"`
	PremiumApplicable bool        `json:"premium_applicable"`
}

type ResetResponse struct {
	Message string `json:"message"`
}
