package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"datasense-be/internal/dto"
	"datasense-be/internal/pkg/serverutils"
	"datasense-be/pkg/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatbotService struct {
	got *dto.ChatRequest
	err error
}

func (f *fakeChatbotService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	turn, err := req.Message.Normalize()
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{
		ChatHistory:       chat.AppendTurn(req.ChatHistory, turn),
		GeminiResponse:    "answer",
		PremiumApplicable: true,
	}, nil
}

func newApp(svc *fakeChatbotService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	NewChatbotController(svc).RegisterRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestChat_TextMessage(t *testing.T) {
	svc := &fakeChatbotService{}
	status, body := post(t, newApp(svc), "/chat",
		`{"message":"Which dog breed?","chatHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}],"clientId":"c1"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "answer", body["gemini_response"])
	assert.Equal(t, true, body["premium_applicable"])
	assert.Len(t, body["chatHistory"], 3)
	assert.Equal(t, "c1", svc.got.ClientID)
	require.NotNil(t, svc.got.Message.Text)
	assert.Equal(t, "Which dog breed?", *svc.got.Message.Text)
}

func TestChat_StructuredMessage(t *testing.T) {
	svc := &fakeChatbotService{}
	status, _ := post(t, newApp(svc), "/chat", `{"message":{"role":"user","content":"hi"},"chatHistory":[]}`)

	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, svc.got.Message.Structured)
	assert.Equal(t, "hi", svc.got.Message.Structured.Content)
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"message":`},
		{name: "invalid history role", body: `{"message":"hi","chatHistory":[{"role":"system","content":"x"}]}`},
		{name: "empty message", body: `{"message":"  "}`},
		{name: "numeric message", body: `{"message":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, newApp(&fakeChatbotService{}), "/chat", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestChat_ServiceFailureIs500(t *testing.T) {
	status, body := post(t, newApp(&fakeChatbotService{err: errors.New("model unavailable")}), "/chat", `{"message":"hi"}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "model unavailable", body["detail"])
}

func TestReset(t *testing.T) {
	status, body := post(t, newApp(&fakeChatbotService{}), "/reset", ``)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "reset!", body["message"])
}
