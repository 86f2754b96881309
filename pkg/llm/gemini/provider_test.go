package gemini

import (
	"testing"

	"datasense-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToContents_MapsRoles(t *testing.T) {
	contents, system := ToContents([]llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
		{Role: llm.RoleUser, Content: "tell me more"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "be brief", system)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
}

func TestBuildConfig_OptionsOverrideDefaults(t *testing.T) {
	p := NewProvider(nil, Config{
		Model:             "gemini-2.0-flash-001",
		Temperature:       0.5,
		TopP:              0.8,
		MaxOutputTokens:   1024,
		SystemInstruction: "default instruction",
	})

	schema := &genai.Schema{Type: genai.TypeObject}
	cfg := p.buildConfig(llm.Apply(
		llm.WithTemperature(0.1),
		llm.WithSystemInstruction("classify"),
		llm.WithResponseSchema(schema),
	), "")

	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.1, *cfg.Temperature, 0.0001)
	require.NotNil(t, cfg.TopP)
	assert.InDelta(t, 0.8, *cfg.TopP, 0.0001)
	assert.Equal(t, int32(1024), cfg.MaxOutputTokens)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Same(t, schema, cfg.ResponseSchema)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "classify", cfg.SystemInstruction.Parts[0].Text)
}

func TestBuildConfig_FallsBackToDefaultInstruction(t *testing.T) {
	p := NewProvider(nil, Config{Temperature: 0.5, SystemInstruction: "default instruction"})

	cfg := p.buildConfig(llm.Apply(), "")

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "default instruction", cfg.SystemInstruction.Parts[0].Text)
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Nil(t, cfg.TopP)
}
