package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/common"
)

func newTestFactory(t *testing.T) *ProviderFactory {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.LLM.DefaultProvider = "gemini"
	return NewProviderFactory(cfg, nil)
}

func TestDetectProvider(t *testing.T) {
	f := newTestFactory(t)

	tests := []struct {
		model    string
		expected ProviderType
	}{
		{"", ProviderGemini},
		{"gemini-3-flash-preview", ProviderGemini},
		{"gemini/gemini-3-flash-preview", ProviderGemini},
		{"google/gemini-3-flash-preview", ProviderGemini},
		{"claude-haiku-3-5-20241022", ProviderClaude},
		{"claude/claude-haiku-3-5-20241022", ProviderClaude},
		{"anthropic/claude-haiku-3-5-20241022", ProviderClaude},
		{"CLAUDE-haiku", ProviderClaude},
		{"some-unknown-model", ProviderGemini},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, f.DetectProvider(tt.model), "model %q", tt.model)
	}
}

func TestNormalizeModel(t *testing.T) {
	f := newTestFactory(t)

	assert.Equal(t, "gemini-3-flash-preview", f.NormalizeModel("gemini/gemini-3-flash-preview"))
	assert.Equal(t, "claude-haiku-3-5-20241022", f.NormalizeModel("claude/claude-haiku-3-5-20241022"))
	assert.Equal(t, "gemini-3-flash-preview", f.NormalizeModel("gemini-3-flash-preview"))
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "bye"},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "be terse", systemText)
	assert.Len(t, claudeMessages, 3)
}

func TestConvertMessagesToClaude_RequiresUserMessage(t *testing.T) {
	_, _, err := convertMessagesToClaude([]Message{{Role: "system", Content: "x"}})
	assert.Error(t, err)

	_, _, err = convertMessagesToClaude(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "be terse", systemText)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.True(t, IsRateLimitError(fmt.Errorf("Error 429, Message: quota exceeded")))
	assert.True(t, IsRateLimitError(fmt.Errorf("Status: RESOURCE_EXHAUSTED")))
	assert.False(t, IsRateLimitError(fmt.Errorf("connection refused")))
}

func TestExtractRetryDelay(t *testing.T) {
	err := fmt.Errorf("Error 429, Message: rate limited. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	assert.InDelta(t, 45.387, delay.Seconds(), 0.01)

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(fmt.Errorf("no delay here")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	c := NewDefaultRetryConfig()

	// API delay is used as the base plus buffer.
	backoff := c.CalculateBackoff(0, 40*time.Second)
	assert.Equal(t, 45*time.Second, backoff)

	// Without an API delay, the initial backoff applies.
	assert.Equal(t, c.InitialBackoff, c.CalculateBackoff(0, 0))

	// Backoff is capped.
	assert.Equal(t, c.MaxBackoff, c.CalculateBackoff(10, 0))
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	svc := NewService(common.NewDefaultConfig(), nil)
	_, err := svc.Generate(context.Background(), "", "   ", "")
	assert.Error(t, err)
}
