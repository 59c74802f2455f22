package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

const summarySystemPrompt = "You are a precise summarizer. Produce a faithful, " +
	"self-contained summary of the supplied text. Do not add information that " +
	"is not in the source."

// Service is the high-level text generation entry point used by the AI
// tools. It wraps the provider factory with per-call timeouts.
type Service struct {
	factory *ProviderFactory
	timeout time.Duration
	logger  arbor.ILogger
}

// NewService creates an LLM service from application config.
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}

	timeout := 5 * time.Minute
	if d, err := time.ParseDuration(cfg.Gemini.Timeout); err == nil && d > 0 {
		timeout = d
	}

	return &Service{
		factory: NewProviderFactory(cfg, logger),
		timeout: timeout,
		logger:  logger.WithPrefix("llm"),
	}
}

// Generate produces text from a user prompt with an optional system
// instruction. Model selects the provider; empty uses the configured
// default.
func (s *Service) Generate(ctx context.Context, systemInstruction, prompt, model string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Model:             model,
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("response_chars", len(resp.Text)).
		Msg("Generated content")

	return resp.Text, nil
}

// Summarize produces a summary of the supplied text. Style is a free-form
// hint ("bullet points", "one paragraph"); empty requests a concise
// paragraph summary.
func (s *Service) Summarize(ctx context.Context, text, style, model string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	if style == "" {
		style = "a concise paragraph"
	}

	prompt := fmt.Sprintf("Summarize the following text as %s:\n\n%s", style, text)
	return s.Generate(ctx, summarySystemPrompt, prompt, model)
}

// Close releases provider clients.
func (s *Service) Close() error {
	return s.factory.Close()
}
