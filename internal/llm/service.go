// Package llm wraps an OpenAI-compatible chat completion endpoint behind
// the small composer contract the agent needs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Message is one entry of the ordered prompt handed to the model.
type Message struct {
	Role    string `json:"role"` // system, user, or assistant
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values fall back to the
// service defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024

	// promptTokenBudget is advisory: oversized prompts are logged, not
	// rejected, since the downstream model enforces its own limit.
	promptTokenBudget = 3500
)

type Service struct {
	llm    llms.Model
	model  string
	logger *zap.Logger
	enc    *tiktoken.Tiktoken
}

func New(baseURL, token, model string, logger *zap.Logger) (*Service, error) {
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// Token counts degrade to a bytes/4 estimate.
		logger.Warn("tiktoken encoding unavailable, using estimated token counts", zap.Error(err))
		enc = nil
	}

	return &Service{llm: client, model: model, logger: logger, enc: enc}, nil
}

// Chat sends the ordered messages to the model and returns the reply text.
func (s *Service) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	content := make([]llms.MessageContent, 0, len(messages))
	promptTokens := 0
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
		promptTokens += s.countTokens(m.Content)
	}

	if promptTokens > promptTokenBudget {
		s.logger.Warn("prompt exceeds token budget",
			zap.Int("tokens", promptTokens),
			zap.Int("budget", promptTokenBudget))
	}

	resp, err := s.llm.GenerateContent(ctx, content,
		llms.WithTemperature(opts.Temperature),
		llms.WithMaxTokens(opts.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Available probes the endpoint with a minimal completion.
func (s *Service) Available(ctx context.Context) bool {
	_, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "ping")},
		llms.WithMaxTokens(1))
	if err != nil {
		s.logger.Debug("llm availability check failed", zap.Error(err))
		return false
	}
	return true
}

// Model reports the configured model name.
func (s *Service) Model() string {
	return s.model
}

func (s *Service) countTokens(text string) int {
	if s.enc != nil {
		return len(s.enc.Encode(text, nil, nil))
	}
	return len(text) / 4
}
