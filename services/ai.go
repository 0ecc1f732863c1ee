package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	langopenai "github.com/tmc/langchaingo/llms/openai"
)

// Generator produces one completion for a system prompt and a user prompt.
// The feature services fall back to canned text whenever it errors, so the
// product keeps working with no model configured.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// LLMConfig configures the completion client. The zero BaseURL talks to the
// OpenAI endpoint; DeepSeek and compatible providers are selected by URL.
type LLMConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// LLMClient is the langchaingo-backed Generator.
type LLMClient struct {
	llm         *langopenai.LLM
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewLLMClient builds a client for any OpenAI-compatible completion API.
func NewLLMClient(cfg LLMConfig) (*LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: api key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 700
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	opts := []langopenai.Option{
		langopenai.WithToken(cfg.APIKey),
		langopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, langopenai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := langopenai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &LLMClient{
		llm:         llm,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (c *LLMClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := c.llm.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
