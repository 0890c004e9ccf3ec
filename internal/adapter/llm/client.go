// Package llm wraps an OpenAI-compatible chat completion API (Groq,
// OpenAI, or a local server) behind port.LLM. Retry and timeout policy
// live here, not in the orchestrator.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"fundrag/internal/domain"
	"fundrag/internal/port"
)

const maxBackoff = 5 * time.Second

// Config configures the chat client.
type Config struct {
	// BaseURL of the OpenAI-compatible API; empty means OpenAI default.
	BaseURL string

	// Model is the chat model name.
	Model string

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature for sampling.
	Temperature float32

	// Retries is the number of additional attempts after the first.
	Retries int

	// Timeout bounds each individual attempt.
	Timeout time.Duration
}

// Client implements port.LLM.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	retries     int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewClient reads the API key from the configured environment variable.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}

	apiCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1200
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		client:      openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retries:     cfg.Retries,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// Generate runs the chat completion with bounded retries and capped
// exponential backoff. A blank completion counts as a failure. The
// caller's context cancels both waits and in-flight attempts.
func (c *Client) Generate(ctx context.Context, messages []port.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	backoff := time.Second
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, req)
		cancel()

		if err != nil {
			lastErr = err
			c.logger.Warn("chat completion failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			lastErr = domain.ErrEmptyAnswer
			c.logger.Warn("chat completion returned no content", zap.Int("attempt", attempt+1))
			continue
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", c.retries+1, lastErr)
}

// ModelName returns the name of the model.
func (c *Client) ModelName() string {
	return c.model
}
