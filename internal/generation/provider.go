// Package generation turns a transcribed utterance into the assistant's reply.
package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nikhilbhutani/voiceagent/internal/config"
)

// Request is the input of one generation call.
type Request struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id"`
}

// Response carries the generated reply. Text may be empty; callers decide
// whether that is an error.
type Response struct {
	Text string `json:"response"`
}

// Generator is the interface for response-generation backends.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// New returns the backend selected by cfg.Backend.
func New(cfg config.GenerationConfig, timeout time.Duration) (Generator, error) {
	client := &http.Client{Timeout: timeout}
	switch cfg.Backend {
	case "", "webhook":
		return NewWebhookGenerator(cfg.WebhookURL, client), nil
	case "openai":
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:       cfg.OpenAIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.Model,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxTokens,
			Client:       client,
		}), nil
	case "anthropic":
		return NewAnthropicGenerator(AnthropicConfig{
			APIKey:       cfg.AnthropicKey,
			Model:        cfg.Model,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxTokens,
			Client:       client,
		}), nil
	}
	return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
}
