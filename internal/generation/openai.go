package generation

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for any OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // default: "https://api.openai.com/v1"
	Model        string // default: "gpt-4o-mini"
	SystemPrompt string
	MaxTokens    int
	Client       *http.Client
}

// OpenAIGenerator answers with a single stateless chat completion. The
// session id is forwarded as the end-user identifier.
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAIGenerator creates an OpenAIGenerator with sensible defaults applied.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Client != nil {
		clientCfg.HTTPClient = cfg.Client
	}
	return &OpenAIGenerator{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

// Generate runs one chat completion and returns the first choice. The session
// id is sent as the end-user identifier.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	var msgs []openai.ChatCompletionMessage
	if g.cfg.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: g.cfg.SystemPrompt})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserInput})

	oReq := openai.ChatCompletionRequest{
		Model:    g.cfg.Model,
		Messages: msgs,
		User:     req.SessionID,
	}
	if g.cfg.MaxTokens > 0 {
		oReq.MaxTokens = g.cfg.MaxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	out := &Response{}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}
