package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig holds configuration for the Anthropic Messages backend.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string // tests only
	Model        string // default: "claude-3-haiku-20240307"
	SystemPrompt string
	MaxTokens    int
	Client       *http.Client
}

// AnthropicGenerator answers each turn with a single Messages call. It keeps
// no conversation history.
type AnthropicGenerator struct {
	cfg    AnthropicConfig
	client anthropic.Client
}

// NewAnthropicGenerator creates an AnthropicGenerator with sensible defaults applied.
func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	if cfg.Model == "" {
		cfg.Model = "claude-3-haiku-20240307"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Client != nil {
		opts = append(opts, option.WithHTTPClient(cfg.Client))
	}
	return &AnthropicGenerator{cfg: cfg, client: anthropic.NewClient(opts...)}
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

// Generate sends the transcript as the only user message and forwards the
// session id as metadata.user_id.
func (g *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: int64(g.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserInput)),
		},
	}
	if g.cfg.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: g.cfg.SystemPrompt}}
	}
	if req.SessionID != "" {
		params.Metadata = anthropic.MetadataParam{UserID: anthropic.String(req.SessionID)}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &Response{Text: sb.String()}, nil
}
