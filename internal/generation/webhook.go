package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikhilbhutani/voiceagent/internal/upstream"
)

// WebhookGenerator posts {user_input, session_id} to a workflow webhook
// (n8n or similar) and reads the "response" field of its JSON reply.
type WebhookGenerator struct {
	url        string
	httpClient *http.Client
}

// NewWebhookGenerator creates a WebhookGenerator. A nil client gets a 120s timeout.
func NewWebhookGenerator(url string, client *http.Client) *WebhookGenerator {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &WebhookGenerator{url: url, httpClient: client}
}

func (g *WebhookGenerator) Name() string { return "webhook" }

// Generate posts req and decodes {"response": ...}. Non-2xx replies return an
// *upstream.StatusError.
func (g *WebhookGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.StatusError{Service: "webhook", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &out, nil
}
