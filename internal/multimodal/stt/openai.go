package stt

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTTConfig holds configuration for the OpenAI transcription backend
// (or any server speaking /v1/audio/transcriptions).
type OpenAISTTConfig struct {
	APIKey   string
	BaseURL  string // default: "https://api.openai.com/v1"
	Model    string // default: "whisper-1"
	Language string
	Client   *http.Client
}

// OpenAISTT transcribes audio using the go-openai client.
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
}

// NewOpenAISTT creates an OpenAISTT with sensible defaults applied.
func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Client != nil {
		clientCfg.HTTPClient = cfg.Client
	}
	return &OpenAISTT{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

// Transcribe uploads the audio to /audio/transcriptions in JSON mode.
func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Audio == nil {
		return nil, fmt.Errorf("no audio to transcribe")
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio.webm"
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: filename,
		Reader:   req.Audio,
		Language: o.cfg.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	return &TranscriptionResponse{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}
