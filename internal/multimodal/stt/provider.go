package stt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikhilbhutani/voiceagent/internal/config"
)

// TranscriptionRequest holds one audio upload to transcribe.
type TranscriptionRequest struct {
	Audio       io.Reader
	Filename    string
	ContentType string
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// New returns the backend selected by cfg.Backend.
func New(cfg config.STTConfig, timeout time.Duration) (STTProvider, error) {
	switch cfg.Backend {
	case "", "whisper":
		return NewWhisperSTT(WhisperSTTConfig{
			BaseURL:  cfg.WhisperURL,
			Language: cfg.Language,
			Client:   &http.Client{Timeout: timeout},
		}), nil
	case "openai":
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:   cfg.OpenAIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
			Client:   &http.Client{Timeout: timeout},
		}), nil
	}
	return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
}
