package tts

import (
	"context"
	"net/http"
	"time"

	"github.com/nikhilbhutani/voiceagent/internal/cache"
	"github.com/nikhilbhutani/voiceagent/internal/config"
)

// SynthesisRequest is the text to speak. Model and voice are fixed per
// backend.
type SynthesisRequest struct {
	Input string `json:"input"`
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

// TTSProvider is the interface for text-to-speech backends.
type TTSProvider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

// New builds the speech client and wraps it with c when c is non-nil.
func New(cfg config.TTSConfig, c cache.AudioCache, timeout time.Duration) TTSProvider {
	var p TTSProvider = NewSpeechTTS(SpeechTTSConfig{
		BaseURL: cfg.KokoroURL,
		Model:   cfg.Model,
		Voice:   cfg.Voice,
		Client:  &http.Client{Timeout: timeout},
	})
	if c != nil {
		p = NewCachedTTS(p, c)
	}
	return p
}
