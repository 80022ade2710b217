package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// SpeechTTSConfig holds configuration for an OpenAI-compatible speech server
// such as Kokoro-FastAPI.
type SpeechTTSConfig struct {
	BaseURL string // server root; requests go to {BaseURL}/v1/audio/speech
	APIKey  string // usually empty for self-hosted servers
	Model   string // default: "kokoro"
	Voice   string // default: "af_heart"
	Client  *http.Client
}

// SpeechTTS synthesizes speech through POST /v1/audio/speech.
type SpeechTTS struct {
	cfg    SpeechTTSConfig
	client *openai.Client
}

const defaultContentType = "audio/mpeg"

// NewSpeechTTS creates a SpeechTTS with Kokoro defaults applied.
func NewSpeechTTS(cfg SpeechTTSConfig) *SpeechTTS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8880"
	}
	if cfg.Model == "" {
		cfg.Model = "kokoro"
	}
	if cfg.Voice == "" {
		cfg.Voice = "af_heart"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	if cfg.Client != nil {
		clientCfg.HTTPClient = cfg.Client
	}
	return &SpeechTTS{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

func (s *SpeechTTS) Name() string { return "kokoro" }

// Model and Voice report the identifiers sent with every request.
func (s *SpeechTTS) Model() string { return s.cfg.Model }
func (s *SpeechTTS) Voice() string { return s.cfg.Voice }

// Synthesize converts text to audio. The response body is returned untouched.
func (s *SpeechTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(s.cfg.Model),
		Voice: openai.SpeechVoice(s.cfg.Voice),
		Input: req.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &SynthesisResult{Audio: audio, ContentType: contentType}, nil
}
