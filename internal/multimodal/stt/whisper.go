package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/nikhilbhutani/voiceagent/internal/upstream"
)

// WhisperSTTConfig holds configuration for a self-hosted whisper server
// exposing POST /transcribe.
type WhisperSTTConfig struct {
	BaseURL  string // default: "http://localhost:5050"
	Language string // default: "en"
	Client   *http.Client
}

// WhisperSTT uploads audio to a whisper server's /transcribe endpoint.
type WhisperSTT struct {
	cfg        WhisperSTTConfig
	httpClient *http.Client
}

// NewWhisperSTT creates a WhisperSTT with sensible defaults applied.
func NewWhisperSTT(cfg WhisperSTTConfig) *WhisperSTT {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5050"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &WhisperSTT{cfg: cfg, httpClient: client}
}

func (w *WhisperSTT) Name() string { return "whisper" }

// Transcribe sends the audio as the multipart "audio" field together with a
// "language" field and reads the "text" field of the JSON reply.
func (w *WhisperSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Audio == nil {
		return nil, fmt.Errorf("no audio to transcribe")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreatePart(audioPartHeader(req.Filename, req.ContentType))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, req.Audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err = mw.WriteField("language", w.cfg.Language); err != nil {
		return nil, fmt.Errorf("write language field: %w", err)
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+"/transcribe", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstream.StatusError{Service: "transcription", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// A missing or null "text" leaves Text empty.
	var out TranscriptionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// audioPartHeader mirrors multipart.Writer.CreateFormFile but keeps the
// uploader's content type instead of forcing application/octet-stream.
func audioPartHeader(filename, contentType string) textproto.MIMEHeader {
	if filename == "" {
		filename = "audio"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="audio"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return h
}
