package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/voiceagent/internal/config"
	"github.com/nikhilbhutani/voiceagent/internal/pipeline"
	"github.com/nikhilbhutani/voiceagent/internal/web"
)

// Processor runs one voice turn.
type Processor interface {
	Process(ctx context.Context, in pipeline.AudioPayload) (*pipeline.Outcome, error)
}

// VoiceHandler serves the browser page, its audio settings and the
// /process_audio endpoint.
type VoiceHandler struct {
	proc  Processor
	page  *web.Page
	audio config.AudioConfig
}

// NewVoiceHandler creates a VoiceHandler. audio is returned verbatim by Config.
func NewVoiceHandler(proc Processor, page *web.Page, audio config.AudioConfig) *VoiceHandler {
	return &VoiceHandler{proc: proc, page: page, audio: audio}
}

type processAudioResponse struct {
	AudioData     byteArray `json:"audio_data"`
	Transcription string    `json:"transcription"`
	LLMResponse   string    `json:"llm_response"`
}

// Index renders the voice agent page.
func (h *VoiceHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w); err != nil {
		slog.Error("render index", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// Config returns the client-side audio settings.
func (h *VoiceHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.audio)
}

// ProcessAudio accepts a multipart upload with an "audio" file and an
// optional "session_id" and runs it through the pipeline. The synthesized
// audio's MIME type is reported in X-Audio-Content-Type.
func (h *VoiceHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, pipeline.ErrMissingAudio.Error())
		return
	}
	defer file.Close()

	out, err := h.proc.Process(r.Context(), pipeline.AudioPayload{
		Audio:       file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SessionID:   r.FormValue("session_id"),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrMissingAudio) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("X-Run-ID", out.RunID.String())
	if out.ContentType != "" {
		w.Header().Set("X-Audio-Content-Type", out.ContentType)
	}
	writeJSON(w, http.StatusOK, processAudioResponse{
		AudioData:     out.Audio,
		Transcription: out.Transcription,
		LLMResponse:   out.Response,
	})
}
