// Package runlog records the outcome of each pipeline run. Records hold
// timings and sizes only; no session id, transcript or reply text.
package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Record describes one pipeline run.
type Record struct {
	ID                uuid.UUID `json:"id"`
	Status            string    `json:"status"`
	FailedStage       string    `json:"failed_stage,omitempty"`
	Error             string    `json:"error,omitempty"`
	STTBackend        string    `json:"stt_backend"`
	GenerationBackend string    `json:"generation_backend"`
	TTSBackend        string    `json:"tts_backend"`
	AudioBytesIn      int64     `json:"audio_bytes_in"`
	AudioBytesOut     int64     `json:"audio_bytes_out"`
	TranscriptionMs   int64     `json:"transcription_ms"`
	GenerationMs      int64     `json:"generation_ms"`
	SynthesisMs       int64     `json:"synthesis_ms"`
	TotalMs           int64     `json:"total_ms"`
	CreatedAt         time.Time `json:"created_at"`
}

// Recorder persists or forwards run records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Record) error { return nil }

// Nop discards every record.
func Nop() Recorder { return nopRecorder{} }
