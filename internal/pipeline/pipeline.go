// Package pipeline runs one voice turn: transcribe the caller's audio, generate
// a reply, and synthesize that reply as speech. Stages run strictly in order
// and the first failure ends the run.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/voiceagent/internal/generation"
	"github.com/nikhilbhutani/voiceagent/internal/multimodal/stt"
	"github.com/nikhilbhutani/voiceagent/internal/multimodal/tts"
	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

// DefaultSessionID is sent to the generation stage when the caller gave none.
const DefaultSessionID = "no_session_id"

// AudioPayload is one uploaded utterance. Audio is read once.
type AudioPayload struct {
	Audio       io.Reader
	Filename    string
	ContentType string
	SessionID   string
}

// Outcome is the result of a successful run.
type Outcome struct {
	RunID         uuid.UUID
	Audio         []byte
	ContentType   string
	Transcription string
	Response      string
}

// Pipeline wires one provider per stage. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	stt          stt.STTProvider
	gen          generation.Generator
	tts          tts.TTSProvider
	recorder     runlog.Recorder
	stageTimeout time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sends a runlog.Record for every run to r.
func WithRecorder(r runlog.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithStageTimeout bounds each stage's outbound call.
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.stageTimeout = d }
}

// New creates a Pipeline. Runs are not recorded unless WithRecorder is given.
func New(s stt.STTProvider, g generation.Generator, t tts.TTSProvider, opts ...Option) *Pipeline {
	p := &Pipeline{stt: s, gen: g, tts: t, recorder: runlog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the three stages for one payload.
func (p *Pipeline) Process(ctx context.Context, in AudioPayload) (*Outcome, error) {
	if in.Audio == nil {
		return nil, ErrMissingAudio
	}
	if in.SessionID == "" {
		in.SessionID = DefaultSessionID
	}

	rec := runlog.Record{
		ID:                uuid.New(),
		STTBackend:        p.stt.Name(),
		GenerationBackend: p.gen.Name(),
		TTSBackend:        p.tts.Name(),
		CreatedAt:         time.Now(),
	}
	logger := slog.With("run_id", rec.ID)

	out, err := p.run(ctx, in, &rec, logger)

	rec.TotalMs = time.Since(rec.CreatedAt).Milliseconds()
	if err != nil {
		rec.Status = runlog.StatusFailed
		rec.Error = redactedError(err)
		if stage, ok := FailedStage(err); ok {
			rec.FailedStage = string(stage)
		}
		logger.Warn("pipeline failed", "stage", rec.FailedStage, "error", rec.Error, "total_ms", rec.TotalMs)
		logger.Debug("pipeline failure detail", "error", err)
	} else {
		rec.Status = runlog.StatusOK
		logger.Info("pipeline complete", "total_ms", rec.TotalMs, "audio_bytes", len(out.Audio))
	}
	p.record(ctx, rec, logger)

	return out, err
}

func (p *Pipeline) run(ctx context.Context, in AudioPayload, rec *runlog.Record, logger *slog.Logger) (*Outcome, error) {
	audio := &countingReader{r: in.Audio}

	// Stage 1: transcribe.
	start := time.Now()
	sctx, cancel := p.stageContext(ctx)
	tr, err := p.stt.Transcribe(sctx, stt.TranscriptionRequest{
		Audio:       audio,
		Filename:    in.Filename,
		ContentType: in.ContentType,
	})
	cancel()
	rec.TranscriptionMs = time.Since(start).Milliseconds()
	rec.AudioBytesIn = audio.n
	if err != nil {
		return nil, &ServiceError{Stage: StageTranscription, Err: err}
	}
	if tr == nil || tr.Text == "" {
		return nil, &EmptyResultError{Stage: StageTranscription}
	}
	logger.Debug("transcription", "text", tr.Text, "latency_ms", rec.TranscriptionMs)

	// Stage 2: generate the reply.
	start = time.Now()
	gctx, cancel := p.stageContext(ctx)
	gr, err := p.gen.Generate(gctx, generation.Request{
		UserInput: tr.Text,
		SessionID: in.SessionID,
	})
	cancel()
	rec.GenerationMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, &ServiceError{Stage: StageGeneration, Err: err}
	}
	if gr == nil || gr.Text == "" {
		return nil, &EmptyResultError{Stage: StageGeneration}
	}
	logger.Debug("generation", "text", gr.Text, "latency_ms", rec.GenerationMs)

	// Stage 3: synthesize.
	start = time.Now()
	tctx, cancel := p.stageContext(ctx)
	sr, err := p.tts.Synthesize(tctx, tts.SynthesisRequest{Input: gr.Text})
	cancel()
	rec.SynthesisMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, &ServiceError{Stage: StageSynthesis, Err: err}
	}
	if sr == nil {
		sr = &tts.SynthesisResult{}
	}
	rec.AudioBytesOut = int64(len(sr.Audio))
	logger.Debug("synthesis", "bytes", len(sr.Audio), "latency_ms", rec.SynthesisMs)

	return &Outcome{
		RunID:         rec.ID,
		Audio:         sr.Audio,
		ContentType:   sr.ContentType,
		Transcription: tr.Text,
		Response:      gr.Text,
	}, nil
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout > 0 {
		return context.WithTimeout(ctx, p.stageTimeout)
	}
	return context.WithCancel(ctx)
}

// record never fails the run; the caller may already have gone away.
func (p *Pipeline) record(ctx context.Context, rec runlog.Record, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.recorder.Record(ctx, rec); err != nil {
		logger.Warn("failed to record pipeline run", "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
