package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes run records to the pipeline_runs table.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by db.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record inserts rec. Re-delivered records with the same id are ignored.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO pipeline_runs (id, status, failed_stage, error, stt_backend, generation_backend, tts_backend,
		   audio_bytes_in, audio_bytes_out, transcription_ms, generation_ms, synthesis_ms, total_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Status, nullable(rec.FailedStage), nullable(rec.Error),
		rec.STTBackend, rec.GenerationBackend, rec.TTSBackend,
		rec.AudioBytesIn, rec.AudioBytesOut,
		rec.TranscriptionMs, rec.GenerationMs, rec.SynthesisMs, rec.TotalMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, status, COALESCE(failed_stage, ''), COALESCE(error, ''), stt_backend, generation_backend, tts_backend,
		        audio_bytes_in, audio_bytes_out, transcription_ms, generation_ms, synthesis_ms, total_ms, created_at
		 FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pipeline runs: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.ID, &r.Status, &r.FailedStage, &r.Error, &r.STTBackend, &r.GenerationBackend, &r.TTSBackend,
			&r.AudioBytesIn, &r.AudioBytesOut, &r.TranscriptionMs, &r.GenerationMs, &r.SynthesisMs, &r.TotalMs, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan pipeline runs: %w", err)
	}
	return records, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
