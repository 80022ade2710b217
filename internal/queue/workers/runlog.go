package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

// RunLogWorker persists run records enqueued by the API process.
type RunLogWorker struct {
	store runlog.Recorder
}

// NewRunLogWorker creates a RunLogWorker that writes to store.
func NewRunLogWorker(store runlog.Recorder) *RunLogWorker {
	return &RunLogWorker{store: store}
}

func (w *RunLogWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var rec runlog.Record
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		// Retrying cannot fix a malformed payload.
		return fmt.Errorf("unmarshal run record: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.store.Record(ctx, rec); err != nil {
		return fmt.Errorf("store run record %s: %w", rec.ID, err)
	}

	slog.Debug("run record stored", "run_id", rec.ID, "status", rec.Status)
	return nil
}
