package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voiceagent/internal/queue"
	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

type memoryRecorder struct {
	records []runlog.Record
	err     error
}

func (m *memoryRecorder) Record(_ context.Context, rec runlog.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func TestRunLogWorker_StoresRecord(t *testing.T) {
	rec := runlog.Record{ID: uuid.New(), Status: runlog.StatusFailed, FailedStage: "generation", TotalMs: 42}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	store := &memoryRecorder{}
	w := NewRunLogWorker(store)
	require.NoError(t, w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeRunRecord, payload)))

	require.Len(t, store.records, 1)
	assert.Equal(t, rec.ID, store.records[0].ID)
	assert.Equal(t, "generation", store.records[0].FailedStage)
	assert.Equal(t, int64(42), store.records[0].TotalMs)
}

func TestRunLogWorker_MalformedPayloadSkipsRetry(t *testing.T) {
	w := NewRunLogWorker(&memoryRecorder{})
	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeRunRecord, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestRunLogWorker_StoreErrorIsRetried(t *testing.T) {
	payload, _ := json.Marshal(runlog.Record{ID: uuid.New()})
	w := NewRunLogWorker(&memoryRecorder{err: errors.New("connection refused")})

	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeRunRecord, payload))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "connection refused")
}
