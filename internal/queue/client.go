package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voiceagent/internal/config"
	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

// Client enqueues background tasks. It implements runlog.Recorder so the API
// process can hand run records to the worker instead of writing them itself.
type Client struct {
	client *asynq.Client
}

// NewClient creates a Client connected to cfg.Addr.
func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

// RedisOpt converts the shared Redis settings into asynq's connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Record enqueues rec for the worker. The run id doubles as the task id so a
// record is enqueued at most once.
func (c *Client) Record(ctx context.Context, rec runlog.Record) error {
	return c.enqueue(ctx, TypeRunRecord, rec,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Queue("low"),
		asynq.TaskID(rec.ID.String()),
	)
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err = c.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
