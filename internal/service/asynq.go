package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bitwise74/files-api/internal/model"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeThumbnail = "thumbnail:generate"

type AsynqOpts struct {
	Addr     string
	Password string
	DB       int
	// Concurrency is only used by the server
	Concurrency int
	MaxRetries  int
}

func (o AsynqOpts) redis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	}
}

// AsynqQueue is the producer side of the redis backed queue. Jobs survive
// restarts and can be consumed by a separate worker process.
type AsynqQueue struct {
	client     *asynq.Client
	maxRetries int
}

func NewAsynqQueue(o AsynqOpts) *AsynqQueue {
	return &AsynqQueue{
		client:     asynq.NewClient(o.redis()),
		maxRetries: o.MaxRetries,
	}
}

func NewThumbnailTask(job model.ThumbnailJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeThumbnail, payload), nil
}

func (q *AsynqQueue) Enqueue(ctx context.Context, job model.ThumbnailJob) error {
	task, err := NewThumbnailTask(job)
	if err != nil {
		return fmt.Errorf("failed to encode thumbnail job, %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(q.maxRetries))
	if err != nil {
		return fmt.Errorf("failed to enqueue thumbnail job, %w", err)
	}

	zap.L().Debug("New thumbnail task enqueued", zap.String("task_id", info.ID), zap.String("user_id", job.UserID))

	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

// AsynqWorker consumes thumbnail tasks from redis
type AsynqWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewAsynqWorker(o AsynqOpts, h JobHandler) *AsynqWorker {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}

	srv := asynq.NewServer(o.redis(), asynq.Config{
		Concurrency: o.Concurrency,
		Logger:      zap.S(),
		// Only transient failures count against the queue's health
		IsFailure: isTransient,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeThumbnail, ThumbnailTaskHandler(h))

	return &AsynqWorker{srv: srv, mux: mux}
}

// ThumbnailTaskHandler adapts h to asynq. Final failures skip asynq's
// retries, transient ones are left to them.
func ThumbnailTaskHandler(h JobHandler) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var job model.ThumbnailJob
		if err := json.Unmarshal(t.Payload(), &job); err != nil {
			thumbnailJobsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("%w: %w", errors.Join(ErrInvalidJob, err), asynq.SkipRetry)
		}

		err := h(ctx, job)
		switch {
		case err == nil:
			thumbnailJobsTotal.WithLabelValues("ok").Inc()
			return nil
		case isTransient(err):
			zap.L().Warn("Thumbnail task failed, retrying", zap.String("file_id", job.FileID), zap.Error(err))
			return err
		default:
			thumbnailJobsTotal.WithLabelValues("failed").Inc()
			zap.L().Error("Thumbnail task finished with an error",
				zap.String("user_id", job.UserID),
				zap.String("file_id", job.FileID),
				zap.Error(err))
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
	}
}

func (w *AsynqWorker) Start() error {
	return w.srv.Start(w.mux)
}

// Stop waits for active tasks to finish
func (w *AsynqWorker) Stop() {
	w.srv.Shutdown()
}
