package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"bitwise74/files-api/internal/model"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type JobQueueOpts struct {
	Workers  int
	Capacity int
	// MaxRetries bounds the retries of a transient failure
	MaxRetries uint64
	// Backoff is the first retry delay, doubled on every attempt
	Backoff time.Duration
}

// JobQueue is the in-process queue: a buffered channel drained by a fixed
// pool of workers. Jobs don't survive a restart.
type JobQueue struct {
	jobs    chan model.ThumbnailJob
	running atomic.Int32
	workers int
	retries uint64
	backoff time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	// cancel aborts the jobs in progress when Stop runs out of time
	cancel context.CancelFunc
}

func NewJobQueue(o JobQueueOpts) *JobQueue {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Capacity <= 0 {
		o.Capacity = 100
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}

	zap.L().Debug("Initializing job queue",
		zap.Int("workers", o.Workers),
		zap.Int("capacity", o.Capacity))

	return &JobQueue{
		jobs:    make(chan model.ThumbnailJob, o.Capacity),
		workers: o.Workers,
		retries: o.MaxRetries,
		backoff: o.Backoff,
	}
}

func (q *JobQueue) StartWorkerPool(ctx context.Context, h JobHandler) {
	ctx, cancel := context.WithCancel(ctx)

	q.mu.Lock()
	q.cancel = cancel
	q.mu.Unlock()

	for range q.workers {
		q.wg.Add(1)
		go q.worker(ctx, h)
	}
}

func (q *JobQueue) worker(ctx context.Context, h JobHandler) {
	defer q.wg.Done()

	for job := range q.jobs {
		err := q.run(ctx, h, job)
		q.running.Add(-1)

		if err != nil {
			thumbnailJobsTotal.WithLabelValues("failed").Inc()
			zap.L().Error("Thumbnail job finished with an error",
				zap.String("user_id", job.UserID),
				zap.String("file_id", job.FileID),
				zap.Error(err))
		} else {
			thumbnailJobsTotal.WithLabelValues("ok").Inc()
			zap.L().Debug("Thumbnail job finished successfully", zap.String("file_id", job.FileID))
		}
	}
}

func (q *JobQueue) run(ctx context.Context, h JobHandler, job model.ThumbnailJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("thumbnail job panicked, %v", r)
		}
	}()

	b := retry.WithMaxRetries(q.retries, retry.NewExponential(q.backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := h(ctx, job)
		if isTransient(err) {
			zap.L().Warn("Thumbnail job failed, retrying", zap.String("file_id", job.FileID), zap.Error(err))
			return retry.RetryableError(err)
		}

		return err
	})
}

// Enqueue never blocks, a full buffer is reported as ErrQueueFull
func (q *JobQueue) Enqueue(_ context.Context, job model.ThumbnailJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClose
	}

	select {
	case q.jobs <- job:
		q.running.Add(1)
		zap.L().Debug("New thumbnail job enqueued", zap.Int32("enqueued", q.running.Load()), zap.String("user_id", job.UserID))
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending is the number of jobs enqueued or in progress
func (q *JobQueue) Pending() int32 {
	return q.running.Load()
}

// Stop refuses new jobs and waits until the workers drained the buffer. Once
// ctx is done the jobs left are cancelled, retries included, and Stop returns
// after the workers exit.
func (q *JobQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		<-done
		zap.L().Warn("Thumbnail workers stopped before the queue was drained", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
