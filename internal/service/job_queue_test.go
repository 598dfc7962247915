package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueueProcessesJobs(t *testing.T) {
	q := NewJobQueue(JobQueueOpts{Workers: 3, Capacity: 10})

	var mu sync.Mutex
	seen := map[string]bool{}

	q.StartWorkerPool(context.Background(), func(_ context.Context, job model.ThumbnailJob) error {
		mu.Lock()
		seen[job.FileID] = true
		mu.Unlock()
		return nil
	})

	for i := range 5 {
		require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{UserID: "u", FileID: fmt.Sprint(i)}))
	}

	require.NoError(t, q.Stop(context.Background()))

	assert.Len(t, seen, 5)
	assert.Zero(t, q.Pending())
	assert.ErrorIs(t, q.Enqueue(context.Background(), model.ThumbnailJob{}), ErrQueueClose)
}

func TestJobQueueRetriesTransientErrors(t *testing.T) {
	q := NewJobQueue(JobQueueOpts{Workers: 1, Capacity: 1, MaxRetries: 5, Backoff: time.Millisecond})

	var calls atomic.Int32
	q.StartWorkerPool(context.Background(), func(context.Context, model.ThumbnailJob) error {
		if calls.Add(1) < 3 {
			return fmt.Errorf("%w: timeout", apperr.ErrStoreUnavailable)
		}
		return nil
	})

	require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{UserID: "u", FileID: "f"}))
	require.NoError(t, q.Stop(context.Background()))

	assert.EqualValues(t, 3, calls.Load())
}

func TestJobQueueGivesUpOnFinalErrors(t *testing.T) {
	q := NewJobQueue(JobQueueOpts{Workers: 1, Capacity: 2, MaxRetries: 5, Backoff: time.Millisecond})

	var calls atomic.Int32
	q.StartWorkerPool(context.Background(), func(_ context.Context, job model.ThumbnailJob) error {
		calls.Add(1)
		if job.FileID == "panic" {
			panic("boom")
		}
		return ErrFileNotFound
	})

	require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{UserID: "u", FileID: "panic"}))
	require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{UserID: "u", FileID: "f"}))
	require.NoError(t, q.Stop(context.Background()))

	// one attempt each, and the panic didn't take the worker down
	assert.EqualValues(t, 2, calls.Load())
}

func TestJobQueueStopHonorsDeadline(t *testing.T) {
	q := NewJobQueue(JobQueueOpts{Workers: 1, Capacity: 1, MaxRetries: 10, Backoff: time.Second})

	started := make(chan struct{})
	var once sync.Once
	q.StartWorkerPool(context.Background(), func(context.Context, model.ThumbnailJob) error {
		once.Do(func() { close(started) })
		return fmt.Errorf("%w: connection refused", apperr.ErrStoreUnavailable)
	})

	require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{UserID: "u", FileID: "f"}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	begin := time.Now()
	err := q.Stop(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(begin), 900*time.Millisecond)
	assert.Zero(t, q.Pending())
}

func TestJobQueueFull(t *testing.T) {
	q := NewJobQueue(JobQueueOpts{Workers: 1, Capacity: 1})

	require.NoError(t, q.Enqueue(context.Background(), model.ThumbnailJob{FileID: "1"}))
	err := q.Enqueue(context.Background(), model.ThumbnailJob{FileID: "2"})
	assert.True(t, errors.Is(err, ErrQueueFull))

	q.StartWorkerPool(context.Background(), func(context.Context, model.ThumbnailJob) error { return nil })
	require.NoError(t, q.Stop(context.Background()))
}

func TestImageUploadEndToEnd(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")

	q := NewJobQueue(JobQueueOpts{Workers: 2, Capacity: 10})
	q.StartWorkerPool(context.Background(), NewThumbnailer(e.repo, e.blobs).Process)
	e.files = NewFiles(e.sessions, e.repo, e.blobs, q)

	f, err := e.files.Upload(context.Background(), token, UploadInput{
		Name: "image.png",
		Type: "image",
		Data: b64(string(testPNG(t, 640, 320))),
	})
	require.NoError(t, err)

	require.NoError(t, q.Stop(context.Background()))

	requireThumbnails(t, f.LocalPath)
}

func TestAsynqTaskHandler(t *testing.T) {
	job := model.ThumbnailJob{UserID: "u", FileID: "f"}
	task, err := NewThumbnailTask(job)
	require.NoError(t, err)
	assert.Equal(t, TypeThumbnail, task.Type())

	var got model.ThumbnailJob
	h := ThumbnailTaskHandler(func(_ context.Context, j model.ThumbnailJob) error {
		got = j
		return nil
	})
	require.NoError(t, h(context.Background(), task))
	assert.Equal(t, job, got)

	transient := fmt.Errorf("%w: down", apperr.ErrStoreUnavailable)
	h = ThumbnailTaskHandler(func(context.Context, model.ThumbnailJob) error { return transient })
	assert.ErrorIs(t, h(context.Background(), task), transient)

	h = ThumbnailTaskHandler(func(context.Context, model.ThumbnailJob) error { return ErrFileNotFound })
	err = h(context.Background(), task)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
