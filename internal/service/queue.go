// Package service contains the file and user operations of the API and the
// background thumbnail pipeline.
package service

import (
	"context"
	"errors"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
)

var (
	ErrQueueFull  = errors.New("job queue full")
	ErrQueueClose = errors.New("job queue closed")
)

// Queue hands thumbnail jobs to the workers. Enqueue must not wait for the
// job to be processed.
type Queue interface {
	Enqueue(ctx context.Context, job model.ThumbnailJob) error
}

// JobHandler processes one job. Errors wrapping apperr.ErrStoreUnavailable
// are transient and the job is retried, anything else is final.
type JobHandler func(ctx context.Context, job model.ThumbnailJob) error

func isTransient(err error) bool {
	return errors.Is(err, apperr.ErrStoreUnavailable)
}
