package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/blob"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/repository"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	ErrInvalidJob   = errors.New("missing userId or fileId")
	ErrFileNotFound = errors.New("file not found")
	ErrUndecodable  = errors.New("image can't be decoded")
)

// Thumbnailer renders the fixed set of thumbnail widths for an image and
// stores them next to the original.
type Thumbnailer struct {
	repo   repository.Repository
	blobs  blob.Store
	widths []int
}

func NewThumbnailer(repo repository.Repository, blobs blob.Store) *Thumbnailer {
	return &Thumbnailer{
		repo:   repo,
		blobs:  blobs,
		widths: model.ThumbnailWidths,
	}
}

// Process handles one job. Store outages come back wrapping
// apperr.ErrStoreUnavailable, every other error is final. Failing to render
// one of the sizes is only logged.
func (t *Thumbnailer) Process(ctx context.Context, job model.ThumbnailJob) error {
	if job.UserID == "" || job.FileID == "" {
		return ErrInvalidJob
	}

	userID, err := model.ParseRecordID(job.UserID)
	if err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidJob, err)
	}

	fileID, err := model.ParseRecordID(job.FileID)
	if err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidJob, err)
	}

	f, err := t.repo.FindFileByIDForOwner(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrFileNotFound
		}

		return err
	}

	if f.LocalPath == "" {
		return ErrFileNotFound
	}

	src, err := blob.ReadAll(ctx, t.blobs, f.LocalPath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return ErrFileNotFound
		}
		if errors.Is(err, blob.ErrInvalidLocation) {
			return fmt.Errorf("%w, %w", ErrFileNotFound, err)
		}

		return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w, %w", ErrUndecodable, err)
	}

	format := formatOf(src)

	for _, w := range t.widths {
		if err := t.render(ctx, img, format, f.LocalPath, w); err != nil {
			thumbnailsRenderedTotal.WithLabelValues(strconv.Itoa(w), "failed").Inc()
			zap.L().Error("Failed to render thumbnail",
				zap.String("file_id", job.FileID),
				zap.Int("width", w),
				zap.Error(err))
			continue
		}

		thumbnailsRenderedTotal.WithLabelValues(strconv.Itoa(w), "ok").Inc()
	}

	return nil
}

func (t *Thumbnailer) render(ctx context.Context, img image.Image, format imaging.Format, location string, width int) error {
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		return fmt.Errorf("failed to encode thumbnail, %w", err)
	}

	return t.blobs.Put(ctx, blob.Derived(location, strconv.Itoa(width)), &buf)
}

// formatOf keeps thumbnails in the format of their source where imaging
// can write it and falls back to JPEG
func formatOf(src []byte) imaging.Format {
	f, err := imaging.FormatFromExtension(mimetype.Detect(src).Extension())
	if err != nil {
		return imaging.JPEG
	}

	return f
}
