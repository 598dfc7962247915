package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func uploadImage(t *testing.T, e *testEnv, token string) (*model.File, model.ThumbnailJob) {
	t.Helper()

	f, err := e.files.Upload(context.Background(), token, UploadInput{
		Name: "image.png",
		Type: "image",
		Data: base64.StdEncoding.EncodeToString(testPNG(t, 800, 400)),
	})
	require.NoError(t, err)

	jobs := e.queue.Jobs()
	require.NotEmpty(t, jobs)

	return f, jobs[len(jobs)-1]
}

func requireThumbnails(t *testing.T, localPath string) {
	t.Helper()

	for _, w := range model.ThumbnailWidths {
		b, err := os.ReadFile(fmt.Sprintf("%s_%d", localPath, w))
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, w, cfg.Width)
		assert.Equal(t, w/2, cfg.Height)
	}
}

func TestThumbnailerRendersAllWidths(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")
	f, job := uploadImage(t, e, token)

	th := NewThumbnailer(e.repo, e.blobs)
	require.NoError(t, th.Process(context.Background(), job))

	requireThumbnails(t, f.LocalPath)
}

func TestThumbnailerIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")
	f, job := uploadImage(t, e, token)

	th := NewThumbnailer(e.repo, e.blobs)
	require.NoError(t, th.Process(context.Background(), job))

	first, err := os.ReadFile(f.LocalPath + "_250")
	require.NoError(t, err)

	require.NoError(t, th.Process(context.Background(), job))

	second, err := os.ReadFile(f.LocalPath + "_250")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(e.blobs.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1+len(model.ThumbnailWidths))
}

func TestThumbnailerServedOnDownload(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")
	f, job := uploadImage(t, e, token)

	require.NoError(t, NewThumbnailer(e.repo, e.blobs).Process(ctx, job))

	d, err := e.files.Download(ctx, token, f.ID.String(), "100")
	require.NoError(t, err)
	assert.Equal(t, "image/png", d.MimeType)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(d.Content))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestThumbnailerFinalErrors(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")
	th := NewThumbnailer(e.repo, e.blobs)

	_, job := uploadImage(t, e, token)

	assert.ErrorIs(t, th.Process(ctx, model.ThumbnailJob{FileID: job.FileID}), ErrInvalidJob)
	assert.ErrorIs(t, th.Process(ctx, model.ThumbnailJob{UserID: job.UserID}), ErrInvalidJob)
	assert.ErrorIs(t, th.Process(ctx, model.ThumbnailJob{UserID: "x", FileID: job.FileID}), ErrInvalidJob)

	err := th.Process(ctx, model.ThumbnailJob{UserID: job.UserID, FileID: model.NewRecordID().String()})
	assert.ErrorIs(t, err, ErrFileNotFound)

	// owner and file must match
	err = th.Process(ctx, model.ThumbnailJob{UserID: model.NewRecordID().String(), FileID: job.FileID})
	assert.ErrorIs(t, err, ErrFileNotFound)

	f, err := e.files.Upload(ctx, token, UploadInput{Name: "fake.png", Type: "image", Data: b64("not an image")})
	require.NoError(t, err)

	err = th.Process(ctx, model.ThumbnailJob{UserID: f.UserID.String(), FileID: f.ID.String()})
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.False(t, isTransient(err))
}

// unavailableRepo fails every lookup like a backend that went away
type unavailableRepo struct {
	repository.Repository
}

func (unavailableRepo) FindFileByIDForOwner(context.Context, model.RecordID, model.RecordID) (*model.File, error) {
	return nil, fmt.Errorf("%w: connection refused", apperr.ErrStoreUnavailable)
}

func TestThumbnailerStoreOutageIsTransient(t *testing.T) {
	e := newTestEnv(t)
	th := NewThumbnailer(unavailableRepo{e.repo}, e.blobs)

	err := th.Process(context.Background(), model.ThumbnailJob{
		UserID: model.NewRecordID().String(),
		FileID: model.NewRecordID().String(),
	})
	assert.True(t, isTransient(err))
}

// movedRepo points every file at a location outside of the blob root
type movedRepo struct {
	repository.Repository
}

func (r movedRepo) FindFileByIDForOwner(ctx context.Context, id, userID model.RecordID) (*model.File, error) {
	f, err := r.Repository.FindFileByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	f.LocalPath = "/etc/passwd"
	return f, nil
}

func TestThumbnailerBadLocationIsFinal(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "bob@dylan.com")
	_, job := uploadImage(t, e, token)

	err := NewThumbnailer(movedRepo{e.repo}, e.blobs).Process(context.Background(), job)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.False(t, isTransient(err))
}
