package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strconv"

	"bitwise74/files-api/internal/access"
	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/blob"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/repository"
	"bitwise74/files-api/internal/session"
	"bitwise74/files-api/pkg/validators"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var ErrInvalidID = apperr.BadRequest("Invalid id")

type Files struct {
	sessions *session.Store
	repo     repository.Repository
	blobs    blob.Store
	queue    Queue
}

func NewFiles(sessions *session.Store, repo repository.Repository, blobs blob.Store, queue Queue) *Files {
	return &Files{
		sessions: sessions,
		repo:     repo,
		blobs:    blobs,
		queue:    queue,
	}
}

type UploadInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// Download is the content of a file ready to be served
type Download struct {
	Content  []byte
	MimeType string
}

func parseID(s string) (model.RecordID, error) {
	id, err := model.ParseRecordID(s)
	if err != nil {
		return model.RecordID{}, ErrInvalidID
	}

	return id, nil
}

func (s *Files) Upload(ctx context.Context, token string, in UploadInput) (*model.File, error) {
	userID, err := authenticate(ctx, s.sessions, token)
	if err != nil {
		return nil, err
	}

	typ, content, err := validators.UploadValidator(in.Name, in.Type, in.Data)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	parentID, err := validators.ParentValidator(in.ParentID)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	if !parentID.IsZero() {
		parent, lookupErr := s.repo.FindFileByIDForOwner(ctx, parentID, userID)
		if err := access.CheckParent(parentID, parent, lookupErr); err != nil {
			return nil, err
		}
	}

	f := &model.File{
		UserID:   userID,
		Name:     in.Name,
		Type:     typ,
		ParentID: parentID,
		IsPublic: in.IsPublic,
	}

	if typ.HasContent() {
		f.LocalPath = s.blobs.Locate(blob.NewID())

		if err := s.blobs.Put(ctx, f.LocalPath, bytes.NewReader(content)); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	if err := s.repo.InsertFile(ctx, f); err != nil {
		if f.LocalPath != "" {
			if err := s.blobs.Delete(context.WithoutCancel(ctx), f.LocalPath); err != nil {
				zap.L().Warn("Failed to clean up orphaned blob", zap.String("location", f.LocalPath), zap.Error(err))
			}
		}

		return nil, apperr.Internal(err)
	}

	uploadsTotal.WithLabelValues(string(typ)).Inc()

	if typ == model.TypeImage {
		job := model.ThumbnailJob{UserID: userID.String(), FileID: f.ID.String()}

		// The upload itself succeeded, a missing thumbnail is not worth failing it
		if err := s.queue.Enqueue(ctx, job); err != nil {
			enqueueFailuresTotal.Inc()
			zap.L().Error("Failed to enqueue thumbnail job", zap.String("file_id", job.FileID), zap.Error(err))
		}
	}

	return f, nil
}

func (s *Files) Show(ctx context.Context, token, fileID string) (*model.File, error) {
	userID, err := authenticate(ctx, s.sessions, token)
	if err != nil {
		return nil, err
	}

	return s.owned(ctx, fileID, userID)
}

// owned fetches a record that must belong to userID
func (s *Files) owned(ctx context.Context, fileID string, userID model.RecordID) (*model.File, error) {
	id, err := parseID(fileID)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.FindFileByIDForOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound()
		}

		return nil, apperr.Internal(err)
	}

	return f, access.CheckOwner(f, userID)
}

// List returns one page of the caller's files under parentID. An empty
// parentID or "0" is the root and an empty page is page 0.
func (s *Files) List(ctx context.Context, token, parentID, page string) ([]model.File, error) {
	userID, err := authenticate(ctx, s.sessions, token)
	if err != nil {
		return nil, err
	}

	parent, err := model.ParseParentID(parentID)
	if err != nil {
		return nil, apperr.BadRequest("Invalid parentId")
	}

	p := 0
	if page != "" {
		p, err = strconv.Atoi(page)
		if err != nil || p < 0 {
			return nil, apperr.BadRequest("Invalid page")
		}
	}

	files, err := s.repo.ListFiles(ctx, userID, parent, p)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return files, nil
}

func (s *Files) Publish(ctx context.Context, token, fileID string) (*model.File, error) {
	return s.setPublic(ctx, token, fileID, true)
}

func (s *Files) Unpublish(ctx context.Context, token, fileID string) (*model.File, error) {
	return s.setPublic(ctx, token, fileID, false)
}

func (s *Files) setPublic(ctx context.Context, token, fileID string, public bool) (*model.File, error) {
	userID, err := authenticate(ctx, s.sessions, token)
	if err != nil {
		return nil, err
	}

	f, err := s.owned(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	f, err = s.repo.SetPublic(ctx, f.ID, public)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound()
		}

		return nil, apperr.Internal(err)
	}

	return f, nil
}

// Download returns the content of a file, or of one of its thumbnails when
// size is set. token may be empty: public files can be read by anyone.
func (s *Files) Download(ctx context.Context, token, fileID, size string) (*Download, error) {
	id, err := parseID(fileID)
	if err != nil {
		return nil, err
	}

	// A bad token downloads as anonymous
	var userID model.RecordID
	if token != "" {
		userID, err = s.sessions.Resolve(ctx, token)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
	}

	f, err := s.repo.FindFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound()
		}

		return nil, apperr.Internal(err)
	}

	if err := access.CheckRead(f, userID); err != nil {
		return nil, err
	}

	if err := access.CheckContent(f); err != nil {
		return nil, err
	}

	width, err := validators.SizeValidator(size)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	location := f.LocalPath
	if width > 0 {
		location = blob.Derived(location, strconv.Itoa(width))
	}

	rc, err := s.blobs.Open(ctx, location)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, apperr.NotFound()
		}

		return nil, apperr.Internal(err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Download{
		Content:  content,
		MimeType: mimeTypeOf(f.Name, content),
	}, nil
}

// mimeTypeOf goes by the name's extension and sniffs the content when the
// extension says nothing
func mimeTypeOf(name string, content []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}

	return mimetype.Detect(content).String()
}
