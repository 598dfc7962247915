// Package repository keeps user and file metadata in a document store, or in
// a relational database through gorm. Both backends behave the same: absent
// records are apperr.ErrNotFound, duplicate emails are apperr.ErrConflict and
// every other backend failure wraps apperr.ErrStoreUnavailable.
package repository

import (
	"context"

	"bitwise74/files-api/internal/model"
)

// PageSize is the fixed number of files per ListFiles page
const PageSize = 20

type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id model.RecordID) (*model.User, error)
	// InsertUser assigns u.ID
	InsertUser(ctx context.Context, u *model.User) error
	CountUsers(ctx context.Context) (int64, error)

	// InsertFile assigns f.ID
	InsertFile(ctx context.Context, f *model.File) error
	FindFileByID(ctx context.Context, id model.RecordID) (*model.File, error)
	FindFileByIDForOwner(ctx context.Context, id, userID model.RecordID) (*model.File, error)
	// ListFiles returns one page of userID's files directly under parentID,
	// the zero parentID being the root, in ascending id (creation) order.
	ListFiles(ctx context.Context, userID, parentID model.RecordID, page int) ([]model.File, error)
	// SetPublic updates only the isPublic field and returns the record as
	// stored afterwards
	SetPublic(ctx context.Context, id model.RecordID, public bool) (*model.File, error)
	CountFiles(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func skipFor(page int) int {
	if page < 0 {
		page = 0
	}

	return page * PageSize
}
