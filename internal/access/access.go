// Package access holds the ownership, visibility and hierarchy rules that
// decide what a caller may do with a file record. Nothing here does I/O.
package access

import (
	"errors"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
)

var (
	ErrParentNotFound  = apperr.BadRequest("Parent not found")
	ErrParentNotFolder = apperr.BadRequest("Parent is not a folder")
	ErrFolderContent   = apperr.BadRequest("A folder doesn't have content")
)

// Owns reports whether userID owns f
func Owns(f *model.File, userID model.RecordID) bool {
	return f != nil && !userID.IsZero() && f.UserID == userID
}

// CheckOwner hides records of other users behind NotFound so their
// existence doesn't leak
func CheckOwner(f *model.File, userID model.RecordID) error {
	if !Owns(f, userID) {
		return apperr.NotFound()
	}

	return nil
}

// CheckRead lets anyone read a public record and only the owner read a
// private one. userID is zero for anonymous callers.
func CheckRead(f *model.File, userID model.RecordID) error {
	if f == nil {
		return apperr.NotFound()
	}

	if f.IsPublic || Owns(f, userID) {
		return nil
	}

	return apperr.NotFound()
}

// CheckContent rejects folders, which have nothing to download
func CheckContent(f *model.File) error {
	if !f.Type.HasContent() {
		return ErrFolderContent
	}

	return nil
}

// CheckParent validates the result of looking up a parent record. lookupErr
// is whatever the repository returned. A zero parentID is the root and is
// always valid.
func CheckParent(parentID model.RecordID, parent *model.File, lookupErr error) error {
	if parentID.IsZero() {
		return nil
	}

	if errors.Is(lookupErr, apperr.ErrNotFound) {
		return ErrParentNotFound
	}

	if lookupErr != nil {
		return apperr.Internal(lookupErr)
	}

	if parent.Type != model.TypeFolder {
		return ErrParentNotFolder
	}

	return nil
}
