// Package model defines database models
package model

import "encoding/json"

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}

	return false
}

// HasContent reports whether records of this type carry a blob
func (t FileType) HasContent() bool {
	return t == TypeFile || t == TypeImage
}

// File is one entry of the hierarchy. Everything except IsPublic is
// written once on upload.
type File struct {
	ID       RecordID `gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	UserID   RecordID `gorm:"type:varchar(24);index:idx_files_owner_parent;not null" bson:"userId"`
	Name     string   `gorm:"not null" bson:"name"`
	Type     FileType `gorm:"type:varchar(16);not null" bson:"type"`
	ParentID RecordID `gorm:"type:varchar(24);index:idx_files_owner_parent" bson:"parentId"`
	IsPublic bool     `gorm:"not null;default:false" bson:"isPublic"`

	// Location of the content in the blob store, empty for folders
	LocalPath string `bson:"localPath,omitempty"`
}

// fileView is what clients get to see. localPath never leaves the server.
type fileView struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Type     FileType `json:"type"`
	IsPublic bool     `json:"isPublic"`
	ParentID any      `json:"parentId"`
}

func (f File) MarshalJSON() ([]byte, error) {
	var parent any = 0
	if !f.ParentID.IsZero() {
		parent = f.ParentID.String()
	}

	return json.Marshal(fileView{
		ID:       f.ID.String(),
		UserID:   f.UserID.String(),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: parent,
	})
}
