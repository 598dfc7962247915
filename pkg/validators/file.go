package validators

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"bitwise74/files-api/internal/model"
)

var (
	ErrNameMissing  = errors.New("Missing name")
	ErrTypeMissing  = errors.New("Missing type")
	ErrDataMissing  = errors.New("Missing data")
	ErrDataInvalid  = errors.New("Invalid data")
	ErrNameTooLong  = errors.New("Name is too long")
	ErrSizeInvalid  = errors.New("Invalid size")
	ErrParentFormat = errors.New("Parent not found")
)

// Room is left for the _<width> suffix of thumbnails
const maxFileNameSize = 245

// UploadValidator checks the fields of an upload in order and stops at the
// first problem. For files and images the decoded content is returned.
func UploadValidator(name, typ, data string) (model.FileType, []byte, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil, ErrNameMissing
	}

	if len(name) > maxFileNameSize {
		return "", nil, ErrNameTooLong
	}

	t := model.FileType(typ)
	if !t.Valid() {
		return "", nil, ErrTypeMissing
	}

	if !t.HasContent() {
		return t, nil, nil
	}

	if data == "" {
		return "", nil, ErrDataMissing
	}

	content, err := decodeBase64(data)
	if err != nil {
		return "", nil, ErrDataInvalid
	}

	return t, content, nil
}

// decodeBase64 accepts padded and unpadded standard encodings, with or
// without line breaks
func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(s))

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// ParentValidator parses the parentId of an upload. Anything that can't be
// an id can't name an existing folder either.
func ParentValidator(v any) (model.RecordID, error) {
	id, err := model.ParseParentID(v)
	if err != nil {
		return model.RecordID{}, ErrParentFormat
	}

	return id, nil
}

// SizeValidator checks the thumbnail width requested on download. An empty
// size means the original content.
func SizeValidator(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	for _, w := range model.ThumbnailWidths {
		if s == strconv.Itoa(w) {
			return w, nil
		}
	}

	return 0, ErrSizeInvalid
}
