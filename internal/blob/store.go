// Package blob stores raw file content. Blobs are addressed by a location
// string the store hands out, derived renditions live next to the original
// under "<location>_<suffix>".
package blob

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("blob not found")
	ErrInvalidLocation = errors.New("location outside of the blob root")
)

type Store interface {
	// Locate returns where a blob with the given id is kept
	Locate(id string) string
	// Put writes r to location, replacing whatever was there
	Put(ctx context.Context, location string, r io.Reader) error
	// Open returns ErrNotFound if nothing is stored at location
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	// Delete is a no-op for missing blobs
	Delete(ctx context.Context, location string) error
	Ping(ctx context.Context) error
}

// NewID returns a fresh blob identifier
func NewID() string {
	return uuid.NewString()
}

// Derived returns the location of a rendition of the blob at location
func Derived(location, suffix string) string {
	return location + "_" + suffix
}

// ReadAll is a convenience wrapper around Open
func ReadAll(ctx context.Context, s Store, location string) ([]byte, error) {
	rc, err := s.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
