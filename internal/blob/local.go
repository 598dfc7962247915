package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps blobs as flat files under a root directory
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob root, %w", err)
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s, %w", root, err)
	}

	return &Local{root: root}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Locate(id string) string {
	return filepath.Join(l.root, id)
}

// check makes sure location is a plain file directly inside the root
func (l *Local) check(location string) (string, error) {
	p := filepath.Clean(location)
	if filepath.Dir(p) != l.root || strings.HasPrefix(filepath.Base(p), ".") {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocation, location)
	}

	return p, nil
}

// Put writes into a temp file first and renames it over the destination
// so readers never see a partial blob.
func (l *Local) Put(ctx context.Context, location string, r io.Reader) error {
	p, err := l.check(location)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(l.root, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file, %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync blob, %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close blob, %w", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move blob into place, %w", err)
	}

	return nil
}

func (l *Local) Open(_ context.Context, location string) (io.ReadCloser, error) {
	p, err := l.check(location)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}

		return nil, fmt.Errorf("failed to open blob %s, %w", location, err)
	}

	return f, nil
}

func (l *Local) Delete(_ context.Context, location string) error {
	p, err := l.check(location)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s, %w", location, err)
	}

	return nil
}

func (l *Local) Ping(context.Context) error {
	_, err := os.Stat(l.root)
	return err
}
