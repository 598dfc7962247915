// Package session maps opaque login tokens to user ids. The mapping lives in
// an external cache which also enforces the expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/pkg/security"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "auth_"
)

// Cache is the small subset of a key-value cache sessions need
type Cache interface {
	// SetEx stores value under key for ttl
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns apperr.ErrNotFound for absent or expired keys
	Get(ctx context.Context, key string) (string, error)
	// Del reports whether the key existed
	Del(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type Store struct {
	cache Cache
	ttl   time.Duration
}

func NewStore(c Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{cache: c, ttl: ttl}
}

// Create starts a session for userID and returns its token
func (s *Store) Create(ctx context.Context, userID model.RecordID) (string, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token, %w", err)
	}

	if err := s.cache.SetEx(ctx, keyPrefix+token, userID.String(), s.ttl); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	return token, nil
}

// Resolve returns the user behind token. The expiry is never extended.
func (s *Store) Resolve(ctx context.Context, token string) (model.RecordID, error) {
	if token == "" {
		return model.RecordID{}, apperr.ErrNotFound
	}

	v, err := s.cache.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.RecordID{}, apperr.ErrNotFound
		}

		return model.RecordID{}, fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	id, err := model.ParseRecordID(v)
	if err != nil {
		// Garbage under our key is as good as no session
		return model.RecordID{}, apperr.ErrNotFound
	}

	return id, nil
}

// Revoke deletes the session. Revoking an unknown token is not an error,
// existed tells the caller whether there was anything to delete.
func (s *Store) Revoke(ctx context.Context, token string) (existed bool, err error) {
	if token == "" {
		return false, nil
	}

	existed, err = s.cache.Del(ctx, keyPrefix+token)
	if err != nil {
		return false, fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	return existed, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func (s *Store) Close() error {
	return s.cache.Close()
}
