package session

import (
	"context"
	"errors"
	"time"

	"bitwise74/files-api/internal/apperr"

	"github.com/jellydator/ttlcache/v2"
)

// Memory keeps sessions in process. Only suitable for a single api instance
// and for tests.
type Memory struct {
	c *ttlcache.Cache
}

func NewMemory() *Memory {
	c := ttlcache.NewCache()
	// Sessions expire on a fixed window from creation
	c.SkipTTLExtensionOnHit(true)

	return &Memory{c: c}
}

func (m *Memory) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	return m.c.SetWithTTL(key, value, ttl)
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, err := m.c.Get(key)
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return "", apperr.ErrNotFound
		}

		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", apperr.ErrNotFound
	}

	return s, nil
}

func (m *Memory) Del(_ context.Context, key string) (bool, error) {
	err := m.c.Remove(key)
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	err := m.c.Close()
	if errors.Is(err, ttlcache.ErrClosed) {
		return nil
	}

	return err
}
