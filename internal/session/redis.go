package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/files-api/internal/apperr"

	"github.com/redis/go-redis/v9"
)

type RedisOpts struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	c *redis.Client
}

// NewRedis connects to redis and checks that it answers
func NewRedis(ctx context.Context, o RedisOpts) (*Redis, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to reach redis at %s, %w", o.Addr, err)
	}

	return &Redis{c: c}, nil
}

func (r *Redis) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.ErrNotFound
		}

		return "", err
	}

	return v, nil
}

func (r *Redis) Del(ctx context.Context, key string) (bool, error) {
	n, err := r.c.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.c.Close()
}
