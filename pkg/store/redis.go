package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// RedisStore keeps each blob as a Redis string value.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to cfg.Addr (localhost:6379 when empty) and pings
// the server. A positive cfg.TTL expires every key written.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeIO, err, "connect to redis at %s", addr)
	}
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get reads key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			return redisError(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "redis get %s", key)
	}
	return data, nil
}

// Put writes key with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := errs.ValidateKey(key); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		return redisError(s.client.Set(ctx, key, data, s.ttl).Err())
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "redis set %s", key)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		return redisError(s.client.Del(ctx, key).Err())
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "redis del %s", key)
	}
	return nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisError marks network failures as retryable.
func redisError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return Retryable(err)
	}
	return err
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
