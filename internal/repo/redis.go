package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// redisKeyPrefix namespaces the selection key in a shared Redis database.
const redisKeyPrefix = "tripsync:"

// RedisStore is the Redis SelectionStore. The value never expires.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client. The caller keeps ownership.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedisStore connects using a redis:// URL and pings the server.
func OpenRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenRedisStore: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("repo.OpenRedisStore: ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	id, err := s.client.Get(ctx, redisKeyPrefix+SelectionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("repo.RedisStore.Get: %w", err)
	}
	return id, true, nil
}

func (s *RedisStore) Set(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+SelectionKey, id, 0).Err(); err != nil {
		return fmt.Errorf("repo.RedisStore.Set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
