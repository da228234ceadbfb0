package widget

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"chatrelay/internal/database"
)

const redisKeyPrefix = "chatrelay:"

// RedisStore lets several chat clients on one machine or kiosk share settings.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// OpenStore picks a backend from its location: redis:// and rediss:// URLs
// open a RedisStore, anything else is a file path.
func OpenStore(location string) (Store, error) {
	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		client, err := database.NewRedisClient(location)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil
	}
	return NewFileStore(location), nil
}
