package deliveries

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims webhook message ids so a redelivered message is applied once.
type Store interface {
	// Claim returns true when id was not seen within ttl.
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Release forgets id so the provider's next retry is processed.
	Release(ctx context.Context, id string) error
}

// RedisStore implements Store with SET NX under "<prefix><id>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. Prefix may be empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "webhook:delivery:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.client.SetNX(ctx, r.key(id), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r *RedisStore) Release(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// NopStore accepts every delivery. Used when Redis is not configured.
type NopStore struct{}

func (NopStore) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopStore) Release(context.Context, string) error                      { return nil }
