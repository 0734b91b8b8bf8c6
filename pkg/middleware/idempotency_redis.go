package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"adhub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "adhub:idempotency:"

// RedisIdempotencyStore shares cached responses between API replicas. Redis
// failures degrade to a cache miss.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("idempotency cache read failed", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("idempotency cache entry is corrupt", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("failed to encode idempotent response", "error", err)
		return
	}
	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("idempotency cache write failed", "error", err)
	}
}

// Stop is a no-op; the client is owned and closed by pkg/client.
func (s *RedisIdempotencyStore) Stop() {}
