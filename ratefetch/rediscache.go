package ratefetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces the fetcher's keys in a shared Redis.
const DefaultKeyPrefix = "LEU_RATES_"

// RedisCache stores entries as JSON strings in Redis.
type RedisCache struct {
	Client *redis.Client
	Prefix string

	// Expiration is passed to SET; zero keeps the key forever. The
	// publication window decides freshness either way, so this only
	// bounds how long stale documents linger.
	Expiration time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, expiration time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCache{
		Client:     client,
		Prefix:     prefix,
		Expiration: expiration,
	}
}

func (r *RedisCache) Load(ctx context.Context, key string) (*Entry, error) {
	val, err := r.Client.Get(ctx, r.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.Prefix+key, err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, fmt.Errorf("decoding cached entry %s: %w", r.Prefix+key, err)
	}
	return &e, nil
}

func (r *RedisCache) Save(ctx context.Context, entry *Entry, key string) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, r.Prefix+key, string(data), r.Expiration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.Prefix+key, err)
	}
	return nil
}
