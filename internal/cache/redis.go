package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each entry as a JSON envelope under prefix+key. Redis
// expiry is set to maxAge so stale keys disappear without a sweep.
type RedisStore struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, prefix string, maxAge time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(client, prefix, maxAge), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string, maxAge time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "symptom-insight:"
	}
	return &RedisStore{client: client, prefix: prefix, maxAge: maxAge}
}

// Load reads the entry for key.
func (s *RedisStore) Load(ctx context.Context, key string) (Entry, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		// Remove corrupted cache entry
		s.client.Del(ctx, s.prefix+key)
		return Entry{}, &CorruptEntryError{Key: key, Err: err}
	}
	return entry, nil
}

// Save writes the entry with a single SET, which Redis applies atomically.
func (s *RedisStore) Save(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+entry.Key, data, s.maxAge).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Clear deletes every key under the store prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	return nil
}

// Ping checks if the Redis connection is alive
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
