package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jot/internal/storage"
)

// Store implements storage.Storage on plain Redis strings.
// Keys never expire: the notebook is the only copy of the data.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore wraps an already connected client.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value, storage.ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, Key(s.prefix, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value without TTL.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, Key(s.prefix, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, Key(s.prefix, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every storage key under the prefix.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if k, ok := ExtractKey(s.prefix, iter.Val()); ok {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}

// Ping checks the connection; used by the readiness report.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
