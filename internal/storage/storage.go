// Package storage is the local key-value storage the notebook persists to.
//
// Values are opaque encoded text, the same shape a browser's local storage
// holds: one key per collection or preference.
package storage

import (
	"context"
	"errors"
)

// Persisted keys.
const (
	KeyNotes             = "notes"
	KeyCategories        = "categories"
	KeySelectedCategory  = "selectedCategoryId"
	KeyShowOnlyFavorites = "showOnlyFavorites"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a string key-value store. Implementations must be safe for
// concurrent use.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Kind names a storage backend in configuration.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)
