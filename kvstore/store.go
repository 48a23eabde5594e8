// Package kvstore provides the key-value stores the library state is saved in.
package kvstore

import (
	"context"
	"fmt"
)

// Store is a process-local key-value store. Each call is atomic on its own.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Entry is one key/value pair of a batch write.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by stores that can write several keys all-or-nothing.
type Batcher interface {
	SetMany(ctx context.Context, entries []Entry) error
}

// SetAll writes entries in one batch when s supports it and one by one otherwise.
func SetAll(ctx context.Context, s Store, entries []Entry) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, entries)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			return fmt.Errorf("set %q: %w", e.Key, err)
		}
	}
	return nil
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	SQLitePath string
	Redis      RedisOptions
}

// Open creates the store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		return NewSQLiteStore(opts.SQLitePath)
	case BackendRedis:
		return NewRedisStore(opts.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
