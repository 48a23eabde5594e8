package kvstore

import (
	"context"
	"fmt"

	"gopkg.in/redis.v5"
)

// RedisOptions configures a RedisStore. Prefix namespaces every key so several
// libraries can share one database.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps values as plain Redis strings.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the server in opts and pings it once.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	value, err := r.client.Get(r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.client.Set(r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// SetMany writes all entries inside one MULTI/EXEC block.
func (r *RedisStore) SetMany(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(func(pipe *redis.Pipeline) error {
		for _, e := range entries {
			pipe.Set(r.key(e.Key), e.Value, 0)
		}
		return nil
	})
	return err
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.client.Del(r.key(key)).Err()
}

// Clear removes the keys under this store's prefix only.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keys, err := r.client.Keys(r.prefix + "*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(keys...).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }
