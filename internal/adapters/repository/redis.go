package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix     = "meetglobe"
	defaultRedisMaxRetries = 16
	scanBatch              = 256
)

// RedisStore keeps records as plain string values keyed
// prefix:collection:key. Update uses WATCH/MULTI so concurrent writers from
// several processes never lose each other's changes.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
}

// NewRedisStore connects to the given redis:// URL and pings it.
func NewRedisStore(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, opts...), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix, maxRetries: defaultRedisMaxRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	if err := checkKey(collection, key); err != nil {
		return nil, err
	}
	b, err := s.client.Get(ctx, s.key(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, collection, key string, data []byte) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(collection, key), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, collection, key string) (bool, error) {
	if err := checkKey(collection, key); err != nil {
		return false, err
	}
	n, err := s.client.Del(ctx, s.key(collection, key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, collection string) ([]Record, error) {
	if !validName(collection) {
		return nil, wrapInvalid("collection", collection)
	}
	base := s.prefix + ":" + collection + ":"
	var keys []string
	iter := s.client.Scan(ctx, 0, base+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	out := make([]Record, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		out = append(out, Record{Key: strings.TrimPrefix(keys[i], base), Data: []byte(str)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update implements Store.
func (s *RedisStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	k := s.key(collection, key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}
	for range s.maxRetries {
		err := s.client.Watch(ctx, txf, k)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNoChange):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return err
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrConflict, collection, key)
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(collection, key string) string {
	return s.prefix + ":" + collection + ":" + key
}
