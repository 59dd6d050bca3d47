package kv

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

const scanCount = 100

// RedisStore keeps each entry as a plain string value.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient dials addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperr.Storage("ping redis", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get "+key, err)
	}
	return json.RawMessage(val), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	return apperr.Storage("set "+key, s.client.Set(ctx, key, []byte(value), 0).Err())
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := uniqueKeys(ctx, s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanCount).Iterator())
	if err != nil {
		return nil, apperr.Storage("scan "+prefix, err)
	}
	return keys, nil
}

// keyIterator is the part of *redis.ScanIterator that uniqueKeys reads.
type keyIterator interface {
	Next(ctx context.Context) bool
	Val() string
	Err() error
}

// uniqueKeys drains it. SCAN may return a key more than once, so repeats are
// dropped and first-seen order is kept.
func uniqueKeys(ctx context.Context, it keyIterator) ([]string, error) {
	var keys []string
	seen := map[string]struct{}{}
	for it.Next(ctx) {
		k := it.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperr.Storage("mget "+prefix, err)
	}
	out := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		// deleted between SCAN and MGET
		str, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, json.RawMessage(str))
	}
	return out, nil
}

func (s *RedisStore) DeleteMany(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, apperr.Storage("delete", err)
	}
	return int(n), nil
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
