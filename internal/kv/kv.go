// Package kv is the key-value store that holds orders, catalog and settings.
//
// Values are JSON documents. The store does no schema enforcement; callers
// validate. Writes are last-write-wins with no optimistic locking, and no
// operation is retried.
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

// Store is a persistent mapping from string keys to JSON values.
type Store interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	// GetByPrefix returns the values of all keys starting with prefix, in no
	// particular order. Each matching key contributes exactly one value.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
	// Keys returns all keys starting with prefix, without duplicates.
	Keys(ctx context.Context, prefix string) ([]string, error)
	DeleteMany(ctx context.Context, keys []string) (int, error)
}

// GetJSON decodes the value at key into out. It reports false when key is absent.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, apperr.Storage("decode "+key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
