package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

// BadgerStore is an embedded store for local runs and tests.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a store under dir, or an in-memory store when dir is empty.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{logger.Sugar().Named("badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperr.Storage("open badger", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var out json.RawMessage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get "+key, err)
	}
	return out, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return apperr.Storage("set "+key, err)
}

func (s *BadgerStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	var values []json.RawMessage
	err := s.iterate(prefix, true, func(item *badger.Item) error {
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("scan "+prefix, err)
	}
	return values, nil
}

func (s *BadgerStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.iterate(prefix, false, func(item *badger.Item) error {
		keys = append(keys, string(item.KeyCopy(nil)))
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("scan "+prefix, err)
	}
	return keys, nil
}

func (s *BadgerStore) iterate(prefix string, values bool, fn func(*badger.Item) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = values
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := fn(it.Item()); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMany removes keys in one transaction and counts the ones that existed.
func (s *BadgerStore) DeleteMany(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		deleted = 0
		for _, k := range keys {
			_, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Storage("delete", err)
	}
	return deleted, nil
}

// badgerLogger routes badger's printf-style logging into zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Error(trim(f, v)) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warn(trim(f, v)) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debug(trim(f, v)) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debug(trim(f, v)) }

func trim(f string, v []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(f, v...), "\n")
}
