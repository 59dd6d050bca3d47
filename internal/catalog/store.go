// Package catalog holds the shop configuration documents. Each document is
// read and written whole; there are no partial updates.
package catalog

import (
	"context"

	"github.com/imrishuroy/topup-storefront/internal/kv"
)

const (
	keyCatalog  = "catalog"
	keyPayments = "payments"
	keySettings = "site_settings"
)

// document is one JSON value at a fixed key with a default for when it has
// never been saved.
type document[T any] struct {
	store kv.Store
	key   string
	def   func() T
}

func (d document[T]) load(ctx context.Context) (T, error) {
	var v T
	ok, err := kv.GetJSON(ctx, d.store, d.key, &v)
	if err != nil || !ok {
		return d.def(), err
	}
	return v, nil
}

func (d document[T]) save(ctx context.Context, v T) error {
	return kv.SetJSON(ctx, d.store, d.key, v)
}

// Store reads and replaces the catalog, payment methods and site settings.
type Store struct {
	games    document[[]Game]
	payments document[[]Payment]
	settings document[Settings]
}

// NewStore creates a Store over s.
func NewStore(s kv.Store) *Store {
	return &Store{
		games:    document[[]Game]{store: s, key: keyCatalog, def: func() []Game { return []Game{} }},
		payments: document[[]Payment]{store: s, key: keyPayments, def: func() []Payment { return []Payment{} }},
		settings: document[Settings]{store: s, key: keySettings, def: DefaultSettings},
	}
}

func (s *Store) Games(ctx context.Context) ([]Game, error) {
	g, err := s.games.load(ctx)
	if g == nil && err == nil {
		g = []Game{}
	}
	return g, err
}

func (s *Store) SaveGames(ctx context.Context, games []Game) error {
	return s.games.save(ctx, games)
}

func (s *Store) Payments(ctx context.Context) ([]Payment, error) {
	p, err := s.payments.load(ctx)
	if p == nil && err == nil {
		p = []Payment{}
	}
	return p, err
}

func (s *Store) SavePayments(ctx context.Context, payments []Payment) error {
	return s.payments.save(ctx, payments)
}

func (s *Store) Settings(ctx context.Context) (Settings, error) {
	st, err := s.settings.load(ctx)
	if st.Banners == nil {
		st.Banners = []string{}
	}
	return st, err
}

func (s *Store) SaveSettings(ctx context.Context, st Settings) error {
	if st.Banners == nil {
		st.Banners = []string{}
	}
	return s.settings.save(ctx, st)
}
