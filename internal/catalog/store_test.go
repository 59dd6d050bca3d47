package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/kv"
	"github.com/imrishuroy/topup-storefront/internal/orders"
)

func newStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()
	b, err := kv.OpenBadger("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return NewStore(b), b
}

func TestDefaults(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	games, err := s.Games(ctx)
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)

	payments, err := s.Payments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, payments)
	assert.Empty(t, payments)

	st, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), st)
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	first := []Game{
		{ID: "genshin", Name: "Genshin Impact", ServerLabel: "", Products: []Product{{ID: "gi-60", Name: "60 Crystals", Price: 49, Genesis: true}}},
		{ID: "hsr", Name: "Honkai: Star Rail", ServerLabel: "Express", Products: []Product{}},
	}
	require.NoError(t, s.SaveGames(ctx, first))
	require.NoError(t, s.SaveGames(ctx, first[1:]))

	got, err := s.Games(ctx)
	require.NoError(t, err)
	assert.Equal(t, first[1:], got)
	assert.Equal(t, map[string]string{"hsr": "Express"}, ServerLabels(got))

	require.NoError(t, s.SavePayments(ctx, []Payment{{ID: "gcash", Name: "GCash", AccountNumber: "0917"}}))
	p, err := s.Payments(ctx)
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Equal(t, "0917", p[0].AccountNumber)

	require.NoError(t, s.SaveSettings(ctx, Settings{OrderMethod: orders.MethodPlaceOrder}))
	st, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, orders.MethodPlaceOrder, st.OrderMethod)
	assert.Equal(t, []string{}, st.Banners)
}

func TestStorageFailure(t *testing.T) {
	b, err := kv.OpenBadger("", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	s := NewStore(b)

	_, err = s.Games(context.Background())
	var se *apperr.StorageError
	require.True(t, errors.As(err, &se), "got %v", err)
}
