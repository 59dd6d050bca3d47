package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/kv"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

type recordingSink struct {
	events []orders.Event
	err    error
}

func (s *recordingSink) OrderEvent(ctx context.Context, ev orders.Event) error {
	s.events = append(s.events, ev)
	return s.err
}

var fixedNow = time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)

func newRepo(t *testing.T, opts ...orders.Option) (*orders.Repository, kv.Store) {
	t.Helper()
	store, err := kv.OpenBadger("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	opts = append([]orders.Option{orders.WithClock(func() time.Time { return fixedNow })}, opts...)
	return orders.NewRepository(store, validation.NewOrderValidator(), opts...), store
}

func draft(id string) orders.Order {
	return orders.Order{
		ID: id,
		Items: []orders.OrderItem{
			{GameID: "ml-ph", GameName: "Mobile Legends", PlayerID: "12345", Server: "6789", ProductID: "ml-86", ProductName: "86 Diamonds", Price: 95, Quantity: 2},
		},
		TotalAmount:         190,
		ReceiptAssetID:      "private:1704097800000-receipt.png",
		CustomerPaymentName: "Maria",
		OrderMethod:         orders.MethodMessenger,
	}
}

func TestCreate_FillsDefaults(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	o, err := repo.Create(ctx, draft(""))
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, o.ID)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "2024-01-01T08:30:00.000Z", o.Timestamp)

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestCreate_KeepsTimestamp(t *testing.T) {
	repo, _ := newRepo(t)
	d := draft("ORD-1")
	d.Timestamp = "2023-12-31T23:59:59.000Z"
	o, err := repo.Create(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31T23:59:59.000Z", o.Timestamp)
}

func TestCreate_IsUpsert(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, draft("ORD-1"))
	require.NoError(t, err)
	second := draft("ORD-1")
	second.CustomerPaymentName = "Pedro"
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pedro", all[0].CustomerPaymentName)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()

	d := draft("ORD-1")
	d.TotalAmount = 10
	_, err := repo.Create(ctx, d)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)

	d = draft("ORD-2")
	d.Status = orders.StatusApproved
	_, err = repo.Create(ctx, d)
	require.ErrorAs(t, err, &ve)

	for _, ts := range []string{"not-a-date", "2024-01-01", "01/02/2024 10:00"} {
		d = draft("ORD-TS")
		d.Timestamp = ts
		_, err = repo.Create(ctx, d)
		require.ErrorAs(t, err, &ve, ts)
		assert.Equal(t, "timestamp", ve.Field)
	}

	vals, err := store.GetByPrefix(ctx, orders.KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, vals, "invalid orders must not be stored")
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.Get(context.Background(), "ORD-404")
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ORD-404", nf.ID)
}

func TestUpdateStatus(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, draft("ORD-1"))
	require.NoError(t, err)

	note := "credited 172 diamonds"
	updated, err := repo.UpdateStatus(ctx, "ORD-1", orders.StatusPatch{Status: orders.StatusApproved, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusApproved, updated.Status)
	assert.Equal(t, note, updated.Note)

	// nothing else changes
	updated.Status, updated.Note = created.Status, created.Note
	assert.Equal(t, created, updated)

	got, err := repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusApproved, got.Status)

	// a nil note keeps the stored one
	got, err = repo.UpdateStatus(ctx, "ORD-1", orders.StatusPatch{Status: orders.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusRejected, got.Status)
	assert.Equal(t, note, got.Note)

	// terminal orders can go back to pending
	got, err = repo.UpdateStatus(ctx, "ORD-1", orders.StatusPatch{Status: orders.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
}

func TestUpdateStatus_Errors(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.UpdateStatus(ctx, "ORD-404", orders.StatusPatch{Status: orders.StatusApproved})
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = repo.Create(ctx, draft("ORD-1"))
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "ORD-1", orders.StatusPatch{Status: "shipped"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDeleteAll(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := repo.Create(ctx, draft(fmt.Sprintf("ORD-%d", i)))
		require.NoError(t, err)
	}
	require.NoError(t, kv.SetJSON(ctx, store, "catalog", []string{}))

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	raw, err := store.Get(ctx, "catalog")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	n, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListAll_CorruptRecord(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "order:bad", json.RawMessage(`"not an order"`)))

	_, err := repo.ListAll(ctx)
	var se *apperr.StorageError
	require.ErrorAs(t, err, &se)
}

func TestEvents(t *testing.T) {
	sink := &recordingSink{err: errors.New("queue down")}
	repo, _ := newRepo(t, orders.WithEventSink(sink))
	ctx := context.Background()

	// sink failures do not fail the write
	_, err := repo.Create(ctx, draft("ORD-1"))
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "ORD-1", orders.StatusPatch{Status: orders.StatusApproved})
	require.NoError(t, err)

	require.Len(t, sink.events, 2)
	assert.Equal(t, orders.EventCreated, sink.events[0].Type)
	assert.Equal(t, orders.EventStatusChanged, sink.events[1].Type)
	assert.Equal(t, orders.StatusApproved, sink.events[1].Order.Status)
	assert.Equal(t, fixedNow, sink.events[1].At)
}

func TestSortNewestFirst(t *testing.T) {
	list := []orders.Order{
		{ID: "a", Timestamp: "2024-01-02T00:00:00.000Z"},
		{ID: "b", Timestamp: ""},
		{ID: "c", Timestamp: "2024-01-03T00:00:00Z"},
		{ID: "d", Timestamp: "2024-01-01T12:00:00.5Z"},
	}
	orders.SortNewestFirst(list)
	ids := make([]string, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids)
}
