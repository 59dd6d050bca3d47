package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/kv"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestCLI(t *testing.T) (*cli, *orders.Repository) {
	t.Helper()
	color.NoColor = true

	store, err := kv.OpenBadger("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := orders.NewRepository(store, validation.NewOrderValidator())
	c := &cli{
		open: func(ctx context.Context) (orderStore, func(), error) {
			return repo, func() {}, nil
		},
		now: func() time.Time { return fixedNow },
	}
	return c, repo
}

func seed(t *testing.T, repo *orders.Repository, id, ts string, total float64, status orders.Status) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.Create(ctx, orders.Order{
		ID: id,
		Items: []orders.OrderItem{{
			GameID: "codm", GameName: "CODM", ProductID: "cp", ProductName: "CP", Price: total, Quantity: 1,
		}},
		TotalAmount:         total,
		ReceiptAssetID:      "private:r.png",
		Timestamp:           ts,
		CustomerPaymentName: "Leo",
		OrderMethod:         orders.MethodMessenger,
	})
	require.NoError(t, err)
	if status != orders.StatusPending {
		_, err = repo.UpdateStatus(ctx, id, orders.StatusPatch{Status: status})
		require.NoError(t, err)
	}
}

func run(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(c)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOrdersList(t *testing.T) {
	c, repo := newTestCLI(t)
	seed(t, repo, "ORD-OLD", "2024-03-01T08:00:00.000Z", 1250, orders.StatusApproved)
	seed(t, repo, "ORD-NEW", "2024-03-15T08:00:00.000Z", 95, orders.StatusPending)

	out, err := run(t, c, "orders", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "ORD-NEW"))
	assert.Contains(t, lines[2], "₱1,250")

	out, err = run(t, c, "orders", "list", "--status", "approved")
	require.NoError(t, err)
	assert.NotContains(t, out, "ORD-NEW")
	assert.Contains(t, out, "ORD-OLD")

	_, err = run(t, c, "orders", "list", "--status", "lost")
	require.Error(t, err)
}

func TestOrdersGetAndSetStatus(t *testing.T) {
	c, repo := newTestCLI(t)
	seed(t, repo, "ORD-1", "2024-03-15T08:00:00.000Z", 95, orders.StatusPending)

	out, err := run(t, c, "orders", "set-status", "ORD-1", "rejected", "--note", "wrong ID")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1 is now rejected\n", out)

	out, err = run(t, c, "orders", "get", "ORD-1")
	require.NoError(t, err)
	var o orders.Order
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Equal(t, orders.StatusRejected, o.Status)
	assert.Equal(t, "wrong ID", o.Note)

	_, err = run(t, c, "orders", "get", "ORD-404")
	require.ErrorContains(t, err, "not found")
}

func TestOrdersPurgeNeedsConfirmation(t *testing.T) {
	c, repo := newTestCLI(t)
	seed(t, repo, "ORD-1", "2024-03-15T08:00:00.000Z", 95, orders.StatusPending)
	seed(t, repo, "ORD-2", "2024-03-15T09:00:00.000Z", 95, orders.StatusPending)

	_, err := run(t, c, "orders", "purge")
	require.ErrorContains(t, err, "--yes")

	out, err := run(t, c, "orders", "purge", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "deleted 2 orders\n", out)

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSales(t *testing.T) {
	c, repo := newTestCLI(t)
	seed(t, repo, "ORD-1", "2024-03-15T01:00:00.000Z", 1000, orders.StatusApproved)
	seed(t, repo, "ORD-2", "2024-03-10T01:00:00.000Z", 250.5, orders.StatusApproved)
	seed(t, repo, "ORD-3", "2024-03-15T02:00:00.000Z", 999, orders.StatusRejected)

	out, err := run(t, c, "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily (2024-03-15):   ₱1,000\n")
	assert.Contains(t, out, "Monthly (2024-03): ₱1,250.5\n")
	assert.Contains(t, out, "  2024-03-10  ₱250.5\n")

	out, err = run(t, c, "sales", "--today", "2024-03-10", "--month", "2024-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily (2024-03-10):   ₱250.5\n")
	assert.Contains(t, out, "Monthly (2024-02): ₱0\n")

	_, err = run(t, c, "sales", "--month", "March")
	require.Error(t, err)
}
