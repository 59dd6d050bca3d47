package sales

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/topup-storefront/internal/orders"
)

func order(status orders.Status, total float64, ts string) orders.Order {
	return orders.Order{Status: status, TotalAmount: total, Timestamp: ts}
}

var now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestCompute_DailyCountsApprovedOnly(t *testing.T) {
	r := Compute([]orders.Order{
		order(orders.StatusPending, 100, "2024-01-01T03:00:00.000Z"),
		order(orders.StatusApproved, 50, "2024-01-01T09:00:00.000Z"),
	}, "2024-01-01", "2024-01", now)

	assert.Equal(t, 50.0, r.DailyTotal)
	assert.Equal(t, 50.0, r.MonthlyTotal)
	assert.Equal(t, []Bucket{{Date: "2024-01-01", Amount: 50}}, r.Trend)
}

func TestCompute_NonApprovedStillCreateBuckets(t *testing.T) {
	r := Compute([]orders.Order{
		order(orders.StatusRejected, 80, "2024-01-02T00:00:00Z"),
		order(orders.StatusPending, 20, "2024-01-03T00:00:00Z"),
		order(orders.StatusApproved, 10, "2024-01-03T05:00:00Z"),
	}, "2024-01-02", "2024-01", now)

	assert.Zero(t, r.DailyTotal)
	assert.Equal(t, 10.0, r.MonthlyTotal)
	assert.Equal(t, []Bucket{{"2024-01-02", 0}, {"2024-01-03", 10}}, r.Trend)
}

func TestCompute_TrendKeepsLastSevenDates(t *testing.T) {
	var list []orders.Order
	// 10 orders over 9 distinct dates, inserted newest first
	for d := 9; d >= 1; d-- {
		list = append(list, order(orders.StatusApproved, float64(d), fmt.Sprintf("2024-02-%02dT12:00:00Z", d)))
	}
	list = append(list, order(orders.StatusApproved, 100, "2024-02-05T01:00:00Z"))

	r := Compute(list, "2024-02-09", "2024-02", now)
	require.Len(t, r.Trend, 7)
	for i, b := range r.Trend {
		assert.Equal(t, fmt.Sprintf("2024-02-%02d", i+3), b.Date)
	}
	assert.Equal(t, 105.0, r.Trend[2].Amount)
	assert.Equal(t, 9.0, r.DailyTotal)
	assert.Equal(t, 145.0, r.MonthlyTotal)
}

func TestCompute_MissingTimestampUsesNow(t *testing.T) {
	r := Compute([]orders.Order{
		order(orders.StatusApproved, 30, ""),
		order(orders.StatusApproved, 5, "garbage"),
	}, "2024-01-15", "2024-01", now)

	assert.Equal(t, 35.0, r.DailyTotal)
	assert.Equal(t, []Bucket{{"2024-01-15", 35}}, r.Trend)
}

func TestCompute_DatesAreUTC(t *testing.T) {
	// 07:30 in Manila on Jan 2 is still Jan 1 in UTC
	r := Compute([]orders.Order{
		order(orders.StatusApproved, 40, "2024-01-02T07:30:00+08:00"),
	}, "2024-01-01", "2024-01", now)
	assert.Equal(t, 40.0, r.DailyTotal)
	assert.Equal(t, "2024-01-01", r.Trend[0].Date)
}

func TestCompute_MonthFilter(t *testing.T) {
	r := Compute([]orders.Order{
		order(orders.StatusApproved, 10, "2023-12-31T23:59:59Z"),
		order(orders.StatusApproved, 20, "2024-01-01T00:00:00Z"),
	}, "2024-01-01", "2023-12", now)
	assert.Equal(t, 10.0, r.MonthlyTotal)
	assert.Equal(t, 20.0, r.DailyTotal)
}

func TestCompute_Empty(t *testing.T) {
	r := Compute(nil, "2024-01-01", "2024-01", now)
	assert.Zero(t, r.DailyTotal)
	assert.NotNil(t, r.Trend)
	assert.Empty(t, r.Trend)
}

func TestTodayAndValidators(t *testing.T) {
	d, m := Today(time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("PHT", 8*3600)))
	assert.Equal(t, "2024-02-29", d)
	assert.Equal(t, "2024-02", m)
	assert.True(t, ValidMonth("2024-02"))
	assert.False(t, ValidMonth("2024-2"))
	assert.True(t, ValidDate("2024-02-29"))
	assert.False(t, ValidDate("2023-02-29"))
}
