// Package sales computes the dashboard revenue rollups.
package sales

import (
	"sort"
	"time"

	"github.com/imrishuroy/topup-storefront/internal/orders"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// TrendDays bounds the trend series.
	TrendDays = 7
)

// Bucket is the approved revenue of one calendar day.
type Bucket struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Rollup is the dashboard summary.
type Rollup struct {
	DailyTotal   float64  `json:"dailyTotal"`
	MonthlyTotal float64  `json:"monthlyTotal"`
	Trend        []Bucket `json:"trend"`
}

// Compute rolls up approved revenue. today is a YYYY-MM-DD date and month a
// YYYY-MM month; orders without a usable timestamp are dated at now. Every
// order creates a bucket for its date; only approved orders add to it.
func Compute(list []orders.Order, today, month string, now time.Time) Rollup {
	r := Rollup{Trend: []Bucket{}}
	byDate := map[string]float64{}

	for _, o := range list {
		t, ok := o.Time()
		if !ok {
			t = now
		}
		t = t.UTC()
		date := t.Format(dateLayout)

		var amount float64
		if o.Status == orders.StatusApproved {
			amount = o.TotalAmount
		}
		byDate[date] += amount

		if date == today {
			r.DailyTotal += amount
		}
		if t.Format(monthLayout) == month {
			r.MonthlyTotal += amount
		}
	}

	for date, amount := range byDate {
		r.Trend = append(r.Trend, Bucket{Date: date, Amount: amount})
	}
	sort.Slice(r.Trend, func(i, j int) bool { return r.Trend[i].Date < r.Trend[j].Date })
	if len(r.Trend) > TrendDays {
		r.Trend = r.Trend[len(r.Trend)-TrendDays:]
	}
	return r
}

// Today returns the UTC date and month of t in the layouts Compute expects.
func Today(t time.Time) (date, month string) {
	t = t.UTC()
	return t.Format(dateLayout), t.Format(monthLayout)
}

// ValidMonth reports whether s is a YYYY-MM month.
func ValidMonth(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
