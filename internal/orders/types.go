package orders

import (
	"time"
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Method is how the customer hands the order to the shop.
type Method string

const (
	MethodMessenger  Method = "messenger"
	MethodPlaceOrder Method = "place_order"
)

// OrderItem is one purchased product for one recipient account. Cart items
// share the same shape.
type OrderItem struct {
	GameID      string  `json:"gameId" validate:"required"`
	GameName    string  `json:"gameName" validate:"required"`
	PlayerID    string  `json:"playerId"`
	Server      string  `json:"server"`
	IGN         string  `json:"ign,omitempty"`
	ProductID   string  `json:"productId" validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"min=1"`
}

// Subtotal is price times quantity.
func (it OrderItem) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

// Order is a persisted customer purchase.
type Order struct {
	ID                  string      `json:"id" validate:"required"`
	Items               []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount         float64     `json:"totalAmount" validate:"gte=0"`
	ReceiptAssetID      string      `json:"receiptAssetId" validate:"required"`
	Status              Status      `json:"status" validate:"oneof=pending approved rejected"`
	Note                string      `json:"note,omitempty"`
	Timestamp           string      `json:"timestamp" validate:"required,timestamp"`
	CustomerPaymentName string      `json:"customerPaymentName" validate:"required"`
	OrderMethod         Method      `json:"orderMethod" validate:"oneof=messenger place_order"`
}

// StatusPatch is the only change UpdateStatus applies. A nil Note keeps the
// stored note.
type StatusPatch struct {
	Status Status
	Note   *string
}

// TimestampLayout matches JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts RFC3339 with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Time returns the parsed order timestamp.
func (o Order) Time() (time.Time, bool) {
	return ParseTimestamp(o.Timestamp)
}
