// Package events publishes order lifecycle changes to the fulfillment queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imrishuroy/topup-storefront/internal/orders"
)

// Message is the queue payload for one lifecycle change.
type Message struct {
	Type        orders.EventType `json:"type"`
	OrderID     string           `json:"orderId"`
	Status      orders.Status    `json:"status"`
	TotalAmount float64          `json:"totalAmount"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// FromEvent flattens a repository event.
func FromEvent(ev orders.Event) Message {
	return Message{
		Type:        ev.Type,
		OrderID:     ev.Order.ID,
		Status:      ev.Order.Status,
		TotalAmount: ev.Order.TotalAmount,
		OccurredAt:  ev.At.UTC(),
	}
}

// Sender delivers a message body with string attributes.
type Sender interface {
	SendMessage(ctx context.Context, body string, attributes map[string]string) error
}

// QueueSink is an orders.EventSink that forwards events to a queue.
type QueueSink struct {
	sender Sender
}

// NewQueueSink wraps sender, typically an *aws.Publisher.
func NewQueueSink(sender Sender) *QueueSink {
	return &QueueSink{sender: sender}
}

func (s *QueueSink) OrderEvent(ctx context.Context, ev orders.Event) error {
	msg := FromEvent(ev)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.sender.SendMessage(ctx, string(body), map[string]string{
		"event_type": string(msg.Type),
		"order_id":   msg.OrderID,
	})
}
