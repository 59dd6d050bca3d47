package orders

import (
	"context"
	"time"
)

// EventType names a lifecycle change.
type EventType string

const (
	EventCreated       EventType = "order.created"
	EventStatusChanged EventType = "order.status_changed"
)

// Event is emitted after a write has been persisted.
type Event struct {
	Type  EventType
	Order Order
	At    time.Time
}

// EventSink receives lifecycle events. Sinks run after the write, so a sink
// failure never undoes it.
type EventSink interface {
	OrderEvent(ctx context.Context, ev Event) error
}
