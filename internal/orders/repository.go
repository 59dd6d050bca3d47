package orders

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/kv"
)

// KeyPrefix namespaces order keys in the store.
const KeyPrefix = "order:"

// Validator checks an order before it is written.
type Validator interface {
	ValidateOrder(o Order) error
}

// Repository stores orders in a kv.Store and owns their status transitions.
//
// Writes are last-write-wins. Two operators updating the same order race,
// and the later Set wins without conflict detection.
type Repository struct {
	store     kv.Store
	validator Validator
	sinks     []EventSink
	logger    *zap.Logger
	nowFunc   func() time.Time
	newID     func() string
}

// Option configures a Repository.
type Option func(*Repository)

// WithEventSink adds a sink for lifecycle events.
func WithEventSink(s EventSink) Option {
	return func(r *Repository) { r.sinks = append(r.sinks, s) }
}

// WithLogger sets the logger used for sink failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.nowFunc = now }
}

// NewRepository creates a Repository.
func NewRepository(store kv.Store, v Validator, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		validator: v,
		logger:    zap.NewNop(),
		nowFunc:   time.Now,
		newID:     newOrderID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func key(id string) string { return KeyPrefix + id }

// Create validates and stores o. A missing id, status or timestamp is filled
// in; an existing order with the same id is replaced.
func (r *Repository) Create(ctx context.Context, o Order) (Order, error) {
	if o.ID == "" {
		o.ID = r.newID()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.Status != StatusPending {
		return Order{}, apperr.Validation("status", "new orders must be %s, got %q", StatusPending, o.Status)
	}
	if o.Timestamp == "" {
		o.Timestamp = FormatTimestamp(r.nowFunc())
	}
	if err := r.validator.ValidateOrder(o); err != nil {
		return Order{}, err
	}
	if err := kv.SetJSON(ctx, r.store, key(o.ID), o); err != nil {
		return Order{}, err
	}
	r.emit(ctx, EventCreated, o)
	return o, nil
}

// Get returns the order or a NotFoundError.
func (r *Repository) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	ok, err := kv.GetJSON(ctx, r.store, key(id), &o)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, apperr.NotFound("order", id)
	}
	return o, nil
}

// ListAll returns every order in no particular order.
func (r *Repository) ListAll(ctx context.Context) ([]Order, error) {
	raws, err := r.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(raws))
	for _, raw := range raws {
		var o Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, apperr.Storage("decode order", err)
		}
		out = append(out, o)
	}
	return out, nil
}

// UpdateStatus merges p into the stored order. Any status may follow any
// other, including a terminal order going back to pending.
func (r *Repository) UpdateStatus(ctx context.Context, id string, p StatusPatch) (Order, error) {
	if !p.Status.Valid() {
		return Order{}, apperr.Validation("status", "unknown status %q", p.Status)
	}
	o, err := r.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Status = p.Status
	if p.Note != nil {
		o.Note = *p.Note
	}
	if err := kv.SetJSON(ctx, r.store, key(id), o); err != nil {
		return Order{}, err
	}
	r.emit(ctx, EventStatusChanged, o)
	return o, nil
}

// DeleteAll removes every order and returns how many were removed. Scan and
// delete are separate calls; an order created in between may survive, and a
// failure mid-batch leaves a partial deletion.
func (r *Repository) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.store.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.store.DeleteMany(ctx, keys)
	if err != nil {
		r.logger.Error("bulk order delete incomplete", zap.Int("deleted", n), zap.Int("requested", len(keys)), zap.Error(err))
		return n, err
	}
	return n, nil
}

func (r *Repository) emit(ctx context.Context, t EventType, o Order) {
	ev := Event{Type: t, Order: o, At: r.nowFunc()}
	for _, s := range r.sinks {
		if err := s.OrderEvent(ctx, ev); err != nil {
			r.logger.Warn("order event not delivered",
				zap.String("event", string(t)), zap.String("order_id", o.ID), zap.Error(err))
		}
	}
}

// SortNewestFirst orders by timestamp descending. Orders without a parseable
// timestamp sort last.
func SortNewestFirst(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, okI := list[i].Time()
		tj, okJ := list[j].Time()
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}
