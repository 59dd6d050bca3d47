// Package dashboard keeps a periodically refreshed view of all orders for the
// operator dashboard.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/sales"
)

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = 5 * time.Second

// refreshTimeout bounds one shared load.
const refreshTimeout = 30 * time.Second

// Lister loads every order.
type Lister interface {
	ListAll(ctx context.Context) ([]orders.Order, error)
}

// Snapshot is the order list as of RefreshedAt, newest first.
type Snapshot struct {
	Orders      []orders.Order `json:"orders"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}

// Poller refreshes a Snapshot on a fixed interval. Refreshes never overlap:
// a tick and an on-demand Refresh share one in-flight load.
type Poller struct {
	lister   Lister
	interval time.Duration
	logger   *zap.Logger
	nowFunc  func() time.Time
	flight   singleflight.Group

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	snapMu sync.RWMutex
	snap   *Snapshot
}

// NewPoller creates a stopped Poller.
func NewPoller(l Lister, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{lister: l, interval: interval, logger: logger, nowFunc: time.Now}
}

// Start launches the refresh loop and reports whether it did. A Poller that
// is already running is left alone, so repeated activation never schedules a
// second loop.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	return true
}

// Stop cancels the loop and waits for it to exit. It is safe to call on a
// stopped Poller; Start may be called again afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("dashboard poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("dashboard refresh failed", zap.Error(err))
	}
}

// Refresh loads the orders now, joining a refresh already in flight. The
// shared load does not inherit the cancellation of whichever caller started
// it; a cancelled caller stops waiting while the load finishes for the others.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	ch := p.flight.DoChan("orders", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		list, err := p.lister.ListAll(loadCtx)
		if err != nil {
			return nil, err
		}
		orders.SortNewestFirst(list)
		snap := &Snapshot{Orders: list, RefreshedAt: p.nowFunc()}

		p.snapMu.Lock()
		p.snap = snap
		p.snapMu.Unlock()
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return *res.Val.(*Snapshot), nil
	}
}

// Current returns the latest snapshot while the loop runs. A stopped Poller,
// or one without a snapshot yet, loads on demand.
func (p *Poller) Current(ctx context.Context) (Snapshot, error) {
	if !p.Running() {
		return p.Refresh(ctx)
	}
	p.snapMu.RLock()
	snap := p.snap
	p.snapMu.RUnlock()
	if snap != nil {
		return *snap, nil
	}
	return p.Refresh(ctx)
}

// View is the dashboard payload.
type View struct {
	Orders      []orders.Order `json:"orders"`
	Sales       sales.Rollup   `json:"sales"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}

// View computes the rollups for month from the current snapshot. An empty
// month means the current one.
func (p *Poller) View(ctx context.Context, month string) (View, error) {
	snap, err := p.Current(ctx)
	if err != nil {
		return View{}, err
	}
	now := p.nowFunc()
	today, current := sales.Today(now)
	if month == "" {
		month = current
	}
	return View{
		Orders:      snap.Orders,
		Sales:       sales.Compute(snap.Orders, today, month, now),
		RefreshedAt: snap.RefreshedAt,
	}, nil
}
