// Package checkout turns a submitted cart into a pending order and the
// settlement message for the shop.
package checkout

import (
	"context"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/assets"
	"github.com/imrishuroy/topup-storefront/internal/cart"
	"github.com/imrishuroy/topup-storefront/internal/catalog"
	"github.com/imrishuroy/topup-storefront/internal/orders"
)

// Catalog provides server labels and the configured order method.
type Catalog interface {
	Games(ctx context.Context) ([]catalog.Game, error)
	Settings(ctx context.Context) (catalog.Settings, error)
}

// Orders persists the new order.
type Orders interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
}

// Request is a submitted cart.
type Request struct {
	ID                  string             `json:"id,omitempty"`
	Items               []orders.OrderItem `json:"items"`
	ReceiptAssetID      string             `json:"receiptAssetId"`
	CustomerPaymentName string             `json:"customerPaymentName"`
}

// Result is the stored order and its rendered message.
type Result struct {
	Order   orders.Order `json:"order"`
	Message string       `json:"message"`
	Groups  int          `json:"groups"`
}

// Service runs checkouts.
type Service struct {
	catalog Catalog
	assets  assets.Store
	orders  Orders
}

// NewService creates a Service.
func NewService(c Catalog, a assets.Store, o Orders) *Service {
	return &Service{catalog: c, assets: a, orders: o}
}

// Checkout groups the cart, stores a pending order for the grand total and
// renders the message with a freshly signed receipt URL.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if len(req.Items) == 0 {
		return Result{}, apperr.Validation("items", "cart is empty")
	}
	tier, _, err := assets.ParseID(req.ReceiptAssetID)
	if err != nil {
		return Result{}, err
	}
	if tier != assets.TierPrivate {
		return Result{}, apperr.Validation("receiptAssetId", "receipt must be a private asset")
	}

	games, err := s.catalog.Games(ctx)
	if err != nil {
		return Result{}, err
	}
	settings, err := s.catalog.Settings(ctx)
	if err != nil {
		return Result{}, err
	}
	receipt, err := s.assets.Resolve(ctx, req.ReceiptAssetID)
	if err != nil {
		return Result{}, err
	}

	summary := cart.Aggregate(req.Items)
	o, err := s.orders.Create(ctx, orders.Order{
		ID:                  req.ID,
		Items:               req.Items,
		TotalAmount:         summary.GrandTotal,
		ReceiptAssetID:      req.ReceiptAssetID,
		Status:              orders.StatusPending,
		CustomerPaymentName: req.CustomerPaymentName,
		OrderMethod:         settings.OrderMethod,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Order:   o,
		Message: summary.Render(receipt.URL, catalog.ServerLabels(games)),
		Groups:  len(summary.Groups),
	}, nil
}
