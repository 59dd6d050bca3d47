package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/assets"
	"github.com/imrishuroy/topup-storefront/internal/catalog"
	"github.com/imrishuroy/topup-storefront/internal/checkout"
	"github.com/imrishuroy/topup-storefront/internal/dashboard"
	"github.com/imrishuroy/topup-storefront/internal/logging"
	"github.com/imrishuroy/topup-storefront/internal/metrics"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

// OrderService is the order repository as seen by the API.
type OrderService interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id string, p orders.StatusPatch) (orders.Order, error)
	DeleteAll(ctx context.Context) (int, error)
}

// CatalogService reads and replaces the shop configuration documents.
type CatalogService interface {
	Games(ctx context.Context) ([]catalog.Game, error)
	SaveGames(ctx context.Context, games []catalog.Game) error
	Payments(ctx context.Context) ([]catalog.Payment, error)
	SavePayments(ctx context.Context, payments []catalog.Payment) error
	Settings(ctx context.Context) (catalog.Settings, error)
	SaveSettings(ctx context.Context, s catalog.Settings) error
}

// Checkouter turns carts into orders.
type Checkouter interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

// DashboardViewer builds the dashboard payload.
type DashboardViewer interface {
	View(ctx context.Context, month string) (dashboard.View, error)
}

// HandlerConfig groups dependencies for the API.
type HandlerConfig struct {
	Orders    OrderService
	Catalog   CatalogService
	Assets    assets.Store
	Checkout  Checkouter
	Dashboard DashboardViewer
	Validator *validation.OrderValidator
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	APIToken  string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Validator == nil {
		cfg.Validator = validation.NewOrderValidator()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(cfg.Logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", logging.RequestIDHeader},
		ExposeHeaders:   []string{logging.RequestIDHeader},
		MaxAge:          10 * time.Minute,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", cfg.Metrics.Handler())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UnixMilli()})
	})

	if cfg.APIToken == "" {
		cfg.Logger.Warn("API_TOKEN is empty, bearer auth disabled")
	}
	api := r.Group("/", BearerAuth(cfg.APIToken))
	registerCatalogRoutes(api, cfg)
	registerOrderRoutes(api, cfg)
	registerUploadRoutes(api, cfg)

	return r
}

// writeError renders err as {error} with its taxonomy status.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
