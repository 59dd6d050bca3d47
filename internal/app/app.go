// Package app builds the storefront's components from a Config.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/assets"
	"github.com/imrishuroy/topup-storefront/internal/aws"
	"github.com/imrishuroy/topup-storefront/internal/catalog"
	"github.com/imrishuroy/topup-storefront/internal/checkout"
	"github.com/imrishuroy/topup-storefront/internal/config"
	"github.com/imrishuroy/topup-storefront/internal/dashboard"
	"github.com/imrishuroy/topup-storefront/internal/events"
	"github.com/imrishuroy/topup-storefront/internal/handlers"
	"github.com/imrishuroy/topup-storefront/internal/kv"
	"github.com/imrishuroy/topup-storefront/internal/metrics"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	KV        kv.Store
	Assets    assets.Store
	Orders    *orders.Repository
	Catalog   *catalog.Store
	Checkout  *checkout.Service
	Dashboard *dashboard.Poller
	Metrics   *metrics.Metrics
	Validator *validation.OrderValidator

	clients *aws.AWSClients
	closers []func() error
}

// New connects the configured backends. AWS clients are created only when a
// component needs them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		Validator: validation.NewOrderValidator(),
	}

	store, err := a.openKV(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.KV = store

	if a.Assets, err = a.openAssets(ctx); err != nil {
		a.Close()
		return nil, err
	}

	opts := []orders.Option{orders.WithLogger(logger), orders.WithEventSink(a.Metrics)}
	if cfg.EventsQueueURL != "" {
		clients, err := a.awsClients(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, orders.WithEventSink(events.NewQueueSink(aws.NewPublisher(clients.SQS, cfg.EventsQueueURL))))
	}
	a.Orders = orders.NewRepository(store, a.Validator, opts...)
	a.Catalog = catalog.NewStore(store)
	a.Checkout = checkout.NewService(a.Catalog, a.Assets, a.Orders)
	a.Dashboard = dashboard.NewPoller(a.Orders, cfg.PollInterval, logger)

	logger.Info("storefront wired",
		zap.String("kv_backend", cfg.KVBackend),
		zap.String("asset_backend", cfg.AssetBackend),
		zap.Bool("events", cfg.EventsQueueURL != ""))
	return a, nil
}

func (a *App) awsClients(ctx context.Context) (*aws.AWSClients, error) {
	if a.clients != nil {
		return a.clients, nil
	}
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}
	a.clients = clients
	return clients, nil
}

func (a *App) openKV(ctx context.Context) (kv.Store, error) {
	cfg := a.Config
	switch cfg.KVBackend {
	case config.KVDynamoDB:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		return kv.NewDynamoStore(clients.DynamoDB, cfg.KVTable), nil
	case config.KVRedis:
		client, err := kv.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return kv.NewRedisStore(client), nil
	case config.KVBadger:
		store, err := kv.OpenBadger(cfg.BadgerDir, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
	}
}

func (a *App) openAssets(ctx context.Context) (assets.Store, error) {
	cfg := a.Config
	buckets := assets.Router{PrivateBucket: cfg.ReceiptsBucket, PublicBucket: cfg.BannersBucket}
	switch cfg.AssetBackend {
	case config.AssetsS3:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		return assets.NewS3Store(clients.S3, clients.S3Presigner, assets.S3Config{
			Buckets:       buckets,
			Region:        clients.Region,
			PublicBaseURL: cfg.PublicBaseURL,
		}), nil
	case config.AssetsGCS:
		client, err := assets.NewGCSClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return assets.NewGCSStore(client, buckets, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.AssetBackend)
	}
}

// Router builds the HTTP API over the wired components.
func (a *App) Router() *gin.Engine {
	return handlers.NewRouter(handlers.HandlerConfig{
		Orders:    a.Orders,
		Catalog:   a.Catalog,
		Assets:    a.Assets,
		Checkout:  a.Checkout,
		Dashboard: a.Dashboard,
		Validator: a.Validator,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
		APIToken:  a.Config.APIToken,
	})
}

// Close stops the poller and releases backend connections.
func (a *App) Close() {
	if a.Dashboard != nil {
		a.Dashboard.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close backend", zap.Error(err))
		}
	}
	a.closers = nil
}
