// Package app wires configuration, storage, domain services, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/export"
	"github.com/bizdeskhq/bizdesk/internal/handler"
	mongostore "github.com/bizdeskhq/bizdesk/internal/storage/mongo"
	"github.com/bizdeskhq/bizdesk/internal/storage/postgres"
	"github.com/bizdeskhq/bizdesk/pkg/health"
	"github.com/bizdeskhq/bizdesk/pkg/httpmiddleware"
)

// stores bundles the repositories of one storage backend together with its
// lifecycle hooks.
type stores struct {
	products  product.Repository
	customers customer.Repository
	orders    order.Repository
	sessions  auth.Store

	ping  func(ctx context.Context) error
	close func(ctx context.Context)
}

func openStores(ctx context.Context, cfg *Config) (*stores, error) {
	switch cfg.Store {
	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect mongo")
		}
		db := client.Database(cfg.MongoDB)
		return &stores{
			products:  mongostore.NewProductRepository(db),
			customers: mongostore.NewCustomerRepository(db),
			orders:    mongostore.NewOrderRepository(db),
			sessions:  mongostore.NewSessionStore(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: func(ctx context.Context) {
				_ = client.Disconnect(ctx)
			},
		}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &stores{
			products:  postgres.NewProductRepository(pool),
			customers: postgres.NewCustomerRepository(pool),
			orders:    postgres.NewOrderRepository(pool),
			sessions:  postgres.NewSessionStore(pool),
			ping:      pool.Ping,
			close: func(context.Context) {
				pool.Close()
			},
		}, nil
	}
	return nil, errors.Errorf("unknown store %q", cfg.Store)
}

func newSharer(ctx context.Context, cfg *Config) (export.Sharer, error) {
	if !cfg.Export.S3Enabled {
		return export.LocalSharer{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg)
	return export.NewS3Sharer(client, cfg.Export.S3Bucket, cfg.Export.S3Prefix, cfg.Export.ShareTTL), nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.close(closeCtx)
	}()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck(cfg.Store, 5*time.Second, st.ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)

	// Domain services.
	orderService := order.NewService(st.products, st.orders)
	authService := auth.NewService(st.sessions, auth.Config{
		Username:   cfg.Auth.Username,
		Password:   cfg.Auth.Password,
		SigningKey: []byte(cfg.Auth.SigningKey),
		Pepper:     []byte(cfg.Auth.Pepper),
		SessionTTL: cfg.Auth.SessionTTL,
	})

	// Live order snapshot feeding the report endpoints.
	snapshots := order.NewSnapshotCache()
	stopWatch, err := snapshots.Follow(ctx, st.orders)
	if err != nil {
		return errors.Wrap(err, "follow orders")
	}
	defer stopWatch()

	// Export sink.
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create export dir")
	}
	sharer, err := newSharer(ctx, cfg)
	if err != nil {
		return err
	}
	exporter := export.NewXLSXWriter(cfg.Export.Dir)

	// HTTP handlers.
	h := handler.NewHandler(
		authService,
		st.products,
		st.customers,
		st.orders,
		orderService,
		snapshots,
		exporter,
		sharer,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bizdesk-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
