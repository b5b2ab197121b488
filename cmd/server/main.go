package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shopflow/shopflow/internal"
	"github.com/shopflow/shopflow/internal/events"
	"github.com/shopflow/shopflow/internal/handler/api"
	"github.com/shopflow/shopflow/internal/middleware"
	"github.com/shopflow/shopflow/internal/postgres"
	"github.com/shopflow/shopflow/internal/pricing"
	"github.com/shopflow/shopflow/internal/router"
	"github.com/shopflow/shopflow/internal/routes"
	"github.com/shopflow/shopflow/internal/service"
	"github.com/shopflow/shopflow/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize store
	store := postgres.NewStore(pool)

	// Initialize event publisher
	var publisher events.Publisher
	if cfg.NATSUrl != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NATSUrl)
		publisher, err = events.NewNATSPublisher(cfg.NATSUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		logger.Info("NATS connection established")
	} else {
		logger.Warn("NATS_URL not set, order events will be discarded")
		publisher = events.NewNoopPublisher()
	}
	defer publisher.Close()

	// Initialize business metrics
	telemetry.InitBusinessMetrics(cfg.MetricsNamespace)

	// Initialize pricing calculator
	calc := pricing.NewCalculator(pricing.Config{
		TaxRate:                    cfg.Pricing.TaxRate,
		FreeShippingThresholdCents: cfg.Pricing.FreeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.Pricing.FlatShippingFeeCents,
	})

	// Initialize services
	cartService := service.NewCartService(store)
	promoService := service.NewPromoService(store, calc)
	checkoutService := service.NewCheckoutService(store, calc, publisher, logger)
	orderService := service.NewOrderService(store, publisher, logger)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		JWTSecret:       cfg.JWTSecret,
		Logger:          logger,
		CartHandler:     api.NewCartHandler(cartService, calc),
		CheckoutHandler: api.NewCheckoutHandler(checkoutService, promoService),
		OrderHandler:    api.NewOrderHandler(orderService),
		CheckoutLimiter: middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig()),
	}
	defer apiDeps.CheckoutLimiter.Stop()

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics(cfg.MetricsNamespace)

	// Configure rate limiting
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(cfg.CORSAllowedOrigins),
		defaultRateLimiter.Middleware,
		router.Logger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterAPIRoutes(r, apiDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
