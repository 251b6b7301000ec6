package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixit-store/internal/config"
	"fixit-store/internal/coupon"
	"fixit-store/internal/database"
	"fixit-store/internal/handler"
	"fixit-store/internal/notify"
	"fixit-store/internal/repository"
	"fixit-store/internal/router"
	"fixit-store/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting fixit-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, couponRepo, logger)
	couponService := service.NewCouponService(couponRepo, logger)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		couponRepo,
		cartRepo,
		time.Duration(cfg.Checkout.TimeoutSeconds)*time.Second,
		logger,
	)

	// Seed the coupon ledger from bulk files before serving traffic
	if cfg.CouponSeed.Enabled {
		if err := seedCoupons(ctx, cfg.CouponSeed, couponService, logger); err != nil {
			return fmt.Errorf("failed to seed coupons: %w", err)
		}
	}

	// Start the order change listener feeding the admin event stream
	listener := notify.NewListener(pool, repository.OrdersChannel, logger)
	go listener.Run(ctx)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartService, cfg.Cart.Namespace, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)
	orderHandler := handler.NewOrderHandler(orderService, listener, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, orderHandler, couponHandler, cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCoupons bulk-loads coupon files into the ledger. Existing codes are
// left untouched so a restart never resets usage counters.
func seedCoupons(ctx context.Context, cfg config.CouponSeedConfig, coupons service.CouponService, logger zerolog.Logger) error {
	fileLoader := coupon.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = s3Loader
		}
	}

	total := 0
	for _, path := range cfg.FilePaths {
		if loader != fileLoader {
			path = cfg.S3Prefix + path
		}

		seed, err := loader.Load(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to load coupon file %s: %w", path, err)
		}

		imported, err := coupons.Import(ctx, seed)
		if err != nil {
			return fmt.Errorf("failed to import coupon file %s: %w", path, err)
		}
		total += imported
	}

	logger.Info().
		Int("imported", total).
		Int("files", len(cfg.FilePaths)).
		Msg("coupon ledger seeded")
	return nil
}
