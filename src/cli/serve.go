package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/triggerNode/BuxTax/src/calculator"
	"github.com/triggerNode/BuxTax/src/config"
	"github.com/triggerNode/BuxTax/src/database"
	"github.com/triggerNode/BuxTax/src/handlers"
	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/parsers"
	"github.com/triggerNode/BuxTax/src/processors"
	"github.com/triggerNode/BuxTax/src/rates"
	"github.com/triggerNode/BuxTax/src/security"
	"github.com/triggerNode/BuxTax/src/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve reads its configuration from the environment (and .env when present) and runs the HTTP API until interrupted. --rates overrides RATES_PATH.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts)
		},
	}
}

func runServer(ctx context.Context, opts *rootOptions) error {
	cfg := config.LoadConfig()
	opts.applyTo(cfg)
	logger.InitLogger(cfg.LogLevel)
	logger.L.Info("BuxTax server starting...", "version", Version)

	if err := cfg.Validate(); err != nil {
		logger.L.Error("Invalid configuration", "error", err)
		return err
	}

	logger.L.Info("Loading rate constants...", "path", cfg.RatesPath)
	rateConstants, err := rates.Load(cfg.RatesPath)
	if err != nil {
		return fmt.Errorf("failed to load rate constants: %w", err)
	}

	var extraCategories []parsers.CategoryConfig
	if cfg.CategoryMappingsPath != "" {
		if extraCategories, err = parsers.LoadCategoryMappings(cfg.CategoryMappingsPath); err != nil {
			return err
		}
	}

	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.L.Info("Database initialized successfully.")

	reportCache := cache.New(cfg.ReportCacheTTL, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(cfg.SupabaseJWTSecret)
	entitlementService := services.NewEntitlementService(db)
	uploadService := services.NewUploadService(
		db,
		parsers.NewCSVParser(rateConstants, parsers.NewCategorizer(extraCategories...)),
		processors.NewPulseProcessor(rateConstants),
		processors.NewGoalProcessor(),
		reportCache,
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService:        authService,
		EntitlementService: entitlementService,
		Calculator:         handlers.NewCalculatorHandler(calculator.NewProfitCalculator(rateConstants)),
		Uploads:            handlers.NewUploadHandler(uploadService, cfg.MaxUploadSizeBytes),
		Entitlements:       handlers.NewEntitlementHandler(entitlementService, cfg.StripeWebhookSecret),
		Limiter:            rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
		AllowedOrigins:     cfg.AllowedOrigins,
		RequestTimeout:     60 * time.Second,
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.L.Info("Server stopped gracefully.")
	return nil
}
