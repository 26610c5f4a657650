package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iho/banksync/internal/adapter/bank"
	"github.com/iho/banksync/internal/adapter/browser"
	httpAdapter "github.com/iho/banksync/internal/adapter/http"
	"github.com/iho/banksync/internal/adapter/http/handler"
	"github.com/iho/banksync/internal/adapter/ledger"
	"github.com/iho/banksync/internal/adapter/rates"
	postgresRepo "github.com/iho/banksync/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/banksync/internal/adapter/repository/redis"
	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/infrastructure/auth"
	"github.com/iho/banksync/internal/infrastructure/config"
	"github.com/iho/banksync/internal/infrastructure/logger"
	"github.com/iho/banksync/internal/infrastructure/metrics"
	"github.com/iho/banksync/internal/infrastructure/postgres"
	"github.com/iho/banksync/internal/infrastructure/redis"
	"github.com/iho/banksync/internal/infrastructure/secret"
	"github.com/iho/banksync/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Run state first: the logger mirrors into its ring.
	state := domain.NewRunState()
	appLogger := logger.NewWithRing(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}, state.Log())
	log.Logger = appLogger

	if cfg.JWTSecret == "" || cfg.SecretKey == "" {
		log.Fatal().Msg("JWT_SECRET and SECRET_KEY must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis is optional; without it rates are fetched fresh each run.
	var rateCache rates.Cache
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
		rateCache = redisRepo.NewRateCache(redisClient)
	}

	box, err := secret.NewBox(cfg.SecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize secret box")
	}

	// Repositories
	userRepo := postgresRepo.NewUserRepository(pool)
	settingsRepo := postgresRepo.NewSettingsRepository(pool, box)
	idGen := postgresRepo.NewULIDGenerator()

	// Infrastructure
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	appMetrics := metrics.New()

	// Sync pipeline
	browserCtl := browser.NewController(browser.Config{
		DashboardURL: cfg.BankDashboardURL,
		CookieName:   cfg.BankCookieName,
		CookieDomain: cfg.BankCookieDomain,
		UserAgent:    cfg.BankUserAgent,
		Headless:     cfg.BrowserHeadless,
		PageWait:     cfg.BrowserPageWait,
		MarkerWait:   cfg.BrowserMarkerWait,
		OTPWait:      cfg.BrowserOTPWait,
	}, appLogger)

	fetcher := bank.NewClient(bank.Config{
		BaseURL:   cfg.BankAPIBaseURL,
		UserAgent: cfg.BankUserAgent,
		PageSize:  cfg.BankPageSize,
		Timeout:   cfg.BankFetchTimeout,
	}, appLogger)

	rateSource := rates.NewClient(cfg.RateFeedURL, cfg.BaseCurrency, cfg.RateFetchTimeout, rateCache, cfg.RateCacheTTL, appLogger)
	transformer := usecase.NewTransformer(rateSource, cfg.BaseCurrency)
	ledgerClient := ledger.NewClient(cfg.BankFetchTimeout, appLogger)

	orchestrator := usecase.NewOrchestrator(
		state,
		browserCtl,
		fetcher,
		transformer,
		ledgerClient,
		idGen,
		appMetrics,
		appLogger,
		usecase.WithFrameInterval(cfg.FrameInterval),
	)

	// Handlers
	syncHandler := handler.NewSyncHandler(orchestrator, settingsRepo)
	authHandler := handler.NewAuthHandler(userRepo, idGen, jwtManager, func(status string) {
		appMetrics.AuthAttempts.WithLabelValues(status).Inc()
	})
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	healthHandler := handler.NewHealthHandler(pool)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SyncHandler:     syncHandler,
		AuthHandler:     authHandler,
		SettingsHandler: settingsHandler,
		HealthHandler:   healthHandler,
		JWTManager:      jwtManager,
		Metrics:         appMetrics,
		Logger:          appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: cfg.HTTPReadTimeout,
		// Write timeout would cut the MJPEG stream; idle timeout still
		// reaps dead connections.
		IdleTimeout: cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	// Cancel any in-flight run before closing the HTTP surface so the
	// browser process never outlives the service.
	if err := orchestrator.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to stop sync run")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
