package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/adapter/http/handler"
	"github.com/iho/banksync/internal/adapter/http/middleware"
	"github.com/iho/banksync/internal/infrastructure/auth"
	"github.com/iho/banksync/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SyncHandler     *handler.SyncHandler
	AuthHandler     *handler.AuthHandler
	SettingsHandler *handler.SettingsHandler
	HealthHandler   *handler.HealthHandler
	JWTManager      *auth.JWTManager
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Get("/status", cfg.SyncHandler.Status)
			r.Post("/sync/start", cfg.SyncHandler.Start)
			r.Post("/sync/stop", cfg.SyncHandler.Stop)
			r.Get("/stream", cfg.SyncHandler.Stream)

			r.Get("/settings", cfg.SettingsHandler.Get)
			r.Put("/settings", cfg.SettingsHandler.Save)
		})
	})

	return r
}
