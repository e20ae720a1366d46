package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edufarias/bancoledger/internal/adapter/http/handler"
	"github.com/edufarias/bancoledger/internal/adapter/http/middleware"
	"github.com/edufarias/bancoledger/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	MovementHandler  *handler.MovementHandler
	TransferHandler  *handler.TransferHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	ReplayMiddleware *middleware.IdempotencyMiddleware
	LoginLimiter     *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)

			r.Group(func(r chi.Router) {
				if cfg.LoginLimiter != nil {
					r.Use(cfg.LoginLimiter.Limit)
				}
				r.Post("/login", cfg.AccountHandler.Login)
			})

			// Authenticated holder endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				r.Get("/me", cfg.AccountHandler.Get)
				r.Get("/balance", cfg.MovementHandler.Balance)
				r.Get("/movements", cfg.MovementHandler.List)

				// Mutations go through the response replay cache
				r.Group(func(r chi.Router) {
					if cfg.ReplayMiddleware != nil {
						r.Use(cfg.ReplayMiddleware.Wrap)
					}
					r.Post("/movements", cfg.MovementHandler.Create)
					r.Post("/transfers", cfg.TransferHandler.Create)
				})

				r.Get("/transfers", cfg.TransferHandler.List)
			})
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			r.Get("/{id}", cfg.TransferHandler.Get)
		})
	})

	return r
}
