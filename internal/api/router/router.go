// Package router assembles the HTTP surface: call lifecycle endpoints,
// realtime websockets, health and metrics.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jdhruv555/aura-assist/internal/api/handlers"
	"github.com/jdhruv555/aura-assist/internal/api/middleware"
	"github.com/jdhruv555/aura-assist/internal/dashboard"
	"github.com/jdhruv555/aura-assist/internal/stream"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	CallsHandler       *handlers.CallsHandler
	StreamHandler      *stream.Handler
	DashboardHub       *dashboard.Hub
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.CallsHandler.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/calls", func(calls chi.Router) {
		calls.Post("/start", cfg.CallsHandler.StartCall)
		calls.Post("/turn", cfg.CallsHandler.ProcessTurn)
		calls.Post("/end", cfg.CallsHandler.EndCall)
		calls.Get("/{callID}", cfg.CallsHandler.GetCall)
		calls.Post("/{callID}/selection", cfg.CallsHandler.RecordSelection)
	})

	if cfg.StreamHandler != nil {
		r.Get("/ws/calls/{callID}", cfg.StreamHandler.HandleCall)
	}
	if cfg.DashboardHub != nil {
		r.Get("/ws/dashboard", cfg.DashboardHub.ServeWS)
	}

	return r
}
