package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"randevu/internal/http/handlers"
	httpmiddleware "randevu/internal/http/middleware"
	"randevu/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *handlers.BookingHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.BookingHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", cfg.BookingHandler.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", cfg.BookingHandler.GetSession)
			r.Post("/date", cfg.BookingHandler.SelectDate)
			r.Post("/slot", cfg.BookingHandler.SelectSlot)
			r.Patch("/contact", cfg.BookingHandler.UpdateContact)
			r.Post("/submit", cfg.BookingHandler.Submit)
			r.Delete("/", cfg.BookingHandler.CancelSession)
		})
	})

	return r
}
