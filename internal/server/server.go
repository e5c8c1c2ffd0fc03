// Package server provides the HTTP server and routing for the trading
// platform.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/events"
	"github.com/jperaltad/tradesim/internal/modules/analysis"
	"github.com/jperaltad/tradesim/internal/modules/ledger"
	"github.com/jperaltad/tradesim/internal/modules/market"
	"github.com/jperaltad/tradesim/internal/modules/portfolio"
	"github.com/jperaltad/tradesim/internal/modules/trading"
)

// Config holds server configuration
type Config struct {
	Log               zerolog.Logger
	DB                *database.DB
	EventBus          *events.Bus
	LedgerHandlers    *ledger.Handlers
	TradingHandlers   *trading.Handlers
	MarketHandlers    *market.Handlers
	PortfolioHandlers *portfolio.Handlers
	AnalysisHandlers  *analysis.Handlers
	Port              int
	DevMode           bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	systemHandlers := NewSystemHandlers(s.cfg.DB, s.log)
	eventsStream := NewEventsStreamHandler(s.cfg.EventBus, s.log)

	s.router.Route("/api", func(r chi.Router) {
		s.cfg.LedgerHandlers.RegisterRoutes(r)
		s.cfg.TradingHandlers.RegisterRoutes(r)
		s.cfg.MarketHandlers.RegisterRoutes(r)
		s.cfg.PortfolioHandlers.RegisterRoutes(r)
		s.cfg.AnalysisHandlers.RegisterRoutes(r)

		r.Get("/system/health", systemHandlers.HandleHealth)
		r.Get("/events/stream", eventsStream.ServeHTTP)
	})
}

// Start begins serving HTTP requests. It blocks until the server is
// shut down.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
