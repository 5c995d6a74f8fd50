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

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/database"
	"github.com/finpulse/finpulse/internal/modules/behavior"
	"github.com/finpulse/finpulse/internal/modules/lean_periods"
	"github.com/finpulse/finpulse/internal/modules/simulations"
	"github.com/finpulse/finpulse/internal/modules/transactions"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	DevMode bool

	BehaviorHandler     *behavior.Handler
	TransactionsHandler *transactions.Handler
	LeanPeriodsHandler  *lean_periods.Handler
	SimulationsHandler  *simulations.Handler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	cfg    *config.Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		db:     cfg.DB,
		cfg:    cfg.Config,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionsHandler.HandleIngest)
			r.Get("/user/{userID}", cfg.TransactionsHandler.HandleGetByUser)
		})

		r.Route("/behavior", func(r chi.Router) {
			r.Get("/{userID}", cfg.BehaviorHandler.HandleGetProfile)
			r.Get("/{userID}/summary", cfg.BehaviorHandler.HandleGetSummary)
		})

		r.Route("/lean-periods", func(r chi.Router) {
			r.Get("/{userID}/timeline", cfg.LeanPeriodsHandler.HandleGetTimeline)
			r.Get("/{userID}/analysis", cfg.LeanPeriodsHandler.HandleGetAnalysis)
			r.Get("/{userID}/forecast", cfg.LeanPeriodsHandler.HandleGetForecast)
			r.Get("/{userID}/smoothing", cfg.LeanPeriodsHandler.HandleGetSmoothing)
			r.Get("/{userID}/complete", cfg.LeanPeriodsHandler.HandleGetCompleteAnalysis)
		})

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/reallocation", cfg.SimulationsHandler.HandleReallocation)
			r.Post("/projection", cfg.SimulationsHandler.HandleProjection)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
