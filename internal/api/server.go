// Package api implements the HTTP layer for InvestGPT. Handlers are methods
// on *Server. Each handler file is responsible for one resource group and
// only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/investgpt-backend/internal/generation"
	"github.com/nyashahama/investgpt-backend/internal/metrics"
	"github.com/nyashahama/investgpt-backend/internal/planning"
	"github.com/nyashahama/investgpt-backend/internal/ratelimit"
	"github.com/nyashahama/investgpt-backend/internal/store"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// CORSOrigin is the browser origin allowed in production. Empty means "*".
	CORSOrigin string
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// generator turns a prompt into a recommendation. The concrete value is a
	// decorated generation.ProcessGenerator; tests inject a stub.
	generator generation.Generator

	// history records every generation. store.Nop when there is no database.
	history store.Recorder

	// limiter guards the generation routes. nil disables rate limiting.
	limiter ratelimit.Limiter

	metrics *metrics.Metrics
	goals   *planning.GoalCatalog

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(
	gen generation.Generator,
	history store.Recorder,
	limiter ratelimit.Limiter,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if history == nil {
		history = store.Nop{}
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		generator: gen,
		history:   history,
		limiter:   limiter,
		metrics:   m,
		goals:     planning.DefaultGoals(),
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	// Outside the recoverer so requests that panic are still counted.
	r.Use(s.metrics.Middleware)
	r.Use(s.recoverer)
	r.Use(s.corsMiddleware)

	// ── Health + metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/risk", s.handleRecommendRisk)
		r.Get("/goals", s.handleListGoals)
		r.Get("/generations/{generationID}", s.handleGetGeneration)

		// Each call below starts an external process, so they sit behind the
		// rate limiter.
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/generate", s.handleGenerate)
			r.Post("/plan", s.handlePlan)
		})
	})

	return r
}
