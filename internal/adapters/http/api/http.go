// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Default request limits.
const (
	defaultTrials         = 10_000
	defaultMaxTrials      = 1_000_000
	defaultMaxCompetitors = 100
	defaultMaxBodyBytes   = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord reports whether a request id is already in flight and
	// records it if not. Unrecord releases it.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	RunMonteCarlo(ctx context.Context, roster model.Roster, remainingEvents, trials int, opts ...service.RunOption) (service.Outcome, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	simulationsHandler *SimulationsHandler

	corsOrigins    []string
	rateLimitRPS   float64
	rateLimitBurst int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRateLimit bounds simulation requests per client IP. A zero rate disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithTrialLimits sets the default trial count and the per-request maximum.
func WithTrialLimits(defaultCount, maxCount int) Option {
	return func(s *Server) {
		if defaultCount > 0 {
			s.simulationsHandler.defaultTrials = defaultCount
		}
		if maxCount > 0 {
			s.simulationsHandler.maxTrials = maxCount
		}
	}
}

// WithMaxCompetitors caps the roster size of a request.
func WithMaxCompetitors(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.simulationsHandler.maxCompetitors = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		simulationsHandler: NewSimulationsHandler(deps),
		corsOrigins:        []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if s.rateLimitRPS > 0 {
			r.Use(RateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst))
		}
		r.Post("/simulations", MetricsMiddleware(s.simulationsHandler.HandlePostSimulation, "simulations"))
	})
}

// Router returns a chi router with the middleware stack and all API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
