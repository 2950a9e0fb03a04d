package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/ironcycle/internal/ingest/sessionlog"
	"github.com/claude/ironcycle/internal/mcp"
	"github.com/claude/ironcycle/internal/metrics"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *tracker.Service
	sessions *sessionlog.Provider
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	log      *slog.Logger
	apiKey   string
	version  string
	router   chi.Router

	// identity is DevIdentity until SetTailscale is called.
	identity func(http.Handler) http.Handler
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithMetrics instruments requests with m and exposes gatherer on /metrics.
func WithMetrics(m *metrics.Manager, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithVersion sets the version reported by the MCP endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a new Server with all routes configured.
func New(svc *tracker.Service, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		sessions: sessionlog.NewProvider(svc, log),
		log:      log,
		apiKey:   apiKey,
		version:  "dev",
		router:   chi.NewRouter(),
		identity: DevIdentity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches caller identity from the dev user to the tailnet
// peer that owns each connection.
func (s *Server) SetTailscale(whois WhoIser) {
	s.identity = TailscaleIdentity(whois, s.svc, s.log)
}

// withIdentity defers the choice of identity middleware to request time so
// SetTailscale can be called after routes are built.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identity(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.withIdentity)

		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/program", s.handleProgram)
		r.Get("/api/v1/weeks", s.handleWeeks)
		r.Get("/api/v1/weeks/{week}", s.handleWeek)

		r.Get("/api/v1/workouts/active", s.handleActiveWorkout)
		r.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
		r.Get("/api/v1/workouts/{id}/days/{day}/plan", s.handlePlanDay)
		r.Get("/api/v1/workouts/{id}/history", s.handleHistory)
		r.Get("/api/v1/workouts/{id}/stats", s.handleStats)

		// Mutations (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/api/v1/workouts", s.handleCreateWorkout)
			r.Post("/api/v1/workouts/{id}/days/{day}/complete", s.handleCompleteDay)
			r.Post("/api/v1/workouts/{id}/days/{day}/import", s.handleImportSession)
			r.Post("/api/v1/workouts/{id}/progress-week", s.handleProgressWeek)
		})

		mcpHTTP := mcpserver.NewStreamableHTTPServer(
			mcp.New(mcp.Local{Service: s.svc}, s.version, s.log),
			mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				return mcp.WithUserID(ctx, userIDFromContext(r))
			}),
		)
		r.Handle("/mcp", mcpHTTP)
	})
}
