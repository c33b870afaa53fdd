// Package api provides the HTTP API server and handlers for the monomori
// catalogue: huma operations on a chi router under /api/v1, plus the
// server-sent events stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/monomori/monomori-server/internal/ratelimit"
	"github.com/monomori/monomori-server/internal/sse"
)

// Options tunes the HTTP surface.
type Options struct {
	Version          string   // reported in the OpenAPI document
	AllowedOrigins   []string // CORS origins; empty allows any
	LookupsPerMinute int      // per client; 0 uses DefaultLookupsPerMinute, negative disables
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	sseManager    *sse.Manager
	router        *chi.Mux
	api           huma.API
	lookupLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
	version       string
	startedAt     time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		services:   services,
		sseManager: sseManager,
		router:     chi.NewRouter(),
		logger:     logger,
		version:    opts.Version,
		startedAt:  time.Now(),
	}

	if opts.LookupsPerMinute >= 0 {
		perMinute := opts.LookupsPerMinute
		if perMinute == 0 {
			perMinute = DefaultLookupsPerMinute
		}
		s.lookupLimiter = ratelimit.New(
			ratelimit.PerInterval(perMinute, time.Minute),
			DefaultLookupBurst,
			lookupIdleTTL,
		)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("monomori API", opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.lookupLimiter != nil {
		s.lookupLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Compress(5))
	if s.lookupLimiter != nil {
		s.router.Use(s.limitLookups)
	}
}

// setupRoutes registers every operation.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerCategoryRoutes()
	s.registerItemRoutes()
	s.registerPreferenceRoutes()
	s.registerLookupRoutes()
	s.registerSearchRoutes()
	s.registerCoverRoutes()
	s.registerWatchRoutes()

	if s.sseManager != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.sseManager, s.logger).ServeHTTP)
	}
}
