// Package api provides the HTTP API server and handlers for the ReadUp server.
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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/readupapp/readup-server/internal/auth"
	"github.com/readupapp/readup-server/internal/ratelimit"
	"github.com/readupapp/readup-server/internal/sse"
	"github.com/readupapp/readup-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Location       *time.Location
	ServiceName    string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          store.Store
	services       *Services
	tokens         *auth.TokenService
	sseManager     *sse.Manager
	sessionLimiter *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	api            huma.API
	handler        http.Handler
	loc            *time.Location
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	sessionLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		store:          st,
		services:       services,
		tokens:         tokens,
		sseManager:     sseManager,
		sessionLimiter: sessionLimiter,
		router:         chi.NewRouter(),
		loc:            loc,
		logger:         logger,
	}

	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("ReadUp API", Version)
	humaConfig.Info.Description = "Reading progress, shelves, goals and analytics for ReadUp readers"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "readup-server"
	}
	s.handler = otelhttp.NewHandler(s.router, serviceName)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerReadRoutes()
	s.registerShelfRoutes()
	s.registerTrackerRoutes()
	s.registerAnalyticsRoutes()
	s.registerUserRoutes()

	if s.sseManager != nil {
		s.router.Get("/events", sse.NewHandler(s.sseManager, s.authenticateStream, s.logger).ServeHTTP)
	}
}
