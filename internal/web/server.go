// Package web provides the HTTP server and handlers for the roster UI.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cssbattle/championship/internal/config"
	"github.com/cssbattle/championship/internal/core"
	"github.com/cssbattle/championship/internal/kv"
	"github.com/cssbattle/championship/internal/metrics"
	mw "github.com/cssbattle/championship/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the roster application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	prefs   kv.Store
	metrics *metrics.Manager
	health  func(context.Context) error

	router *chi.Mux
	server *http.Server

	generalLimiter *ipRateLimiter
	importLimiter  *ipRateLimiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithPreferences sets the preference store. The default keeps nothing.
func WithPreferences(store kv.Store) ServerOption {
	return func(s *Server) {
		if store != nil {
			s.prefs = store
		}
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Manager) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHealthCheck adds a dependency check to /healthz, such as a
// database ping.
func WithHealthCheck(fn func(context.Context) error) ServerOption {
	return func(s *Server) {
		s.health = fn
	}
}

// NewServer creates a Server serving service with settings from cfg.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		prefs:   kv.Noop{},
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Rate.Enabled {
		s.generalLimiter = newIPRateLimiter(cfg.Rate.RequestsPerMinute)
		s.importLimiter = newIPRateLimiter(cfg.Rate.ImportLimit)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.generalLimiter != nil {
		s.router.Use(s.generalLimiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handleListPlayers)
		r.Get("/players/template", s.handleDownloadTemplate)

		r.Group(func(r chi.Router) {
			if s.importLimiter != nil {
				r.Use(s.importLimiter.middleware)
			}
			r.Post("/players/preview", s.handlePreview)
			r.With(mw.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys)).
				Post("/players/import", s.handleImport)
		})

		r.Get("/preferences/{key}", s.handleGetPreference)
		r.Put("/preferences/{key}", s.handleSetPreference)
		r.Delete("/preferences/{key}", s.handleDeletePreference)
	})
}

// Start begins listening for HTTP requests. It returns nil after a
// graceful Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.generalLimiter != nil {
		s.generalLimiter.Stop()
	}
	if s.importLimiter != nil {
		s.importLimiter.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness, import slot usage and the health check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	active, capacity := s.service.ActiveImports()
	resp := map[string]any{
		"status":          "ok",
		"active_imports":  active,
		"import_capacity": capacity,
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			resp["status"] = "degraded"
			writeJSONStatus(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, resp)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// htmx is loaded from unpkg; styles are inline in the page
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are logged since the
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
