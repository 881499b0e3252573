// Package web provides the read-only HTTP view over a loaded price catalog.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/config"
	"github.com/JonMunkholm/pricemachine/internal/metrics"
	mw "github.com/JonMunkholm/pricemachine/internal/web/middleware"
)

// Server serves the catalog as an HTML report and a small JSON API.
type Server struct {
	engine  *catalog.Engine
	metrics *metrics.Metrics
	title   string
	cfg     config.ServerConfig
	router  *chi.Mux
	server  *http.Server
}

// Deps are the collaborators a Server reads from.
type Deps struct {
	Engine *catalog.Engine

	// Metrics is optional; nil disables /metrics.
	Metrics *metrics.Metrics

	// Title of the HTML page.
	Title string
}

// NewServer creates a new Server instance.
func NewServer(deps Deps, cfg config.ServerConfig) *Server {
	s := &Server{
		engine:  deps.Engine,
		metrics: deps.Metrics,
		title:   deps.Title,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleReport)
	s.router.Get("/healthz", s.handleHealth)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/files", s.handleFiles)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errNotFound, http.StatusNotFound)
	})
}

// Start listens on the configured address. It returns nil after Shutdown,
// including when Shutdown ran first.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The report uses one inline style block and no scripts
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")

		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
