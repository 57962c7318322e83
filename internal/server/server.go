// Package server exposes the analysis functions over HTTP.
//
// Routes:
//
//	POST /check_linearity   form field "equation"
//	POST /verify_solution   form fields "de" and "solution"
//	POST /tool              JSON tool call
//	GET  /schema            tool schema for agent registration
//	GET  /health            liveness check
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/njchilds90/diffeq/internal/cache"
	"github.com/njchilds90/diffeq/internal/config"
	"github.com/njchilds90/diffeq/internal/metrics"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Server holds the router and the collaborators the handlers share.
type Server struct {
	cfg        *config.Config
	log        *slog.Logger
	cache      cache.Store
	metrics    metrics.Recorder
	router     *mux.Router
	limiter    *ipLimiter
	httpServer *http.Server
}

// New builds a Server. store may be nil to disable response caching and rec
// may be nil to drop metrics.
func New(cfg *config.Config, log *slog.Logger, store cache.Store, rec metrics.Recorder) *Server {
	if rec == nil {
		rec = metrics.NewNoOp()
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		cache:   store,
		metrics: rec,
		router:  mux.NewRouter(),
		limiter: newIPLimiter(cfg.RateLimit),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/schema", s.handleSchema).Methods("GET")

	s.router.Handle("/check_linearity", s.rateLimit(http.HandlerFunc(s.handleCheckLinearity))).Methods("POST")
	s.router.Handle("/verify_solution", s.rateLimit(http.HandlerFunc(s.handleVerifySolution))).Methods("POST")
	s.router.Handle("/tool", s.rateLimit(http.HandlerFunc(s.handleTool))).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the router wrapped in the middleware chain, outermost
// first: request ID, proxy headers, CORS, access log, panic recovery,
// security headers.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = securityHeaders(h)
	h = s.recoverPanics(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID", "X-Cache"}),
	)(h)
	if s.cfg.RateLimit.TrustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return withRequestID(h)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown failed", "error", err)
		}
	}()

	s.log.Info("diffeq server listening", "addr", s.httpServer.Addr, "version", s.cfg.Version)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("diffeq server stopped")
	return nil
}
