package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/njchilds90/diffeq"
	"github.com/njchilds90/diffeq/internal/config"
)

type ctxKey int

const requestIDKey ctxKey = iota

// withRequestID tags every request with the caller's X-Request-ID or a fresh
// UUID and echoes it in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// logRequest is the access log line, written once the response is done.
func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	d := time.Since(p.TimeStamp)
	route := s.routeLabel(p.Request)
	s.metrics.RecordRequest(p.Request.Context(), route, p.StatusCode, d)
	s.log.Info("request",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"route", route,
		"status", p.StatusCode,
		"size", p.Size,
		"duration", d,
		"remote", p.Request.RemoteAddr,
		"request_id", RequestID(p.Request.Context()),
	)
}

// routeLabel names the matched route template so metrics stay bounded.
func (s *Server) routeLabel(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic in handler",
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
					"request_id", RequestID(r.Context()),
				)
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"font-src 'self'"

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=()")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Rate limiting
// ============================================================

// ipLimiter keeps one token bucket per remote address. The least recently
// seen addresses are forgotten once the table is full.
type ipLimiter struct {
	perHour int
	limit   rate.Limit
	burst   int
	buckets *lru.Cache[string, *rate.Limiter]
}

func newIPLimiter(cfg config.RateLimit) *ipLimiter {
	if cfg.PerHour <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.PerHour
	}
	size := cfg.Clients
	if size <= 0 {
		size = 4096
	}
	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		panic(err) // size is positive
	}
	return &ipLimiter{
		perHour: cfg.PerHour,
		limit:   rate.Every(time.Hour / time.Duration(cfg.PerHour)),
		burst:   burst,
		buckets: buckets,
	}
}

func (l *ipLimiter) allow(addr string) bool {
	if l == nil {
		return true
	}
	b, ok := l.buckets.Get(addr)
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		// Another request may have raced us here; keep whichever landed.
		if prev, found, _ := l.buckets.PeekOrAdd(addr, b); found {
			b = prev
		}
	}
	return b.Allow()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondJSON(w, http.StatusTooManyRequests,
				diffeq.ErrorResponse(fmt.Sprintf("Rate limit exceeded: %d per hour", s.limiter.perHour)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
