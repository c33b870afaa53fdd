package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/monomori/monomori-server/internal/http/response"
)

const lookupPrefix = "/api/v1/lookup/"

// requestLogger logs one line per request at debug level, or warn for
// server errors.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// limitLookups applies the per-client lookup limit to remote lookup routes
// only; local catalogue routes are never throttled.
func (s *Server) limitLookups(next http.Handler) http.Handler {
	limited := s.lookupLimiter.Middleware(nil, func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("lookup rate limited", "path", r.URL.Path, "remote", r.RemoteAddr)
		w.Header().Set("Retry-After", "60")
		response.TooManyRequests(w, s.logger)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, lookupPrefix) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
