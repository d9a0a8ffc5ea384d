package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	route      string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// RecordRoute must wrap the mux directly: the mux sets r.Pattern on the request
// it receives, which outer middleware never sees.
func RecordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if rw, ok := w.(*responseWriter); ok {
			rw.route = r.Pattern
		}
	})
}

func (rw *responseWriter) routeLabel() string {
	if rw.route == "" {
		return "unmatched"
	}
	return rw.route
}

// Logging writes one line per completed request.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			log.Info("request completed",
				"method", r.Method,
				"route", wrapped.routeLabel(),
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", wrapped.Header().Get(RequestIDHeader),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
