package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

type ctxKey int

const loggerKey ctxKey = iota

// SecurityHeaders sets the response headers every endpoint carries.
// The API serves JSON only, so the CSP denies everything embeddable.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps the request body size. Oversized bodies surface as decode
// errors in the handlers, which map them to 400.
func MaxBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger assigns each request a trace ID, exposes it in the
// X-Trace-ID header, and stores a per-request logger in the context.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := make([]byte, 4)
			rand.Read(id)
			traceID := hex.EncodeToString(id)
			w.Header().Set("X-Trace-ID", traceID)

			reqLog := logger.With(
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			start := time.Now()
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), loggerKey, reqLog)))
			reqLog.Info("request", "duration_ms", time.Since(start).Milliseconds())
		})
	}
}

// requestLogger retrieves the per-request logger, falling back to the
// process default.
func requestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
