// file: internal/middleware/middleware.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SlowRequestThreshold marks requests logged as slow
const SlowRequestThreshold = 2 * time.Second

// Logging logs the outcome of every request with the request-scoped logger
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := GetRequestStart(r.Context())
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		requestLogger := GetRequestLogger(r.Context())
		duration := time.Since(start)
		fields := []zap.Field{
			zap.Int("status", rw.status),
			zap.Duration("duration", duration),
			zap.Int64("response_size", rw.bytesWritten),
		}
		if userID := GetUserID(r.Context()); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		switch {
		case rw.status >= 500:
			requestLogger.Error("Request completed", fields...)
		case duration > SlowRequestThreshold:
			requestLogger.Warn("Slow request detected", fields...)
		default:
			requestLogger.Info("Request completed", fields...)
		}
	})
}

// CORS allows browser clients from the configured origins. An empty list
// allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAny := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders sets baseline security headers for a JSON API
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize caps request bodies. Decoding an oversized body fails with a
// 413 validation error.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code and body size
type responseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int64
	wroteHeader  bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	rw.wroteHeader = true
	written, err := rw.ResponseWriter.Write(data)
	rw.bytesWritten += int64(written)
	return written, err
}
