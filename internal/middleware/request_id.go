// file: internal/middleware/request_id.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"rekaloka/internal/contextutils"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ContextKey type for context keys to avoid conflicts
type ContextKey string

const (
	// LoggerKey is the context key for request-scoped logger
	LoggerKey ContextKey = "logger"
	// RequestStartKey is the context key for request start time
	RequestStartKey ContextKey = "request_start"
)

// Request ID header constants
const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXCorrelationID = "X-Correlation-ID"
)

// RequestID middleware generates and injects unique correlation IDs for request tracing
func RequestID(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Reuse an upstream ID when a proxy already assigned one
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = r.Header.Get(HeaderXCorrelationID)
			}
			if requestID == "" {
				if id, err := uuid.NewV4(); err == nil {
					requestID = id.String()
				} else {
					requestID = generateFallbackID(start)
				}
			}

			w.Header().Set(HeaderXRequestID, requestID)

			requestLogger := logger.With(
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", getClientIP(r)),
			)

			ctx := contextutils.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, LoggerKey, requestLogger)
			ctx = context.WithValue(ctx, RequestStartKey, start)

			requestLogger.Debug("Request started",
				zap.String("query", r.URL.RawQuery),
				zap.Int64("content_length", r.ContentLength),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
