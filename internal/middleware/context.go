// file: internal/middleware/context.go
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"rekaloka/internal/contextutils"

	"go.uber.org/zap"
)

// GetRequestLogger extracts the request-scoped logger from context
func GetRequestLogger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// GetRequestStart extracts the request start time from context
func GetRequestStart(ctx context.Context) time.Time {
	if start, ok := ctx.Value(RequestStartKey).(time.Time); ok {
		return start
	}
	return time.Now()
}

// GetUserID returns the authenticated user's ID, empty for anonymous requests
func GetUserID(ctx context.Context) string {
	return contextutils.GetUserID(ctx)
}

// generateFallbackID creates an ID when UUID generation fails
func generateFallbackID(start time.Time) string {
	return "req_" + start.Format("20060102150405.000000000")
}

// getClientIP extracts the real client IP address
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can be "client, proxy1, proxy2"
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		client, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(client)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
