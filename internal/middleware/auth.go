// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"rekaloka/internal/auth"
	"rekaloka/internal/contextutils"
	"rekaloka/internal/models"
	"rekaloka/internal/response"

	"go.uber.org/zap"
)

// TokenParser verifies bearer tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates bearer tokens and enforces roles
type AuthMiddleware struct {
	tokens          TokenParser
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewAuthMiddleware creates the bearer token middleware
func NewAuthMiddleware(tokens TokenParser, responseBuilder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		tokens:          tokens,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// ===============================
// MIDDLEWARE
// ===============================

// RequireAuth rejects requests without a valid token and stores the caller's
// id and role in the request context
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			am.responseBuilder.WriteUnauthorized(w, r, "Authentication required")
			return
		}

		claims, err := am.tokens.Parse(token)
		if err != nil {
			GetRequestLogger(r.Context()).Info("Rejected bearer token", zap.Error(err))
			am.responseBuilder.WriteUnauthorized(w, r, "Invalid or expired token")
			return
		}

		ctx := contextutils.WithUserID(r.Context(), claims.UserID())
		ctx = contextutils.WithRole(ctx, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates the caller and requires the admin role
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return am.RequireAuth(am.RequireRole(models.RoleAdmin)(next))
}

// RequireRole rejects authenticated callers lacking one of roles. It must run
// after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := contextutils.GetRole(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			GetRequestLogger(r.Context()).Warn("Permission denied",
				zap.String("user_id", contextutils.GetUserID(r.Context())),
				zap.String("role", role),
				zap.Strings("required", roles))
			am.responseBuilder.WriteForbidden(w, r, "Access denied: insufficient role")
		})
	}
}

// extractBearerToken reads "Authorization: Bearer <token>"
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
