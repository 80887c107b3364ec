package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/api/httpx"
	"github.com/finbook-app/finbook/internal/auth"
	"github.com/finbook-app/finbook/pkg/logger"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// AuthMiddleware validates JWT tokens on protected endpoints
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     *logger.Logger
}

// NewAuthMiddleware creates an auth middleware
func NewAuthMiddleware(jwtService *auth.JWTService, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     log.WithComponent("auth-middleware"),
	}
}

// RequireAuth rejects requests without a valid Bearer token and puts
// the token's user id and email on the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{
				Error: httpx.ErrorDetail{
					Code:    "UNAUTHORIZED",
					Message: "Missing or malformed Authorization header",
				},
			})
			return
		}

		claims, err := m.jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{
				Error: httpx.ErrorDetail{
					Code:    "UNAUTHORIZED",
					Message: "Invalid or expired token",
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, emailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
