package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shophub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const UserKey contextKey = "user"

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and stores the resolved user in the request context
func AuthMiddleware(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// Check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			user, err := auth.Authenticate(r.Context(), parts[1])
			switch {
			case err == nil:
			case !errors.Is(err, domain.ErrUnauthenticated):
				logger.Error("Failed to authenticate request", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "failed to authenticate")
				return
			case errors.Is(err, jwt.ErrTokenExpired):
				logger.Debug("Token expired", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, "token expired")
				return
			default:
				logger.Debug("Token validation failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
			)

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying the authenticated user
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser extracts the authenticated user from request context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return "", false
	}
	return user.ID, true
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (domain.Role, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return "", false
	}
	return user.Role, true
}
