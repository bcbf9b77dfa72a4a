package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/staynest/booking-api/internal/pkg/jwt"
	"github.com/staynest/booking-api/internal/pkg/logger"
	"github.com/staynest/booking-api/internal/pkg/response"
)

type contextKey string

const claimsKey contextKey = "claims"

// RoleAdmin may read data-quality reports
const RoleAdmin = "admin"

// Auth returns middleware that requires a valid bearer access token.
// Tokens are issued elsewhere; this service only verifies them.
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				response.Unauthorized(w, problem)
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				response.Unauthorized(w, "Token expired")
				return
			case err != nil:
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

// GetClaims returns the verified token claims, or nil outside Auth
func GetClaims(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return claims
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

// RequireRole returns middleware that lets through only the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r.Context())
			if !slices.Contains(roles, role) {
				logger.LogWarn(r.Context(), "Access denied",
					"user_id", GetUserID(r.Context()).String(),
					"role", role,
					"path", r.URL.Path,
				)
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that requires admin role
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(RoleAdmin)
}
