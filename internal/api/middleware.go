package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/crimewatch-io/crimewatch/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// AuthMiddleware validates the Bearer access token and stores its claims on
// the request context.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authorization required"})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid authorization header"})
				return
			}

			claims, err := tokens.ValidateAccessToken(parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose access token does not carry an admin
// role. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.Role.IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the access claims stored by AuthMiddleware, or
// nil.
func ClaimsFromContext(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.AccessClaims)
	return claims
}
