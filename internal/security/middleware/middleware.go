package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/bloodlink/internal/security/auth"
)

type ClaimsContextKey struct{}

// requiresAuth reports whether the route is protected. Registration, login,
// blood request creation/reads, and report creation/listing are public.
func requiresAuth(r *http.Request) bool {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/v1/donor/profile":
		return true
	case (r.Method == http.MethodPut || r.Method == http.MethodDelete) &&
		strings.HasPrefix(path, "/api/v1/blood-requests/"):
		return true
	case (r.Method == http.MethodGet || r.Method == http.MethodDelete) &&
		strings.HasPrefix(path, "/api/v1/reports/"):
		return true
	}
	return false
}

// JWTMiddleware authenticates protected routes. A missing Authorization
// header is 401; a malformed header or invalid/expired token is 403.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresAuth(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "access token required")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// GetClaimsFromContext returns the verified claims, or nil on public routes.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
