package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/yourorg/bloodlink/internal/security/ratelimit"
)

// RateLimitCredentials throttles the registration and login endpoints per
// client IP. Everything else passes through untouched.
func RateLimitCredentials(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !isCredentialPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(clientIP(r)) {
				log.Warn("rate limit exceeded",
					slog.String("path", r.URL.Path),
					slog.String("client", clientIP(r)),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests, try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isCredentialPath(path string) bool {
	path = strings.TrimSuffix(path, "/")
	return path == "/api/v1/donor/register" || path == "/api/v1/donor/login"
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
