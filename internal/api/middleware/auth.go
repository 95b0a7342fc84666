package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rtowner/charguess/internal/api/apierr"
)

// WebhookAuth creates middleware that checks the shared webhook secret. The
// transport adapter is the only intended caller of the mutating endpoints, so
// a single bearer token is enough. An empty secret disables the check, which
// is the local development mode.
func WebhookAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the shared secret from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to the webhook header
	return r.Header.Get("X-Webhook-Token")
}
