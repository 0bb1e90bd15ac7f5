package middleware

import (
	"context"
	"net/http"

	"github.com/prismgate/console/internal/services/session"
	"github.com/prismgate/console/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// RequireSession rejects requests that do not carry a valid session
// cookie and stashes the claims in the request context for handlers.
func RequireSession(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionService.ValidateSession(r)
			if err != nil {
				log.Warn().Err(err).Msg("Session validation failed")
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaimsFromContext returns the claims RequireSession stored, or nil
func SessionClaimsFromContext(ctx context.Context) *session.SessionClaims {
	claims, _ := ctx.Value(sessionClaimsKey).(*session.SessionClaims)
	return claims
}
