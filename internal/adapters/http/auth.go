package httpadapter

import (
	"context"
	"net/http"
	"strings"
)

const (
	roleStudent  = "student"
	roleReviewer = "reviewer"
	roleAdmin    = "admin"
)

// principal is the authenticated caller attached to the request context.
type principal struct {
	UserID string
	Role   string
}

func (p principal) canReview() bool {
	return p.Role == roleReviewer || p.Role == roleAdmin
}

func (p principal) isAdmin() bool {
	return p.Role == roleAdmin
}

type principalContextKey struct{}

func principalFromContext(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(principal)
	return p, ok
}

// authMiddleware guards everything under /v1. Health and metrics stay
// open for probes and scrapers.
func (rt *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := rt.tokens.Parse(bearerToken(r.Header.Get("Authorization")))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing access token")
			return
		}
		if claims.UserID == "" {
			writeError(w, http.StatusUnauthorized, "token carries no user identity")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey{}, principal{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(headerValue string) string {
	headerValue = strings.TrimSpace(headerValue)
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
}

// mustPrincipal is used by handlers behind authMiddleware; a missing
// principal there means a wiring bug, answered as 401 rather than panic.
func mustPrincipal(w http.ResponseWriter, r *http.Request) (principal, bool) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated principal")
	}
	return p, ok
}
