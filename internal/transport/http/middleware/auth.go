package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/pixshelf/pixshelf-api/internal/infrastructure/jwt"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/cookie"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Auth returns middleware that validates the access token and injects
// its claims into the request context. The token is taken from the
// Authorization header when present, falling back to the accessToken
// cookie (browser clients never see the token, only the cookie).
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			} else if c, err := r.Cookie(cookie.AccessCookie); err == nil {
				tokenStr = c.Value
			}
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access token not found, please log in")
				return
			}
			claims, err := provider.VerifyAccess(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusForbidden, "Invalid or expired token, please log in again.")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the access-token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
