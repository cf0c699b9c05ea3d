package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// ClaimsFrom returns the claims stored by Middleware, or nil.
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}

// WithClaims returns ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// Middleware rejects requests without a valid bearer token and stores the
// claims in the request context.
func Middleware(tokens *TokenService, unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				unauthorized(w, r)
				return
			}
			c, err := tokens.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), c)))
		})
	}
}

// RequireRole rejects requests whose claims do not carry role.
func RequireRole(role string, forbidden http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := ClaimsFrom(r.Context())
			if c == nil || c.Role != role {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
