// Package actor extracts the authenticated actor from the session token the
// portal's auth service issued. Token issuance lives outside this core; here
// the token is only verified and read.
package actor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Actor identifies who performs an operation, for audit fields and the
// permission matrix. The core treats both fields as opaque.
type Actor struct {
	ID   string
	Role string
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Middleware verifies the bearer token with the shared HMAC secret and puts
// the actor into the request context. Requests without a valid session are
// rejected with 401.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			a, err := parseToken(raw, secret)
			if err != nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}

func parseToken(raw string, secret []byte) (Actor, error) {
	var claims sessionClaims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return secret, nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("parsing session token: %w", err)
	}

	if !token.Valid || claims.Subject == "" {
		return Actor{}, fmt.Errorf("invalid session token")
	}

	return Actor{ID: claims.Subject, Role: claims.Role}, nil
}
