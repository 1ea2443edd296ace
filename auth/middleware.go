package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

// Middleware validates the bearer token on protected REST routes and
// injects the resolved user identity into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := BearerToken(r)
		if !ok {
			http.Error(w, `{"error":"authorization token is missing"}`, http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(tokenStr)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header or, as a
// fallback for websocket dials where custom headers are awkward on some
// mobile stacks, from the "token" query parameter.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer "), true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// UserID returns the authenticated user injected by Middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}
