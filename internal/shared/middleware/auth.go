package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// UserIDKey is the context key under which the authenticated user id is
// stored.
const UserIDKey contextKey = "userID"

const userIDHeader = "X-User-ID"

// RequireUser enforces the caller identity boundary. The service sits
// behind the main application gateway, which authenticates the end user and
// forwards the opaque user id in the X-User-ID header. Requests without it
// are rejected before any provider call can happen.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated user id from the request context.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
