package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// UserIDKey is the request-context key holding the authenticated user id.
// The surrounding application's auth middleware is expected to set it.
const UserIDKey contextKey = "rbac.user_id"

// UserIDFromContext extracts the authenticated user id from the request
// context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// UserIDHeaderMiddleware reads the X-User-ID header into the request
// context. Meant for local development and tests behind a trusted proxy,
// not for production auth.
func UserIDHeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(WithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
