package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// UserIDExtractor pulls the acting user's ID out of a request context.
// Returns false when the request carries no authenticated user.
type UserIDExtractor func(ctx context.Context) (uuid.UUID, bool)

// Middleware handles HTTP request auditing
type Middleware struct {
	recorder *Recorder
	userID   UserIDExtractor
}

// NewMiddleware creates a new audit middleware instance
func NewMiddleware(recorder *Recorder, userID UserIDExtractor) *Middleware {
	return &Middleware{
		recorder: recorder,
		userID:   userID,
	}
}

// AuditRequests is an HTTP middleware that records authenticated requests.
// Recording happens asynchronously so request latency is unaffected, and a
// failed write never affects the response.
func (m *Middleware) AuditRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.userID(r.Context())
		if ok {
			params := CreateEntryParams{
				DevUserID: userID,
				Action:    "http_request",
				Details: map[string]any{
					"uri":       r.RequestURI,
					"method":    r.Method,
					"timestamp": time.Now().Format(time.RFC3339),
				},
				IPAddress: r.RemoteAddr,
				UserAgent: r.UserAgent(),
			}
			go m.recorder.Record(context.WithoutCancel(r.Context()), params)
		}

		next.ServeHTTP(w, r)
	})
}
