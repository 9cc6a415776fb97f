package impersonate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveSession is returned when a developer has no live session.
var ErrNoActiveSession = errors.New("no active impersonation session")

// Repository is the persistence boundary for impersonation sessions.
// The session store is the single source of truth; any cache is advisory.
type Repository interface {
	// IsDevUser reports whether the user is enrolled as a developer.
	IsDevUser(ctx context.Context, userID uuid.UUID) (bool, error)
	// StartSession deactivates any live session for the developer and
	// inserts the new one in a single atomic step.
	StartSession(ctx context.Context, session Session) (Session, error)
	// EndActiveSession marks the developer's live sessions ended and
	// returns how many were ended (0 when none were active).
	EndActiveSession(ctx context.Context, devUserID uuid.UUID, endedAt time.Time) (int64, error)
	// GetActiveSession returns the developer's live, unexpired session,
	// or (nil, nil) when there is none.
	GetActiveSession(ctx context.Context, devUserID uuid.UUID, now time.Time) (*Session, error)
	// DeactivateExpired marks expired-but-still-active sessions inactive.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// CacheStore is an advisory mirror of the active session context keyed by
// developer user ID. Reads that miss or fail fall through to the Repository.
type CacheStore interface {
	Get(ctx context.Context, devUserID uuid.UUID) (*Context, error)
	Set(ctx context.Context, devUserID uuid.UUID, ic *Context) error
	Remove(ctx context.Context, devUserID uuid.UUID) error
}
