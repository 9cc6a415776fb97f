package impersonate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements the Repository interface with in-memory
// storage for testing and development
type InMemoryRepository struct {
	mu       sync.RWMutex
	devUsers map[uuid.UUID]bool
	sessions map[uuid.UUID]Session
}

// NewInMemoryRepository creates a new empty in-memory session repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		devUsers: make(map[uuid.UUID]bool),
		sessions: make(map[uuid.UUID]Session),
	}
}

// SeedDevUser enrolls a user as a developer
func (r *InMemoryRepository) SeedDevUser(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devUsers[userID] = true
}

// SessionByID returns a stored session by ID for test inspection
func (r *InMemoryRepository) SessionByID(id uuid.UUID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *InMemoryRepository) IsDevUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devUsers[userID], nil
}

func (r *InMemoryRepository) StartSession(ctx context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.DevUserID == session.DevUserID && s.IsActive {
			endedAt := session.StartedAt
			s.IsActive = false
			s.EndedAt = &endedAt
			r.sessions[id] = s
		}
	}

	session.ID = uuid.New()
	session.IsActive = true
	r.sessions[session.ID] = session
	return session, nil
}

func (r *InMemoryRepository) EndActiveSession(ctx context.Context, devUserID uuid.UUID, endedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ended int64
	for id, s := range r.sessions {
		if s.DevUserID == devUserID && s.IsActive {
			at := endedAt
			s.IsActive = false
			s.EndedAt = &at
			r.sessions[id] = s
			ended++
		}
	}
	return ended, nil
}

func (r *InMemoryRepository) GetActiveSession(ctx context.Context, devUserID uuid.UUID, now time.Time) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Session
	for id := range r.sessions {
		s := r.sessions[id]
		if s.DevUserID != devUserID || !s.IsActive || s.Expired(now) {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = &s
		}
	}
	return latest, nil
}

func (r *InMemoryRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deactivated int64
	for id, s := range r.sessions {
		if s.IsActive && s.Expired(now) {
			endedAt := s.ExpiresAt
			s.IsActive = false
			s.EndedAt = &endedAt
			r.sessions[id] = s
			deactivated++
		}
	}
	return deactivated, nil
}
