package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for audit log data access
type Repository interface {
	// Append a new entry
	Append(ctx context.Context, params CreateEntryParams) (*Entry, error)

	// List entries for a developer, newest first
	ListByDevUserID(ctx context.Context, devUserID uuid.UUID, limit int) ([]Entry, error)
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory audit repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		now: time.Now,
	}
}

// Append adds a new entry
func (r *InMemoryRepository) Append(ctx context.Context, params CreateEntryParams) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := Entry{
		ID:        uuid.New(),
		DevUserID: params.DevUserID,
		Action:    params.Action,
		Details:   params.Details,
		IPAddress: params.IPAddress,
		UserAgent: params.UserAgent,
		CreatedAt: r.now(),
	}
	r.entries = append(r.entries, entry)
	return &entry, nil
}

// ListByDevUserID lists entries for a developer, newest first
func (r *InMemoryRepository) ListByDevUserID(ctx context.Context, devUserID uuid.UUID, limit int) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Entry
	for _, e := range r.entries {
		if e.DevUserID == devUserID {
			result = append(result, e)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
