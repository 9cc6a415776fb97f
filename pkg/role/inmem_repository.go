package role

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAssignmentRepository implements AssignmentRepository using in-memory storage
type InMemoryAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[uuid.UUID]RoleAssignment
	now         func() time.Time
}

// NewInMemoryAssignmentRepository creates a new in-memory role assignment repository
func NewInMemoryAssignmentRepository() *InMemoryAssignmentRepository {
	return &InMemoryAssignmentRepository{
		assignments: make(map[uuid.UUID]RoleAssignment),
		now:         time.Now,
	}
}

// ActiveByUserID lists active assignments for a user, most recent first
func (r *InMemoryAssignmentRepository) ActiveByUserID(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []RoleAssignment
	for _, a := range r.assignments {
		if a.UserID == userID && a.IsActive {
			result = append(result, a)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AssignedAt.Equal(result[j].AssignedAt) {
			return result[i].AssignedAt.After(result[j].AssignedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})

	return result, nil
}

// GetByID retrieves one assignment by its ID
func (r *InMemoryAssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*RoleAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Create inserts a new active assignment
func (r *InMemoryAssignmentRepository) Create(ctx context.Context, params CreateAssignmentParams) (*RoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := RoleAssignment{
		ID:           uuid.New(),
		UserID:       params.UserID,
		RoleType:     params.RoleType,
		SchoolID:     params.SchoolID,
		GenerationID: params.GenerationID,
		CommunityID:  params.CommunityID,
		NetworkID:    params.NetworkID,
		IsActive:     true,
		AssignedAt:   r.now(),
		AssignedBy:   params.AssignedBy,
	}
	r.assignments[a.ID] = a
	return &a, nil
}

// Deactivate marks an assignment inactive
func (r *InMemoryAssignmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assignments[id]
	if !ok || !a.IsActive {
		return fmt.Errorf("assignment not found or already inactive")
	}
	a.IsActive = false
	r.assignments[id] = a
	return nil
}

// HasActiveRole checks for an active assignment of the given role type
func (r *InMemoryAssignmentRepository) HasActiveRole(ctx context.Context, userID uuid.UUID, rt RoleType) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.assignments {
		if a.UserID == userID && a.RoleType == rt && a.IsActive {
			return true, nil
		}
	}
	return false, nil
}

// SampleUserIDs returns user IDs holding an active assignment of the role type
func (r *InMemoryAssignmentRepository) SampleUserIDs(ctx context.Context, rt RoleType, limit int) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, a := range r.assignments {
		if a.RoleType != rt || !a.IsActive || seen[a.UserID] {
			continue
		}
		seen[a.UserID] = true
		ids = append(ids, a.UserID)
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// SeedAssignment adds an assignment directly (for testing/initialization)
func (r *InMemoryAssignmentRepository) SeedAssignment(a RoleAssignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = r.now()
	}
	r.assignments[a.ID] = a
}
