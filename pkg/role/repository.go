package role

import (
	"context"

	"github.com/google/uuid"
)

// AssignmentRepository defines the interface for role assignment data access
type AssignmentRepository interface {
	// List active assignments for a user, most recently assigned first
	ActiveByUserID(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error)

	// Get one assignment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*RoleAssignment, error)

	// Create a new active assignment
	Create(ctx context.Context, params CreateAssignmentParams) (*RoleAssignment, error)

	// Mark an assignment inactive
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Check whether a user holds an active assignment of the given role type
	HasActiveRole(ctx context.Context, userID uuid.UUID, rt RoleType) (bool, error)

	// Sample user IDs currently holding an active assignment of the role type
	SampleUserIDs(ctx context.Context, rt RoleType, limit int) ([]uuid.UUID, error)
}
