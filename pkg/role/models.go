package role

import (
	"time"

	"github.com/google/uuid"
)

// RoleAssignment is one row of the durable role store: a user holding a role
// type within an organizational scope. A user may hold several assignments at
// once, including one global plus one scoped assignment for the same role.
type RoleAssignment struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	RoleType     RoleType   `json:"role_type"`
	SchoolID     *int64     `json:"school_id,omitempty"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	CommunityID  *uuid.UUID `json:"community_id,omitempty"`
	NetworkID    *uuid.UUID `json:"network_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	AssignedAt   time.Time  `json:"assigned_at"`
	AssignedBy   *uuid.UUID `json:"assigned_by,omitempty"`
}

// CreateAssignmentParams contains parameters for creating a role assignment
type CreateAssignmentParams struct {
	UserID       uuid.UUID  `json:"user_id"`
	RoleType     RoleType   `json:"role_type"`
	SchoolID     *int64     `json:"school_id,omitempty"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	CommunityID  *uuid.UUID `json:"community_id,omitempty"`
	NetworkID    *uuid.UUID `json:"network_id,omitempty"`
	AssignedBy   *uuid.UUID `json:"assigned_by,omitempty"`
}
