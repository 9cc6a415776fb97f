package role

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// AssignmentService provides role assignment business logic
type AssignmentService struct {
	repo AssignmentRepository
}

// NewAssignmentService creates a new role assignment service
func NewAssignmentService(repo AssignmentRepository) *AssignmentService {
	return &AssignmentService{
		repo: repo,
	}
}

// ActiveAssignments lists a user's active assignments, most recent first
func (s *AssignmentService) ActiveAssignments(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error) {
	return s.repo.ActiveByUserID(ctx, userID)
}

// IsGlobalAdmin reports whether the user holds an active admin assignment.
// Never returns an error; an underlying failure is logged and treated as
// not-admin so a store outage cannot widen access.
func (s *AssignmentService) IsGlobalAdmin(ctx context.Context, userID uuid.UUID) bool {
	ok, err := s.repo.HasActiveRole(ctx, userID, RoleAdmin)
	if err != nil {
		slog.Error("failed to check global admin status", "user_id", userID, "err", err)
		return false
	}
	return ok
}

// AssignRole creates a new assignment for a target user. Only global admins
// may assign roles, and the organizational scope must satisfy the role's
// requirements.
func (s *AssignmentService) AssignRole(ctx context.Context, targetUserID uuid.UUID, rt RoleType, scope OrganizationalScope, assignedBy uuid.UUID) (*RoleAssignment, error) {
	if !s.IsGlobalAdmin(ctx, assignedBy) {
		return nil, ErrNotAuthorized
	}

	if err := ValidateAssignment(rt, scope); err != nil {
		return nil, err
	}

	assignment, err := s.repo.Create(ctx, CreateAssignmentParams{
		UserID:       targetUserID,
		RoleType:     rt,
		SchoolID:     scope.SchoolID,
		GenerationID: scope.GenerationID,
		CommunityID:  scope.CommunityID,
		NetworkID:    scope.NetworkID,
		AssignedBy:   &assignedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	slog.Info("role assigned", "user_id", targetUserID, "role_type", rt, "assigned_by", assignedBy)
	return assignment, nil
}

// RemoveRole deactivates an assignment. Only global admins may remove roles.
func (s *AssignmentService) RemoveRole(ctx context.Context, assignmentID uuid.UUID, removedBy uuid.UUID) error {
	if !s.IsGlobalAdmin(ctx, removedBy) {
		return ErrNotAuthorized
	}

	if err := s.repo.Deactivate(ctx, assignmentID); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	slog.Info("role removed", "assignment_id", assignmentID, "removed_by", removedBy)
	return nil
}

// CapabilitiesForUser resolves the capability set for a user from their
// active assignments plus an optional legacy single-role fallback.
func (s *AssignmentService) CapabilitiesForUser(ctx context.Context, userID uuid.UUID, legacyRole string) (CapabilitySet, error) {
	assignments, err := s.repo.ActiveByUserID(ctx, userID)
	if err != nil {
		return CapabilitySet{}, fmt.Errorf("failed to load assignments: %w", err)
	}
	return ResolveCapabilities(assignments, legacyRole), nil
}

// SampleUsers returns user IDs currently holding the role type, for pickers
// and tooling. Degrades to an empty list on failure.
func (s *AssignmentService) SampleUsers(ctx context.Context, rt RoleType, limit int) []uuid.UUID {
	if limit <= 0 {
		limit = 5
	}
	ids, err := s.repo.SampleUserIDs(ctx, rt, limit)
	if err != nil {
		slog.Error("failed to sample users for role", "role_type", rt, "err", err)
		return nil
	}
	return ids
}
