package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAssignmentRepository implements AssignmentRepository using PostgreSQL
type PostgresAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAssignmentRepository creates a new PostgreSQL role assignment repository
func NewPostgresAssignmentRepository(pool *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{
		pool: pool,
	}
}

const assignmentColumns = `
	id, user_id, role_type, school_id, generation_id, community_id, network_id,
	is_active, assigned_at, assigned_by
`

func scanAssignment(row pgx.Row) (*RoleAssignment, error) {
	a := &RoleAssignment{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.RoleType,
		&a.SchoolID,
		&a.GenerationID,
		&a.CommunityID,
		&a.NetworkID,
		&a.IsActive,
		&a.AssignedAt,
		&a.AssignedBy,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ActiveByUserID lists active assignments for a user, most recent first.
// Equal timestamps break by assignment ID descending so the ordering is stable.
func (r *PostgresAssignmentRepository) ActiveByUserID(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM user_roles
		WHERE user_id = $1
		  AND is_active
		ORDER BY assigned_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}
	defer rows.Close()

	var assignments []RoleAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", rows.Err())
	}

	return assignments, nil
}

// GetByID retrieves one assignment by its ID
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*RoleAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM user_roles
		WHERE id = $1
	`

	a, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

// Create inserts a new active assignment
func (r *PostgresAssignmentRepository) Create(ctx context.Context, params CreateAssignmentParams) (*RoleAssignment, error) {
	query := `
		INSERT INTO user_roles (
			user_id, role_type, school_id, generation_id, community_id, network_id,
			is_active, assigned_at, assigned_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, TRUE, NOW(), $7
		) RETURNING ` + assignmentColumns

	a, err := scanAssignment(r.pool.QueryRow(ctx, query,
		params.UserID,
		params.RoleType,
		params.SchoolID,
		params.GenerationID,
		params.CommunityID,
		params.NetworkID,
		params.AssignedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return a, nil
}

// Deactivate marks an assignment inactive
func (r *PostgresAssignmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE user_roles
		SET is_active = FALSE
		WHERE id = $1
		  AND is_active
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("assignment not found or already inactive")
	}

	return nil
}

// HasActiveRole checks for an active assignment of the given role type
func (r *PostgresAssignmentRepository) HasActiveRole(ctx context.Context, userID uuid.UUID, rt RoleType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles
			WHERE user_id = $1
			  AND role_type = $2
			  AND is_active
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, rt).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active role: %w", err)
	}
	return exists, nil
}

// SampleUserIDs returns user IDs holding an active assignment of the role type
func (r *PostgresAssignmentRepository) SampleUserIDs(ctx context.Context, rt RoleType, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM user_roles
		WHERE role_type = $1
		  AND is_active
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, rt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", rows.Err())
	}

	return ids, nil
}
