package impersonate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, dev_user_id, role, impersonated_user_id, school_id,
	generation_id, community_id, session_token, is_active, started_at,
	expires_at, ended_at, COALESCE(ip_address, ''), COALESCE(user_agent, '')`

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID,
		&s.DevUserID,
		&s.Role,
		&s.ImpersonatedUserID,
		&s.SchoolID,
		&s.GenerationID,
		&s.CommunityID,
		&s.SessionToken,
		&s.IsActive,
		&s.StartedAt,
		&s.ExpiresAt,
		&s.EndedAt,
		&s.IPAddress,
		&s.UserAgent,
	)
	return s, err
}

// IsDevUser checks developer enrollment in the dev_users table
func (r *PostgresRepository) IsDevUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM dev_users
			WHERE user_id = $1 AND is_active = TRUE
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check dev user: %w", err)
	}
	return exists, nil
}

// StartSession supersedes any live session for the developer and inserts the
// new one inside a single transaction, so no moment exists with two live
// sessions or with none.
func (r *PostgresRepository) StartSession(ctx context.Context, session Session) (Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit
	defer tx.Rollback(ctx)

	deactivate := `
		UPDATE dev_role_sessions
		SET is_active = FALSE, ended_at = $2
		WHERE dev_user_id = $1 AND is_active = TRUE
	`
	if _, err := tx.Exec(ctx, deactivate, session.DevUserID, session.StartedAt); err != nil {
		return Session{}, fmt.Errorf("failed to supersede existing session: %w", err)
	}

	insert := `
		INSERT INTO dev_role_sessions (
			dev_user_id, role, impersonated_user_id, school_id,
			generation_id, community_id, session_token, is_active,
			started_at, expires_at, ip_address, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9, NULLIF($10, ''), NULLIF($11, ''))
		RETURNING ` + sessionColumns

	created, err := scanSession(tx.QueryRow(ctx, insert,
		session.DevUserID,
		session.Role,
		session.ImpersonatedUserID,
		session.SchoolID,
		session.GenerationID,
		session.CommunityID,
		session.SessionToken,
		session.StartedAt,
		session.ExpiresAt,
		session.IPAddress,
		session.UserAgent,
	))
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, fmt.Errorf("failed to commit session start: %w", err)
	}
	return created, nil
}

// EndActiveSession marks the developer's live sessions ended
func (r *PostgresRepository) EndActiveSession(ctx context.Context, devUserID uuid.UUID, endedAt time.Time) (int64, error) {
	query := `
		UPDATE dev_role_sessions
		SET is_active = FALSE, ended_at = $2
		WHERE dev_user_id = $1 AND is_active = TRUE
	`

	tag, err := r.pool.Exec(ctx, query, devUserID, endedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to end session: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetActiveSession returns the developer's live, unexpired session.
// Expiry is enforced here rather than by a background job, so a session
// past its expires_at is never returned even while still flagged active.
func (r *PostgresRepository) GetActiveSession(ctx context.Context, devUserID uuid.UUID, now time.Time) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM dev_role_sessions
		WHERE dev_user_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY started_at DESC
		LIMIT 1
	`

	s, err := scanSession(r.pool.QueryRow(ctx, query, devUserID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &s, nil
}

// DeactivateExpired marks expired-but-still-active sessions inactive
func (r *PostgresRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE dev_role_sessions
		SET is_active = FALSE, ended_at = expires_at
		WHERE is_active = TRUE AND expires_at <= $1
	`

	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
