package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL audit repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Append inserts a new entry
func (r *PostgresRepository) Append(ctx context.Context, params CreateEntryParams) (*Entry, error) {
	query := `
		INSERT INTO dev_audit_log (
			dev_user_id, action, details, ip_address, user_agent
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), NULLIF($5, '')
		) RETURNING id, dev_user_id, action, details, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
	`

	entry := &Entry{}
	err := r.pool.QueryRow(ctx, query,
		params.DevUserID,
		params.Action,
		params.Details,
		params.IPAddress,
		params.UserAgent,
	).Scan(
		&entry.ID,
		&entry.DevUserID,
		&entry.Action,
		&entry.Details,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}

	return entry, nil
}

// ListByDevUserID lists entries for a developer, newest first
func (r *PostgresRepository) ListByDevUserID(ctx context.Context, devUserID uuid.UUID, limit int) ([]Entry, error) {
	query := `
		SELECT id, dev_user_id, action, details, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM dev_audit_log
		WHERE dev_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, devUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID,
			&entry.DevUserID,
			&entry.Action,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", rows.Err())
	}

	return entries, nil
}
