package org

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL organizational catalog repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func collectSchools(rows pgx.Rows) ([]School, error) {
	defer rows.Close()

	var schools []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.HasGenerations, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, s)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating schools: %w", rows.Err())
	}
	return schools, nil
}

// ListSchools lists all schools ordered by name
func (r *PostgresRepository) ListSchools(ctx context.Context) ([]School, error) {
	query := `
		SELECT id, name, COALESCE(code, ''), has_generations, created_at
		FROM schools
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	return collectSchools(rows)
}

// ListGenerations lists generations for a school ordered by name
func (r *PostgresRepository) ListGenerations(ctx context.Context, schoolID int64) ([]Generation, error) {
	query := `
		SELECT id, school_id, name, COALESCE(grade_range, ''), created_at
		FROM generations
		WHERE school_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var generations []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.SchoolID, &g.Name, &g.GradeRange, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, g)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating generations: %w", rows.Err())
	}
	return generations, nil
}

// ListCommunities lists growth communities for a school, optionally narrowed
// to one generation, ordered by name
func (r *PostgresRepository) ListCommunities(ctx context.Context, schoolID int64, generationID *uuid.UUID) ([]GrowthCommunity, error) {
	query := `
		SELECT id, school_id, generation_id, name, COALESCE(max_members, 0), created_at
		FROM growth_communities
		WHERE school_id = $1
		  AND ($2::uuid IS NULL OR generation_id = $2)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, schoolID, generationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var communities []GrowthCommunity
	for rows.Next() {
		var c GrowthCommunity
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.GenerationID, &c.Name, &c.MaxMembers, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating communities: %w", rows.Err())
	}
	return communities, nil
}

// ListNetworks lists school networks with their school counts, ordered by name
func (r *PostgresRepository) ListNetworks(ctx context.Context) ([]SchoolNetwork, error) {
	query := `
		SELECT n.id, n.name, COALESCE(n.description, ''),
		       COUNT(ns.school_id) AS school_count,
		       n.created_at
		FROM school_networks n
		LEFT JOIN network_schools ns ON ns.network_id = n.id
		GROUP BY n.id, n.name, n.description, n.created_at
		ORDER BY n.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	var networks []SchoolNetwork
	for rows.Next() {
		var n SchoolNetwork
		if err := rows.Scan(&n.ID, &n.Name, &n.Description, &n.SchoolCount, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan network: %w", err)
		}
		networks = append(networks, n)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating networks: %w", rows.Err())
	}
	return networks, nil
}

// ListNetworkSchools lists the schools belonging to a network, ordered by name
func (r *PostgresRepository) ListNetworkSchools(ctx context.Context, networkID uuid.UUID) ([]School, error) {
	query := `
		SELECT s.id, s.name, COALESCE(s.code, ''), s.has_generations, s.created_at
		FROM schools s
		JOIN network_schools ns ON ns.school_id = s.id
		WHERE ns.network_id = $1
		ORDER BY s.name
	`

	rows, err := r.pool.Query(ctx, query, networkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list network schools: %w", err)
	}
	return collectSchools(rows)
}
