package org

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for organizational catalog access
type Repository interface {
	// List all schools, ordered by name
	ListSchools(ctx context.Context) ([]School, error)

	// List generations for a school, ordered by name
	ListGenerations(ctx context.Context, schoolID int64) ([]Generation, error)

	// List growth communities, optionally narrowed to a generation,
	// ordered by name
	ListCommunities(ctx context.Context, schoolID int64, generationID *uuid.UUID) ([]GrowthCommunity, error)

	// List all school networks with their school counts, ordered by name
	ListNetworks(ctx context.Context) ([]SchoolNetwork, error)

	// List the schools belonging to a network, ordered by name
	ListNetworkSchools(ctx context.Context, networkID uuid.UUID) ([]School, error)
}
