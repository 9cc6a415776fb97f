package org

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	repo.SeedSchool(School{ID: 1, Name: "Escuela Sur", HasGenerations: true})
	repo.SeedSchool(School{ID: 2, Name: "Escuela Norte"})

	genID := uuid.New()
	repo.SeedGeneration(Generation{ID: genID, SchoolID: 1, Name: "Tractor"})
	repo.SeedGeneration(Generation{ID: uuid.New(), SchoolID: 1, Name: "Innova"})

	communityID := uuid.New()
	repo.SeedCommunity(GrowthCommunity{ID: communityID, SchoolID: 1, GenerationID: &genID, Name: "Comunidad A"})
	repo.SeedCommunity(GrowthCommunity{ID: uuid.New(), SchoolID: 1, Name: "Comunidad B"})
	repo.SeedCommunity(GrowthCommunity{ID: uuid.New(), SchoolID: 2, Name: "Comunidad C"})

	networkID := uuid.New()
	repo.SeedNetwork(SchoolNetwork{ID: networkID, Name: "Red Andina"}, 1, 2)

	t.Run("schools sorted by name", func(t *testing.T) {
		schools, err := repo.ListSchools(ctx)
		require.NoError(t, err)
		require.Len(t, schools, 2)
		assert.Equal(t, "Escuela Norte", schools[0].Name)
		assert.Equal(t, "Escuela Sur", schools[1].Name)
	})

	t.Run("generations filtered by school", func(t *testing.T) {
		generations, err := repo.ListGenerations(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, generations, 2)

		generations, err = repo.ListGenerations(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, generations)
	})

	t.Run("communities filtered by school and generation", func(t *testing.T) {
		communities, err := repo.ListCommunities(ctx, 1, nil)
		require.NoError(t, err)
		assert.Len(t, communities, 2)

		communities, err = repo.ListCommunities(ctx, 1, &genID)
		require.NoError(t, err)
		require.Len(t, communities, 1)
		assert.Equal(t, communityID, communities[0].ID)
	})

	t.Run("networks carry their school count", func(t *testing.T) {
		networks, err := repo.ListNetworks(ctx)
		require.NoError(t, err)
		require.Len(t, networks, 1)
		assert.Equal(t, 2, networks[0].SchoolCount)

		schools, err := repo.ListNetworkSchools(ctx, networkID)
		require.NoError(t, err)
		assert.Len(t, schools, 2)
	})
}
