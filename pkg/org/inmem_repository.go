package org

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements the Repository interface with in-memory
// storage for testing and development
type InMemoryRepository struct {
	mu             sync.RWMutex
	schools        map[int64]School
	generations    map[uuid.UUID]Generation
	communities    map[uuid.UUID]GrowthCommunity
	networks       map[uuid.UUID]SchoolNetwork
	networkSchools map[uuid.UUID][]int64
}

// NewInMemoryRepository creates a new empty in-memory catalog repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		schools:        make(map[int64]School),
		generations:    make(map[uuid.UUID]Generation),
		communities:    make(map[uuid.UUID]GrowthCommunity),
		networks:       make(map[uuid.UUID]SchoolNetwork),
		networkSchools: make(map[uuid.UUID][]int64),
	}
}

// SeedSchool adds a school to the catalog
func (r *InMemoryRepository) SeedSchool(s School) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schools[s.ID] = s
}

// SeedGeneration adds a generation to the catalog
func (r *InMemoryRepository) SeedGeneration(g Generation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[g.ID] = g
}

// SeedCommunity adds a growth community to the catalog
func (r *InMemoryRepository) SeedCommunity(c GrowthCommunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.communities[c.ID] = c
}

// SeedNetwork adds a school network and its member schools to the catalog
func (r *InMemoryRepository) SeedNetwork(n SchoolNetwork, schoolIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.SchoolCount = len(schoolIDs)
	r.networks[n.ID] = n
	r.networkSchools[n.ID] = append([]int64(nil), schoolIDs...)
}

func sortSchoolsByName(schools []School) {
	sort.Slice(schools, func(i, j int) bool {
		return schools[i].Name < schools[j].Name
	})
}

func (r *InMemoryRepository) ListSchools(ctx context.Context) ([]School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schools := make([]School, 0, len(r.schools))
	for _, s := range r.schools {
		schools = append(schools, s)
	}
	sortSchoolsByName(schools)
	return schools, nil
}

func (r *InMemoryRepository) ListGenerations(ctx context.Context, schoolID int64) ([]Generation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var generations []Generation
	for _, g := range r.generations {
		if g.SchoolID == schoolID {
			generations = append(generations, g)
		}
	}
	sort.Slice(generations, func(i, j int) bool {
		return generations[i].Name < generations[j].Name
	})
	return generations, nil
}

func (r *InMemoryRepository) ListCommunities(ctx context.Context, schoolID int64, generationID *uuid.UUID) ([]GrowthCommunity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var communities []GrowthCommunity
	for _, c := range r.communities {
		if c.SchoolID != schoolID {
			continue
		}
		if generationID != nil && (c.GenerationID == nil || *c.GenerationID != *generationID) {
			continue
		}
		communities = append(communities, c)
	}
	sort.Slice(communities, func(i, j int) bool {
		return communities[i].Name < communities[j].Name
	})
	return communities, nil
}

func (r *InMemoryRepository) ListNetworks(ctx context.Context) ([]SchoolNetwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	networks := make([]SchoolNetwork, 0, len(r.networks))
	for _, n := range r.networks {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool {
		return networks[i].Name < networks[j].Name
	})
	return networks, nil
}

func (r *InMemoryRepository) ListNetworkSchools(ctx context.Context, networkID uuid.UUID) ([]School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var schools []School
	for _, id := range r.networkSchools[networkID] {
		if s, ok := r.schools[id]; ok {
			schools = append(schools, s)
		}
	}
	sortSchoolsByName(schools)
	return schools, nil
}
