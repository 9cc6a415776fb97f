// Package org exposes the organizational catalog: schools, generations,
// growth communities and school networks. It is a read-mostly collaborator
// consumed by the impersonation picker and by reporting scopes.
package org

import (
	"time"

	"github.com/google/uuid"
)

// School is one school in the platform. School IDs are integer-keyed in the
// relational store, unlike the UUID-keyed entities below.
type School struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code,omitempty"`
	HasGenerations bool      `json:"has_generations"`
	CreatedAt      time.Time `json:"created_at"`
}

// Generation is one generation (cohort) within a school.
type Generation struct {
	ID         uuid.UUID `json:"id"`
	SchoolID   int64     `json:"school_id"`
	Name       string    `json:"name"`
	GradeRange string    `json:"grade_range,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GrowthCommunity is a small working group of participants within a school,
// optionally tied to one generation.
type GrowthCommunity struct {
	ID           uuid.UUID  `json:"id"`
	SchoolID     int64      `json:"school_id"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	Name         string     `json:"name"`
	MaxMembers   int        `json:"max_members,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SchoolNetwork groups schools for network-level supervision.
type SchoolNetwork struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SchoolCount int       `json:"school_count"`
	CreatedAt   time.Time `json:"created_at"`
}
