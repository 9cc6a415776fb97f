package impersonate

import (
	"time"

	"github.com/google/uuid"

	"github.com/genera-edu/rbac/pkg/role"
)

// Session is a persisted impersonation session for a developer user.
// A developer has at most one active session at a time.
type Session struct {
	ID                 uuid.UUID     `json:"id"`
	DevUserID          uuid.UUID     `json:"dev_user_id"`
	Role               role.RoleType `json:"role"`
	ImpersonatedUserID *uuid.UUID    `json:"impersonated_user_id,omitempty"`
	SchoolID           *int64        `json:"school_id,omitempty"`
	GenerationID       *uuid.UUID    `json:"generation_id,omitempty"`
	CommunityID        *uuid.UUID    `json:"community_id,omitempty"`
	SessionToken       string        `json:"session_token"`
	IsActive           bool          `json:"is_active"`
	StartedAt          time.Time     `json:"started_at"`
	ExpiresAt          time.Time     `json:"expires_at"`
	EndedAt            *time.Time    `json:"ended_at,omitempty"`
	IPAddress          string        `json:"ip_address,omitempty"`
	UserAgent          string        `json:"user_agent,omitempty"`
}

// Expired reports whether the session's expiry has passed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Context is the effective impersonation state handed to callers.
// Zero-value Context means the developer is acting as themselves.
type Context struct {
	Active             bool          `json:"active"`
	Role               role.RoleType `json:"role,omitempty"`
	ImpersonatedUserID *uuid.UUID    `json:"impersonated_user_id,omitempty"`
	SchoolID           *int64        `json:"school_id,omitempty"`
	GenerationID       *uuid.UUID    `json:"generation_id,omitempty"`
	CommunityID        *uuid.UUID    `json:"community_id,omitempty"`
	SessionToken       string        `json:"session_token,omitempty"`
	ExpiresAt          time.Time     `json:"expires_at,omitempty"`
}

// StartParams carries everything needed to start an impersonation session.
type StartParams struct {
	DevUserID          uuid.UUID
	Role               role.RoleType
	ImpersonatedUserID *uuid.UUID
	SchoolID           *int64
	GenerationID       *uuid.UUID
	CommunityID        *uuid.UUID
	IPAddress          string
	UserAgent          string
}

// StartResult reports the outcome of starting a session. Error carries a
// caller-safe message when Success is false.
type StartResult struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token,omitempty"`
	Error        string `json:"error,omitempty"`
}

// EndResult reports the outcome of ending a session.
type EndResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ImpersonableRole describes a role offered in the developer role picker.
type ImpersonableRole struct {
	Role           role.RoleType `json:"role"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	RequiresSchool bool          `json:"requires_school"`
	AllowsGlobal   bool          `json:"allows_global"`
}
