package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record. Entries are never mutated after
// insertion.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	DevUserID uuid.UUID      `json:"dev_user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateEntryParams contains parameters for appending an audit entry
type CreateEntryParams struct {
	DevUserID uuid.UUID      `json:"dev_user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}
