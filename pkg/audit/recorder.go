// Package audit provides the append-only audit trail for privileged
// developer actions, plus middleware for auditing HTTP requests.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Actions recorded for impersonation lifecycle transitions.
const (
	ActionImpersonationStarted = "impersonation_started"
	ActionImpersonationEnded   = "impersonation_ended"
)

// Recorder appends audit entries without ever surfacing an error to the
// caller: the control path's availability is prioritized over the audit
// trail's completeness, and a failed write is logged for operators instead.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{
		repo: repo,
	}
}

// Record appends one entry. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, params CreateEntryParams) {
	if r == nil || r.repo == nil {
		return
	}
	if _, err := r.repo.Append(ctx, params); err != nil {
		slog.Error("failed to write audit entry",
			"dev_user_id", params.DevUserID,
			"action", params.Action,
			"err", err)
	}
}

// List returns recent entries for a developer, newest first. Degrades to an
// empty list on failure.
func (r *Recorder) List(ctx context.Context, devUserID uuid.UUID, limit int) []Entry {
	if limit <= 0 {
		limit = 50
	}
	entries, err := r.repo.ListByDevUserID(ctx, devUserID, limit)
	if err != nil {
		slog.Error("failed to list audit entries", "dev_user_id", devUserID, "err", err)
		return nil
	}
	return entries
}
