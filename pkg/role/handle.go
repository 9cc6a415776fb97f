package role

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// CurrentUserFunc extracts the authenticated user id from a request context.
type CurrentUserFunc func(ctx context.Context) (uuid.UUID, bool)

// Handle handles HTTP requests for role assignments
type Handle struct {
	service     *AssignmentService
	currentUser CurrentUserFunc
}

// NewHandle creates a new role assignment handler
func NewHandle(service *AssignmentService, currentUser CurrentUserFunc) *Handle {
	return &Handle{
		service:     service,
		currentUser: currentUser,
	}
}

// RegisterRoutes registers the role assignment routes.
// These routes should be mounted under an authenticated route group.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/assign", h.Assign)
	r.Post("/remove", h.Remove)
	r.Get("/users/{userID}/assignments", h.Assignments)
	r.Get("/users/{userID}/capabilities", h.Capabilities)
}

// AssignRequest is the request body for POST /assign
type AssignRequest struct {
	UserID       uuid.UUID  `json:"user_id"`
	Role         string     `json:"role"`
	SchoolID     *int64     `json:"school_id,omitempty"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	CommunityID  *uuid.UUID `json:"community_id,omitempty"`
	NetworkID    *uuid.UUID `json:"network_id,omitempty"`
}

// RemoveRequest is the request body for POST /remove
type RemoveRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: msg})
}

// Assign handles POST /assign
func (h *Handle) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssignRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	var scope OrganizationalScope
	if err := copier.Copy(&scope, &req); err != nil {
		slog.Error("Failed to map assign request", "err", err)
		respondError(w, r, http.StatusInternalServerError, "failed to process request")
		return
	}

	assignment, err := h.service.AssignRole(r.Context(), req.UserID, RoleType(req.Role), scope, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAuthorized):
			respondError(w, r, http.StatusForbidden, "only global administrators can assign roles")
		case errors.Is(err, ErrUnknownRoleType), errors.Is(err, ErrMissingScope):
			respondError(w, r, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Failed to assign role", "user_id", req.UserID, "role", req.Role, "err", err)
			respondError(w, r, http.StatusInternalServerError, "failed to assign role")
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, assignment)
}

// Remove handles POST /remove
func (h *Handle) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RemoveRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	if err := h.service.RemoveRole(r.Context(), req.AssignmentID, actor); err != nil {
		switch {
		case errors.Is(err, ErrNotAuthorized):
			respondError(w, r, http.StatusForbidden, "only global administrators can remove roles")
		default:
			slog.Error("Failed to remove role", "assignment_id", req.AssignmentID, "err", err)
			respondError(w, r, http.StatusInternalServerError, "failed to remove role")
		}
		return
	}

	render.JSON(w, r, map[string]bool{"success": true})
}

// Assignments handles GET /users/{userID}/assignments
func (h *Handle) Assignments(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	assignments, err := h.service.ActiveAssignments(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list assignments", "user_id", userID, "err", err)
		respondError(w, r, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	render.JSON(w, r, assignments)
}

// Capabilities handles GET /users/{userID}/capabilities with an optional
// legacy_role query parameter
func (h *Handle) Capabilities(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	caps, err := h.service.CapabilitiesForUser(r.Context(), userID, r.URL.Query().Get("legacy_role"))
	if err != nil {
		slog.Error("Failed to resolve capabilities", "user_id", userID, "err", err)
		respondError(w, r, http.StatusInternalServerError, "failed to resolve capabilities")
		return
	}
	render.JSON(w, r, caps)
}
