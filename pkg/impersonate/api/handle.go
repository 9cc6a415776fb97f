package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/genera-edu/rbac/pkg/audit"
	"github.com/genera-edu/rbac/pkg/impersonate"
	"github.com/genera-edu/rbac/pkg/role"
)

// Handler handles HTTP requests for developer impersonation
type Handler struct {
	service  *impersonate.Service
	recorder *audit.Recorder
	signer   *TokenSigner
}

// NewHandler creates a new impersonation handler. The signer is optional;
// without it no context token cookie is set.
func NewHandler(service *impersonate.Service, recorder *audit.Recorder, signer *TokenSigner) *Handler {
	return &Handler{
		service:  service,
		recorder: recorder,
		signer:   signer,
	}
}

// RegisterRoutes registers the impersonation routes.
// These routes should be mounted under an authenticated route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start", h.Start)
	r.Post("/end", h.End)
	r.Get("/status", h.Status)
	r.Get("/roles", h.AvailableRoles)
	r.Get("/roles/{roleType}/sample-users", h.SampleUsers)
	r.Get("/schools", h.Schools)
	r.Get("/schools/{schoolID}/generations", h.Generations)
	r.Get("/schools/{schoolID}/communities", h.Communities)
	r.Get("/networks", h.Networks)
	r.Get("/networks/{networkID}/schools", h.NetworkSchools)
	r.Get("/audit", h.AuditLog)
}

// StartRequest is the request body for POST /start
type StartRequest struct {
	Role               string     `json:"role"`
	ImpersonatedUserID *uuid.UUID `json:"impersonated_user_id,omitempty"`
	SchoolID           *int64     `json:"school_id,omitempty"`
	GenerationID       *uuid.UUID `json:"generation_id,omitempty"`
	CommunityID        *uuid.UUID `json:"community_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// Start handles POST /start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	devUserID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	var params impersonate.StartParams
	if err := copier.Copy(&params, &req); err != nil {
		slog.Error("Failed to map start request", "err", err)
		writeError(w, r, http.StatusInternalServerError, "failed to process request")
		return
	}
	params.DevUserID = devUserID
	params.Role = role.RoleType(req.Role)
	params.IPAddress = clientIP(r)
	params.UserAgent = r.UserAgent()

	result := h.service.Start(r.Context(), params)
	if !result.Success {
		status := http.StatusBadRequest
		if result.Error == "not authorized" {
			status = http.StatusForbidden
		}
		writeError(w, r, status, result.Error)
		return
	}

	ic, err := h.service.GetActive(r.Context(), devUserID)
	if err != nil || ic == nil {
		slog.Error("Failed to load session after start", "dev_user_id", devUserID, "err", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load session")
		return
	}

	if h.signer != nil {
		signed, err := h.signer.Sign(devUserID.String(), ic)
		if err != nil {
			slog.Error("Failed to sign impersonation token", "dev_user_id", devUserID, "err", err)
		} else {
			h.setTokenCookie(w, signed, ic.ExpiresAt)
		}
	}

	render.JSON(w, r, result)
}

// End handles POST /end
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	devUserID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	result := h.service.End(r.Context(), devUserID)
	if !result.Success {
		writeError(w, r, http.StatusInternalServerError, result.Error)
		return
	}

	h.clearTokenCookie(w)
	render.JSON(w, r, result)
}

// Status handles GET /status, returning the active impersonation context
// or an inactive marker.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	devUserID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	ic, err := h.service.GetActive(r.Context(), devUserID)
	if err != nil {
		slog.Error("Failed to read impersonation status", "dev_user_id", devUserID, "err", err)
		writeError(w, r, http.StatusInternalServerError, "failed to read status")
		return
	}

	if ic == nil {
		render.JSON(w, r, impersonate.Context{Active: false})
		return
	}
	render.JSON(w, r, ic)
}

// AvailableRoles handles GET /roles
func (h *Handler) AvailableRoles(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, impersonate.AvailableRoles())
}

// SampleUsers handles GET /roles/{roleType}/sample-users
func (h *Handler) SampleUsers(w http.ResponseWriter, r *http.Request) {
	rt := role.RoleType(chi.URLParam(r, "roleType"))
	if !role.Known(rt) {
		writeError(w, r, http.StatusBadRequest, "unknown role type")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ids := h.service.SampleUsers(r.Context(), rt, limit)
	render.JSON(w, r, map[string]any{"user_ids": ids})
}

// Schools handles GET /schools
func (h *Handler) Schools(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.AvailableSchools(r.Context()))
}

// Generations handles GET /schools/{schoolID}/generations
func (h *Handler) Generations(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid school id")
		return
	}
	render.JSON(w, r, h.service.AvailableGenerations(r.Context(), schoolID))
}

// Communities handles GET /schools/{schoolID}/communities with an optional
// generation_id query filter
func (h *Handler) Communities(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid school id")
		return
	}

	var generationID *uuid.UUID
	if raw := r.URL.Query().Get("generation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid generation id")
			return
		}
		generationID = &id
	}

	render.JSON(w, r, h.service.AvailableCommunities(r.Context(), schoolID, generationID))
}

// Networks handles GET /networks
func (h *Handler) Networks(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.AvailableNetworks(r.Context()))
}

// NetworkSchools handles GET /networks/{networkID}/schools
func (h *Handler) NetworkSchools(w http.ResponseWriter, r *http.Request) {
	networkID, err := uuid.Parse(chi.URLParam(r, "networkID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid network id")
		return
	}
	render.JSON(w, r, h.service.NetworkSchools(r.Context(), networkID))
}

// AuditLog handles GET /audit, listing the caller's impersonation audit
// trail, newest first.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	devUserID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries := h.recorder.List(r.Context(), devUserID, limit)
	render.JSON(w, r, entries)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Path:     "/",
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Path:     "/",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
