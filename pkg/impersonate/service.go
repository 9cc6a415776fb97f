package impersonate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/genera-edu/rbac/pkg/audit"
	"github.com/genera-edu/rbac/pkg/config"
	"github.com/genera-edu/rbac/pkg/org"
	"github.com/genera-edu/rbac/pkg/role"
)

// SyntheticAssignmentID marks role assignments synthesized from an active
// impersonation session rather than read from the role store.
var SyntheticAssignmentID = uuid.MustParse("00000000-0000-0000-0000-00000000dead")

// Service manages developer impersonation sessions. The repository is
// authoritative for every decision; the cache is a mirror that speeds up
// reads and is discarded whenever it disagrees.
type Service struct {
	repo     Repository
	cache    CacheStore
	recorder *audit.Recorder
	roleRepo role.AssignmentRepository
	orgRepo  org.Repository
	cfg      config.ImpersonationConfig
	notifier notifier
	now      func() time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithClock overrides the service clock, used in tests
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithCache attaches an advisory cache mirror
func WithCache(cache CacheStore) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithAuditRecorder attaches an audit recorder for start/end events
func WithAuditRecorder(recorder *audit.Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithCatalog attaches the organizational catalog used by the lookup
// operations
func WithCatalog(orgRepo org.Repository) ServiceOption {
	return func(s *Service) {
		s.orgRepo = orgRepo
	}
}

// NewService creates a new impersonation service
func NewService(repo Repository, roleRepo role.AssignmentRepository, cfg config.ImpersonationConfig, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		roleRepo: roleRepo,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener for session transitions. The returned
// function removes the listener.
func (s *Service) Subscribe(l Listener) func() {
	return s.notifier.subscribe(l)
}

// IsDevUser reports whether the user may impersonate. Any lookup failure is
// treated as not enrolled.
func (s *Service) IsDevUser(ctx context.Context, userID uuid.UUID) bool {
	ok, err := s.repo.IsDevUser(ctx, userID)
	if err != nil {
		slog.Error("Failed to check dev user, denying", "user_id", userID, "err", err)
		return false
	}
	return ok
}

// Start begins an impersonation session for the developer, replacing any
// session already active. The supersede and insert happen in one repository
// transaction so two concurrent starts cannot both stay active.
func (s *Service) Start(ctx context.Context, params StartParams) StartResult {
	if !s.IsDevUser(ctx, params.DevUserID) {
		return StartResult{Success: false, Error: "not authorized"}
	}

	if !IsImpersonable(params.Role) {
		return StartResult{Success: false, Error: fmt.Sprintf("role %q cannot be impersonated", params.Role)}
	}

	scope := role.OrganizationalScope{
		SchoolID:     params.SchoolID,
		GenerationID: params.GenerationID,
		CommunityID:  params.CommunityID,
	}
	if err := role.ValidateAssignment(params.Role, scope); err != nil {
		return StartResult{Success: false, Error: err.Error()}
	}

	token, err := GenerateSessionToken()
	if err != nil {
		slog.Error("Failed to generate session token", "dev_user_id", params.DevUserID, "err", err)
		return StartResult{Success: false, Error: "failed to generate session token"}
	}

	now := s.now()
	session := Session{
		DevUserID:          params.DevUserID,
		Role:               params.Role,
		ImpersonatedUserID: params.ImpersonatedUserID,
		SchoolID:           params.SchoolID,
		GenerationID:       params.GenerationID,
		CommunityID:        params.CommunityID,
		SessionToken:       token,
		StartedAt:          now,
		ExpiresAt:          now.Add(s.cfg.SessionTTL),
		IPAddress:          params.IPAddress,
		UserAgent:          params.UserAgent,
	}

	created, err := s.repo.StartSession(ctx, session)
	if err != nil {
		slog.Error("Failed to start impersonation session", "dev_user_id", params.DevUserID, "role", params.Role, "err", err)
		return StartResult{Success: false, Error: "failed to start session"}
	}

	ic := contextFromSession(&created)
	s.mirrorCache(ctx, created.DevUserID, ic)

	s.record(ctx, audit.CreateEntryParams{
		DevUserID: created.DevUserID,
		Action:    audit.ActionImpersonationStarted,
		Details:   sessionDetails(&created),
		IPAddress: created.IPAddress,
		UserAgent: created.UserAgent,
	})

	// Observers see only persisted state.
	s.notifier.broadcast(ic)

	slog.Info("Impersonation session started",
		"dev_user_id", created.DevUserID,
		"role", created.Role,
		"expires_at", created.ExpiresAt)
	return StartResult{Success: true, SessionToken: created.SessionToken}
}

// End terminates the developer's active session. Ending when no session is
// active still succeeds.
func (s *Service) End(ctx context.Context, devUserID uuid.UUID) EndResult {
	ended, err := s.repo.EndActiveSession(ctx, devUserID, s.now())
	if err != nil {
		slog.Error("Failed to end impersonation session", "dev_user_id", devUserID, "err", err)
		return EndResult{Success: false, Error: "failed to end session"}
	}

	s.clearCache(ctx, devUserID)

	s.record(ctx, audit.CreateEntryParams{
		DevUserID: devUserID,
		Action:    audit.ActionImpersonationEnded,
		Details:   map[string]any{"sessions_ended": ended},
	})

	s.notifier.broadcast(nil)

	slog.Info("Impersonation session ended", "dev_user_id", devUserID, "sessions_ended", ended)
	return EndResult{Success: true}
}

// GetActive returns the developer's live session context, or nil when none
// exists. The repository answer always wins; a cached context whose token
// differs is dropped as stale.
func (s *Service) GetActive(ctx context.Context, devUserID uuid.UUID) (*Context, error) {
	session, err := s.repo.GetActiveSession(ctx, devUserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to read active session: %w", err)
	}

	if session == nil {
		s.clearCache(ctx, devUserID)
		return nil, nil
	}

	ic := contextFromSession(session)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, devUserID)
		if err != nil {
			// An unreadable entry counts as a miss and gets overwritten.
			slog.Error("Failed to read session cache", "dev_user_id", devUserID, "err", err)
			s.mirrorCache(ctx, devUserID, ic)
		} else if cached == nil || cached.SessionToken != ic.SessionToken {
			s.mirrorCache(ctx, devUserID, ic)
		}
	}
	return ic, nil
}

// GetEffectiveRole resolves the role a user is currently acting as: the
// impersonated role when a session is live, otherwise the highest real role.
func (s *Service) GetEffectiveRole(ctx context.Context, userID uuid.UUID) (role.RoleType, bool, error) {
	ic, err := s.GetActive(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if ic != nil {
		return ic.Role, true, nil
	}

	assignments, err := s.roleRepo.ActiveByUserID(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load role assignments: %w", err)
	}
	rt, ok := role.HighestRole(assignments)
	return rt, ok, nil
}

// GetRoles returns the assignments downstream authorization should see.
// During impersonation that is exactly one synthetic assignment copied from
// the session; consumers cannot tell it apart from a stored one.
func (s *Service) GetRoles(ctx context.Context, userID uuid.UUID) ([]role.RoleAssignment, error) {
	ic, err := s.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ic != nil {
		effectiveUser := userID
		if ic.ImpersonatedUserID != nil {
			effectiveUser = *ic.ImpersonatedUserID
		}
		return []role.RoleAssignment{{
			ID:           SyntheticAssignmentID,
			UserID:       effectiveUser,
			RoleType:     ic.Role,
			SchoolID:     ic.SchoolID,
			GenerationID: ic.GenerationID,
			CommunityID:  ic.CommunityID,
			IsActive:     true,
			AssignedAt:   s.now(),
		}}, nil
	}

	return s.roleRepo.ActiveByUserID(ctx, userID)
}

// Initialize reconciles the cache against the authoritative store. Run once
// at startup before anything trusts the mirror.
func (s *Service) Initialize(ctx context.Context, devUserID uuid.UUID) error {
	session, err := s.repo.GetActiveSession(ctx, devUserID, s.now())
	if err != nil {
		return fmt.Errorf("failed to reconcile session state: %w", err)
	}

	if session == nil {
		s.clearCache(ctx, devUserID)
		return nil
	}
	s.mirrorCache(ctx, devUserID, contextFromSession(session))
	return nil
}

// CleanupExpired marks expired sessions inactive. Correctness never depends
// on this running; every read already checks expiry.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired sessions: %w", err)
	}
	if n > 0 {
		slog.Info("Deactivated expired impersonation sessions", "count", n)
	}
	return n, nil
}

// AvailableSchools lists schools for the role picker; lookup failures
// degrade to an empty list.
func (s *Service) AvailableSchools(ctx context.Context) []org.School {
	if s.orgRepo == nil {
		return nil
	}
	schools, err := s.orgRepo.ListSchools(ctx)
	if err != nil {
		slog.Error("Failed to list schools", "err", err)
		return nil
	}
	return schools
}

// AvailableGenerations lists a school's generations for the role picker
func (s *Service) AvailableGenerations(ctx context.Context, schoolID int64) []org.Generation {
	if s.orgRepo == nil {
		return nil
	}
	generations, err := s.orgRepo.ListGenerations(ctx, schoolID)
	if err != nil {
		slog.Error("Failed to list generations", "school_id", schoolID, "err", err)
		return nil
	}
	return generations
}

// AvailableCommunities lists a school's growth communities, optionally
// narrowed to a generation, for the role picker
func (s *Service) AvailableCommunities(ctx context.Context, schoolID int64, generationID *uuid.UUID) []org.GrowthCommunity {
	if s.orgRepo == nil {
		return nil
	}
	communities, err := s.orgRepo.ListCommunities(ctx, schoolID, generationID)
	if err != nil {
		slog.Error("Failed to list communities", "school_id", schoolID, "err", err)
		return nil
	}
	return communities
}

// AvailableNetworks lists school networks for the role picker
func (s *Service) AvailableNetworks(ctx context.Context) []org.SchoolNetwork {
	if s.orgRepo == nil {
		return nil
	}
	networks, err := s.orgRepo.ListNetworks(ctx)
	if err != nil {
		slog.Error("Failed to list school networks", "err", err)
		return nil
	}
	return networks
}

// NetworkSchools lists the schools belonging to a network
func (s *Service) NetworkSchools(ctx context.Context, networkID uuid.UUID) []org.School {
	if s.orgRepo == nil {
		return nil
	}
	schools, err := s.orgRepo.ListNetworkSchools(ctx, networkID)
	if err != nil {
		slog.Error("Failed to list network schools", "network_id", networkID, "err", err)
		return nil
	}
	return schools
}

// SampleUsers returns user ids holding the given role, feeding the
// "impersonate a real user" picker.
func (s *Service) SampleUsers(ctx context.Context, rt role.RoleType, limit int) []uuid.UUID {
	if limit <= 0 {
		limit = 5
	}
	ids, err := s.roleRepo.SampleUserIDs(ctx, rt, limit)
	if err != nil {
		slog.Error("Failed to list sample users", "role", rt, "err", err)
		return nil
	}
	return ids
}

func (s *Service) mirrorCache(ctx context.Context, devUserID uuid.UUID, ic *Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, devUserID, ic); err != nil {
		slog.Error("Failed to update session cache", "dev_user_id", devUserID, "err", err)
	}
}

func (s *Service) clearCache(ctx context.Context, devUserID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remove(ctx, devUserID); err != nil {
		slog.Error("Failed to clear session cache", "dev_user_id", devUserID, "err", err)
	}
}

func (s *Service) record(ctx context.Context, params audit.CreateEntryParams) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, params)
}

func contextFromSession(session *Session) *Context {
	return &Context{
		Active:             true,
		Role:               session.Role,
		ImpersonatedUserID: session.ImpersonatedUserID,
		SchoolID:           session.SchoolID,
		GenerationID:       session.GenerationID,
		CommunityID:        session.CommunityID,
		SessionToken:       session.SessionToken,
		ExpiresAt:          session.ExpiresAt,
	}
}

func sessionDetails(session *Session) map[string]any {
	details := map[string]any{
		"role":       string(session.Role),
		"expires_at": session.ExpiresAt,
	}
	if session.ImpersonatedUserID != nil {
		details["impersonated_user_id"] = session.ImpersonatedUserID.String()
	}
	if session.SchoolID != nil {
		details["school_id"] = *session.SchoolID
	}
	if session.GenerationID != nil {
		details["generation_id"] = session.GenerationID.String()
	}
	if session.CommunityID != nil {
		details["community_id"] = session.CommunityID.String()
	}
	return details
}
