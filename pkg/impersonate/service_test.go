package impersonate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genera-edu/rbac/pkg/audit"
	"github.com/genera-edu/rbac/pkg/config"
	"github.com/genera-edu/rbac/pkg/role"
)

// brokenRepo errors on every call, to exercise fail-closed paths.
type brokenRepo struct{}

func (brokenRepo) IsDevUser(context.Context, uuid.UUID) (bool, error) {
	return true, errors.New("store unavailable")
}
func (brokenRepo) StartSession(context.Context, Session) (Session, error) {
	return Session{}, errors.New("store unavailable")
}
func (brokenRepo) EndActiveSession(context.Context, uuid.UUID, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}
func (brokenRepo) GetActiveSession(context.Context, uuid.UUID, time.Time) (*Session, error) {
	return nil, errors.New("store unavailable")
}
func (brokenRepo) DeactivateExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}

// brokenAuditRepo fails every append, to prove audit failures stay isolated.
type brokenAuditRepo struct{}

func (brokenAuditRepo) Append(context.Context, audit.CreateEntryParams) (*audit.Entry, error) {
	return nil, errors.New("audit store unavailable")
}
func (brokenAuditRepo) ListByDevUserID(context.Context, uuid.UUID, int) ([]audit.Entry, error) {
	return nil, errors.New("audit store unavailable")
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *InMemoryRepository, uuid.UUID) {
	t.Helper()
	repo := NewInMemoryRepository()
	devID := uuid.New()
	repo.SeedDevUser(devID)

	base := append([]ServiceOption{WithCache(NewInMemoryCacheStore(config.DefaultImpersonationConfig().CacheKey))}, opts...)
	svc := NewService(repo, role.NewInMemoryAssignmentRepository(),
		config.DefaultImpersonationConfig(), base...)
	return svc, repo, devID
}

func TestIsDevUser(t *testing.T) {
	ctx := context.Background()
	svc, _, devID := newTestService(t)

	assert.True(t, svc.IsDevUser(ctx, devID))
	assert.False(t, svc.IsDevUser(ctx, uuid.New()))

	t.Run("store failure means not a dev user", func(t *testing.T) {
		broken := NewService(brokenRepo{}, role.NewInMemoryAssignmentRepository(),
			config.DefaultImpersonationConfig())
		assert.False(t, broken.IsDevUser(ctx, devID))
	})
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc, _, devID := newTestService(t)
		schoolID := int64(123)

		result := svc.Start(ctx, StartParams{
			DevUserID: devID,
			Role:      role.RoleConsultant,
			SchoolID:  &schoolID,
		})
		require.True(t, result.Success)
		assert.NotEmpty(t, result.SessionToken)

		ic, err := svc.GetActive(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, ic)
		assert.True(t, ic.Active)
		assert.Equal(t, role.RoleConsultant, ic.Role)
		require.NotNil(t, ic.SchoolID)
		assert.Equal(t, schoolID, *ic.SchoolID)
		assert.Equal(t, result.SessionToken, ic.SessionToken)
	})

	t.Run("non dev user never touches the store", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		outsider := uuid.New()

		result := svc.Start(ctx, StartParams{DevUserID: outsider, Role: role.RoleAdmin})
		assert.False(t, result.Success)
		assert.Equal(t, "not authorized", result.Error)

		ic, err := svc.GetActive(ctx, outsider)
		require.NoError(t, err)
		assert.Nil(t, ic)
	})

	t.Run("role outside the picker is rejected", func(t *testing.T) {
		svc, _, devID := newTestService(t)

		result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleNetworkSupervisor})
		assert.False(t, result.Success)
	})

	t.Run("school-bound role needs a school", func(t *testing.T) {
		svc, _, devID := newTestService(t)

		result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleSchoolLeadership})
		assert.False(t, result.Success)
	})

	t.Run("second start supersedes the first", func(t *testing.T) {
		svc, _, devID := newTestService(t)
		schoolID := int64(1)

		first := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
		require.True(t, first.Success)
		second := svc.Start(ctx, StartParams{
			DevUserID: devID,
			Role:      role.RoleSchoolLeadership,
			SchoolID:  &schoolID,
		})
		require.True(t, second.Success)

		ic, err := svc.GetActive(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, ic)
		assert.Equal(t, role.RoleSchoolLeadership, ic.Role)
		assert.Equal(t, second.SessionToken, ic.SessionToken)
	})
}

func TestEnd(t *testing.T) {
	ctx := context.Background()
	svc, _, devID := newTestService(t)

	result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
	require.True(t, result.Success)

	assert.True(t, svc.End(ctx, devID).Success)

	ic, err := svc.GetActive(ctx, devID)
	require.NoError(t, err)
	assert.Nil(t, ic)

	t.Run("idempotent when nothing is active", func(t *testing.T) {
		assert.True(t, svc.End(ctx, devID).Success)
	})
}

func TestPassiveExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := &now
	svc, _, devID := newTestService(t, WithClock(func() time.Time { return *clock }))

	result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
	require.True(t, result.Success)

	later := now.Add(8*time.Hour + time.Minute)
	*clock = later

	ic, err := svc.GetActive(ctx, devID)
	require.NoError(t, err)
	assert.Nil(t, ic, "session past expires_at must be invisible without any cleanup run")

	rt, impersonating, err := svc.GetEffectiveRole(ctx, devID)
	require.NoError(t, err)
	assert.False(t, impersonating)
	assert.Empty(t, rt)
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := &now
	svc, repo, devID := newTestService(t, WithClock(func() time.Time { return *clock }))

	result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
	require.True(t, result.Success)

	*clock = now.Add(9 * time.Hour)
	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := repo.GetActiveSession(ctx, devID, *clock)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestGetEffectiveRole(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	devID := uuid.New()
	repo.SeedDevUser(devID)

	roleRepo := role.NewInMemoryAssignmentRepository()
	roleRepo.SeedAssignment(role.RoleAssignment{
		UserID:     devID,
		RoleType:   role.RoleCommunityLeader,
		IsActive:   true,
		AssignedAt: time.Now(),
	})

	svc := NewService(repo, roleRepo, config.DefaultImpersonationConfig())

	rt, impersonating, err := svc.GetEffectiveRole(ctx, devID)
	require.NoError(t, err)
	assert.False(t, impersonating)
	assert.Equal(t, role.RoleCommunityLeader, rt)

	schoolID := int64(5)
	require.True(t, svc.Start(ctx, StartParams{
		DevUserID: devID,
		Role:      role.RoleConsultant,
		SchoolID:  &schoolID,
	}).Success)

	rt, impersonating, err = svc.GetEffectiveRole(ctx, devID)
	require.NoError(t, err)
	assert.True(t, impersonating)
	assert.Equal(t, role.RoleConsultant, rt)
}

func TestGetRolesSynthesizesAssignment(t *testing.T) {
	ctx := context.Background()
	svc, _, devID := newTestService(t)
	schoolID := int64(123)

	require.True(t, svc.Start(ctx, StartParams{
		DevUserID: devID,
		Role:      role.RoleConsultant,
		SchoolID:  &schoolID,
	}).Success)

	assignments, err := svc.GetRoles(ctx, devID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	synthetic := assignments[0]
	assert.Equal(t, SyntheticAssignmentID, synthetic.ID)
	assert.Equal(t, role.RoleConsultant, synthetic.RoleType)
	assert.True(t, synthetic.IsActive)
	require.NotNil(t, synthetic.SchoolID)
	assert.Equal(t, schoolID, *synthetic.SchoolID)

	// The synthetic assignment must flow through the resolver untouched.
	caps := role.ResolveCapabilities(assignments, "")
	assert.True(t, caps.CanAssignCourses)

	require.True(t, svc.End(ctx, devID).Success)
	assignments, err = svc.GetRoles(ctx, devID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	svc, _, devID := newTestService(t)

	var events []*Context
	unsubscribe := svc.Subscribe(func(ic *Context) {
		events = append(events, ic)
	})

	require.True(t, svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin}).Success)
	require.True(t, svc.End(ctx, devID).Success)

	require.Len(t, events, 2)
	require.NotNil(t, events[0])
	assert.Equal(t, role.RoleAdmin, events[0].Role)
	assert.Nil(t, events[1])

	unsubscribe()
	require.True(t, svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin}).Success)
	assert.Len(t, events, 2)
}

func TestNoNotificationOnFailedStart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	var fired int
	svc.Subscribe(func(*Context) { fired++ })

	result := svc.Start(ctx, StartParams{DevUserID: uuid.New(), Role: role.RoleAdmin})
	assert.False(t, result.Success)
	assert.Zero(t, fired)
}

func TestCacheReconciliation(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheStore(config.DefaultImpersonationConfig().CacheKey)
	repo := NewInMemoryRepository()
	devID := uuid.New()
	repo.SeedDevUser(devID)

	svc := NewService(repo, role.NewInMemoryAssignmentRepository(),
		config.DefaultImpersonationConfig(), WithCache(cache))

	t.Run("stale cache is discarded on read", func(t *testing.T) {
		require.True(t, svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin}).Success)

		// Simulate a foreign cache entry left behind by another process.
		stale := &Context{Active: true, Role: role.RoleParticipant, SessionToken: "stale-token"}
		require.NoError(t, cache.Set(ctx, devID, stale))

		ic, err := svc.GetActive(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, ic)
		assert.Equal(t, role.RoleAdmin, ic.Role)

		cached, err := cache.Get(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, ic.SessionToken, cached.SessionToken)
	})

	t.Run("unreadable cache entry is treated as a miss and overwritten", func(t *testing.T) {
		result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
		require.True(t, result.Success)

		cache.mu.Lock()
		cache.entries[cache.entryKey(devID)] = []byte("{not json")
		cache.mu.Unlock()

		ic, err := svc.GetActive(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, ic)
		assert.Equal(t, result.SessionToken, ic.SessionToken)

		cached, err := cache.Get(ctx, devID)
		require.NoError(t, err, "the corrupted blob must have been replaced")
		require.NotNil(t, cached)
		assert.Equal(t, result.SessionToken, cached.SessionToken)
	})

	t.Run("initialize clears the cache when no session exists", func(t *testing.T) {
		require.True(t, svc.End(ctx, devID).Success)
		require.NoError(t, cache.Set(ctx, devID, &Context{Active: true, SessionToken: "ghost"}))

		require.NoError(t, svc.Initialize(ctx, devID))

		cached, err := cache.Get(ctx, devID)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("initialize mirrors an existing session", func(t *testing.T) {
		result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
		require.True(t, result.Success)
		require.NoError(t, cache.Remove(ctx, devID))

		require.NoError(t, svc.Initialize(ctx, devID))

		cached, err := cache.Get(ctx, devID)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, result.SessionToken, cached.SessionToken)
	})
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	auditRepo := audit.NewInMemoryRepository()
	recorder := audit.NewRecorder(auditRepo)
	svc, _, devID := newTestService(t, WithAuditRecorder(recorder))

	require.True(t, svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin}).Success)
	require.True(t, svc.End(ctx, devID).Success)

	entries := recorder.List(ctx, devID, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionImpersonationEnded, entries[0].Action)
	assert.Equal(t, audit.ActionImpersonationStarted, entries[1].Action)
	assert.Equal(t, "admin", entries[1].Details["role"])
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	recorder := audit.NewRecorder(brokenAuditRepo{})
	svc, _, devID := newTestService(t, WithAuditRecorder(recorder))

	result := svc.Start(ctx, StartParams{DevUserID: devID, Role: role.RoleAdmin})
	assert.True(t, result.Success, "an unavailable audit store must not block impersonation")
	assert.True(t, svc.End(ctx, devID).Success)
}

func TestAvailableRoles(t *testing.T) {
	catalog := AvailableRoles()
	require.Len(t, catalog, 6)

	byRole := make(map[role.RoleType]ImpersonableRole, len(catalog))
	for _, entry := range catalog {
		byRole[entry.Role] = entry
		assert.NotEmpty(t, entry.Name)
		assert.NotEmpty(t, entry.Description)
	}

	assert.Contains(t, byRole, role.RoleAdmin)
	assert.Contains(t, byRole, role.RoleParticipant)
	assert.NotContains(t, byRole, role.RoleNetworkSupervisor)
	assert.NotContains(t, byRole, role.RoleCommunityManager)

	assert.True(t, byRole[role.RoleSchoolLeadership].RequiresSchool)
	assert.True(t, byRole[role.RoleConsultant].AllowsGlobal)
	assert.False(t, byRole[role.RoleConsultant].RequiresSchool)
}

func TestSessionTokenGeneration(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}
