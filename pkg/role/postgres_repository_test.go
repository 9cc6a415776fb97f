package role

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "rbac_db"
	dbUser := "rbac"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "rbac_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func createTestSchool(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO schools (name) VALUES ($1) RETURNING id", name).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestPostgresAssignmentRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewPostgresAssignmentRepository(pool)

	t.Run("Create and ActiveByUserID", func(t *testing.T) {
		userID := uuid.New()
		adminID := uuid.New()
		schoolID := createTestSchool(t, pool, "Escuela Norte")

		created, err := repo.Create(ctx, CreateAssignmentParams{
			UserID:     userID,
			RoleType:   RoleSchoolLeadership,
			SchoolID:   &schoolID,
			AssignedBy: &adminID,
		})
		require.NoError(t, err)
		assert.True(t, created.IsActive)
		require.NotNil(t, created.SchoolID)
		assert.Equal(t, schoolID, *created.SchoolID)

		assignments, err := repo.ActiveByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, created.ID, assignments[0].ID)
	})

	t.Run("ActiveByUserID orders newest first", func(t *testing.T) {
		userID := uuid.New()

		older, err := repo.Create(ctx, CreateAssignmentParams{
			UserID:   userID,
			RoleType: RoleParticipant,
		})
		require.NoError(t, err)

		newer, err := repo.Create(ctx, CreateAssignmentParams{
			UserID:   userID,
			RoleType: RoleCommunityManager,
		})
		require.NoError(t, err)

		assignments, err := repo.ActiveByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, assignments, 2)
		assert.Equal(t, newer.ID, assignments[0].ID)
		assert.Equal(t, older.ID, assignments[1].ID)
	})

	t.Run("Deactivate removes from active listing", func(t *testing.T) {
		userID := uuid.New()

		created, err := repo.Create(ctx, CreateAssignmentParams{
			UserID:   userID,
			RoleType: RoleParticipant,
		})
		require.NoError(t, err)

		require.NoError(t, repo.Deactivate(ctx, created.ID))

		assignments, err := repo.ActiveByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, assignments)

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.False(t, fetched.IsActive)
	})

	t.Run("GetByID returns nil for unknown id", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("HasActiveRole", func(t *testing.T) {
		userID := uuid.New()

		_, err := repo.Create(ctx, CreateAssignmentParams{
			UserID:   userID,
			RoleType: RoleAdmin,
		})
		require.NoError(t, err)

		ok, err := repo.HasActiveRole(ctx, userID, RoleAdmin)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasActiveRole(ctx, userID, RoleConsultant)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SampleUserIDs respects the limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := repo.Create(ctx, CreateAssignmentParams{
				UserID:   uuid.New(),
				RoleType: RoleNetworkSupervisor,
			})
			require.NoError(t, err)
		}

		ids, err := repo.SampleUserIDs(ctx, RoleNetworkSupervisor, 2)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})
}
