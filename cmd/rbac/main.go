package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genera-edu/rbac/pkg/audit"
	"github.com/genera-edu/rbac/pkg/config"
	"github.com/genera-edu/rbac/pkg/impersonate"
	impersonateapi "github.com/genera-edu/rbac/pkg/impersonate/api"
	"github.com/genera-edu/rbac/pkg/org"
	"github.com/genera-edu/rbac/pkg/role"
)

type ServerConfig struct {
	Host string `env:"RBAC_HOST" env-default:"localhost"`
	Port uint16 `env:"RBAC_PORT" env-default:"4000"`
}

type JwtConfig struct {
	Secret string `env:"RBAC_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer string `env:"RBAC_JWT_ISSUER" env-default:"rbac"`
}

type Config struct {
	DbConfig            config.DatabaseConfig
	ServerConfig        ServerConfig
	JwtConfig           JwtConfig
	ImpersonationConfig config.ImpersonationConfig
}

type repositories struct {
	roles    role.AssignmentRepository
	sessions impersonate.Repository
	auditLog audit.Repository
	catalog  org.Repository
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	// The baked-in signing secret is for local development only.
	if config.IsProduction() {
		cfg.JwtConfig.Secret = config.MustGetEnv("RBAC_JWT_SECRET")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var repos repositories
	if config.GetEnvBool("RBAC_IN_MEMORY", false) {
		slog.Info("Running with in-memory repositories")
		repos = repositories{
			roles:    role.NewInMemoryAssignmentRepository(),
			sessions: impersonate.NewInMemoryRepository(),
			auditLog: audit.NewInMemoryRepository(),
			catalog:  org.NewInMemoryRepository(),
		}
	} else {
		pool, err := pgxpool.New(context.Background(), cfg.DbConfig.ToDatabaseURL())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "err", err)
			os.Exit(-1)
		}
		defer pool.Close()
		repos = repositories{
			roles:    role.NewPostgresAssignmentRepository(pool),
			sessions: impersonate.NewPostgresRepository(pool),
			auditLog: audit.NewPostgresRepository(pool),
			catalog:  org.NewPostgresRepository(pool),
		}
	}

	recorder := audit.NewRecorder(repos.auditLog)
	roleService := role.NewAssignmentService(repos.roles)

	impersonateService := impersonate.NewService(repos.sessions, repos.roles, cfg.ImpersonationConfig,
		impersonate.WithCache(impersonate.NewInMemoryCacheStore(cfg.ImpersonationConfig.CacheKey)),
		impersonate.WithAuditRecorder(recorder),
		impersonate.WithCatalog(repos.catalog),
	)

	signer := impersonateapi.NewTokenSigner([]byte(cfg.JwtConfig.Secret), cfg.JwtConfig.Issuer)
	impersonateHandler := impersonateapi.NewHandler(impersonateService, recorder, signer)

	// Expired sessions die passively on read; this sweep just keeps the
	// table tidy.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := impersonateService.CleanupExpired(context.Background()); err != nil {
				slog.Error("Session cleanup failed", "err", err)
			}
		}
	}()

	auditMiddleware := audit.NewMiddleware(recorder, impersonateapi.UserIDFromContext)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})

	r.Group(func(r chi.Router) {
		r.Use(impersonateapi.UserIDHeaderMiddleware)
		r.Use(auditMiddleware.AuditRequests)
		r.Route("/api/dev", impersonateHandler.RegisterRoutes)
		r.Route("/api/roles", role.NewHandle(roleService, impersonateapi.UserIDFromContext).RegisterRoutes)
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerConfig.Host, cfg.ServerConfig.Port)
	slog.Info("Starting RBAC server", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(-1)
	}
}
