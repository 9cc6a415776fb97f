// Package impersonate manages developer role-impersonation sessions.
//
// A developer opts into acting as another role (and optionally as a specific
// user) for testing. Sessions are persisted in the session store, which is
// the single source of truth; a small key-value cache mirrors the active
// context for fast reads but is never consulted for authorization decisions.
//
// # Overview
//
//   - At most one active session per developer. Start deactivates any
//     existing session and inserts the new one in a single transaction.
//   - Expiry is passive: every read checks expires_at, so a session past
//     its expiry is dead even before any cleanup marks it inactive.
//   - Start and End append audit entries; an audit failure never fails the
//     surrounding operation.
//   - Listeners registered via Subscribe are told about each transition
//     strictly after persistence succeeds.
//
// # Basic Usage
//
//	repo := impersonate.NewPostgresRepository(pool)
//	svc := impersonate.NewService(repo, roleRepo, cfg,
//		impersonate.WithCache(impersonate.NewInMemoryCacheStore(cfg.CacheKey)),
//		impersonate.WithAuditRecorder(recorder))
//
//	res := svc.Start(ctx, impersonate.StartParams{
//		DevUserID: devID,
//		Role:      role.RoleConsultant,
//		SchoolID:  &schoolID,
//	})
//	if res.Success {
//		// res.SessionToken identifies the session
//	}
//
// GetRoles returns a single synthetic assignment while a session is live,
// so downstream authorization code needs no special impersonation handling.
package impersonate
