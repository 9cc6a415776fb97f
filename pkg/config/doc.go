// Package config provides common configuration utilities and patterns for the RBAC core.
//
// This package centralizes configuration loading and environment handling so
// every service wires its settings the same way. Struct configs carry cleanenv
// tags for declarative loading, and FromEnv constructors cover callers that
// prefer explicit loading.
//
// # Environment Variable Helpers
//
//	host := config.GetEnvOrDefault("RBAC_PG_HOST", "localhost")
//	port := config.GetEnvUint16("RBAC_PG_PORT", 5432)
//	ttl := config.GetEnvDuration("RBAC_IMPERSONATION_TTL", 8*time.Hour)
//
// # Environment Classification
//
// The APP_ENV variable selects the deployment environment. Components that
// must fail loudly during development but degrade safely in production (for
// example capability lookups for an unknown role type) consult
// config.IsDevelopment.
package config
