package config

import "time"

// ImpersonationConfig contains developer impersonation settings.
type ImpersonationConfig struct {
	// SessionTTL is how long an impersonation session stays valid after start
	SessionTTL time.Duration `env:"RBAC_IMPERSONATION_TTL" env-default:"8h"`

	// CacheKey is the well-known key the advisory session cache lives under
	CacheKey string `env:"RBAC_IMPERSONATION_CACHE_KEY" env-default:"rbac-dev-impersonation"`
}

// DefaultImpersonationConfig returns an ImpersonationConfig with sensible defaults
func DefaultImpersonationConfig() ImpersonationConfig {
	return ImpersonationConfig{
		SessionTTL: 8 * time.Hour,
		CacheKey:   "rbac-dev-impersonation",
	}
}

// NewImpersonationConfigFromEnv loads ImpersonationConfig from standard environment variables.
// This is an optional convenience function - you can also populate the struct manually.
func NewImpersonationConfigFromEnv() ImpersonationConfig {
	return ImpersonationConfig{
		SessionTTL: GetEnvDuration("RBAC_IMPERSONATION_TTL", 8*time.Hour),
		CacheKey:   GetEnvOrDefault("RBAC_IMPERSONATION_CACHE_KEY", "rbac-dev-impersonation"),
	}
}
