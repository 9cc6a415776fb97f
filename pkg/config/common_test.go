package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "value")
	assert.Equal(t, "value", GetEnvOrDefault("TEST_STRING_VAR", "fallback"))
	assert.Equal(t, "fallback", GetEnvOrDefault("TEST_STRING_VAR_UNSET", "fallback"))
}

func TestMustGetEnv(t *testing.T) {
	t.Setenv("TEST_REQUIRED_VAR", "present")
	assert.Equal(t, "present", MustGetEnv("TEST_REQUIRED_VAR"))

	assert.Panics(t, func() {
		MustGetEnv("TEST_REQUIRED_VAR_UNSET")
	})
}

func TestGetEnvBool(t *testing.T) {
	cases := map[string]bool{
		"true": true, "1": true, "yes": true, "ON": true,
		"false": false, "0": false, "no": false, "OFF": false,
	}
	for raw, want := range cases {
		t.Setenv("TEST_BOOL_VAR", raw)
		assert.Equal(t, want, GetEnvBool("TEST_BOOL_VAR", !want), "value %q", raw)
	}

	t.Setenv("TEST_BOOL_VAR", "maybe")
	assert.True(t, GetEnvBool("TEST_BOOL_VAR", true))
	assert.False(t, GetEnvBool("TEST_BOOL_VAR_UNSET", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_VAR", "90m")
	assert.Equal(t, 90*time.Minute, GetEnvDuration("TEST_DURATION_VAR", time.Hour))

	t.Setenv("TEST_DURATION_VAR", "not-a-duration")
	assert.Equal(t, time.Hour, GetEnvDuration("TEST_DURATION_VAR", time.Hour))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())

	t.Setenv("APP_ENV", "stage")
	assert.Equal(t, Staging, GetEnvironment())

	t.Setenv("APP_ENV", "")
	assert.Equal(t, Development, GetEnvironment())
	assert.True(t, IsDevelopment())
	assert.False(t, IsProduction())
}
