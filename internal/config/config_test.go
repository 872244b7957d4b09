package config

import (
	"testing"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"AUTH_TYPE", "SESSION_NAME", "SESSION_DURATION", "API_HOST", "API_PORT",
		"DB_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "BCRYPT_COST",
		"PII_FIELDS", "EXCLUDED_PATHS", "STRICT_UNAUTHORIZED", "DEBUG",
		"MIN_PASSWORD_LENGTH", "REQUIRE_STRONG_PASSWORDS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, warnings, err := Load()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "", cfg.AuthType)
	assert.Equal(t, auth.DefaultSessionName, cfg.SessionName)
	assert.False(t, cfg.SessionPolicy.Expires())
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "auth.db", cfg.DBPath)
	assert.Equal(t, DefaultExcludedPaths, cfg.ExcludedPaths)
	assert.Equal(t, []string{"email", "password", "identifier"}, cfg.PIIFields)
	assert.False(t, cfg.StrictUnauthorized)
	assert.Equal(t, 8, cfg.MinPasswordLength)
	assert.False(t, cfg.RequireStrongPasswords)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_TYPE", "session_exp_auth")
	t.Setenv("SESSION_NAME", "sid")
	t.Setenv("SESSION_DURATION", "60")
	t.Setenv("API_PORT", "8080")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EXCLUDED_PATHS", " /a/ , /b/* ,")
	t.Setenv("STRICT_UNAUTHORIZED", "true")
	t.Setenv("MIN_PASSWORD_LENGTH", "12")
	t.Setenv("REQUIRE_STRONG_PASSWORDS", "1")

	cfg, warnings, err := Load()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "session_exp_auth", cfg.AuthType)
	assert.Equal(t, "sid", cfg.SessionName)
	assert.Equal(t, 60*time.Second, cfg.SessionPolicy.TTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"/a/", "/b/*"}, cfg.ExcludedPaths)
	assert.True(t, cfg.StrictUnauthorized)
	assert.Equal(t, 12, cfg.MinPasswordLength)
	assert.True(t, cfg.RequireStrongPasswords)
}

func TestLoadMalformedDurationWarns(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_DURATION", "soon")

	cfg, warnings, err := Load()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	var cerr *auth.ConfigurationError
	assert.ErrorAs(t, warnings[0], &cerr)
	assert.False(t, cfg.SessionPolicy.Expires())
}

func TestLoadRejectsUnknownAuthType(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_TYPE", "kerberos")
	_, _, err := Load()
	assert.Error(t, err)
}
