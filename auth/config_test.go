package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultsApplied(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, DefaultSessionName, cfg.SessionName)
	assert.Equal(t, "/", cfg.CookiePath)
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	require.NotNil(t, cfg.CookieHTTPOnly)
	assert.True(t, *cfg.CookieHTTPOnly)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.NotNil(t, cfg.Clock)
	assert.NotNil(t, cfg.NewToken)
	assert.Zero(t, cfg.PruneInterval)
	assert.False(t, cfg.SessionPolicy.Expires())
}

func TestParseSessionPolicy(t *testing.T) {
	p, err := ParseSessionPolicy("")
	require.NoError(t, err)
	assert.False(t, p.Expires())

	p, err = ParseSessionPolicy("60")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, p.TTL)

	p, err = ParseSessionPolicy("0")
	require.NoError(t, err)
	assert.False(t, p.Expires())

	for _, bad := range []string{"abc", "-5", "1.5"} {
		p, err = ParseSessionPolicy(bad)
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce, bad)
		assert.Equal(t, "SESSION_DURATION", ce.Key)
		assert.False(t, p.Expires(), "malformed %q falls back to non-expiring", bad)
	}
}

func TestPolicyFromSeconds(t *testing.T) {
	assert.Equal(t, SessionPolicy{}, PolicyFromSeconds(-1))
	assert.Equal(t, SessionPolicy{}, PolicyFromSeconds(0))
	assert.Equal(t, SessionPolicy{TTL: 90 * time.Second}, PolicyFromSeconds(90))
}

func TestParseKind(t *testing.T) {
	for _, k := range []string{"auth", "basic_auth", "session_auth", "session_exp_auth"} {
		got, err := ParseKind(k)
		require.NoError(t, err)
		assert.Equal(t, Kind(k), got)
	}
	_, err := ParseKind("oauth")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Type: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(Config{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	for _, k := range []Kind{KindBasic, KindSession, KindExpiringSession} {
		_, err = New(Config{Type: k})
		assert.ErrorIs(t, err, ErrInvalidArgument, "%s without users", k)
	}

	a, err := New(Config{Type: KindNull})
	require.NoError(t, err)
	assert.Equal(t, KindNull, a.Kind())

	_, err = New(Config{Type: KindBasic, Users: newMemUsers(newTestHasher(t)), BcryptCost: 99})
	assert.Error(t, err)
}
